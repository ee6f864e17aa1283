package templates

import "intake-service/internal/app/models"

var (
	firstVisitOnly  = models.Applicability{FirstVisit: true}
	repeatVisitOnly = models.Applicability{RepeatVisit: true}
	bothVisits      = models.Applicability{FirstVisit: true, RepeatVisit: true}
)

// MergeVariants combines the first-visit and repeat-visit item lists into one
// unified tree. Items present in both lists are merged with the first-visit
// copy winning, except that a missing attached image falls back to the
// repeat-visit copy. The result lists every first-visit item in its original
// order followed by the repeat-visit-only items in theirs. Follow-up branches
// are merged the same way, key by key.
func MergeVariants(firstVisit, repeatVisit []models.Item) []models.Item {
	repeatByID := make(map[string]models.Item, len(repeatVisit))
	for _, item := range repeatVisit {
		repeatByID[item.ID] = item
	}

	merged := make([]models.Item, 0, len(firstVisit)+len(repeatVisit))
	for _, item := range firstVisit {
		repeatItem, shared := repeatByID[item.ID]
		if !shared {
			merged = append(merged, markApplicability(item, firstVisitOnly))
			continue
		}

		merged = append(merged, mergeItem(item, repeatItem))
		delete(repeatByID, item.ID)
	}

	for _, item := range repeatVisit {
		if _, pending := repeatByID[item.ID]; !pending {
			continue
		}
		merged = append(merged, markApplicability(item, repeatVisitOnly))
		delete(repeatByID, item.ID)
	}

	return merged
}

func mergeItem(firstItem, repeatItem models.Item) models.Item {
	merged := firstItem.Clone()
	merged.SetApplicability(bothVisits)

	if merged.AttachedImage == "" {
		merged.AttachedImage = repeatItem.AttachedImage
	}

	merged.Followups = mergeFollowups(firstItem.Followups, repeatItem.Followups)
	return merged
}

func mergeFollowups(firstBranches, repeatBranches map[string][]models.Item) map[string][]models.Item {
	if len(firstBranches) == 0 && len(repeatBranches) == 0 {
		return nil
	}

	merged := make(map[string][]models.Item, len(firstBranches))
	for key, branch := range firstBranches {
		merged[key] = MergeVariants(branch, repeatBranches[key])
	}
	for key, branch := range repeatBranches {
		if _, done := merged[key]; done {
			continue
		}
		merged[key] = MergeVariants(nil, branch)
	}
	return merged
}

// markApplicability deep copies item and flags it and all of its follow-ups
// with app.
func markApplicability(item models.Item, app models.Applicability) models.Item {
	marked := item.Clone()
	marked.SetApplicability(app)
	for key, branch := range marked.Followups {
		for idx := range branch {
			branch[idx] = markApplicability(branch[idx], app)
		}
		marked.Followups[key] = branch
	}
	return marked
}
