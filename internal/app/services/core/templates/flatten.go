package templates

import (
	"fmt"
	"intake-service/internal/app/models"
)

// ValidationError identifies the first item that blocks a save.
type ValidationError struct {
	ItemID string
	Label  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("item %s (%q) is an image annotation without an attached image", e.ItemID, e.Label)
}

// ValidateTree walks the unified tree depth-first and reports the first
// image-annotation item that would be written to at least one variant without
// an attached image. An item only reaches a variant when every ancestor does,
// so applicability is narrowed along the path.
func ValidateTree(tree []models.Item) error {
	if invalid := validateItems(tree, bothVisits); invalid != nil {
		return invalid
	}
	return nil
}

func validateItems(items []models.Item, inherited models.Applicability) *ValidationError {
	for idx := range items {
		item := &items[idx]
		app := item.EffectiveApplicability().And(inherited)
		if !app.Any() {
			continue
		}

		if item.Kind == models.ItemKindImageAnnotation && item.AttachedImage == "" {
			return &ValidationError{ItemID: item.ID, Label: item.Label}
		}

		for _, key := range item.SortedFollowupKeys() {
			if invalid := validateItems(item.Followups[key], app); invalid != nil {
				return invalid
			}
		}
	}
	return nil
}

// FlattenTree splits the unified tree back into the two variant lists.
// Applicability flags are stripped, items applicable to neither visit are
// dropped and branches left empty are omitted.
func FlattenTree(tree []models.Item) (firstVisit []models.Item, repeatVisit []models.Item) {
	return filterVariant(tree, models.VisitTypeFirstVisit), filterVariant(tree, models.VisitTypeRepeatVisit)
}

func filterVariant(items []models.Item, visitType models.VisitType) []models.Item {
	filtered := make([]models.Item, 0, len(items))
	for idx := range items {
		item := &items[idx]
		if !appliesTo(item.EffectiveApplicability(), visitType) {
			continue
		}

		emitted := item.Clone()
		emitted.Applicability = nil
		emitted.Followups = nil
		for key, branch := range item.Followups {
			branchItems := filterVariant(branch, visitType)
			if len(branchItems) == 0 {
				continue
			}
			if emitted.Followups == nil {
				emitted.Followups = make(map[string][]models.Item)
			}
			emitted.Followups[key] = branchItems
		}
		filtered = append(filtered, emitted)
	}
	return filtered
}

func appliesTo(app models.Applicability, visitType models.VisitType) bool {
	switch visitType {
	case models.VisitTypeFirstVisit:
		return app.FirstVisit
	case models.VisitTypeRepeatVisit:
		return app.RepeatVisit
	default:
		return false
	}
}
