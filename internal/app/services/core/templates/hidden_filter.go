package templates

import (
	"intake-service/internal/app/models"
	"sort"
)

// PathHop is one step from a sequence into the follow-up branch of one of its items.
type PathHop struct {
	ParentItemID string `json:"parent_item_id"`
	OptionKey    string `json:"option_key"`
}

// HiddenEntry remembers where a hidden item was taken out of the tree.
// Path leads from the top-level list to the containing sequence and Index is
// the item's position in that sequence before anything was removed.
type HiddenEntry struct {
	Path  []PathHop   `json:"path"`
	Index int         `json:"index"`
	Item  models.Item `json:"item"`
}

type HiddenManifest []HiddenEntry

// ExtractHidden returns a copy of tree without items of hidden kinds, at any
// depth, together with the manifest needed to put them back.
func ExtractHidden(tree []models.Item) ([]models.Item, HiddenManifest) {
	manifest := HiddenManifest{}
	visible := extractFrom(models.CloneItems(tree), nil, &manifest)
	return visible, manifest
}

func extractFrom(items []models.Item, path []PathHop, manifest *HiddenManifest) []models.Item {
	if items == nil {
		return nil
	}

	kept := make([]models.Item, 0, len(items))
	for idx, item := range items {
		if item.Kind.IsHidden() {
			*manifest = append(*manifest, HiddenEntry{
				Path:  clonePath(path),
				Index: idx,
				Item:  item.Clone(),
			})
			continue
		}

		for _, key := range item.SortedFollowupKeys() {
			branchPath := append(clonePath(path), PathHop{ParentItemID: item.ID, OptionKey: key})
			item.Followups[key] = extractFrom(item.Followups[key], branchPath, manifest)
		}
		kept = append(kept, item)
	}
	return kept
}

// RestoreHidden re-inserts the manifest entries into a copy of visible.
// Shallower entries go first and entries at the same depth go in ascending
// original index, so every insertion sees settled ancestor structure. Each
// item lands at min(original index, current length) of its sequence. Entries
// whose path runs through an item that no longer exists are dropped.
func RestoreHidden(visible []models.Item, manifest HiddenManifest) []models.Item {
	tree := models.CloneItems(visible)
	if len(manifest) == 0 {
		return tree
	}

	entries := append(HiddenManifest{}, manifest...)
	sort.SliceStable(entries, func(a, b int) bool {
		if len(entries[a].Path) != len(entries[b].Path) {
			return len(entries[a].Path) < len(entries[b].Path)
		}
		return entries[a].Index < entries[b].Index
	})

	for _, entry := range entries {
		tree, _ = restoreEntry(tree, entry.Path, entry.Index, entry.Item)
	}
	return tree
}

func restoreEntry(items []models.Item, path []PathHop, index int, hidden models.Item) ([]models.Item, bool) {
	if len(path) == 0 {
		return insertItem(items, index, hidden.Clone()), true
	}

	hop := path[0]
	for idx := range items {
		if items[idx].ID != hop.ParentItemID {
			continue
		}

		parent := &items[idx]
		_, existed := parent.Followups[hop.OptionKey]
		updated, ok := restoreEntry(parent.Branch(hop.OptionKey), path[1:], index, hidden)
		if !ok {
			if !existed {
				delete(parent.Followups, hop.OptionKey)
				if len(parent.Followups) == 0 {
					parent.Followups = nil
				}
			}
			return items, false
		}

		parent.Followups[hop.OptionKey] = updated
		return items, true
	}

	return items, false
}

func insertItem(items []models.Item, index int, item models.Item) []models.Item {
	if index > len(items) {
		index = len(items)
	}
	if index < 0 {
		index = 0
	}

	result := make([]models.Item, 0, len(items)+1)
	result = append(result, items[:index]...)
	result = append(result, item)
	return append(result, items[index:]...)
}

func clonePath(path []PathHop) []PathHop {
	return append([]PathHop{}, path...)
}

func (m HiddenManifest) Clone() HiddenManifest {
	if m == nil {
		return nil
	}
	clone := make(HiddenManifest, len(m))
	for idx, entry := range m {
		clone[idx] = HiddenEntry{
			Path:  clonePath(entry.Path),
			Index: entry.Index,
			Item:  entry.Item.Clone(),
		}
	}
	return clone
}

// RenameOptionKey points every entry that passes through the branch
// (itemID, oldKey) at newKey instead.
func (m HiddenManifest) RenameOptionKey(itemID, oldKey, newKey string) {
	for _, entry := range m {
		for idx := range entry.Path {
			hop := &entry.Path[idx]
			if hop.ParentItemID == itemID && hop.OptionKey == oldKey {
				hop.OptionKey = newKey
			}
		}
	}
}

// DropBranch removes the entries that live in, or below, the branch
// (itemID, optionKey).
func (m HiddenManifest) DropBranch(itemID, optionKey string) HiddenManifest {
	kept := m[:0]
	for _, entry := range m {
		if !entry.passesThrough(itemID, optionKey) {
			kept = append(kept, entry)
		}
	}
	return kept
}

func (e HiddenEntry) passesThrough(itemID, optionKey string) bool {
	for _, hop := range e.Path {
		if hop.ParentItemID == itemID && hop.OptionKey == optionKey {
			return true
		}
	}
	return false
}
