package models

import (
	"errors"
	"intake-service/internal/pkg/exceptions"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleItem() Item {
	minAge := 18
	return Item{
		ID:             "q1",
		Label:          "Where does it hurt?",
		Kind:           ItemKindMultiChoice,
		Options:        []string{"Head", "Back"},
		AgeRestriction: &AgeRestriction{Enabled: true, MinAge: &minAge},
		Followups: map[string][]Item{
			"Back": {
				{
					ID:   "f1",
					Kind: ItemKindYesNo,
					Followups: map[string][]Item{
						OptionKeyYes: {{ID: "f2", Kind: ItemKindText}},
					},
				},
			},
		},
	}
}

func statusCode(t *testing.T, err error) int {
	t.Helper()
	var customErr *exceptions.CustomError
	require.True(t, errors.As(err, &customErr), "expected a custom error, got %v", err)
	return customErr.StatusCode
}

func TestItem_Clone(t *testing.T) {
	t.Run("Mutating Clone Leaves Original Intact", func(t *testing.T) {
		original := sampleItem()
		clone := original.Clone()

		clone.Options[0] = "Neck"
		*clone.AgeRestriction.MinAge = 30
		clone.Followups["Back"][0].Label = "changed"
		clone.Followups["Back"][0].Followups[OptionKeyYes] = append(clone.Followups["Back"][0].Followups[OptionKeyYes], Item{ID: "f3"})
		clone.Followups["Head"] = []Item{{ID: "f4"}}

		assert.Equal(t, sampleItem(), original)
	})

	t.Run("Nil Slices Stay Nil", func(t *testing.T) {
		assert.Nil(t, CloneItems(nil))
		assert.Nil(t, Item{ID: "x"}.Clone().Followups)
	})
}

func TestItem_RenameOption(t *testing.T) {
	t.Run("Branch Moves With The Option", func(t *testing.T) {
		item := sampleItem()
		branch := CloneItems(item.Followups["Back"])

		require.NoError(t, item.RenameOption("Back", "Lower back"))

		assert.Equal(t, []string{"Head", "Lower back"}, item.Options)
		assert.Len(t, item.Followups, 1)
		assert.Equal(t, branch, item.Followups["Lower back"])
		_, stale := item.Followups["Back"]
		assert.False(t, stale)
	})

	t.Run("Rename Onto Existing Option Is Rejected", func(t *testing.T) {
		item := sampleItem()
		err := item.RenameOption("Back", "Head")
		assert.Equal(t, http.StatusBadRequest, statusCode(t, err))
		assert.Equal(t, []string{"Head", "Back"}, item.Options)
	})

	t.Run("Unknown Option", func(t *testing.T) {
		item := sampleItem()
		err := item.RenameOption("Knee", "Leg")
		assert.Equal(t, http.StatusNotFound, statusCode(t, err))
	})

	t.Run("Empty Text Is Rejected", func(t *testing.T) {
		item := sampleItem()
		assert.Error(t, item.RenameOption("Back", ""))
	})

	t.Run("Not A Multi Choice Item", func(t *testing.T) {
		item := Item{ID: "q2", Kind: ItemKindYesNo}
		assert.Error(t, item.RenameOption(OptionKeyYes, "sure"))
	})
}

func TestItem_DeleteOption(t *testing.T) {
	item := sampleItem()

	require.NoError(t, item.DeleteOption("Back"))

	assert.Equal(t, []string{"Head"}, item.Options)
	assert.Nil(t, item.Followups)
}

func TestItem_AddAndMoveOption(t *testing.T) {
	item := sampleItem()

	require.NoError(t, item.AddOption("Knee"))
	assert.Error(t, item.AddOption("Knee"))

	require.NoError(t, item.MoveOption(2, 0))
	assert.Equal(t, []string{"Knee", "Head", "Back"}, item.Options)
}

func TestItem_ChangeKind(t *testing.T) {
	t.Run("Leaving Multi Choice Drops Options Only", func(t *testing.T) {
		item := sampleItem()
		item.AllowFreeText = true
		item.SetApplicability(Applicability{RepeatVisit: true})
		followups := item.Followups

		item.ChangeKind(ItemKindNumericRange)

		assert.Nil(t, item.Options)
		assert.False(t, item.AllowFreeText)
		assert.Equal(t, &NumericRange{Min: 0, Max: 10, Step: 1}, item.Range)
		assert.Equal(t, "q1", item.ID)
		assert.Equal(t, "Where does it hurt?", item.Label)
		assert.Equal(t, Applicability{RepeatVisit: true}, item.EffectiveApplicability())
		assert.Equal(t, followups, item.Followups)
	})

	t.Run("Leaving Numeric Range Drops Range", func(t *testing.T) {
		item := Item{ID: "n1", Kind: ItemKindNumericRange, Range: &NumericRange{Min: 1, Max: 5, Step: 1}}
		item.ChangeKind(ItemKindText)
		assert.Nil(t, item.Range)
		assert.Equal(t, ItemKindText, item.Kind)
	})
}

func TestItem_SortedFollowupKeys(t *testing.T) {
	item := Item{
		Kind:    ItemKindMultiChoice,
		Options: []string{"B", "A"},
		Followups: map[string][]Item{
			"A":     {},
			"B":     {},
			"stale": {},
		},
	}

	assert.Equal(t, []string{"B", "A", "stale"}, item.SortedFollowupKeys())
}

func TestTreeHelpers(t *testing.T) {
	tree := []Item{sampleItem(), {ID: "q2", Kind: ItemKindDate}}

	t.Run("FindItem Reaches Nested Items", func(t *testing.T) {
		found := FindItem(tree, "f2")
		require.NotNil(t, found)
		assert.Equal(t, ItemKindText, found.Kind)
		assert.Nil(t, FindItem(tree, "missing"))
	})

	t.Run("CountItems And CollectItemIDs", func(t *testing.T) {
		assert.Equal(t, 4, CountItems(tree))

		ids := map[string]struct{}{}
		CollectItemIDs(tree, ids)
		assert.Len(t, ids, 4)
		assert.Contains(t, ids, "f2")
	})

	t.Run("RemoveItem Deletes Nested Item", func(t *testing.T) {
		working := CloneItems(tree)
		updated, ok := RemoveItem(working, "f1")
		require.True(t, ok)
		assert.Empty(t, updated[0].Followups["Back"])
		assert.Nil(t, FindItem(updated, "f2"))

		_, ok = RemoveItem(updated, "missing")
		assert.False(t, ok)
	})
}
