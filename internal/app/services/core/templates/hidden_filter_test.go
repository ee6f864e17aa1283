package templates

import (
	"intake-service/internal/app/models"
	"intake-service/internal/pkg/reorder"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func personalInfo(id string) models.Item {
	return models.Item{ID: id, Label: "Personal info", Kind: models.ItemKindPersonalInfo}
}

// deepTree nests a hidden item three follow-up levels down and another one at the top.
func deepTree() []models.Item {
	return []models.Item{
		personalInfo("pi-top"),
		{
			ID:      "q1",
			Kind:    models.ItemKindMultiChoice,
			Options: []string{"A", "B"},
			Followups: map[string][]models.Item{
				"A": {
					{
						ID:   "f1",
						Kind: models.ItemKindYesNo,
						Followups: map[string][]models.Item{
							models.OptionKeyYes: {
								{
									ID:      "g1",
									Kind:    models.ItemKindMultiChoice,
									Options: []string{"X"},
									Followups: map[string][]models.Item{
										"X": {textItem("h1"), personalInfo("pi-deep"), textItem("h2")},
									},
								},
							},
						},
					},
				},
			},
		},
		textItem("q2"),
	}
}

func TestExtractHidden(t *testing.T) {
	visible, manifest := ExtractHidden(deepTree())

	assert.Equal(t, []string{"q1", "q2"}, ids(visible))
	assert.Nil(t, models.FindItem(visible, "pi-deep"))
	assert.Equal(t, []string{"h1", "h2"}, ids(models.FindItem(visible, "g1").Followups["X"]))

	require.Len(t, manifest, 2)
	assert.Equal(t, "pi-top", manifest[0].Item.ID)
	assert.Empty(t, manifest[0].Path)
	assert.Equal(t, 0, manifest[0].Index)

	assert.Equal(t, "pi-deep", manifest[1].Item.ID)
	assert.Equal(t, []PathHop{
		{ParentItemID: "q1", OptionKey: "A"},
		{ParentItemID: "f1", OptionKey: models.OptionKeyYes},
		{ParentItemID: "g1", OptionKey: "X"},
	}, manifest[1].Path)
	assert.Equal(t, 1, manifest[1].Index)
}

func TestRestoreHidden(t *testing.T) {
	t.Run("Round Trip Three Levels Deep", func(t *testing.T) {
		visible, manifest := ExtractHidden(deepTree())
		assert.Equal(t, deepTree(), RestoreHidden(visible, manifest))
	})

	t.Run("Unrelated Edits Do Not Move Hidden Items", func(t *testing.T) {
		tree := []models.Item{
			textItem("q1"),
			{
				ID:   "q2",
				Kind: models.ItemKindYesNo,
				Followups: map[string][]models.Item{
					models.OptionKeyNo: {textItem("f1"), personalInfo("pi"), textItem("f2")},
				},
			},
			textItem("q3"),
		}

		visible, manifest := ExtractHidden(tree)
		visible = reorder.Move(visible, 2, 0)
		visible = append(visible, textItem("q4"))

		restored := RestoreHidden(visible, manifest)

		assert.Equal(t, []string{"q3", "q1", "q2", "q4"}, ids(restored))
		assert.Equal(t, []string{"f1", "pi", "f2"}, ids(restored[2].Followups[models.OptionKeyNo]))
	})

	t.Run("Shallow Entries Settle Before Deep Ones", func(t *testing.T) {
		tree := []models.Item{
			personalInfo("pi-0"),
			{
				ID:   "q1",
				Kind: models.ItemKindYesNo,
				Followups: map[string][]models.Item{
					models.OptionKeyYes: {personalInfo("pi-nested")},
				},
			},
			personalInfo("pi-2"),
			textItem("q3"),
		}

		visible, manifest := ExtractHidden(tree)
		manifest[0], manifest[2] = manifest[2], manifest[0]

		assert.Equal(t, tree, RestoreHidden(visible, manifest))
	})

	t.Run("Index Is Clamped To Current Length", func(t *testing.T) {
		tree := []models.Item{textItem("q1"), textItem("q2"), personalInfo("pi")}

		visible, manifest := ExtractHidden(tree)
		visible = visible[:1]

		assert.Equal(t, []string{"q1", "pi"}, ids(RestoreHidden(visible, manifest)))
	})

	t.Run("Missing Branch Is Recreated", func(t *testing.T) {
		tree := []models.Item{
			{
				ID:   "q1",
				Kind: models.ItemKindYesNo,
				Followups: map[string][]models.Item{
					models.OptionKeyYes: {personalInfo("pi")},
				},
			},
		}

		visible, manifest := ExtractHidden(tree)
		visible[0].Followups = nil

		restored := RestoreHidden(visible, manifest)
		assert.Equal(t, []string{"pi"}, ids(restored[0].Followups[models.OptionKeyYes]))
	})

	t.Run("Orphaned Entries Are Dropped", func(t *testing.T) {
		visible, manifest := ExtractHidden(deepTree())
		visible, removed := models.RemoveItem(visible, "f1")
		require.True(t, removed)

		restored := RestoreHidden(visible, manifest)

		assert.Equal(t, []string{"pi-top", "q1", "q2"}, ids(restored))
		assert.Nil(t, models.FindItem(restored, "pi-deep"))
		assert.Empty(t, restored[1].Followups["A"])
	})

	t.Run("Orphan Leaves No Stray Branch Behind", func(t *testing.T) {
		visible, manifest := ExtractHidden(deepTree())
		f1 := models.FindItem(visible, "f1")
		require.NotNil(t, f1)
		f1.Followups = nil

		restored := RestoreHidden(visible, manifest)

		assert.Nil(t, models.FindItem(restored, "f1").Followups)
		assert.Nil(t, models.FindItem(restored, "pi-deep"))
	})

	t.Run("Visible Tree Is Not Modified", func(t *testing.T) {
		visible, manifest := ExtractHidden(deepTree())
		before := models.CloneItems(visible)

		_ = RestoreHidden(visible, manifest)

		assert.Equal(t, before, visible)
	})
}

func TestHiddenManifest_OptionEdits(t *testing.T) {
	_, manifest := ExtractHidden(deepTree())
	require.Len(t, manifest, 2)
	deepPath := append([]PathHop{}, manifest[1].Path...)
	require.NotEmpty(t, deepPath)
	outer := deepPath[0]

	t.Run("Rename Rewrites Matching Hops Only", func(t *testing.T) {
		renamed := manifest.Clone()
		renamed.RenameOptionKey(outer.ParentItemID, outer.OptionKey, "renamed")

		assert.Empty(t, renamed[0].Path)
		assert.Equal(t, "renamed", renamed[1].Path[0].OptionKey)
		assert.Equal(t, deepPath[1:], renamed[1].Path[1:])
		assert.Equal(t, outer.OptionKey, manifest[1].Path[0].OptionKey, "clone is independent")
	})

	t.Run("Drop Removes Entries Below The Branch", func(t *testing.T) {
		dropped := manifest.Clone().DropBranch(outer.ParentItemID, outer.OptionKey)

		require.Len(t, dropped, 1)
		assert.Equal(t, "pi-top", dropped[0].Item.ID)
	})

	t.Run("Drop Of An Unrelated Branch Keeps Everything", func(t *testing.T) {
		dropped := manifest.Clone().DropBranch("q1", "no-such-option")

		assert.Len(t, dropped, 2)
	})
}
