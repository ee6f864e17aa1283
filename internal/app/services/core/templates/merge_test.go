package templates

import (
	"intake-service/internal/app/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textItem(id string) models.Item {
	return models.Item{ID: id, Label: "label " + id, Kind: models.ItemKindText}
}

func ids(items []models.Item) []string {
	result := make([]string, 0, len(items))
	for _, item := range items {
		result = append(result, item.ID)
	}
	return result
}

func TestMergeVariants(t *testing.T) {
	t.Run("Order And Applicability", func(t *testing.T) {
		firstVisit := []models.Item{textItem("a"), textItem("shared"), textItem("b")}
		repeatVisit := []models.Item{textItem("c"), textItem("shared"), textItem("d")}

		merged := MergeVariants(firstVisit, repeatVisit)

		assert.Equal(t, []string{"a", "shared", "b", "c", "d"}, ids(merged))
		assert.Equal(t, firstVisitOnly, merged[0].EffectiveApplicability())
		assert.Equal(t, bothVisits, merged[1].EffectiveApplicability())
		assert.Equal(t, firstVisitOnly, merged[2].EffectiveApplicability())
		assert.Equal(t, repeatVisitOnly, merged[3].EffectiveApplicability())
		assert.Equal(t, repeatVisitOnly, merged[4].EffectiveApplicability())
	})

	t.Run("First Visit Fields Win", func(t *testing.T) {
		firstCopy := textItem("shared")
		firstCopy.Label = "first"
		repeatCopy := textItem("shared")
		repeatCopy.Label = "repeat"
		repeatCopy.Required = true

		merged := MergeVariants([]models.Item{firstCopy}, []models.Item{repeatCopy})

		require.Len(t, merged, 1)
		assert.Equal(t, "first", merged[0].Label)
		assert.False(t, merged[0].Required)
	})

	t.Run("Attached Image Falls Back To Repeat Visit", func(t *testing.T) {
		firstCopy := models.Item{ID: "img", Kind: models.ItemKindImageAnnotation}
		repeatCopy := models.Item{ID: "img", Kind: models.ItemKindImageAnnotation, AttachedImage: "annotation/img.png"}

		merged := MergeVariants([]models.Item{firstCopy}, []models.Item{repeatCopy})

		assert.Equal(t, "annotation/img.png", merged[0].AttachedImage)
	})

	t.Run("Follow-up Branches Merge Recursively", func(t *testing.T) {
		firstCopy := models.Item{
			ID:   "q",
			Kind: models.ItemKindYesNo,
			Followups: map[string][]models.Item{
				models.OptionKeyYes: {textItem("f1")},
			},
		}
		repeatCopy := models.Item{
			ID:   "q",
			Kind: models.ItemKindYesNo,
			Followups: map[string][]models.Item{
				models.OptionKeyYes: {textItem("f1"), textItem("f2")},
				models.OptionKeyNo:  {textItem("f3")},
			},
		}

		merged := MergeVariants([]models.Item{firstCopy}, []models.Item{repeatCopy})

		yes := merged[0].Followups[models.OptionKeyYes]
		assert.Equal(t, []string{"f1", "f2"}, ids(yes))
		assert.Equal(t, bothVisits, yes[0].EffectiveApplicability())
		assert.Equal(t, repeatVisitOnly, yes[1].EffectiveApplicability())

		no := merged[0].Followups[models.OptionKeyNo]
		assert.Equal(t, []string{"f3"}, ids(no))
		assert.Equal(t, repeatVisitOnly, no[0].EffectiveApplicability())
	})

	t.Run("Inputs Are Not Modified", func(t *testing.T) {
		firstVisit := []models.Item{textItem("a")}
		_ = MergeVariants(firstVisit, nil)
		assert.Nil(t, firstVisit[0].Applicability)
	})
}

func TestMergeThenFlatten_RoundTrip(t *testing.T) {
	firstVisit := []models.Item{
		textItem("a"),
		{
			ID:      "shared",
			Kind:    models.ItemKindMultiChoice,
			Options: []string{"X", "Y"},
			Followups: map[string][]models.Item{
				"X": {textItem("fx")},
				"Y": {textItem("fy1")},
			},
		},
		textItem("b"),
	}
	repeatVisit := []models.Item{
		{
			ID:      "shared",
			Kind:    models.ItemKindMultiChoice,
			Options: []string{"X", "Y"},
			Followups: map[string][]models.Item{
				"Y": {textItem("fy1"), textItem("fy2")},
			},
		},
		textItem("c"),
	}

	gotFirst, gotRepeat := FlattenTree(MergeVariants(firstVisit, repeatVisit))

	assert.Equal(t, firstVisit, gotFirst)
	assert.Equal(t, repeatVisit, gotRepeat)
}
