package reorder

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMove(t *testing.T) {
	list := []string{"A", "B", "C", "D"}

	t.Run("Move Down Lands Before Target", func(t *testing.T) {
		assert.Equal(t, []string{"B", "C", "A", "D"}, Move(list, 0, 3))
	})

	t.Run("Move Up", func(t *testing.T) {
		assert.Equal(t, []string{"D", "A", "B", "C"}, Move(list, 3, 0))
	})

	t.Run("Move To End", func(t *testing.T) {
		assert.Equal(t, []string{"B", "C", "D", "A"}, Move(list, 0, len(list)))
	})

	t.Run("Drop On Itself Or Right After", func(t *testing.T) {
		assert.Equal(t, list, Move(list, 1, 1))
		assert.Equal(t, list, Move(list, 1, 2))
	})

	t.Run("Source Out Of Range Is No-op", func(t *testing.T) {
		assert.Equal(t, list, Move(list, -1, 2))
		assert.Equal(t, list, Move(list, 4, 0))
	})

	t.Run("Destination Is Clamped", func(t *testing.T) {
		assert.Equal(t, []string{"B", "C", "D", "A"}, Move(list, 0, 99))
		assert.Equal(t, []string{"C", "A", "B", "D"}, Move(list, 2, -5))
	})

	t.Run("Input Is Not Modified", func(t *testing.T) {
		original := []string{"A", "B", "C", "D"}
		_ = Move(original, 0, 3)
		assert.Equal(t, []string{"A", "B", "C", "D"}, original)
	})

	t.Run("Every Pair Yields A Permutation With The Right Neighbor", func(t *testing.T) {
		for from := 0; from < len(list); from++ {
			for to := 0; to <= len(list); to++ {
				result := Move(list, from, to)

				sorted := append([]string{}, result...)
				sort.Strings(sorted)
				assert.Equal(t, list, sorted, "from %d to %d", from, to)

				if to < len(list) && to != from {
					target := list[to]
					var movedAt, targetAt int
					for idx, value := range result {
						if value == list[from] {
							movedAt = idx
						}
						if value == target {
							targetAt = idx
						}
					}
					assert.Equal(t, targetAt-1, movedAt, "from %d to %d", from, to)
				}
			}
		}
	})
}
