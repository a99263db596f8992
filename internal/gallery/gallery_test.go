package gallery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafaelqm/imovia/internal/common"
)

func TestCoverFollowsFrontMutations(t *testing.T) {
	g := New("a", "b", "c")

	cover, ok := g.Cover()
	require.True(t, ok)
	assert.Equal(t, "a", cover)

	require.NoError(t, g.Insert(0, "x"))
	cover, _ = g.Cover()
	assert.Equal(t, "x", cover)
	assert.Equal(t, []string{"x", "a", "b", "c"}, g.Items())

	require.NoError(t, g.Remove(0))
	cover, _ = g.Cover()
	assert.Equal(t, "a", cover)
}

func TestInsertMiddleKeepsCover(t *testing.T) {
	g := New("a", "b")
	require.NoError(t, g.Insert(1, "m"))
	assert.Equal(t, []string{"a", "m", "b"}, g.Items())

	cover, _ := g.Cover()
	assert.Equal(t, "a", cover)
}

func TestPromote(t *testing.T) {
	g := New("a", "b", "c")
	require.NoError(t, g.Promote(2))
	assert.Equal(t, []string{"c", "a", "b"}, g.Items())

	require.NoError(t, g.Promote(0))
	assert.Equal(t, []string{"c", "a", "b"}, g.Items())
}

func TestOutOfRangeIndexes(t *testing.T) {
	g := New("a")
	assert.ErrorIs(t, g.Insert(-1, "x"), common.ErrInvalidInput)
	assert.ErrorIs(t, g.Insert(2, "x"), common.ErrInvalidInput)
	assert.ErrorIs(t, g.Remove(1), common.ErrInvalidInput)
	assert.ErrorIs(t, g.Promote(1), common.ErrInvalidInput)
}

func TestEmptyGalleryHasNoCover(t *testing.T) {
	g := New()
	_, ok := g.Cover()
	assert.False(t, ok)
	assert.Zero(t, g.Len())
}

func TestItemsIsACopy(t *testing.T) {
	g := New("a", "b")
	items := g.Items()
	items[0] = "mutated"

	cover, _ := g.Cover()
	assert.Equal(t, "a", cover)
}
