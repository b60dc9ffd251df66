package canon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIndexSize(t *testing.T) {
	ix := Default()
	assert.Equal(t, 1189, ix.Len())
	assert.Len(t, ix.Books(), 66)
	assert.Same(t, ix, Default(), "default index is built once")
}

func TestBijection(t *testing.T) {
	ix := Default()
	for i := 0; i < ix.Len(); i++ {
		ref, ok := ix.Lookup(i)
		require.True(t, ok)
		require.Equal(t, i, ref.GlobalIndex)

		back, ok := ix.Locate(ref.BookAbbrev, ref.Chapter)
		require.True(t, ok)
		require.Equal(t, i, back)
	}
}

func TestIndexOrdering(t *testing.T) {
	ix := Default()

	first := ix.At(0)
	assert.Equal(t, "gn", first.BookAbbrev)
	assert.Equal(t, 1, first.Chapter)

	last := ix.At(ix.Len() - 1)
	assert.Equal(t, "re", last.BookAbbrev)
	assert.Equal(t, 22, last.Chapter)

	// Exodus 1 follows Genesis 50.
	ex1, ok := ix.Locate("ex", 1)
	require.True(t, ok)
	assert.Equal(t, 50, ex1)

	mt1, ok := ix.Locate("MT", 1)
	require.True(t, ok)
	assert.Equal(t, 929, mt1)
}

func TestLookupOutOfRange(t *testing.T) {
	ix := Default()

	_, ok := ix.Lookup(-1)
	assert.False(t, ok)
	_, ok = ix.Lookup(ix.Len())
	assert.False(t, ok)

	assert.Equal(t, 0, ix.At(-5).GlobalIndex)
	assert.Equal(t, ix.Len()-1, ix.At(ix.Len()+10).GlobalIndex)
}

func TestLocateRejectsBadChapters(t *testing.T) {
	ix := Default()
	for _, tc := range []struct {
		abbrev  string
		chapter int
	}{
		{"gn", 0},
		{"gn", 51},
		{"ob", 2},
		{"xx", 1},
	} {
		_, ok := ix.Locate(tc.abbrev, tc.chapter)
		assert.False(t, ok, "%s %d", tc.abbrev, tc.chapter)
	}
}

func TestFind(t *testing.T) {
	ix := Default()
	for _, key := range []string{"jo", "John", "john", "요한복음", " jo "} {
		b, ok := ix.Find(key)
		require.True(t, ok, key)
		assert.Equal(t, "jo", b.Abbrev, key)
	}
	_, ok := ix.Find("Tobit")
	assert.False(t, ok)
}

func TestBuildValidation(t *testing.T) {
	_, err := Build(BookList{})
	assert.Error(t, err)

	_, err = Build(BookList{{Abbrev: "a", Chapters: 0}})
	assert.Error(t, err)

	_, err = Build(BookList{{Abbrev: "a", Chapters: 1}, {Abbrev: "A", Chapters: 2}})
	assert.Error(t, err)

	ix, err := Build(BookList{{Abbrev: "a", Name: "Alpha", Chapters: 2}, {Abbrev: "b", Name: "Beta", Chapters: 3}})
	require.NoError(t, err)
	assert.Equal(t, 5, ix.Len())
	assert.Equal(t, "Alpha", ix.At(0).BookName, "falls back to English name")
	off, ok := ix.Offset("b")
	require.True(t, ok)
	assert.Equal(t, 2, off)
}
