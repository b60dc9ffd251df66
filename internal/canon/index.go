// Package canon maps every chapter of the canon onto a dense, zero-based
// global index in canonical book order.
//
// An Index is built once from a BookLister and is immutable thereafter, so a
// single value can be shared read-only by every caller.
package canon

import (
	"fmt"
	"strings"
	"sync"
)

// ChapterRef is one entry in the canon-wide chapter sequence.
type ChapterRef struct {
	GlobalIndex int    `json:"globalIndex"`
	BookAbbrev  string `json:"bookAbbrev"`
	BookName    string `json:"bookName"`
	Chapter     int    `json:"chapter"` // 1-based within its book
}

func (r ChapterRef) String() string {
	return fmt.Sprintf("%s %d", r.BookName, r.Chapter)
}

// Index is the ordered chapter sequence of a canon.
type Index struct {
	books    []Book
	refs     []ChapterRef
	offsets  []int          // global index of chapter 1 of books[i]
	byAbbrev map[string]int // abbrev -> position in books
}

// Build walks the books in order and assigns each chapter its global index.
// Books must have unique abbreviations and at least one chapter.
func Build(lister BookLister) (*Index, error) {
	books := lister.ListBooks()
	if len(books) == 0 {
		return nil, fmt.Errorf("canon: no books")
	}

	ix := &Index{
		books:    books,
		offsets:  make([]int, len(books)),
		byAbbrev: make(map[string]int, len(books)),
	}
	for i, b := range books {
		if b.Abbrev == "" {
			return nil, fmt.Errorf("canon: book %d has no abbreviation", i)
		}
		if b.Chapters < 1 {
			return nil, fmt.Errorf("canon: book %q has %d chapters", b.Abbrev, b.Chapters)
		}
		key := strings.ToLower(b.Abbrev)
		if _, dup := ix.byAbbrev[key]; dup {
			return nil, fmt.Errorf("canon: duplicate book abbreviation %q", b.Abbrev)
		}
		ix.byAbbrev[key] = i
		ix.offsets[i] = len(ix.refs)

		name := b.DisplayName
		if name == "" {
			name = b.Name
		}
		for c := 1; c <= b.Chapters; c++ {
			ix.refs = append(ix.refs, ChapterRef{
				GlobalIndex: len(ix.refs),
				BookAbbrev:  b.Abbrev,
				BookName:    name,
				Chapter:     c,
			})
		}
	}
	return ix, nil
}

var defaultIndex = sync.OnceValue(func() *Index {
	ix, err := Build(Protestant)
	if err != nil {
		panic(err)
	}
	return ix
})

// Default returns the shared index of the built-in Protestant canon.
func Default() *Index { return defaultIndex() }

// Len is the total number of chapters.
func (ix *Index) Len() int { return len(ix.refs) }

// Lookup returns the chapter at global index i, or false if i is out of range.
func (ix *Index) Lookup(i int) (ChapterRef, bool) {
	if i < 0 || i >= len(ix.refs) {
		return ChapterRef{}, false
	}
	return ix.refs[i], true
}

// At returns the chapter at global index i, clamped into [0, Len()-1].
func (ix *Index) At(i int) ChapterRef {
	return ix.refs[ix.Clamp(i)]
}

// Clamp forces i into [0, Len()-1].
func (ix *Index) Clamp(i int) int {
	if i < 0 {
		return 0
	}
	if i >= len(ix.refs) {
		return len(ix.refs) - 1
	}
	return i
}

// Locate returns the global index of a book chapter.
func (ix *Index) Locate(abbrev string, chapter int) (int, bool) {
	pos, ok := ix.byAbbrev[strings.ToLower(abbrev)]
	if !ok || chapter < 1 || chapter > ix.books[pos].Chapters {
		return 0, false
	}
	return ix.offsets[pos] + chapter - 1, true
}

// Books returns the books in canonical order.
func (ix *Index) Books() []Book {
	out := make([]Book, len(ix.books))
	copy(out, ix.books)
	return out
}

// ListBooks lets an Index stand in as the BookLister for another Index.
func (ix *Index) ListBooks() []Book { return ix.Books() }

// Find resolves a book by abbreviation, English name or display name,
// case-insensitively.
func (ix *Index) Find(key string) (Book, bool) {
	key = strings.TrimSpace(key)
	if pos, ok := ix.byAbbrev[strings.ToLower(key)]; ok {
		return ix.books[pos], true
	}
	for _, b := range ix.books {
		if strings.EqualFold(b.Name, key) || b.DisplayName == key {
			return b, true
		}
	}
	return Book{}, false
}

// Offset returns the global index of the first chapter of a book.
func (ix *Index) Offset(abbrev string) (int, bool) {
	pos, ok := ix.byAbbrev[strings.ToLower(abbrev)]
	if !ok {
		return 0, false
	}
	return ix.offsets[pos], true
}

// Position returns the canonical position (0-based) of a book, used to sort
// records in canon order.
func (ix *Index) Position(abbrev string) (int, bool) {
	pos, ok := ix.byAbbrev[strings.ToLower(abbrev)]
	return pos, ok
}
