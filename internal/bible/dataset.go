// Package bible loads the verse dataset and answers chapter, search and
// random-verse queries against it.
//
// The dataset is a JSON array of books, each with an abbreviation, an English
// name and its chapters as arrays of verse strings:
//
//	[{"abbrev": "gn", "name": "Genesis", "chapters": [["In the beginning…", …], …]}, …]
//
// Files ending in .gz are decompressed on load.
package bible

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"bibleread/internal/canon"
)

var (
	ErrBookNotFound    = errors.New("bible: book not found")
	ErrChapterNotFound = errors.New("bible: chapter not found")
)

// Book is one book of the dataset.
type Book struct {
	Abbrev      string     `json:"abbrev"`
	Name        string     `json:"name"`
	DisplayName string     `json:"displayName,omitempty"`
	Chapters    [][]string `json:"chapters"`
}

// Verse is a single verse with its location.
type Verse struct {
	BookAbbrev string `json:"book"`
	BookName   string `json:"bookName"`
	Chapter    int    `json:"chapter"`
	Verse      int    `json:"verse"` // 1-based
	Text       string `json:"text"`
}

// Dataset is the loaded text. It is read-only after Load.
type Dataset struct {
	books    []Book
	byAbbrev map[string]int
}

// Load reads a dataset file.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("opening gzip dataset: %w", err)
		}
		defer gr.Close()
		r = gr
	}
	return Decode(r)
}

// Decode parses a dataset from r. The UTF-8 byte order mark some exports
// carry is skipped.
func Decode(r io.Reader) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	var books []Book
	if err := json.Unmarshal(data, &books); err != nil {
		return nil, fmt.Errorf("decoding dataset: %w", err)
	}
	return New(books)
}

// New builds a dataset from already-decoded books. Display names missing
// from the data are filled from the built-in canon table.
func New(books []Book) (*Dataset, error) {
	if len(books) == 0 {
		return nil, errors.New("bible: empty dataset")
	}
	ds := &Dataset{books: books, byAbbrev: make(map[string]int, len(books))}
	for i := range ds.books {
		b := &ds.books[i]
		if b.Abbrev == "" || len(b.Chapters) == 0 {
			return nil, fmt.Errorf("bible: book %d (%q) has no abbreviation or chapters", i, b.Name)
		}
		if b.DisplayName == "" {
			b.DisplayName = canon.DisplayNames[b.Name]
		}
		if b.DisplayName == "" {
			b.DisplayName = b.Name
		}
		ds.byAbbrev[strings.ToLower(b.Abbrev)] = i
	}
	return ds, nil
}

// ListBooks makes the dataset a canon.BookLister, so the chapter index always
// matches the text actually loaded.
func (ds *Dataset) ListBooks() []canon.Book {
	out := make([]canon.Book, len(ds.books))
	for i, b := range ds.books {
		out[i] = canon.Book{
			Abbrev:      b.Abbrev,
			Name:        b.Name,
			DisplayName: b.DisplayName,
			Order:       i + 1,
			Chapters:    len(b.Chapters),
		}
	}
	return out
}

// Book finds a book by abbreviation, English name or display name.
func (ds *Dataset) Book(key string) (*Book, error) {
	key = strings.TrimSpace(key)
	if i, ok := ds.byAbbrev[strings.ToLower(key)]; ok {
		return &ds.books[i], nil
	}
	for i := range ds.books {
		if strings.EqualFold(ds.books[i].Name, key) || ds.books[i].DisplayName == key {
			return &ds.books[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrBookNotFound, key)
}

// Chapter returns the cleaned verses of a 1-based chapter.
func (ds *Dataset) Chapter(book string, chapter int) ([]string, error) {
	b, err := ds.Book(book)
	if err != nil {
		return nil, err
	}
	if chapter < 1 || chapter > len(b.Chapters) {
		return nil, fmt.Errorf("%w: %s %d", ErrChapterNotFound, b.Abbrev, chapter)
	}
	raw := b.Chapters[chapter-1]
	verses := make([]string, len(raw))
	for i, v := range raw {
		verses[i] = CleanText(v)
	}
	return verses, nil
}

// Verse returns one verse by 0-based index within a chapter.
func (ds *Dataset) Verse(book string, chapter, index int) (Verse, error) {
	verses, err := ds.Chapter(book, chapter)
	if err != nil {
		return Verse{}, err
	}
	if index < 0 || index >= len(verses) {
		return Verse{}, fmt.Errorf("%w: verse %d", ErrChapterNotFound, index+1)
	}
	b, _ := ds.Book(book)
	return Verse{
		BookAbbrev: b.Abbrev,
		BookName:   b.DisplayName,
		Chapter:    chapter,
		Verse:      index + 1,
		Text:       verses[index],
	}, nil
}

// Random picks a verse uniformly by book, then chapter, then verse.
func (ds *Dataset) Random(rng *rand.Rand) Verse {
	b := ds.books[rng.IntN(len(ds.books))]
	ci := rng.IntN(len(b.Chapters))
	ch := b.Chapters[ci]
	if len(ch) == 0 {
		return Verse{BookAbbrev: b.Abbrev, BookName: b.DisplayName, Chapter: ci + 1}
	}
	vi := rng.IntN(len(ch))
	return Verse{
		BookAbbrev: b.Abbrev,
		BookName:   b.DisplayName,
		Chapter:    ci + 1,
		Verse:      vi + 1,
		Text:       CleanText(ch[vi]),
	}
}

var entityReplacer = strings.NewReplacer(
	"&#x27;", "'",
	"&quot;", `"`,
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
)

// CleanText decodes the few HTML entities present in the source text.
func CleanText(s string) string {
	return entityReplacer.Replace(s)
}
