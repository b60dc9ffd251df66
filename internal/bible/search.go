package bible

import "strings"

// SearchResult holds the matches of a query. Verses holds at most the
// requested number of matches; Total counts all of them.
type SearchResult struct {
	Query  string  `json:"query"`
	Total  int     `json:"total"`
	Verses []Verse `json:"verses"`
}

// Search returns verses whose cleaned text contains query, in canon order.
// It is a plain substring match; limit <= 0 means no cap.
func (ds *Dataset) Search(query string, limit int) SearchResult {
	q := strings.TrimSpace(query)
	res := SearchResult{Query: q, Verses: []Verse{}}
	if q == "" {
		return res
	}

	for _, b := range ds.books {
		for ci, chapter := range b.Chapters {
			for vi, raw := range chapter {
				text := CleanText(raw)
				if !strings.Contains(text, q) {
					continue
				}
				res.Total++
				if limit > 0 && len(res.Verses) >= limit {
					continue
				}
				res.Verses = append(res.Verses, Verse{
					BookAbbrev: b.Abbrev,
					BookName:   b.DisplayName,
					Chapter:    ci + 1,
					Verse:      vi + 1,
					Text:       text,
				})
			}
		}
	}
	return res
}

// Books returns the dataset's books in order. The chapter slices are shared
// and must not be modified.
func (ds *Dataset) Books() []Book {
	out := make([]Book, len(ds.books))
	copy(out, ds.books)
	return out
}
