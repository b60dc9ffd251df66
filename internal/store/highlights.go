package store

import (
	"context"
	"database/sql"
	"fmt"

	"bibleread/internal/canon"
)

// Highlight marks one verse. Verse is 1-based.
type Highlight struct {
	Book    string `json:"book"`
	Chapter int    `json:"chapter"`
	Verse   int    `json:"verse"`
}

// Highlights stores verse highlights, ordered by canon position.
type Highlights struct {
	d     *DB
	index *canon.Index
}

// Highlights returns the highlight store of d. index provides canonical book
// order and validates references.
func (d *DB) Highlights(index *canon.Index) *Highlights {
	return &Highlights{d: d, index: index}
}

// Toggle flips the highlight on a verse and reports whether it is now on.
func (h *Highlights) Toggle(ctx context.Context, hl Highlight) (bool, error) {
	b, ok := h.index.Find(hl.Book)
	if !ok {
		return false, fmt.Errorf("unknown book %q", hl.Book)
	}
	if _, ok := h.index.Locate(b.Abbrev, hl.Chapter); !ok || hl.Verse < 1 {
		return false, fmt.Errorf("invalid verse %s %d:%d", b.Abbrev, hl.Chapter, hl.Verse)
	}
	book := b.Abbrev
	order, _ := h.index.Position(book)

	tx, err := h.d.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM highlights WHERE book = ? AND chapter = ? AND verse = ?`,
		book, hl.Chapter, hl.Verse)
	if err != nil {
		return false, fmt.Errorf("failed to remove highlight: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if removed == 0 {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO highlights (book, book_order, chapter, verse) VALUES (?, ?, ?, ?)`,
			book, order, hl.Chapter, hl.Verse); err != nil {
			return false, fmt.Errorf("failed to add highlight: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit highlight: %w", err)
	}
	return removed == 0, nil
}

// Chapter returns the highlighted verse numbers of one chapter, ascending.
func (h *Highlights) Chapter(ctx context.Context, book string, chapter int) ([]int, error) {
	b, ok := h.index.Find(book)
	if !ok {
		return nil, fmt.Errorf("unknown book %q", book)
	}
	rows, err := h.d.db.QueryContext(ctx,
		`SELECT verse FROM highlights WHERE book = ? AND chapter = ? ORDER BY verse`,
		b.Abbrev, chapter)
	if err != nil {
		return nil, fmt.Errorf("failed to query highlights: %w", err)
	}
	defer rows.Close()

	verses := []int{}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan highlight: %w", err)
		}
		verses = append(verses, v)
	}
	return verses, rows.Err()
}

// All returns every highlight in canon order, then chapter, then verse.
func (h *Highlights) All(ctx context.Context) ([]Highlight, error) {
	rows, err := h.d.db.QueryContext(ctx,
		`SELECT book, chapter, verse FROM highlights ORDER BY book_order, chapter, verse`)
	if err != nil {
		return nil, fmt.Errorf("failed to query highlights: %w", err)
	}
	defer rows.Close()

	var out []Highlight
	for rows.Next() {
		var book sql.NullString
		var hl Highlight
		if err := rows.Scan(&book, &hl.Chapter, &hl.Verse); err != nil {
			return nil, fmt.Errorf("failed to scan highlight: %w", err)
		}
		hl.Book = nullStringOr(book, "")
		out = append(out, hl)
	}
	return out, rows.Err()
}
