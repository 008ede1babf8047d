package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/xid"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/repository"
)

var _ repository.QuoteRepository = (*QuoteDB)(nil)

// QuoteDB stores quotes.
type QuoteDB struct {
	*DB
}

// Quotes returns the quote repository.
func (db *DB) Quotes() *QuoteDB { return &QuoteDB{db} }

const quoteColumns = `id, text, author, sort_order, created_at, updated_at`

func scanQuote(row rowScanner) (*model.Quote, error) {
	var q model.Quote
	if err := row.Scan(&q.ID, &q.Text, &q.Author, &q.Order, &q.CreatedAt, &q.UpdatedAt); err != nil {
		return nil, err
	}
	return &q, nil
}

// List returns quotes by order, oldest first on ties.
func (db *QuoteDB) List(ctx context.Context) ([]model.Quote, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+quoteColumns+` FROM quotes ORDER BY sort_order ASC, created_at ASC, id ASC`)
	if err != nil {
		return nil, classify("listing quotes", err)
	}
	defer rows.Close()

	quotes := []model.Quote{}
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, classify("scanning quote", err)
		}
		quotes = append(quotes, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterating quotes", err)
	}
	return quotes, nil
}

// GetByID returns apperror.NotFound when no quote has the id.
func (db *QuoteDB) GetByID(ctx context.Context, id string) (*model.Quote, error) {
	q, err := scanQuote(db.conn.QueryRowContext(ctx, db.q(`SELECT `+quoteColumns+` FROM quotes WHERE id = ?`), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("quote", id)
		}
		return nil, classify("getting quote "+id, err)
	}
	return q, nil
}

// Create assigns the id and timestamps, then inserts the row.
func (db *QuoteDB) Create(ctx context.Context, q *model.Quote) error {
	ts := now()
	q.ID = xid.New().String()
	q.CreatedAt = ts
	q.UpdatedAt = ts

	_, err := db.conn.ExecContext(ctx, db.q(`
		INSERT INTO quotes (`+quoteColumns+`) VALUES (?, ?, ?, ?, ?, ?)`),
		q.ID, q.Text, q.Author, q.Order, q.CreatedAt, q.UpdatedAt,
	)
	if err != nil {
		return classify("creating quote", err)
	}
	return nil
}

// Update rewrites the row and bumps updated_at.
func (db *QuoteDB) Update(ctx context.Context, q *model.Quote) error {
	q.UpdatedAt = now()

	res, err := db.conn.ExecContext(ctx, db.q(`
		UPDATE quotes SET text = ?, author = ?, sort_order = ?, updated_at = ? WHERE id = ?`),
		q.Text, q.Author, q.Order, q.UpdatedAt, q.ID,
	)
	if err != nil {
		return classify("updating quote "+q.ID, err)
	}
	return checkAffected(res, "quote", q.ID)
}

// Delete returns apperror.NotFound when nothing was removed.
func (db *QuoteDB) Delete(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, db.q(`DELETE FROM quotes WHERE id = ?`), id)
	if err != nil {
		return classify("deleting quote "+id, err)
	}
	return checkAffected(res, "quote", id)
}

// Count returns the number of quotes.
func (db *QuoteDB) Count(ctx context.Context) (int, error) {
	return db.count(ctx, "quotes")
}
