package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/repository"
)

// QuoteInput is the body of a quote create or update. Nil fields are left
// unchanged on update.
type QuoteInput struct {
	Text   *string `json:"text"`
	Author *string `json:"author"`
	Order  *int    `json:"order"`
}

// QuoteService manages the quotes shown on the home page.
type QuoteService struct {
	quotes repository.QuoteRepository
	logger *slog.Logger
}

// NewQuoteService creates a QuoteService.
func NewQuoteService(quotes repository.QuoteRepository, logger *slog.Logger) *QuoteService {
	return &QuoteService{quotes: quotes, logger: logger}
}

// List returns quotes by order, then by creation time.
func (s *QuoteService) List(ctx context.Context) ([]model.Quote, error) {
	return s.quotes.List(ctx)
}

// Get returns one quote or apperror.NotFound.
func (s *QuoteService) Get(ctx context.Context, id string) (*model.Quote, error) {
	return s.quotes.GetByID(ctx, strings.TrimSpace(id))
}

// Create stores a quote. Order defaults to 0.
func (s *QuoteService) Create(ctx context.Context, in QuoteInput) (*model.Quote, error) {
	var q model.Quote
	applyQuoteInput(&q, in)

	var err error
	if q.Text, err = required("text", "quote text", q.Text); err != nil {
		return nil, err
	}
	if err := s.quotes.Create(ctx, &q); err != nil {
		return nil, fmt.Errorf("creating quote: %w", err)
	}
	return &q, nil
}

// Update applies the supplied fields. The text may not end up empty.
func (s *QuoteService) Update(ctx context.Context, id string, in QuoteInput) (*model.Quote, error) {
	q, err := s.quotes.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	applyQuoteInput(q, in)
	if q.Text, err = required("text", "quote text", q.Text); err != nil {
		return nil, err
	}
	if err := s.quotes.Update(ctx, q); err != nil {
		return nil, fmt.Errorf("updating quote: %w", err)
	}
	return q, nil
}

// Delete removes a quote or returns apperror.NotFound.
func (s *QuoteService) Delete(ctx context.Context, id string) error {
	return s.quotes.Delete(ctx, strings.TrimSpace(id))
}

func applyQuoteInput(q *model.Quote, in QuoteInput) {
	setTrimmed(&q.Text, in.Text)
	setTrimmed(&q.Author, in.Author)
	set(&q.Order, in.Order)
}
