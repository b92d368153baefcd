package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/assurlink/courtage/internal/domain"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuoteSummary is a saved quote as listed to its owner
type QuoteSummary struct {
	ID           string          `json:"id"`
	OwnerID      string          `json:"ownerId"`
	Product      domain.Product  `json:"product"`
	Name         string          `json:"name,omitempty"`
	Total        decimal.Decimal `json:"total"`
	FinalCapital decimal.Decimal `json:"finalCapital"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// QuoteFilter narrows ListQuotes. Zero fields match everything.
type QuoteFilter struct {
	OwnerID string
	Product domain.Product
	Limit   int
}

// SaveQuote stores q for ownerID, assigning an id when q has none
func (s *Store) SaveQuote(ctx context.Context, ownerID string, q *domain.Quote) error {
	if ownerID == "" {
		return domain.NewValidationError("owner_id", "owner required")
	}
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now()
	}
	body, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("failed to encode quote: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO quotes (id, owner_id, product, name, total, final_capital, quote_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		q.ID,
		ownerID,
		string(q.Product),
		q.Request.Name,
		q.Breakdown.Total.String(),
		q.FinalCapital().String(),
		string(body),
		q.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save quote: %w", err)
	}
	return nil
}

// GetQuote loads a saved quote
func (s *Store) GetQuote(ctx context.Context, id string) (*domain.Quote, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var owner, body string
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT owner_id, quote_json FROM quotes WHERE id = ?`), id).Scan(&owner, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to load quote %s: %w", id, err)
	}

	var q domain.Quote
	if err := json.Unmarshal([]byte(body), &q); err != nil {
		return nil, "", fmt.Errorf("failed to decode quote %s: %w", id, err)
	}
	return &q, owner, nil
}

// ListQuotes returns saved quotes, newest first
func (s *Store) ListQuotes(ctx context.Context, f QuoteFilter) ([]QuoteSummary, error) {
	query := `SELECT id, owner_id, product, name, total, final_capital, created_at FROM quotes WHERE 1=1`
	var args []any
	if f.OwnerID != "" {
		query += ` AND owner_id = ?`
		args = append(args, f.OwnerID)
	}
	if f.Product != "" {
		query += ` AND product = ?`
		args = append(args, string(f.Product))
	}
	query += ` ORDER BY created_at DESC, id`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query quotes: %w", err)
	}
	defer rows.Close()

	var out []QuoteSummary
	for rows.Next() {
		var (
			qs                    QuoteSummary
			product, total, capit string
			created               string
		)
		if err := rows.Scan(&qs.ID, &qs.OwnerID, &product, &qs.Name, &total, &capit, &created); err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		qs.Product = domain.Product(product)
		if qs.Total, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("quote %s: bad total: %w", qs.ID, err)
		}
		if qs.FinalCapital, err = decimal.NewFromString(capit); err != nil {
			return nil, fmt.Errorf("quote %s: bad capital: %w", qs.ID, err)
		}
		if qs.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
			return nil, fmt.Errorf("quote %s: bad timestamp: %w", qs.ID, err)
		}
		out = append(out, qs)
	}
	return out, rows.Err()
}
