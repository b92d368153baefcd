package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/assurlink/courtage/internal/domain"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// LeadFilter narrows ListLeads. Zero fields match everything.
type LeadFilter struct {
	BrokerID string
	Status   domain.LeadStatus
}

// CreateLead validates and inserts a new lead in status nouveau
func (s *Store) CreateLead(ctx context.Context, l *domain.Lead, now time.Time) error {
	switch {
	case l.BrokerID == "":
		return domain.NewValidationError("broker_id", "broker required")
	case strings.TrimSpace(l.ClientName) == "":
		return domain.NewValidationError("client_name", "client name required")
	case !l.Product.Valid():
		return domain.NewValidationError("product", "unknown product %q", l.Product)
	}
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.Status == "" {
		l.Status = domain.LeadNew
	}
	if !l.Status.Valid() {
		return domain.NewValidationError("status", "unknown status %q", l.Status)
	}
	l.ClientName = strings.TrimSpace(l.ClientName)
	l.CreatedAt = now.UTC().Truncate(time.Second)
	l.UpdatedAt = l.CreatedAt

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO leads (id, broker_id, client_name, phone, email, product, status, churn_reason,
		                   quote_id, renewal_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		l.ID,
		l.BrokerID,
		l.ClientName,
		l.Phone,
		l.Email,
		string(l.Product),
		string(l.Status),
		string(l.ChurnReason),
		nullString(l.QuoteID),
		formatDate(l.RenewalDate),
		l.CreatedAt.Format(time.RFC3339),
		l.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}
	return nil
}

const leadColumns = `id, broker_id, client_name, phone, email, product, status, churn_reason,
	quote_id, renewal_date, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(r rowScanner) (domain.Lead, error) {
	var (
		l                       domain.Lead
		product, status, reason string
		quoteID, renewal        sql.NullString
		created, updated        string
	)
	if err := r.Scan(&l.ID, &l.BrokerID, &l.ClientName, &l.Phone, &l.Email, &product, &status, &reason,
		&quoteID, &renewal, &created, &updated); err != nil {
		return l, err
	}
	l.Product = domain.Product(product)
	l.Status = domain.LeadStatus(status)
	l.ChurnReason = domain.ChurnReason(reason)
	l.QuoteID = quoteID.String
	if renewal.Valid && renewal.String != "" {
		d, err := time.Parse(dateLayout, renewal.String)
		if err != nil {
			return l, fmt.Errorf("lead %s: bad renewal date: %w", l.ID, err)
		}
		l.RenewalDate = &d
	}
	var err error
	if l.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
		return l, fmt.Errorf("lead %s: bad timestamp: %w", l.ID, err)
	}
	if l.UpdatedAt, err = time.Parse(time.RFC3339, updated); err != nil {
		return l, fmt.Errorf("lead %s: bad timestamp: %w", l.ID, err)
	}
	return l, nil
}

// GetLead loads one lead
func (s *Store) GetLead(ctx context.Context, id string) (*domain.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getLead(ctx, s.db, id)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) getLead(ctx context.Context, db queryRower, id string) (*domain.Lead, error) {
	l, err := scanLead(db.QueryRowContext(ctx, s.rebind(`SELECT `+leadColumns+` FROM leads WHERE id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load lead %s: %w", id, err)
	}
	return &l, nil
}

// ListLeads returns leads, most recently updated first
func (s *Store) ListLeads(ctx context.Context, f LeadFilter) ([]domain.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE 1=1`
	var args []any
	if f.BrokerID != "" {
		query += ` AND broker_id = ?`
		args = append(args, f.BrokerID)
	}
	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(f.Status))
	}
	query += ` ORDER BY updated_at DESC, id`
	return s.queryLeads(ctx, query, args...)
}

func (s *Store) queryLeads(ctx context.Context, query string, args ...any) ([]domain.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leads: %w", err)
	}
	defer rows.Close()

	var out []domain.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// UpdateLeadStatus moves a lead through the pipeline. Moving to perdu
// requires a churn reason; leaving perdu clears it. The change is recorded
// in the lead's event history.
func (s *Store) UpdateLeadStatus(ctx context.Context, id string, next domain.LeadStatus, reason domain.ChurnReason, now time.Time) (*domain.Lead, error) {
	if !next.Valid() {
		return nil, domain.NewValidationError("status", "unknown status %q", next)
	}
	if next == domain.LeadLost {
		if !reason.Valid() {
			return nil, domain.NewValidationError("churn_reason", "a known churn reason is required to mark a lead lost")
		}
	} else {
		reason = ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	cur, err := s.getLead(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if !cur.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, cur.Status, next)
	}

	stamp := now.UTC().Truncate(time.Second)
	res, err := tx.ExecContext(ctx, s.rebind(`
		UPDATE leads SET status = ?, churn_reason = ?, updated_at = ?
		WHERE id = ? AND status = ?`),
		string(next), string(reason), stamp.Format(time.RFC3339), id, string(cur.Status))
	if err != nil {
		return nil, fmt.Errorf("failed to update lead %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("%w: lead %s changed concurrently", ErrInvalidTransition, id)
	}

	if _, err := tx.ExecContext(ctx, s.rebind(`
		INSERT INTO lead_events (id, lead_id, from_status, to_status, churn_reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`),
		uuid.NewString(), id, string(cur.Status), string(next), string(reason), stamp.Format(time.RFC3339)); err != nil {
		return nil, fmt.Errorf("failed to record lead event: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit lead update: %w", err)
	}

	cur.Status = next
	cur.ChurnReason = reason
	cur.UpdatedAt = stamp
	return cur, nil
}

// LeadEvent is one recorded status change
type LeadEvent struct {
	From        domain.LeadStatus  `json:"from"`
	To          domain.LeadStatus  `json:"to"`
	ChurnReason domain.ChurnReason `json:"churnReason,omitempty"`
	At          time.Time          `json:"at"`
}

// LeadHistory returns a lead's status changes in order
func (s *Store) LeadHistory(ctx context.Context, id string) ([]LeadEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT from_status, to_status, churn_reason, created_at
		FROM lead_events WHERE lead_id = ? ORDER BY created_at, id`), id)
	if err != nil {
		return nil, fmt.Errorf("failed to query lead events: %w", err)
	}
	defer rows.Close()

	var out []LeadEvent
	for rows.Next() {
		var from, to, reason, at string
		if err := rows.Scan(&from, &to, &reason, &at); err != nil {
			return nil, err
		}
		ts, err := time.Parse(time.RFC3339, at)
		if err != nil {
			return nil, err
		}
		out = append(out, LeadEvent{From: domain.LeadStatus(from), To: domain.LeadStatus(to), ChurnReason: domain.ChurnReason(reason), At: ts})
	}
	return out, rows.Err()
}

// RenewalsDue returns leads whose renewal date falls within the next
// `within` days of now, inclusive, soonest first. Lost leads are skipped.
func (s *Store) RenewalsDue(ctx context.Context, brokerID string, now time.Time, within int) ([]domain.Lead, error) {
	if within < 0 {
		return nil, domain.NewValidationError("within", "must not be negative")
	}
	from := now.UTC().Format(dateLayout)
	to := now.UTC().AddDate(0, 0, within).Format(dateLayout)

	query := `SELECT ` + leadColumns + ` FROM leads
		WHERE renewal_date IS NOT NULL AND renewal_date >= ? AND renewal_date <= ? AND status <> ?`
	args := []any{from, to, string(domain.LeadLost)}
	if brokerID != "" {
		query += ` AND broker_id = ?`
		args = append(args, brokerID)
	}
	query += ` ORDER BY renewal_date, id`
	return s.queryLeads(ctx, query, args...)
}

// ChurnReport counts lost leads by reason, most frequent first
func (s *Store) ChurnReport(ctx context.Context, brokerID string) ([]domain.ChurnCount, error) {
	query := `SELECT churn_reason, COUNT(*) FROM leads WHERE status = ?`
	args := []any{string(domain.LeadLost)}
	if brokerID != "" {
		query += ` AND broker_id = ?`
		args = append(args, brokerID)
	}
	query += ` GROUP BY churn_reason ORDER BY COUNT(*) DESC, churn_reason`

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query churn report: %w", err)
	}
	defer rows.Close()

	var out []domain.ChurnCount
	for rows.Next() {
		var c domain.ChurnCount
		var reason string
		if err := rows.Scan(&reason, &c.Count); err != nil {
			return nil, err
		}
		c.Reason = domain.ChurnReason(reason)
		out = append(out, c)
	}
	return out, rows.Err()
}

func formatDate(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(dateLayout), Valid: true}
}
