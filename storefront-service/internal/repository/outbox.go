package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const EventCheckoutCompleted = "checkout.completed"

type OutboxEvent struct {
	ID          string
	AggregateId string
	EventType   string
	Payload     []byte
}

// CompleteCheckout writes the checkout.completed event for paymentRef. A
// second completion of the same checkout is ignored.
func (r *Repository) CompleteCheckout(ctx context.Context, paymentRef string, payload []byte) error {
	query := r.rebind(`INSERT INTO outbox_events (id, aggregate_id, event_type, payload, created_at)
	          VALUES (?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		uuid.NewString(),
		paymentRef,
		EventCheckoutCompleted,
		string(payload),
		time.Now().UTC())
	if isUniqueViolation(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

func (r *Repository) GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	query := r.rebind(`SELECT id, aggregate_id, event_type, payload FROM outbox_events
	          WHERE processed_at IS NULL
	          ORDER BY created_at
	          LIMIT ?`)

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox events: %w", err)
	}
	defer rows.Close()

	var events []*OutboxEvent
	for rows.Next() {
		var (
			e       OutboxEvent
			payload string
		)
		if err := rows.Scan(&e.ID, &e.AggregateId, &e.EventType, &payload); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		e.Payload = []byte(payload)
		events = append(events, &e)
	}
	return events, rows.Err()
}

var ErrEventNotFound = errors.New("outbox event not found")

func (r *Repository) MarkEventAsProcessed(ctx context.Context, id string) error {
	query := r.rebind(`UPDATE outbox_events SET processed_at = ? WHERE id = ?`)

	res, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("mark outbox event %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark outbox event %s: %w", id, err)
	}
	if n == 0 {
		return ErrEventNotFound
	}
	return nil
}
