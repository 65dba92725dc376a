package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/fjod/go_storefront/storefront-service/internal/checkout"
)

// RecordSubmission stores the latest outcome of one submission.
func (r *Repository) RecordSubmission(ctx context.Context, paymentRef, key string, status checkout.SubmissionStatus, at time.Time) error {
	query := r.rebind(`INSERT INTO checkout_submissions (payment_ref, submission_key, status, updated_at)
	          VALUES (?, ?, ?, ?)
	          ON CONFLICT (payment_ref, submission_key)
	          DO UPDATE SET status = excluded.status, updated_at = excluded.updated_at`)

	if _, err := r.db.ExecContext(ctx, query, paymentRef, key, string(status), at.UTC()); err != nil {
		return fmt.Errorf("record submission %s/%s: %w", paymentRef, key, err)
	}
	return nil
}

// SucceededSubmissions returns the keys already placed for paymentRef.
func (r *Repository) SucceededSubmissions(ctx context.Context, paymentRef string) (map[string]bool, error) {
	query := r.rebind(`SELECT submission_key FROM checkout_submissions
	          WHERE payment_ref = ? AND status = ?`)

	rows, err := r.db.QueryContext(ctx, query, paymentRef, string(checkout.StatusSucceeded))
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	done := make(map[string]bool)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		done[key] = true
	}
	return done, rows.Err()
}

// ClaimReference binds paymentRef to a cart fingerprint on first use. A later
// claim with another fingerprint returns checkout.ErrReferenceReused.
func (r *Repository) ClaimReference(ctx context.Context, paymentRef, fingerprint string) error {
	insert := r.rebind(`INSERT INTO payment_claims (payment_ref, fingerprint, claimed_at)
	          VALUES (?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, insert, paymentRef, fingerprint, time.Now().UTC())
	if err == nil {
		return nil
	}
	if !isUniqueViolation(err) {
		return fmt.Errorf("claim payment reference %s: %w", paymentRef, err)
	}

	var existing string
	query := r.rebind(`SELECT fingerprint FROM payment_claims WHERE payment_ref = ?`)
	if err := r.db.QueryRowContext(ctx, query, paymentRef).Scan(&existing); err != nil {
		return fmt.Errorf("read payment claim %s: %w", paymentRef, err)
	}
	if existing != fingerprint {
		return checkout.ErrReferenceReused
	}
	return nil
}
