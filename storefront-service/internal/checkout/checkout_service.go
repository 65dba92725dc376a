// Package checkout turns a paid cart into one aggregate order plus one order
// per vendor.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fjod/go_storefront/storefront-service/domain"
	"github.com/fjod/go_storefront/storefront-service/internal/cart"
	"github.com/fjod/go_storefront/storefront-service/internal/payment"
	"github.com/fjod/go_storefront/storefront-service/internal/remote"
)

// OrderPlacer is the part of remote.Store checkout needs.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, o domain.OrderRecord) (*remote.Response, error)
}

// Cart is the cart being checked out.
type Cart interface {
	Items() []domain.LineItem
	Dispatch(ctx context.Context, a cart.Action) error
}

// Ledger remembers submission outcomes by payment reference so a retried
// checkout does not place the same order twice. ClaimReference binds a
// reference to a cart fingerprint and returns ErrReferenceReused when the
// reference is already bound to another one.
type Ledger interface {
	ClaimReference(ctx context.Context, paymentRef, fingerprint string) error
	SucceededSubmissions(ctx context.Context, paymentRef string) (map[string]bool, error)
	RecordSubmission(ctx context.Context, paymentRef, key string, status SubmissionStatus, at time.Time) error
	CompleteCheckout(ctx context.Context, paymentRef string, payload []byte) error
}

type Request struct {
	Customer   domain.Customer
	PaymentRef string
}

type Service struct {
	orders   OrderPlacer
	gate     payment.Gate
	ledger   Ledger
	currency string
	log      *slog.Logger
	now      func() time.Time
	claims   *claimSet
}

// NewService builds a checkout service. ledger may be nil.
func NewService(orders OrderPlacer, gate payment.Gate, ledger Ledger, currency string, log *slog.Logger) *Service {
	return &Service{
		orders:   orders,
		gate:     gate,
		ledger:   ledger,
		currency: currency,
		log:      log,
		now:      time.Now,
		claims:   newClaimSet(),
	}
}

type plannedOrder struct {
	key    string
	record domain.OrderRecord
}

// Checkout confirms payment, then submits the aggregate order followed by
// each vendor order, one at a time. The first failure stops the run and the
// cart is kept. Once every order is placed the ordered items leave the cart.
// A payment reference pays for one cart only.
func (s *Service) Checkout(ctx context.Context, c Cart, req Request) (*Result, error) {
	items := c.Items()
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	total := cart.Subtotal(items)

	ref, err := s.gate.Confirm(ctx, payment.Request{
		Email:     req.Customer.Email,
		Amount:    total,
		Currency:  s.currency,
		Reference: req.PaymentRef,
	})
	if errors.Is(err, payment.ErrCancelled) {
		return nil, fmt.Errorf("%w: %w", ErrPaymentCancelled, err)
	}
	if err != nil {
		return nil, fmt.Errorf("confirm payment: %w", err)
	}

	if err := s.claim(ctx, ref, Fingerprint(items)); err != nil {
		return nil, err
	}

	plan := s.plan(items, req.Customer, ref)
	result := &Result{PaymentRef: ref, Total: total}
	for _, p := range plan {
		result.Submissions = append(result.Submissions, Submission{
			Key:         p.key,
			VendorEmail: vendorOf(p),
			Total:       p.record.Total,
			Status:      StatusNotAttempted,
		})
	}

	done := s.recorded(ctx, ref)

	for i, p := range plan {
		if done[p.key] {
			result.Submissions[i].Status = StatusAlreadyRecorded
			s.log.InfoContext(ctx, "order already placed, skipping", "payment_ref", ref, "submission", p.key)
			continue
		}

		if err := s.submit(ctx, p.record); err != nil {
			result.Submissions[i].Status = StatusFailed
			result.Submissions[i].Error = err.Error()
			s.record(ctx, ref, p.key, StatusFailed)
			s.log.ErrorContext(ctx, "order submission failed", "payment_ref", ref, "submission", p.key, "error", err)
			return result, &SubmissionError{Key: p.key, Err: err}
		}

		result.Submissions[i].Status = StatusSucceeded
		s.record(ctx, ref, p.key, StatusSucceeded)
	}

	s.complete(ctx, req.Customer, result, plan)

	if err := clearCheckedOut(ctx, c, items); err != nil {
		s.log.WarnContext(ctx, "failed to clear cart after checkout", "payment_ref", ref, "error", err)
	}

	s.log.InfoContext(ctx, "checkout completed", "payment_ref", ref, "orders", len(plan), "total", total.String())
	return result, nil
}

// plan builds the aggregate order and then one order per vendor group. All
// orders share the payment reference and the timestamp.
func (s *Service) plan(items []domain.LineItem, customer domain.Customer, ref string) []plannedOrder {
	at := s.now().UTC()
	groups := GroupByVendor(items)

	plan := make([]plannedOrder, 0, len(groups)+1)
	plan = append(plan, plannedOrder{
		key: AggregateKey,
		record: domain.OrderRecord{
			Customer:     customer,
			Items:        items,
			Total:        cart.Subtotal(items),
			PaymentRef:   ref,
			Date:         at,
			VendorEmails: VendorEmails(groups),
		},
	})

	for _, g := range groups {
		plan = append(plan, plannedOrder{
			key: vendorKey(g.VendorEmail),
			record: domain.OrderRecord{
				Customer:     customer,
				Items:        g.Items,
				Total:        g.Total(),
				PaymentRef:   ref,
				Date:         at,
				VendorEmails: []string{g.VendorEmail},
			},
		})
	}
	return plan
}

func (s *Service) submit(ctx context.Context, o domain.OrderRecord) error {
	resp, err := s.orders.PlaceOrder(ctx, o)
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%w: %s", ErrOrderRejected, resp.Message)
	}
	return nil
}

func (s *Service) claim(ctx context.Context, ref, fingerprint string) error {
	if s.ledger == nil {
		return s.claims.claim(ref, fingerprint)
	}
	err := s.ledger.ClaimReference(ctx, ref, fingerprint)
	if err != nil && !errors.Is(err, ErrReferenceReused) {
		return fmt.Errorf("claim payment reference: %w", err)
	}
	return err
}

func (s *Service) recorded(ctx context.Context, ref string) map[string]bool {
	if s.ledger == nil {
		return nil
	}
	done, err := s.ledger.SucceededSubmissions(ctx, ref)
	if err != nil {
		s.log.WarnContext(ctx, "failed to read submission ledger", "payment_ref", ref, "error", err)
		return nil
	}
	return done
}

func (s *Service) record(ctx context.Context, ref, key string, status SubmissionStatus) {
	if s.ledger == nil {
		return
	}
	if err := s.ledger.RecordSubmission(ctx, ref, key, status, s.now().UTC()); err != nil {
		s.log.WarnContext(ctx, "failed to record submission", "payment_ref", ref, "submission", key, "error", err)
	}
}

func (s *Service) complete(ctx context.Context, customer domain.Customer, result *Result, plan []plannedOrder) {
	if s.ledger == nil {
		s.claims.complete(result.PaymentRef)
		return
	}
	payload := map[string]interface{}{
		"payment_ref":    result.PaymentRef,
		"customer_email": customer.Email,
		"total_amount":   result.Total,
		"currency":       s.currency,
		"vendor_emails":  plan[0].record.VendorEmails,
		"items":          plan[0].record.Items,
		"completed_at":   s.now().UTC(),
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to marshal checkout payload", "payment_ref", result.PaymentRef, "error", err)
		return
	}
	if err := s.ledger.CompleteCheckout(ctx, result.PaymentRef, payloadJSON); err != nil {
		s.log.ErrorContext(ctx, "failed to write checkout event", "payment_ref", result.PaymentRef, "error", err)
	}
}

func vendorOf(p plannedOrder) string {
	if p.key == AggregateKey {
		return ""
	}
	return p.record.VendorEmails[0]
}
