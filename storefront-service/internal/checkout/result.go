package checkout

import "github.com/shopspring/decimal"

type SubmissionStatus string

const (
	StatusSucceeded       SubmissionStatus = "succeeded"
	StatusFailed          SubmissionStatus = "failed"
	StatusNotAttempted    SubmissionStatus = "not_attempted"
	StatusAlreadyRecorded SubmissionStatus = "already_recorded"
)

const AggregateKey = "aggregate"

func vendorKey(email string) string {
	return "vendor:" + email
}

// Submission is the outcome of one planned order.
type Submission struct {
	Key         string           `json:"key"`
	VendorEmail string           `json:"vendorEmail,omitempty"`
	Total       decimal.Decimal  `json:"total"`
	Status      SubmissionStatus `json:"status"`
	Error       string           `json:"error,omitempty"`
}

// Result reports every planned submission in submission order, whether or
// not the checkout completed.
type Result struct {
	PaymentRef  string          `json:"paymentRef"`
	Total       decimal.Decimal `json:"total"`
	Submissions []Submission    `json:"submissions"`
}

// Completed is true when every submission is placed.
func (r *Result) Completed() bool {
	for _, s := range r.Submissions {
		if s.Status != StatusSucceeded && s.Status != StatusAlreadyRecorded {
			return false
		}
	}
	return true
}
