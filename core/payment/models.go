package payment

// Provider-side payment status values surfaced to the client.
const (
	StatusPaid   = "paid"
	StatusUnpaid = "unpaid"
)

// CheckoutSession is the ephemeral provider session; the client only tracks
// it long enough to redirect out and verify status after redirect-back.
type CheckoutSession struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
	Status    string `json:"status,omitempty"`
}

// Verification is the reconciled payment status for a checkout session.
type Verification struct {
	Status           string
	IsPaid           bool
	HasBeenProcessed bool
}

type Method struct {
	ID       string `json:"id"`
	Brand    string `json:"brand"`
	Last4    string `json:"last4"`
	ExpMonth int    `json:"exp_month"`
	ExpYear  int    `json:"exp_year"`
}

type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"clientSecret"`
}
