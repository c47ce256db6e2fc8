package api

import (
	"context"
	"net/url"

	"github.com/mathstutor/mathstutor-go/core/payment"
)

func (c *Client) CreateCheckoutSession(ctx context.Context, lessonID, userID int) (payment.CheckoutSession, error) {
	body := map[string]int{"lessonId": lessonID, "userId": userID}
	var res payment.CheckoutSession
	if err := c.post(ctx, "/stripe/create-checkout-session", body, &res); err != nil {
		return payment.CheckoutSession{}, err
	}
	return res, nil
}

func (c *Client) GetCheckoutSession(ctx context.Context, sessionID string) (payment.CheckoutSession, error) {
	var res payment.CheckoutSession
	if err := c.get(ctx, "/stripe/checkout-sessions/"+url.PathEscape(sessionID), nil, &res); err != nil {
		return payment.CheckoutSession{}, err
	}
	return res, nil
}

// VerifyPaymentStatus checks the actual status with the payment provider,
// not just the backend's record. A failed status lookup degrades to unpaid
// rather than erroring: callers treat "unknown" and "unpaid" the same way.
func (c *Client) VerifyPaymentStatus(ctx context.Context, sessionID string) (payment.Verification, error) {
	var res struct {
		Status           string `json:"status"`
		HasBeenProcessed bool   `json:"hasBeenProcessed"`
	}
	if err := c.get(ctx, "/stripe/payment-status/"+url.PathEscape(sessionID), nil, &res); err != nil {
		c.log.Warn("api: verifying payment status", err)
		return payment.Verification{Status: "error"}, nil
	}
	return payment.Verification{
		Status:           res.Status,
		IsPaid:           res.Status == payment.StatusPaid,
		HasBeenProcessed: res.HasBeenProcessed,
	}, nil
}

// SyncPaymentStatus forces the backend to reconcile a provider-confirmed
// payment (materializing the ticket if needed).
func (c *Client) SyncPaymentStatus(ctx context.Context, sessionID string) error {
	return c.post(ctx, "/stripe/sync-payment/"+url.PathEscape(sessionID), nil, nil)
}

func (c *Client) PaymentMethods(ctx context.Context, userID int) ([]payment.Method, error) {
	var res struct {
		PaymentMethods []payment.Method `json:"paymentMethods"`
	}
	if err := c.get(ctx, "/stripe/payment-methods/"+itoa(userID), nil, &res); err != nil {
		return nil, err
	}
	return res.PaymentMethods, nil
}

// CreatePaymentIntent is the alternative to checkout sessions for custom
// payment UIs.
func (c *Client) CreatePaymentIntent(ctx context.Context, lessonID, userID int) (payment.Intent, error) {
	body := map[string]int{"lessonId": lessonID, "userId": userID}
	var res payment.Intent
	if err := c.post(ctx, "/stripe/create-payment-intent", body, &res); err != nil {
		return payment.Intent{}, err
	}
	return res, nil
}
