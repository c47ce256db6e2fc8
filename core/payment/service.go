// Package payment reconciles local optimistic state with the backend's
// authoritative payment record after an external checkout redirect returns
// control to the app.
package payment

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pkg/errors"

	"github.com/mathstutor/mathstutor-go/core"
)

// Persisted marker for the lesson a checkout was started for; read back on
// the success route since the provider only echoes the session id.
const keyPendingLesson = "pendingLessonPayment"

// PaidCacheKey is the per-(user,lesson) paid-status flag key.
func PaidCacheKey(userID, lessonID int) string {
	return fmt.Sprintf("ticket_paid_%d_%d", userID, lessonID)
}

type (
	Backend interface {
		CreateCheckoutSession(ctx context.Context, lessonID, userID int) (CheckoutSession, error)
		VerifyPaymentStatus(ctx context.Context, sessionID string) (Verification, error)
		SyncPaymentStatus(ctx context.Context, sessionID string) error
	}

	TicketChecker interface {
		HasUserPaidForLesson(ctx context.Context, userID, lessonID int) (bool, error)
	}

	Service struct {
		backend Backend
		tickets TicketChecker
		kv      core.KeyValue
		log     core.Logger
	}
)

func NewService(backend Backend, tickets TicketChecker, kv core.KeyValue, log core.Logger) *Service {
	return &Service{backend: backend, tickets: tickets, kv: kv, log: log}
}

// BeginCheckout creates a provider checkout session and records which lesson
// it is for, so ConfirmReturn can resolve it after the redirect back.
func (svc *Service) BeginCheckout(ctx context.Context, lessonID, userID int) (CheckoutSession, error) {
	sess, err := svc.backend.CreateCheckoutSession(ctx, lessonID, userID)
	if err != nil {
		return CheckoutSession{}, err
	}
	if err := svc.kv.Set(ctx, keyPendingLesson, strconv.Itoa(lessonID)); err != nil {
		svc.log.Error("payment: persisting pending-checkout marker", err)
	}
	return sess, nil
}

// Result is what the success screen renders after redirect-back.
type Result struct {
	Enrolled bool
	LessonID int
	Status   string // provider status when not enrolled
}

// ConfirmReturn reconciles a finished checkout. Once the provider itself has
// confirmed payment, every later step degrades to "assume success": provider
// confirmation is the stronger signal and ticket materialization can lag.
// Intermediate failures are logged, not surfaced; only "not paid" is a hard
// stop.
func (svc *Service) ConfirmReturn(ctx context.Context, sessionID string, userID int) (Result, error) {
	if sessionID == "" {
		return Result{}, errors.New("no session id provided")
	}
	lessonID, err := svc.takePendingLesson(ctx)
	if err != nil {
		return Result{}, err
	}

	verification, err := svc.backend.VerifyPaymentStatus(ctx, sessionID)
	if err != nil {
		return Result{LessonID: lessonID}, err
	}
	if !verification.IsPaid {
		return Result{LessonID: lessonID, Status: verification.Status}, nil
	}

	if !verification.HasBeenProcessed {
		if err := svc.backend.SyncPaymentStatus(ctx, sessionID); err != nil {
			svc.log.Warn("payment: sync after provider confirmation failed", err)
		}
	}

	// Double-check with the ticket system; a missing ticket gets one more
	// sync nudge but does not fail the confirmation.
	paid, err := svc.tickets.HasUserPaidForLesson(ctx, userID, lessonID)
	switch {
	case err != nil:
		svc.log.Error("payment: verifying ticket after payment", err)
	case paid:
		if err := svc.kv.Set(ctx, PaidCacheKey(userID, lessonID), "true"); err != nil {
			svc.log.Error("payment: caching paid status", err)
		}
	default:
		svc.log.Warn("payment: provider confirmed but ticket not found, re-syncing")
		if err := svc.backend.SyncPaymentStatus(ctx, sessionID); err != nil {
			svc.log.Warn("payment: re-sync failed", err)
		}
	}
	return Result{Enrolled: true, LessonID: lessonID}, nil
}

// HasPaid consults the local paid-status cache before falling back to the
// ticket endpoint.
func (svc *Service) HasPaid(ctx context.Context, userID, lessonID int) (bool, error) {
	if v, err := svc.kv.Get(ctx, PaidCacheKey(userID, lessonID)); err == nil && v == "true" {
		return true, nil
	}
	return svc.tickets.HasUserPaidForLesson(ctx, userID, lessonID)
}

func (svc *Service) takePendingLesson(ctx context.Context) (int, error) {
	v, err := svc.kv.Get(ctx, keyPendingLesson)
	if err != nil {
		return 0, errors.Wrap(err, "no pending lesson recorded for this checkout")
	}
	if err := svc.kv.Delete(ctx, keyPendingLesson); err != nil {
		svc.log.Error("payment: clearing pending-checkout marker", err)
	}
	id, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrap(err, "invalid pending lesson marker")
	}
	return id, nil
}
