package reconcile

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Abinayanafaiq/BotDating/internal/domain/enums"
	"github.com/Abinayanafaiq/BotDating/internal/domain/model"
	entsvc "github.com/Abinayanafaiq/BotDating/internal/services/entitlements"
)

func TestRunVerifiesBatchAndNotifiesActivations(t *testing.T) {
	exp := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	lister := &fakeLister{profiles: []model.Profile{{UserID: 1}, {UserID: 2}, {UserID: 3}}}
	verifier := &fakeVerifier{reports: map[int64]entsvc.VerifyReport{
		1: {UserID: 1, Activated: true, ExpiresAt: &exp},
		2: {UserID: 2},
	}, errs: map[int64]error{3: errors.New("store down")}}
	notifier := &fakeNotifier{}
	observer := &fakeObserver{}

	job := New(lister, verifier, 2, nil)
	job.AttachNotifier(notifier)
	job.AttachObserver(observer)

	summary, err := job.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if lister.limit != 2 {
		t.Fatalf("expected batch size to be passed as limit, got %d", lister.limit)
	}
	if summary.Checked != 2 || summary.Activated != 1 || summary.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(notifier.users) != 1 || notifier.users[0] != 1 {
		t.Fatalf("expected activation notice for user 1, got %v", notifier.users)
	}
	if observer.runs != 1 || observer.lastErr != nil {
		t.Fatalf("expected one successful observed run, got %+v", observer)
	}
}

func TestRunSkipsFailingUsers(t *testing.T) {
	lister := &fakeLister{profiles: []model.Profile{{UserID: 3}, {UserID: 4}}}
	verifier := &fakeVerifier{
		reports: map[int64]entsvc.VerifyReport{4: {UserID: 4}},
		errs:    map[int64]error{3: errors.New("store down")},
	}

	summary, err := New(lister, verifier, 10, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Checked != 2 || summary.Failed != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestRunPagesPastUsersWithAbandonedOrders(t *testing.T) {
	lister := &fakeLister{profiles: []model.Profile{{UserID: 1}, {UserID: 2}, {UserID: 3}, {UserID: 4}}}
	verifier := &fakeVerifier{reports: map[int64]entsvc.VerifyReport{
		1: {UserID: 1, Checks: []entsvc.OrderCheck{{OrderID: "a", Outcome: enums.PaymentOutcomePending}}},
		2: {UserID: 2, Checks: []entsvc.OrderCheck{{OrderID: "b", Outcome: enums.PaymentOutcomePending}}},
		3: {UserID: 3, Checks: []entsvc.OrderCheck{{OrderID: "c", Outcome: enums.PaymentOutcomePending}}},
		4: {UserID: 4, Activated: true},
	}}
	notifier := &fakeNotifier{}
	job := New(lister, verifier, 3, nil)
	job.AttachNotifier(notifier)

	for i := 0; i < 3; i++ {
		if _, err := job.Run(context.Background()); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}

	want := []int64{1, 2, 3, 4, 1, 2, 3}
	if !slices.Equal(verifier.calls, want) {
		t.Fatalf("unexpected verify order: got %v want %v", verifier.calls, want)
	}
	if len(notifier.users) != 1 || notifier.users[0] != 4 {
		t.Fatalf("expected user 4 to be activated, got %v", notifier.users)
	}
}

func TestRunWrapsWhenUsersBeyondCursorSettle(t *testing.T) {
	lister := &fakeLister{profiles: []model.Profile{{UserID: 1}, {UserID: 2}, {UserID: 3}}}
	verifier := &fakeVerifier{}
	job := New(lister, verifier, 2, nil)

	if _, err := job.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	lister.profiles = lister.profiles[:2]

	if _, err := job.Run(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}
	want := []int64{1, 2, 1, 2}
	if !slices.Equal(verifier.calls, want) {
		t.Fatalf("expected an empty page to restart from the first user, got %v", verifier.calls)
	}
}

func TestRunLogsUnknownOrderChecks(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	lister := &fakeLister{profiles: []model.Profile{{UserID: 5}}}
	verifier := &fakeVerifier{reports: map[int64]entsvc.VerifyReport{
		5: {UserID: 5, Checks: []entsvc.OrderCheck{{
			OrderID: "ord-5",
			Outcome: enums.PaymentOutcomeUnknown,
			Err:     entsvc.ErrUnknownPaymentStatus,
		}}},
	}}

	if _, err := New(lister, verifier, 10, zap.New(core)).Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	entries := logs.FilterMessage("reconcile order status unknown").All()
	if len(entries) != 1 {
		t.Fatalf("expected one unknown status log, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["order_id"]; got != "ord-5" {
		t.Fatalf("unexpected order_id field: %v", got)
	}
}

func TestRunReportsListFailure(t *testing.T) {
	observer := &fakeObserver{}
	job := New(&fakeLister{err: errors.New("db down")}, &fakeVerifier{}, 10, nil)
	job.AttachObserver(observer)

	if _, err := job.Run(context.Background()); err == nil {
		t.Fatalf("expected list failure")
	}
	if observer.lastErr == nil {
		t.Fatalf("observer must see the failure")
	}
}

type fakeLister struct {
	profiles []model.Profile
	err      error
	limit    int
}

// ListWithPendingOrders expects profiles sorted by user id.
func (f *fakeLister) ListWithPendingOrders(_ context.Context, afterUserID int64, limit int) ([]model.Profile, error) {
	f.limit = limit
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.Profile, 0, len(f.profiles))
	for _, p := range f.profiles {
		if p.UserID > afterUserID {
			out = append(out, p)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeVerifier struct {
	reports map[int64]entsvc.VerifyReport
	errs    map[int64]error
	calls   []int64
}

func (f *fakeVerifier) Verify(_ context.Context, userID int64) (entsvc.VerifyReport, error) {
	f.calls = append(f.calls, userID)
	if err := f.errs[userID]; err != nil {
		return entsvc.VerifyReport{}, err
	}
	return f.reports[userID], nil
}

type fakeNotifier struct {
	users []int64
}

func (f *fakeNotifier) NotifyActivated(_ context.Context, userID int64, _ *time.Time) error {
	f.users = append(f.users, userID)
	return nil
}

type fakeObserver struct {
	runs    int
	lastErr error
}

func (f *fakeObserver) ObserveReconcile(err error) {
	f.runs++
	f.lastErr = err
}
