package payments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Abinayanafaiq/BotDating/internal/domain/enums"
	"github.com/Abinayanafaiq/BotDating/internal/domain/model"
	entsvc "github.com/Abinayanafaiq/BotDating/internal/services/entitlements"
)

func TestHandleCallbackUsesIndexAndNotifies(t *testing.T) {
	exp := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	verifier := &fakeVerifier{report: entsvc.VerifyReport{
		UserID:    42,
		Activated: true,
		ExpiresAt: &exp,
		Checks:    []entsvc.OrderCheck{{OrderID: "ord-1", Outcome: enums.PaymentOutcomePaid}},
	}}
	notifier := &fakeNotifier{}
	svc := NewService(Dependencies{
		Index:    fakeIndex{"ord-1": 42},
		Profiles: fakeLookup{},
		Verifier: verifier,
		Notifier: notifier,
	})

	result, err := svc.HandleCallback(context.Background(), CallbackInput{OrderID: "ord-1", Status: "completed"})
	if err != nil {
		t.Fatalf("handle callback: %v", err)
	}
	if result.UserID != 42 || !result.Activated || !result.Settled {
		t.Fatalf("unexpected result: %+v", result)
	}
	if verifier.userID != 42 {
		t.Fatalf("expected verify for owner 42, got %d", verifier.userID)
	}
	if notifier.userID != 42 {
		t.Fatalf("expected activation notice for 42, got %d", notifier.userID)
	}
}

func TestHandleCallbackFallsBackToProfileLookup(t *testing.T) {
	verifier := &fakeVerifier{report: entsvc.VerifyReport{
		UserID: 7,
		Checks: []entsvc.OrderCheck{{OrderID: "ord-2", Outcome: enums.PaymentOutcomePending, Status: "pending"}},
	}}
	notifier := &fakeNotifier{}
	svc := NewService(Dependencies{
		Index:    fakeIndex{},
		Profiles: fakeLookup{"ord-2": 7},
		Verifier: verifier,
		Notifier: notifier,
	})

	// A callback claiming success is not trusted; the gateway said pending.
	result, err := svc.HandleCallback(context.Background(), CallbackInput{OrderID: "ord-2", Status: "paid"})
	if err != nil {
		t.Fatalf("handle callback: %v", err)
	}
	if result.UserID != 7 || result.Activated || result.Settled {
		t.Fatalf("unexpected result: %+v", result)
	}
	if notifier.userID != 0 {
		t.Fatalf("no notice expected without activation")
	}
}

func TestHandleCallbackUnknownOrder(t *testing.T) {
	svc := NewService(Dependencies{Index: fakeIndex{}, Profiles: fakeLookup{}, Verifier: &fakeVerifier{}})

	if _, err := svc.HandleCallback(context.Background(), CallbackInput{OrderID: "nope"}); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
	if _, err := svc.HandleCallback(context.Background(), CallbackInput{OrderID: " "}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestHandleCallbackDuplicateIsSettled(t *testing.T) {
	svc := NewService(Dependencies{
		Index:    fakeIndex{"ord-3": 9},
		Verifier: &fakeVerifier{report: entsvc.VerifyReport{UserID: 9, NothingPending: true}},
	})

	result, err := svc.HandleCallback(context.Background(), CallbackInput{OrderID: "ord-3"})
	if err != nil {
		t.Fatalf("handle callback: %v", err)
	}
	if !result.Settled || result.Activated {
		t.Fatalf("duplicate callback should be settled without activation: %+v", result)
	}
}

type fakeIndex map[string]int64

func (f fakeIndex) Owner(_ context.Context, orderID string) (int64, error) {
	if id, ok := f[orderID]; ok {
		return id, nil
	}
	return 0, errors.New("not indexed")
}

type fakeLookup map[string]int64

func (f fakeLookup) FindByPendingOrder(_ context.Context, orderID string) (model.Profile, error) {
	if id, ok := f[orderID]; ok {
		return model.Profile{UserID: id}, nil
	}
	return model.Profile{}, model.ErrProfileNotFound
}

type fakeVerifier struct {
	report entsvc.VerifyReport
	err    error
	userID int64
}

func (f *fakeVerifier) Verify(_ context.Context, userID int64) (entsvc.VerifyReport, error) {
	f.userID = userID
	return f.report, f.err
}

type fakeNotifier struct {
	userID int64
}

func (f *fakeNotifier) NotifyActivated(_ context.Context, userID int64, _ *time.Time) error {
	f.userID = userID
	return nil
}
