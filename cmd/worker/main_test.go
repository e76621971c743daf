package main

import (
	"context"
	"errors"
	"testing"

	"mailsplit-backend/internal/bootstrap"
	"mailsplit-backend/internal/emails"
	"mailsplit-backend/internal/queue"
	"mailsplit-backend/internal/workerproc"
)

type fakeProcessor struct {
	err   error
	calls int
}

func (f *fakeProcessor) AssignEmail(ctx context.Context, companyID, emailID int64) (emails.Email, error) {
	f.calls++
	return emails.Email{ID: emailID, CompanyID: companyID}, f.err
}

func encoded(t *testing.T, emailID int64) []byte {
	t.Helper()
	body, err := queue.EncodeMessage(queue.NewMessage(emailID, 1, "req-1"))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return body
}

func TestNATSHandlerSuccess(t *testing.T) {
	proc := &fakeProcessor{}
	fn := natsHandler(&workerproc.Handler{Processor: proc})
	if err := fn(context.Background(), encoded(t, 7)); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if proc.calls != 1 {
		t.Fatalf("expected one call, got %d", proc.calls)
	}
}

func TestNATSHandlerSwallowsBadPayload(t *testing.T) {
	proc := &fakeProcessor{}
	fn := natsHandler(&workerproc.Handler{Processor: proc})
	if err := fn(context.Background(), []byte("{not json")); err != nil {
		t.Fatalf("bad payloads are acked, got %v", err)
	}
	if proc.calls != 0 {
		t.Fatalf("processor must not run for bad payloads")
	}
}

func TestNATSHandlerReturnsProcessingError(t *testing.T) {
	proc := &fakeProcessor{err: errors.New("db down")}
	fn := natsHandler(&workerproc.Handler{Processor: proc})
	err := fn(context.Background(), encoded(t, 7))
	var procErr workerproc.ErrProcess
	if !errors.As(err, &procErr) || procErr.EmailID != 7 {
		t.Fatalf("expected ErrProcess, got %v", err)
	}
}

func TestNewHandlerLeavesDedupNilWithoutRedis(t *testing.T) {
	h := newHandler(&bootstrap.App{})
	if h.Dedup != nil {
		t.Fatalf("expected nil dedup interface")
	}
}

func TestEnvInt(t *testing.T) {
	t.Setenv("MS_TEST_INT", "12")
	if got := envInt("MS_TEST_INT", 3); got != 12 {
		t.Fatalf("expected 12, got %d", got)
	}
	t.Setenv("MS_TEST_INT", "-1")
	if got := envInt("MS_TEST_INT", 3); got != 3 {
		t.Fatalf("expected default, got %d", got)
	}
}
