package workerproc

import (
	"context"
	"errors"
	"strings"

	"mailsplit-backend/internal/emails"
	"mailsplit-backend/internal/queue"
	"mailsplit-backend/internal/shared/metrics"
	"mailsplit-backend/internal/shared/telemetry"
	"mailsplit-backend/internal/shared/util"
)

// MessageMeta captures details useful for logging and diagnostics.
type MessageMeta struct {
	BodyLen int
	BodySHA string
}

// ComputeMeta returns the body length and SHA-256 hash.
func ComputeMeta(body string) MessageMeta {
	if body == "" {
		return MessageMeta{BodyLen: 0, BodySHA: ""}
	}
	return MessageMeta{BodyLen: len(body), BodySHA: util.SHA256Hex([]byte(body))}
}

// ErrEmptyBody indicates an empty queue payload.
type ErrEmptyBody struct {
	Meta MessageMeta
}

func (e ErrEmptyBody) Error() string { return "empty message body" }

// ErrDecode indicates a JSON decode failure.
type ErrDecode struct {
	Meta MessageMeta
	Err  error
}

func (e ErrDecode) Error() string {
	if e.Err == nil {
		return "decode message"
	}
	return "decode message: " + e.Err.Error()
}

// ErrMissingEmailID indicates a message without a usable email or company id.
type ErrMissingEmailID struct {
	Meta      MessageMeta
	RequestID string
}

func (e ErrMissingEmailID) Error() string { return "missing email id" }

// ErrProcess indicates processing failed after successful parsing.
type ErrProcess struct {
	EmailID   int64
	RequestID string
	Err       error
}

func (e ErrProcess) Error() string {
	if e.Err == nil {
		return "process email"
	}
	return "process email: " + e.Err.Error()
}

func (e ErrProcess) Unwrap() error { return e.Err }

// ParseMessage validates and decodes the queue payload.
func ParseMessage(body string) (queue.Message, MessageMeta, error) {
	meta := ComputeMeta(body)
	if strings.TrimSpace(body) == "" {
		return queue.Message{}, meta, ErrEmptyBody{Meta: meta}
	}

	msg, err := queue.DecodeMessage([]byte(body))
	if err != nil {
		return queue.Message{}, meta, ErrDecode{Meta: meta, Err: err}
	}
	if msg.EmailID <= 0 || msg.CompanyID <= 0 {
		return msg, meta, ErrMissingEmailID{Meta: meta, RequestID: msg.RequestID}
	}
	return msg, meta, nil
}

// Processor runs the assignment pass for one email.
type Processor interface {
	AssignEmail(ctx context.Context, companyID, emailID int64) (emails.Email, error)
}

// Dedup remembers emails that were already processed.
type Dedup interface {
	Seen(ctx context.Context, emailID int64) (bool, error)
	Mark(ctx context.Context, emailID int64) error
}

// Outcome tells the transport what to do with a message.
type Outcome int

const (
	// Ack removes the message from the queue.
	Ack Outcome = iota
	// Retry leaves the message for redelivery.
	Retry
)

// Handler turns queue payloads into assignment runs.
type Handler struct {
	Processor Processor
	// Dedup is optional; without it every delivery is processed.
	Dedup Dedup
}

// Handle processes one payload. Unparseable payloads and unknown emails are acked so
// they are not redelivered forever; processing failures are retried.
func (h *Handler) Handle(ctx context.Context, body string, fields map[string]any) (Outcome, error) {
	if fields == nil {
		fields = map[string]any{}
	}
	metrics.IncWorkerJob("received")

	msg, meta, err := ParseMessage(body)
	if err != nil {
		fields["body_len"] = meta.BodyLen
		if meta.BodySHA != "" {
			fields["body_sha256"] = meta.BodySHA
		}
		fields["error"] = err.Error()
		var missing ErrMissingEmailID
		if errors.As(err, &missing) && missing.RequestID != "" {
			fields["request_id"] = missing.RequestID
		}
		telemetry.Error("worker.assign.bad_payload", fields)
		metrics.IncWorkerJob("unrecoverable")
		return Ack, err
	}

	fields["email_id"] = msg.EmailID
	fields["company_id"] = msg.CompanyID
	if msg.RequestID != "" {
		fields["request_id"] = msg.RequestID
	}

	if h.Dedup != nil {
		seen, err := h.Dedup.Seen(ctx, msg.EmailID)
		if err != nil {
			fields["error"] = err.Error()
			telemetry.Warn("worker.assign.dedup_unavailable", fields)
			delete(fields, "error")
		} else if seen {
			telemetry.Info("worker.assign.duplicate", fields)
			metrics.IncWorkerJob("duplicate")
			return Ack, nil
		}
	}

	telemetry.Info("worker.assign.received", fields)
	if _, err := h.Processor.AssignEmail(ctx, msg.CompanyID, msg.EmailID); err != nil {
		fields["error"] = err.Error()
		if errors.Is(err, emails.ErrNotFound) {
			telemetry.Error("worker.assign.unknown_email", fields)
			metrics.IncWorkerJob("unrecoverable")
			return Ack, err
		}
		telemetry.Error("worker.assign.failed", fields)
		metrics.IncWorkerJob("failed")
		return Retry, ErrProcess{EmailID: msg.EmailID, RequestID: msg.RequestID, Err: err}
	}

	if h.Dedup != nil {
		if err := h.Dedup.Mark(ctx, msg.EmailID); err != nil {
			fields["error"] = err.Error()
			telemetry.Warn("worker.assign.dedup_mark_failed", fields)
			delete(fields, "error")
		}
	}
	telemetry.Info("worker.assign.completed", fields)
	metrics.IncWorkerJob("completed")
	return Ack, nil
}
