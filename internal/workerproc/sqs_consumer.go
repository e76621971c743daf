package workerproc

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/cenkalti/backoff/v4"

	"mailsplit-backend/internal/queue"
	"mailsplit-backend/internal/shared/telemetry"
)

const (
	DefaultVisibilitySeconds = 300
	DefaultConcurrency       = 4
	DefaultShutdownTimeout   = 30 * time.Second
	DefaultReceiveRetryWait  = time.Second
	maxReceiveRetryWait      = 30 * time.Second
)

// SQSConsumer long-polls an SQS queue and hands messages to a Handler with bounded
// concurrency.
type SQSConsumer struct {
	API               queue.SQSAPI
	QueueURL          string
	Handler           *Handler
	Concurrency       int
	VisibilitySeconds int
	ShutdownTimeout   time.Duration
	// WaitSeconds is the long-poll wait; tests set it to 0.
	WaitSeconds int32
	// ReceiveRetryWait is the first pause after a failed receive; later failures back
	// off exponentially up to 30s.
	ReceiveRetryWait time.Duration
}

// Run polls until ctx is done, then waits up to ShutdownTimeout for in-flight jobs.
func (c *SQSConsumer) Run(ctx context.Context) {
	concurrency := c.Concurrency
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	visibility := c.VisibilitySeconds
	if visibility <= 0 {
		visibility = DefaultVisibilitySeconds
	}
	shutdown := c.ShutdownTimeout
	if shutdown <= 0 {
		shutdown = DefaultShutdownTimeout
	}

	retryWait := c.ReceiveRetryWait
	if retryWait <= 0 {
		retryWait = DefaultReceiveRetryWait
	}
	receiveBackoff := backoff.NewExponentialBackOff()
	receiveBackoff.InitialInterval = retryWait
	receiveBackoff.MaxInterval = maxReceiveRetryWait
	receiveBackoff.MaxElapsedTime = 0
	receiveBackoff.Reset()

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	telemetry.Info("worker.started", map[string]any{
		"backend":     "sqs",
		"queue":       c.QueueURL,
		"concurrency": concurrency,
		"visibility":  visibility,
	})

pollLoop:
	for {
		select {
		case <-ctx.Done():
			break pollLoop
		default:
		}

		resp, err := c.API.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(c.QueueURL),
			MaxNumberOfMessages: 10,
			WaitTimeSeconds:     c.WaitSeconds,
			VisibilityTimeout:   int32(visibility),
			AttributeNames:      []sqstypes.QueueAttributeName{sqstypes.QueueAttributeName("ApproximateReceiveCount")},
		})
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
				break pollLoop
			}
			wait := receiveBackoff.NextBackOff()
			telemetry.Warn("worker.receive_failed", map[string]any{"error": err.Error(), "retry_in": wait.String()})
			select {
			case <-ctx.Done():
				break pollLoop
			case <-time.After(wait):
			}
			continue
		}
		receiveBackoff.Reset()

		for _, msg := range resp.Messages {
			select {
			case <-ctx.Done():
				break pollLoop
			case sem <- struct{}{}:
			}
			wg.Add(1)
			go func(m sqstypes.Message) {
				defer wg.Done()
				defer func() { <-sem }()
				c.HandleMessage(ctx, m)
			}(msg)
		}
	}

	telemetry.Info("worker.shutdown", map[string]any{"timeout": shutdown.String()})
	waitDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(waitDone)
	}()
	select {
	case <-waitDone:
	case <-time.After(shutdown):
		telemetry.Warn("worker.shutdown_timeout", map[string]any{"timeout": shutdown.String()})
	}
}

// HandleMessage processes one SQS message and deletes it when the handler acks.
func (c *SQSConsumer) HandleMessage(ctx context.Context, msg sqstypes.Message) {
	fields := baseFields(msg)
	outcome, _ := c.Handler.Handle(ctx, aws.ToString(msg.Body), fields)
	if outcome == Ack {
		c.deleteMessage(ctx, msg)
	}
}

func (c *SQSConsumer) deleteMessage(ctx context.Context, msg sqstypes.Message) bool {
	receipt := aws.ToString(msg.ReceiptHandle)
	if receipt == "" {
		fields := baseFields(msg)
		fields["error"] = "missing receipt handle"
		telemetry.Error("worker.delete_failed", fields)
		return false
	}
	// Deletion must land even when shutdown has begun.
	if _, err := c.API.DeleteMessage(context.WithoutCancel(ctx), &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.QueueURL),
		ReceiptHandle: aws.String(receipt),
	}); err != nil {
		fields := baseFields(msg)
		fields["error"] = err.Error()
		telemetry.Error("worker.delete_failed", fields)
		return false
	}
	return true
}

func baseFields(msg sqstypes.Message) map[string]any {
	return map[string]any{
		"sqs_message_id": aws.ToString(msg.MessageId),
		"receive_count":  receiveCount(msg),
	}
}

func receiveCount(msg sqstypes.Message) int {
	if msg.Attributes == nil {
		return 0
	}
	raw := msg.Attributes["ApproximateReceiveCount"]
	if raw == "" {
		return 0
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return parsed
}
