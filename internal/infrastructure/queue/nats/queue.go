package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/infrastructure/resilience"
)

const defaultQueueGroup = "docintel-workers"

type Subjects struct {
	Jobs    string
	Results string
}

type Options struct {
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	QueueGroup           string
	ResilienceExecutor   *resilience.Executor
	Logger               *slog.Logger
}

// Queue carries document jobs to workers and analysis results back.
type Queue struct {
	conn     *nats.Conn
	subjects Subjects
	group    string
	executor *resilience.Executor
	logger   *slog.Logger
}

func New(url string, subjects Subjects, options Options) (*Queue, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := nats.Connect(
		url,
		nats.Name("docintel"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return newQueue(conn, subjects, options.QueueGroup, options.ResilienceExecutor, logger), nil
}

func newQueue(conn *nats.Conn, subjects Subjects, group string, executor *resilience.Executor, logger *slog.Logger) *Queue {
	if group == "" {
		group = defaultQueueGroup
	}
	return &Queue{conn: conn, subjects: subjects, group: group, executor: executor, logger: logger}
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

func (q *Queue) Healthy() bool {
	return q.conn != nil && q.conn.IsConnected()
}

func (q *Queue) PublishJob(ctx context.Context, job domain.DocumentJob) error {
	return q.publish(ctx, q.subjects.Jobs, "nats.publish_job", job)
}

func (q *Queue) PublishResult(ctx context.Context, result domain.JobResult) error {
	return q.publish(ctx, q.subjects.Results, "nats.publish_result", result)
}

func (q *Queue) publish(ctx context.Context, subject, op string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return domain.WrapError(domain.ErrInvalidInput, op, err)
	}
	call := func(_ context.Context) error {
		if err := q.conn.Publish(subject, data); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}

	if err := q.executor.Execute(ctx, op, call, classifyNATSError); err != nil {
		return wrapTemporary(op, err)
	}
	return nil
}

// SubscribeJobs blocks until ctx is done, then drains the subscription so
// in-flight jobs finish before returning.
func (q *Queue) SubscribeJobs(ctx context.Context, handler func(context.Context, domain.DocumentJob) error) error {
	sub, err := q.conn.QueueSubscribe(q.subjects.Jobs, q.group, func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}
		job, err := DecodeJob(msg.Data)
		if err != nil {
			q.logger.Error("drop malformed job", "subject", msg.Subject, "error", err)
			return
		}

		handlerCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		if err := handler(handlerCtx, job); err != nil {
			q.logger.Error("worker handler error", "job_id", job.JobID, "document_id", job.DocumentID, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}

func DecodeJob(data []byte) (domain.DocumentJob, error) {
	var job domain.DocumentJob
	if err := json.Unmarshal(data, &job); err != nil {
		return domain.DocumentJob{}, domain.WrapError(domain.ErrInvalidInput, "decode job", err)
	}
	if job.JobID == "" || job.StorageKey == "" {
		return domain.DocumentJob{}, domain.WrapError(domain.ErrInvalidInput, "decode job", errors.New("job_id and storage_key are required"))
	}
	return job, nil
}
