package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"rentloop-backend/internal/logger"
)

// Notice is one best-effort outbound message tied to a transition.
type Notice struct {
	ID        string
	ToEmail   string
	ToName    string
	Subject   string
	Body      string
	Retries   int
	CreatedAt time.Time
}

// NoticeDispatcher accepts notices for asynchronous delivery.
type NoticeDispatcher interface {
	Enqueue(notice Notice) error
}

// noticeDispatcher delivers notices with bounded retries. Exhausted notices
// go to an in-memory dead letter and are reported through the error log, the
// operational alerting channel; the transition they belonged to is never
// rolled back.
type noticeDispatcher struct {
	emailSvc   EmailService
	jobs       chan Notice
	maxRetries int
	workers    int

	mu         sync.Mutex
	deadLetter []Notice
	stopped    bool

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func NewNoticeDispatcher(emailSvc EmailService, workers, queueSize, maxRetries int) *noticeDispatcher {
	return &noticeDispatcher{
		emailSvc:   emailSvc,
		jobs:       make(chan Notice, queueSize),
		maxRetries: maxRetries,
		workers:    workers,
	}
}

// Start launches the delivery workers.
func (d *noticeDispatcher) Start(ctx context.Context) {
	ctx, d.cancel = context.WithCancel(ctx)
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx, i)
	}
}

// Stop cancels the workers and waits for in-flight deliveries. Retries
// scheduled but not yet fired land in the dead letter instead of a queue
// nobody drains.
func (d *noticeDispatcher) Stop() {
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
	if d.cancel != nil {
		d.cancel()
	}
	d.wg.Wait()
}

func (d *noticeDispatcher) isStopped() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopped
}

// Enqueue hands a notice to the delivery queue. A full queue dead-letters
// the notice immediately rather than blocking the command path.
func (d *noticeDispatcher) Enqueue(notice Notice) error {
	if notice.ID == "" {
		notice.ID = uuid.NewString()
	}
	if notice.CreatedAt.IsZero() {
		notice.CreatedAt = time.Now()
	}

	if d.isStopped() {
		d.toDeadLetter(notice, fmt.Errorf("dispatcher is stopped"))
		return fmt.Errorf("dispatcher is stopped")
	}

	select {
	case d.jobs <- notice:
		return nil
	default:
		d.toDeadLetter(notice, fmt.Errorf("notice queue is full"))
		return fmt.Errorf("notice queue is full")
	}
}

// DeadLetters returns the notices that exhausted their retries.
func (d *noticeDispatcher) DeadLetters() []Notice {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Notice, len(d.deadLetter))
	copy(out, d.deadLetter)
	return out
}

func (d *noticeDispatcher) worker(ctx context.Context, id int) {
	defer d.wg.Done()
	logger.Debug("Notice worker started", "worker", id)

	for {
		select {
		case <-ctx.Done():
			logger.Debug("Notice worker stopping", "worker", id)
			return
		case notice := <-d.jobs:
			d.process(ctx, notice)
		}
	}
}

func (d *noticeDispatcher) process(ctx context.Context, notice Notice) {
	err := d.emailSvc.SendNotice(ctx, notice.ToEmail, notice.ToName, notice.Subject, notice.Body)
	if err == nil {
		logger.Debug("Notice delivered", "notice_id", notice.ID, "to", notice.ToEmail)
		return
	}

	if notice.Retries < d.maxRetries {
		notice.Retries++
		backoff := time.Duration(notice.Retries*notice.Retries) * time.Second
		logger.Warn("Notice delivery failed, retrying",
			"notice_id", notice.ID, "attempt", notice.Retries, "max", d.maxRetries, "backoff", backoff, "error", err)
		time.AfterFunc(backoff, func() {
			if d.isStopped() {
				d.toDeadLetter(notice, fmt.Errorf("dispatcher stopped before retry"))
				return
			}
			select {
			case d.jobs <- notice:
			default:
				d.toDeadLetter(notice, fmt.Errorf("requeue failed: queue full"))
			}
		})
		return
	}

	d.toDeadLetter(notice, err)
}

func (d *noticeDispatcher) toDeadLetter(notice Notice, cause error) {
	d.mu.Lock()
	d.deadLetter = append(d.deadLetter, notice)
	d.mu.Unlock()
	logger.Error("Notice dead-lettered after exhausting retries",
		"notice_id", notice.ID, "to", notice.ToEmail, "subject", notice.Subject, "error", cause)
}
