package outbox

import (
	"internship-portal/mail"
	"internship-portal/models"
	"log/slog"
	"sync"
	"time"
)

// Repository is the outbox storage used by the worker.
type Repository interface {
	EnqueueEmail(e *models.OutboundEmail) error
	GetPendingEmails(limit int) ([]models.OutboundEmail, error)
	MarkEmailSending(id string) (bool, error)
	MarkEmailSent(id string) error
	MarkEmailFailed(id, errMsg string) error
	ResetStuckEmails(olderThan time.Time) (int64, error)
}

// Worker delivers queued emails in the background.
// See:
// - executor.go: batch delivery
// - retry.go: failure bookkeeping
// - queue.go: enqueueing from request handlers
type Worker struct {
	repo            Repository
	mailer          mail.Mailer
	logger          *slog.Logger
	batchSize       int
	sendTimeout     time.Duration
	baseInterval    time.Duration
	maxInterval     time.Duration
	currentInterval time.Duration
	running         bool
	mu              sync.Mutex
	stopChan        chan struct{}
	doneChan        chan struct{}
	wake            chan struct{}
}

func NewWorker(repo Repository, mailer mail.Mailer, logger *slog.Logger) *Worker {
	return &Worker{
		repo:            repo,
		mailer:          mailer,
		logger:          logger,
		batchSize:       25,
		sendTimeout:     15 * time.Second,
		baseInterval:    15 * time.Second, // Poll interval while there is mail
		maxInterval:     60 * time.Second, // Poll interval when idle
		currentInterval: 15 * time.Second,
		stopChan:        make(chan struct{}),
		doneChan:        make(chan struct{}),
		wake:            make(chan struct{}, 1),
	}
}

// Start begins the background delivery loop
func (w *Worker) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info("email outbox worker starting")

	go w.run()
}

// Stop signals the loop to exit and waits for the current batch to finish
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopChan)
	w.mu.Unlock()

	<-w.doneChan
	w.logger.Info("email outbox worker stopped")
}

// Trigger asks the worker to deliver pending mail now instead of waiting for the next tick.
func (w *Worker) Trigger() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// run is the main worker loop with adaptive backoff
func (w *Worker) run() {
	defer close(w.doneChan)

	ticker := time.NewTicker(w.currentInterval)
	defer ticker.Stop()

	w.recoverStuck()
	w.deliverPending()

	for {
		select {
		case <-ticker.C:
			w.adjustInterval(ticker, w.deliverPending())
		case <-w.wake:
			w.adjustInterval(ticker, w.deliverPending())
		case <-w.stopChan:
			return
		}
	}
}

// adjustInterval polls faster while there is mail and backs off when idle
func (w *Worker) adjustInterval(ticker *time.Ticker, hadWork bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	next := w.maxInterval
	if hadWork {
		next = w.baseInterval
	}
	if next != w.currentInterval {
		w.currentInterval = next
		ticker.Reset(next)
		w.logger.Debug("email outbox interval changed", "interval", next)
	}
}
