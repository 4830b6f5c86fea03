package outbox

import (
	"internship-portal/mail"
	"internship-portal/models"
	"time"

	"github.com/google/uuid"
)

// Queue persists emails to the outbox and nudges the worker.
type Queue struct {
	repo   Repository
	worker *Worker
}

func NewQueue(repo Repository, worker *Worker) *Queue {
	return &Queue{repo: repo, worker: worker}
}

func (q *Queue) Enqueue(msg mail.Message) error {
	err := q.repo.EnqueueEmail(&models.OutboundEmail{
		ID:        uuid.New().String(),
		Recipient: msg.To,
		Subject:   msg.Subject,
		HTMLBody:  msg.HTMLBody,
		TextBody:  msg.TextBody,
		Status:    models.EmailPending,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	if q.worker != nil {
		q.worker.Trigger()
	}
	return nil
}
