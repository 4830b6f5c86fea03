package services

import (
	"context"
	"internship-portal/activity"
	"internship-portal/models"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// NoticeService manages announcements
type NoticeService struct {
	notices  NoticeRepository
	users    UserRepository
	notifier Notifier
	audit    AuditLogger
	logger   *slog.Logger
}

func NewNoticeService(notices NoticeRepository, users UserRepository, notifier Notifier, audit AuditLogger, logger *slog.Logger) *NoticeService {
	return &NoticeService{
		notices:  notices,
		users:    users,
		notifier: notifier,
		audit:    audit,
		logger:   logger,
	}
}

// visibleAudiences lists the audiences a role may read
func visibleAudiences(role models.Role) []models.Audience {
	var out []models.Audience
	for _, a := range []models.Audience{models.AudienceAll, models.AudienceStudents, models.AudienceAdmins} {
		if a.Includes(role) {
			out = append(out, a)
		}
	}
	return out
}

// ListVisible returns published notices the actor's role may read, newest first
func (ns *NoticeService) ListVisible(actor Actor, page models.Page) (models.PageResult[models.Notice], error) {
	notices, total, err := ns.notices.ListNotices(visibleAudiences(actor.Role), true, page)
	if err != nil {
		return models.PageResult[models.Notice]{}, err
	}
	return models.NewPageResult(notices, total, page), nil
}

// ListAll returns every notice including drafts
func (ns *NoticeService) ListAll(page models.Page) (models.PageResult[models.Notice], error) {
	notices, total, err := ns.notices.ListNotices(nil, false, page)
	if err != nil {
		return models.PageResult[models.Notice]{}, err
	}
	return models.NewPageResult(notices, total, page), nil
}

func (ns *NoticeService) Get(id string) (*models.Notice, error) {
	n, err := ns.notices.GetNotice(id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, ErrNoticeNotFound
	}
	return n, nil
}

// Create stores a draft notice
func (ns *NoticeService) Create(ctx context.Context, actor Actor, req models.NoticeRequest) (*models.Notice, error) {
	ts := now()
	n := &models.Notice{
		ID:        uuid.New().String(),
		Title:     strings.TrimSpace(req.Title),
		Body:      strings.TrimSpace(req.Body),
		Audience:  models.Audience(req.Audience),
		CreatedBy: actor.ID,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if err := ns.notices.CreateNotice(n); err != nil {
		return nil, err
	}

	ns.audit.Record(ctx, activity.Entry{
		ActorID: actor.ID, ActorRole: string(actor.Role), Action: "notice.create",
		EntityType: "notice", EntityID: n.ID, IP: actor.IP,
	})
	return n, nil
}

func (ns *NoticeService) Update(ctx context.Context, actor Actor, id string, req models.NoticeRequest) (*models.Notice, error) {
	n, err := ns.Get(id)
	if err != nil {
		return nil, err
	}

	n.Title = strings.TrimSpace(req.Title)
	n.Body = strings.TrimSpace(req.Body)
	n.Audience = models.Audience(req.Audience)
	if err := ns.notices.UpdateNotice(n); err != nil {
		return nil, err
	}

	ns.audit.Record(ctx, activity.Entry{
		ActorID: actor.ID, ActorRole: string(actor.Role), Action: "notice.update",
		EntityType: "notice", EntityID: id, IP: actor.IP,
	})
	return ns.Get(id)
}

// SetPublished publishes or withdraws a notice. Only the transition to
// published notifies readers, so republishing an already published notice is silent.
func (ns *NoticeService) SetPublished(ctx context.Context, actor Actor, id string, published bool) (*models.Notice, error) {
	n, err := ns.Get(id)
	if err != nil {
		return nil, err
	}
	if n.Published == published {
		return n, nil
	}

	if err := ns.notices.SetNoticePublished(id, published, now()); err != nil {
		return nil, err
	}

	action := "notice.unpublish"
	if published {
		action = "notice.publish"
		ns.fanOut(n)
	}

	ns.audit.Record(ctx, activity.Entry{
		ActorID: actor.ID, ActorRole: string(actor.Role), Action: action,
		EntityType: "notice", EntityID: id, IP: actor.IP,
	})
	return ns.Get(id)
}

// fanOut notifies every active student a notice is addressed to
func (ns *NoticeService) fanOut(n *models.Notice) {
	if !n.Audience.Includes(models.RoleStudent) {
		return
	}

	ids, err := ns.users.ListActiveStudentIDs()
	if err != nil {
		ns.logger.Error("failed to list students for notice", "notice_id", n.ID, "error", err)
		return
	}
	if len(ids) == 0 {
		return
	}

	if err := ns.notifier.Notify(ids, models.NotificationNoticePublished, n.Title, excerpt(n.Body, 140), "/notices"); err != nil {
		ns.logger.Error("failed to notify students of notice", "notice_id", n.ID, "error", err)
	}
}

func (ns *NoticeService) Delete(ctx context.Context, actor Actor, id string) error {
	if _, err := ns.Get(id); err != nil {
		return err
	}
	if err := ns.notices.DeleteNotice(id); err != nil {
		return err
	}

	ns.audit.Record(ctx, activity.Entry{
		ActorID: actor.ID, ActorRole: string(actor.Role), Action: "notice.delete",
		EntityType: "notice", EntityID: id, IP: actor.IP,
	})
	return nil
}

func excerpt(s string, max int) string {
	r := []rune(strings.Join(strings.Fields(s), " "))
	if len(r) <= max {
		return string(r)
	}
	return string(r[:max-1]) + "…"
}
