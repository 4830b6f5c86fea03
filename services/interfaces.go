package services

import (
	"context"
	"internship-portal/activity"
	"internship-portal/database"
	"internship-portal/mail"
	"internship-portal/models"
	"time"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	GetUserByID(userID string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByResetTokenHash(hash string) (*models.User, error)
	CreateUser(user *models.User) error
	UpdateUser(user *models.User) error
	UpdateUserStatus(userID string, status models.UserStatus) error
	UpdateUserPassword(userID, passwordHash string) error
	SetResetToken(userID, tokenHash string, expiresAt time.Time) error
	SetUserResume(userID, key string) error
	TouchLastLogin(userID string, at time.Time) error
	DeleteUser(userID string) error
	ListUsers(filter models.UserFilter) ([]models.User, int, error)
	ListActiveStudentIDs() ([]string, error)
	ListActiveAdminIDs() ([]string, error)
}

// InternshipRepository defines the interface for internship data access
type InternshipRepository interface {
	GetInternship(id string) (*models.Internship, error)
	CreateInternship(in *models.Internship) error
	UpdateInternship(in *models.Internship) error
	SetInternshipStatus(id string, status models.InternshipStatus) error
	DeleteInternship(id string) error
	ListInternships(filter models.InternshipFilter) ([]models.Internship, int, error)
	CloseExpiredInternships(today string) (int64, error)
}

// ApplicationRepository defines the interface for application data access
type ApplicationRepository interface {
	GetApplication(id string) (*models.Application, error)
	GetApplicationByStudentAndInternship(studentID, internshipID string) (*models.Application, error)
	CreateApplication(app *models.Application) error
	ListApplications(filter models.ApplicationFilter) ([]models.Application, int, error)
	ListAllApplications(filter models.ApplicationFilter) ([]models.Application, error)
	ChangeApplicationStatus(change database.StatusChange) (bool, error)
	CountAcceptedApplications(internshipID string) (int, error)
}

type EvaluationRepository interface {
	GetEvaluation(id string) (*models.Evaluation, error)
	GetEvaluationByApplication(applicationID string) (*models.Evaluation, error)
	CreateEvaluation(ev *models.Evaluation) error
	UpdateEvaluation(ev *models.Evaluation) error
	ListEvaluationsByStudent(studentID string) ([]models.Evaluation, error)
}

type NoticeRepository interface {
	GetNotice(id string) (*models.Notice, error)
	CreateNotice(n *models.Notice) error
	UpdateNotice(n *models.Notice) error
	SetNoticePublished(id string, published bool, at time.Time) error
	DeleteNotice(id string) error
	ListNotices(audiences []models.Audience, publishedOnly bool, page models.Page) ([]models.Notice, int, error)
}

type NotificationRepository interface {
	CreateNotifications(batch []models.Notification) error
	ListNotifications(userID string, unreadOnly bool, page models.Page) ([]models.Notification, int, error)
	CountUnreadNotifications(userID string) (int, error)
	MarkNotificationRead(id, userID string) (bool, error)
	MarkAllNotificationsRead(userID string) (int64, error)
	PurgeReadNotifications(before time.Time) (int64, error)
}

type AuditRepository interface {
	ListActivityLogs(filter models.ActivityFilter) ([]models.ActivityLog, int, error)
	ListSecurityEvents(filter models.SecurityFilter) ([]models.SecurityEvent, int, error)
}

type AnalyticsRepository interface {
	DashboardStats(months int) (*models.Dashboard, error)
}

// SessionStore defines the interface for session management
type SessionStore interface {
	Create(userID, ip, userAgent string) (*models.Session, error)
	Get(sessionID string) (*models.Session, error)
	Touch(sessionID string) error
	Delete(sessionID string) error
	DeleteByUser(userID string) error
}

// EmailQueue accepts mail for background delivery
type EmailQueue interface {
	Enqueue(msg mail.Message) error
}

// AuditLogger records activity and security events
type AuditLogger interface {
	Record(ctx context.Context, e activity.Entry)
	SecurityEvent(ctx context.Context, ev models.SecurityEvent)
}

// Notifier sends in-app notifications
type Notifier interface {
	Notify(userIDs []string, kind, title, message, link string) error
}

// AnalyticsInvalidator drops cached dashboard figures
type AnalyticsInvalidator interface {
	Invalidate(ctx context.Context)
}

// Actor is the authenticated user performing an operation.
type Actor struct {
	ID   string
	Role models.Role
	IP   string
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}
