package services

import (
	"context"
	"errors"
	"fmt"
	"internship-portal/activity"
	"internship-portal/auth"
	"internship-portal/cache"
	"internship-portal/database"
	"internship-portal/models"
	"internship-portal/storage"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UserService manages profiles, resumes and admin user administration
type UserService struct {
	users          UserRepository
	sessions       SessionStore
	files          storage.Provider
	maxResumeBytes int64
	audit          AuditLogger
	cache          cache.Cache
	logger         *slog.Logger
}

// NewUserService creates a new user service
func NewUserService(users UserRepository, sessions SessionStore, files storage.Provider, maxResumeBytes int64, audit AuditLogger, c cache.Cache, logger *slog.Logger) *UserService {
	if c == nil {
		c = cache.Noop{}
	}
	return &UserService{
		users:          users,
		sessions:       sessions,
		files:          files,
		maxResumeBytes: maxResumeBytes,
		audit:          audit,
		cache:          c,
		logger:         logger,
	}
}

// GetProfile returns the caller's own account
func (us *UserService) GetProfile(userID string) (*models.User, error) {
	user, err := us.users.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateProfile changes the caller's contact details
func (us *UserService) UpdateProfile(ctx context.Context, actor Actor, req models.UpdateProfileRequest) (*models.User, error) {
	user, err := us.GetProfile(actor.ID)
	if err != nil {
		return nil, err
	}

	user.Name = strings.TrimSpace(req.Name)
	user.Phone = strings.TrimSpace(req.Phone)
	user.Department = strings.TrimSpace(req.Department)
	user.StudentNo = strings.TrimSpace(req.StudentNo)

	if err := us.users.UpdateUser(user); err != nil {
		return nil, err
	}
	invalidateUser(ctx, us.cache, user.ID)

	us.audit.Record(ctx, activity.Entry{
		ActorID: actor.ID, ActorRole: string(actor.Role), Action: "profile.update",
		EntityType: "user", EntityID: user.ID, IP: actor.IP,
	})
	return us.GetProfile(user.ID)
}

// UploadResume validates and stores a resume and makes it the profile resume
func (us *UserService) UploadResume(ctx context.Context, actor Actor, filename string, size int64, r io.Reader) (*models.User, error) {
	user, err := us.GetProfile(actor.ID)
	if err != nil {
		return nil, err
	}

	key, err := us.storeResume(ctx, actor.ID, filename, size, r)
	if err != nil {
		return nil, err
	}

	if err := us.users.SetUserResume(user.ID, key); err != nil {
		us.removeFile(ctx, key)
		return nil, err
	}
	if user.ResumeKey != "" {
		us.removeFile(ctx, user.ResumeKey)
	}
	invalidateUser(ctx, us.cache, user.ID)

	us.audit.Record(ctx, activity.Entry{
		ActorID: actor.ID, ActorRole: string(actor.Role), Action: "profile.resume_upload",
		EntityType: "user", EntityID: user.ID, IP: actor.IP,
		Metadata: map[string]any{"key": key, "size": size},
	})

	user.ResumeKey = key
	return user, nil
}

// storeResume checks an upload and writes it under a fresh key
func (us *UserService) storeResume(ctx context.Context, userID, filename string, size int64, r io.Reader) (string, error) {
	resume, err := storage.InspectResume(filename, size, us.maxResumeBytes, r)
	if err != nil {
		return "", err
	}

	key := storage.ResumeKey(userID, resume.Ext, time.Now())
	if err := us.files.Put(ctx, key, resume.ContentType, resume.Reader, resume.Size); err != nil {
		return "", fmt.Errorf("store resume: %w", err)
	}
	return key, nil
}

// StoredFile is an open stored upload
type StoredFile struct {
	Body        io.ReadCloser
	ContentType string
	Filename    string
}

// OpenResume opens a user's profile resume for its owner or an admin
func (us *UserService) OpenResume(ctx context.Context, actor Actor, userID string) (*StoredFile, error) {
	if actor.ID != userID && !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	user, err := us.GetProfile(userID)
	if err != nil {
		return nil, err
	}
	if user.ResumeKey == "" {
		return nil, ErrResumeNotFound
	}
	return us.openFile(ctx, user.ResumeKey)
}

func (us *UserService) openFile(ctx context.Context, key string) (*StoredFile, error) {
	body, contentType, err := us.files.Open(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrResumeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &StoredFile{Body: body, ContentType: contentType, Filename: "resume" + path.Ext(key)}, nil
}

func (us *UserService) removeFile(ctx context.Context, key string) {
	if err := us.files.Delete(ctx, key); err != nil {
		us.logger.Warn("failed to delete stored file", "key", key, "error", err)
	}
}

// ==================== ADMINISTRATION ====================

func (us *UserService) List(filter models.UserFilter) (models.PageResult[models.User], error) {
	users, total, err := us.users.ListUsers(filter)
	if err != nil {
		return models.PageResult[models.User]{}, err
	}
	return models.NewPageResult(users, total, filter.Page), nil
}

func (us *UserService) Get(id string) (*models.User, error) {
	return us.GetProfile(id)
}

// Create adds an account of any role
func (us *UserService) Create(ctx context.Context, actor Actor, req models.CreateUserRequest) (*models.User, error) {
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
		Role:         models.Role(req.Role),
		Status:       models.UserStatusActive,
		StudentNo:    strings.TrimSpace(req.StudentNo),
		Department:   strings.TrimSpace(req.Department),
		Phone:        strings.TrimSpace(req.Phone),
		AuthProvider: models.AuthProviderPassword,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := us.users.CreateUser(user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	us.audit.Record(ctx, activity.Entry{
		ActorID: actor.ID, ActorRole: string(actor.Role), Action: "user.create",
		EntityType: "user", EntityID: user.ID, IP: actor.IP,
		Metadata: map[string]any{"role": req.Role},
	})
	return user, nil
}

// Update edits an account. Admins cannot change their own role.
func (us *UserService) Update(ctx context.Context, actor Actor, id string, req models.UpdateUserRequest) (*models.User, error) {
	user, err := us.GetProfile(id)
	if err != nil {
		return nil, err
	}
	if id == actor.ID && models.Role(req.Role) != user.Role {
		return nil, ErrCannotModifySelf
	}

	user.Name = strings.TrimSpace(req.Name)
	user.Role = models.Role(req.Role)
	user.StudentNo = strings.TrimSpace(req.StudentNo)
	user.Department = strings.TrimSpace(req.Department)
	user.Phone = strings.TrimSpace(req.Phone)

	if err := us.users.UpdateUser(user); err != nil {
		return nil, err
	}
	invalidateUser(ctx, us.cache, id)

	us.audit.Record(ctx, activity.Entry{
		ActorID: actor.ID, ActorRole: string(actor.Role), Action: "user.update",
		EntityType: "user", EntityID: id, IP: actor.IP,
	})
	return us.GetProfile(id)
}

// SetStatus activates or suspends an account; suspension revokes every session
func (us *UserService) SetStatus(ctx context.Context, actor Actor, id string, status models.UserStatus) (*models.User, error) {
	if id == actor.ID {
		return nil, ErrCannotModifySelf
	}
	user, err := us.GetProfile(id)
	if err != nil {
		return nil, err
	}

	if err := us.users.UpdateUserStatus(id, status); err != nil {
		return nil, err
	}
	if status == models.UserStatusSuspended {
		if err := us.sessions.DeleteByUser(id); err != nil {
			return nil, err
		}
	}
	invalidateUser(ctx, us.cache, id)

	us.audit.Record(ctx, activity.Entry{
		ActorID: actor.ID, ActorRole: string(actor.Role), Action: "user.status",
		EntityType: "user", EntityID: id, IP: actor.IP,
		Metadata: map[string]any{"from": user.Status, "to": status},
	})

	user.Status = status
	return user, nil
}

// Delete removes an account with its applications, sessions and notifications
func (us *UserService) Delete(ctx context.Context, actor Actor, id string) error {
	if id == actor.ID {
		return ErrCannotModifySelf
	}
	user, err := us.GetProfile(id)
	if err != nil {
		return err
	}

	if err := us.users.DeleteUser(id); err != nil {
		return err
	}
	if user.ResumeKey != "" {
		us.removeFile(ctx, user.ResumeKey)
	}
	invalidateUser(ctx, us.cache, id)

	us.audit.Record(ctx, activity.Entry{
		ActorID: actor.ID, ActorRole: string(actor.Role), Action: "user.delete",
		EntityType: "user", EntityID: id, IP: actor.IP,
		Metadata: map[string]any{"email": user.Email},
	})
	return nil
}
