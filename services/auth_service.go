package services

import (
	"context"
	"errors"
	"fmt"
	"internship-portal/activity"
	"internship-portal/auth"
	"internship-portal/cache"
	"internship-portal/database"
	"internship-portal/mail"
	"internship-portal/models"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// resetTokenTTL is how long a password reset link stays valid.
const resetTokenTTL = 30 * time.Minute

// userCacheTTL bounds how stale a cached user may be on authenticated requests.
const userCacheTTL = time.Minute

// ClientMeta identifies the client starting a session
type ClientMeta struct {
	IP        string
	UserAgent string
}

// LoginResult is returned by every successful sign-in
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// Principal is the user and session behind an authenticated request
type Principal struct {
	User      *models.User
	SessionID string
}

// AuthService handles authentication business logic
type AuthService struct {
	users     UserRepository
	sessions  SessionStore
	tokens    *auth.TokenManager
	google    GoogleProvider
	supabase  *auth.SupabaseVerifier
	emails    EmailQueue
	templates mail.Templates
	audit     AuditLogger
	cache     cache.Cache
	logger    *slog.Logger
}

// AuthDeps groups the collaborators of AuthService
type AuthDeps struct {
	Users     UserRepository
	Sessions  SessionStore
	Tokens    *auth.TokenManager
	Google    GoogleProvider
	Supabase  *auth.SupabaseVerifier
	Emails    EmailQueue
	Templates mail.Templates
	Audit     AuditLogger
	Cache     cache.Cache
	Logger    *slog.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(d AuthDeps) *AuthService {
	if d.Cache == nil {
		d.Cache = cache.Noop{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &AuthService{
		users:     d.Users,
		sessions:  d.Sessions,
		tokens:    d.Tokens,
		google:    d.Google,
		supabase:  d.Supabase,
		emails:    d.Emails,
		templates: d.Templates,
		audit:     d.Audit,
		cache:     d.Cache,
		logger:    d.Logger,
	}
}

// Register creates an active student account and signs it in
func (as *AuthService) Register(ctx context.Context, req models.RegisterRequest, meta ClientMeta) (*LoginResult, error) {
	existing, err := as.users.GetUserByEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

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
		Role:         models.RoleStudent,
		Status:       models.UserStatusActive,
		StudentNo:    strings.TrimSpace(req.StudentNo),
		Department:   strings.TrimSpace(req.Department),
		AuthProvider: models.AuthProviderPassword,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := as.users.CreateUser(user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	as.audit.Record(ctx, activity.Entry{
		ActorID: user.ID, ActorRole: string(user.Role), Action: "user.register",
		EntityType: "user", EntityID: user.ID, IP: meta.IP,
	})
	as.sendWelcome(user)

	return as.startSession(ctx, user, meta)
}

// Login verifies email and password credentials
func (as *AuthService) Login(ctx context.Context, email, password string, meta ClientMeta) (*LoginResult, error) {
	user, err := as.users.GetUserByEmail(email)
	if err != nil {
		return nil, err
	}

	if user == nil || auth.CheckPassword(user.PasswordHash, password) != nil {
		as.audit.SecurityEvent(ctx, models.SecurityEvent{
			Event:    models.EventLoginFailed,
			Severity: models.SeverityWarning,
			Email:    strings.ToLower(strings.TrimSpace(email)),
			IP:       meta.IP,
			Detail:   "invalid email or password",
		})
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive() {
		as.suspendedAttempt(ctx, user, meta)
		return nil, ErrAccountSuspended
	}

	return as.startSession(ctx, user, meta)
}

// GoogleAuthURL returns the consent screen URL for the redirect flow
func (as *AuthService) GoogleAuthURL(state string) (string, error) {
	if as.google == nil {
		return "", ErrProviderDisabled
	}
	return as.google.AuthCodeURL(state), nil
}

// LoginWithGoogle signs in with either a Google ID token or an authorization code
func (as *AuthService) LoginWithGoogle(ctx context.Context, req models.GoogleLoginRequest, meta ClientMeta) (*LoginResult, error) {
	if as.google == nil {
		return nil, ErrProviderDisabled
	}

	var identity *GoogleIdentity
	var err error
	switch {
	case req.IDToken != "":
		identity, err = as.google.VerifyIDToken(ctx, req.IDToken)
	case req.Code != "":
		identity, err = as.google.ExchangeCode(ctx, req.Code)
	default:
		return nil, ErrInvalidAuthCode
	}
	if err != nil {
		as.tokenRejected(ctx, "google", meta, err)
		return nil, err
	}

	return as.externalLogin(ctx, identity.Email, identity.Name, models.AuthProviderGoogle, meta)
}

// LoginWithSupabase signs in with a Supabase access token
func (as *AuthService) LoginWithSupabase(ctx context.Context, accessToken string, meta ClientMeta) (*LoginResult, error) {
	identity, err := as.supabase.Verify(accessToken)
	if errors.Is(err, auth.ErrSupabaseDisabled) {
		return nil, ErrProviderDisabled
	}
	if err != nil {
		as.tokenRejected(ctx, "supabase", meta, err)
		return nil, ErrInvalidToken
	}

	return as.externalLogin(ctx, identity.Email, identity.Name, models.AuthProviderSupabase, meta)
}

// externalLogin finds or creates the student account for an external identity
func (as *AuthService) externalLogin(ctx context.Context, email, name, provider string, meta ClientMeta) (*LoginResult, error) {
	if email == "" {
		return nil, ErrInvalidUserInfo
	}

	user, err := as.users.GetUserByEmail(email)
	if err != nil {
		return nil, err
	}

	if user == nil {
		if name == "" {
			name = strings.SplitN(email, "@", 2)[0]
		}
		now := time.Now().UTC()
		user = &models.User{
			ID:           uuid.New().String(),
			Email:        email,
			Name:         name,
			Role:         models.RoleStudent,
			Status:       models.UserStatusActive,
			AuthProvider: provider,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := as.users.CreateUser(user); err != nil {
			return nil, err
		}
		as.audit.Record(ctx, activity.Entry{
			ActorID: user.ID, ActorRole: string(user.Role), Action: "user.register",
			EntityType: "user", EntityID: user.ID, IP: meta.IP,
			Metadata: map[string]any{"provider": provider},
		})
		as.sendWelcome(user)
	}

	if !user.IsActive() {
		as.suspendedAttempt(ctx, user, meta)
		return nil, ErrAccountSuspended
	}

	return as.startSession(ctx, user, meta)
}

func (as *AuthService) startSession(ctx context.Context, user *models.User, meta ClientMeta) (*LoginResult, error) {
	sess, err := as.sessions.Create(user.ID, meta.IP, meta.UserAgent)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	token, err := as.tokens.Issue(user.ID, sess.ID, string(user.Role), sess.ExpiresAt)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := as.users.TouchLastLogin(user.ID, now); err != nil {
		as.logger.Warn("failed to update last login", "user_id", user.ID, "error", err)
	}
	user.LastLoginAt = &now

	as.audit.Record(ctx, activity.Entry{
		ActorID: user.ID, ActorRole: string(user.Role), Action: "auth.login",
		EntityType: "session", EntityID: sess.ID, IP: meta.IP,
	})

	return &LoginResult{Token: token, ExpiresAt: sess.ExpiresAt, User: user}, nil
}

// Authenticate resolves a bearer token to its active user and session
func (as *AuthService) Authenticate(ctx context.Context, token string) (*Principal, error) {
	claims, err := as.tokens.Parse(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	sess, err := as.sessions.Get(claims.SessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil || sess.UserID != claims.Subject {
		return nil, ErrSessionNotFound
	}

	user, err := as.cachedUser(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrSessionNotFound
	}
	if !user.IsActive() {
		return nil, ErrAccountSuspended
	}

	if err := as.sessions.Touch(sess.ID); err != nil {
		as.logger.Warn("failed to touch session", "session_id", sess.ID, "error", err)
	}

	return &Principal{User: user, SessionID: sess.ID}, nil
}

func (as *AuthService) cachedUser(ctx context.Context, userID string) (*models.User, error) {
	var cached models.User
	if found, err := as.cache.GetJSON(ctx, userCacheKey(userID), &cached); err == nil && found {
		return &cached, nil
	} else if err != nil {
		as.logger.Warn("user cache read failed", "user_id", userID, "error", err)
	}

	user, err := as.users.GetUserByID(userID)
	if err != nil || user == nil {
		return user, err
	}
	if err := as.cache.SetJSON(ctx, userCacheKey(userID), user, userCacheTTL); err != nil {
		as.logger.Warn("user cache write failed", "user_id", userID, "error", err)
	}
	return user, nil
}

// Logout revokes the session; tokens bound to it stop working immediately
func (as *AuthService) Logout(ctx context.Context, p *Principal, ip string) error {
	if err := as.sessions.Delete(p.SessionID); err != nil {
		return err
	}
	as.audit.Record(ctx, activity.Entry{
		ActorID: p.User.ID, ActorRole: string(p.User.Role), Action: "auth.logout",
		EntityType: "session", EntityID: p.SessionID, IP: ip,
	})
	return nil
}

// ForgotPassword emails a reset link. Unknown emails succeed silently.
func (as *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := as.users.GetUserByEmail(email)
	if err != nil {
		return err
	}
	if user == nil || !user.IsActive() {
		return nil
	}

	token, hash, err := auth.NewResetToken()
	if err != nil {
		return err
	}
	if err := as.users.SetResetToken(user.ID, hash, time.Now().UTC().Add(resetTokenTTL)); err != nil {
		return err
	}

	msg, err := as.templates.PasswordReset(user.Email, user.Name, token)
	if err != nil {
		return err
	}
	return as.emails.Enqueue(msg)
}

// ResetPassword sets a new password from a reset token and revokes every session
func (as *AuthService) ResetPassword(ctx context.Context, token, newPassword string, meta ClientMeta) error {
	user, err := as.users.GetUserByResetTokenHash(auth.HashToken(token))
	if err != nil {
		return err
	}
	if user == nil || user.ResetTokenExpiresAt == nil || time.Now().After(*user.ResetTokenExpiresAt) {
		return ErrResetTokenInvalid
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := as.users.UpdateUserPassword(user.ID, hash); err != nil {
		return err
	}
	if err := as.sessions.DeleteByUser(user.ID); err != nil {
		return err
	}
	invalidateUser(ctx, as.cache, user.ID)

	as.audit.SecurityEvent(ctx, models.SecurityEvent{
		Event:    models.EventPasswordReset,
		Severity: models.SeverityInfo,
		UserID:   user.ID,
		Email:    user.Email,
		IP:       meta.IP,
	})
	return nil
}

// ChangePassword updates the password of a signed-in user. Accounts created
// through Google or Supabase may set a first password without a current one.
func (as *AuthService) ChangePassword(ctx context.Context, userID, current, newPassword string) error {
	user, err := as.users.GetUserByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if user.PasswordHash != "" {
		if err := auth.CheckPassword(user.PasswordHash, current); err != nil {
			return ErrInvalidCredentials
		}
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := as.users.UpdateUserPassword(user.ID, hash); err != nil {
		return err
	}

	as.audit.Record(ctx, activity.Entry{
		ActorID: user.ID, ActorRole: string(user.Role), Action: "user.password_change",
		EntityType: "user", EntityID: user.ID,
	})
	return nil
}

func (as *AuthService) sendWelcome(user *models.User) {
	msg, err := as.templates.Welcome(user.Email, user.Name)
	if err == nil {
		err = as.emails.Enqueue(msg)
	}
	if err != nil {
		as.logger.Error("failed to queue welcome email", "user_id", user.ID, "error", err)
	}
}

func (as *AuthService) suspendedAttempt(ctx context.Context, user *models.User, meta ClientMeta) {
	as.audit.SecurityEvent(ctx, models.SecurityEvent{
		Event:    models.EventAccountSuspended,
		Severity: models.SeverityWarning,
		UserID:   user.ID,
		Email:    user.Email,
		IP:       meta.IP,
		Detail:   "sign-in attempt on suspended account",
	})
}

func (as *AuthService) tokenRejected(ctx context.Context, provider string, meta ClientMeta, err error) {
	as.audit.SecurityEvent(ctx, models.SecurityEvent{
		Event:    models.EventTokenInvalid,
		Severity: models.SeverityWarning,
		IP:       meta.IP,
		Detail:   provider + ": " + err.Error(),
	})
}

func userCacheKey(userID string) string {
	return "user:" + userID
}

func invalidateUser(ctx context.Context, c cache.Cache, userID string) {
	if err := c.Delete(ctx, userCacheKey(userID)); err != nil {
		slog.Warn("user cache invalidation failed", "user_id", userID, "error", err)
	}
}
