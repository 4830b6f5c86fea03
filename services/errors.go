package services

import "errors"

// Common service-level errors
var (
	// Auth errors
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountSuspended   = errors.New("account suspended")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidAuthCode    = errors.New("invalid authorization code")
	ErrInvalidUserInfo    = errors.New("invalid user information")
	ErrProviderDisabled   = errors.New("sign-in provider not configured")
	ErrSessionNotFound    = errors.New("session not found")
	ErrResetTokenInvalid  = errors.New("reset token invalid or expired")
	ErrUnauthorized       = errors.New("unauthorized access")
	ErrForbidden          = errors.New("forbidden")

	// User errors
	ErrUserNotFound     = errors.New("user not found")
	ErrCannotModifySelf = errors.New("administrators cannot suspend, demote or delete themselves")
	ErrResumeNotFound   = errors.New("resume not found")
	ErrResumeRequired   = errors.New("a resume is required: upload one with the application or on your profile")

	// Internship errors
	ErrInternshipNotFound      = errors.New("internship not found")
	ErrInvalidDates            = errors.New("end_date must not be before start_date and deadline must not be after start_date")
	ErrSlotsBelowAccepted      = errors.New("slots cannot be lower than the number of accepted applications")
	ErrInternshipHasPlacements = errors.New("internship has accepted applications")
	ErrInternshipClosed        = errors.New("internship is not accepting applications")

	// Application errors
	ErrApplicationNotFound = errors.New("application not found")
	ErrAlreadyApplied      = errors.New("already applied to this internship")
	ErrInvalidTransition   = errors.New("invalid application status transition")
	ErrNoSlotsRemaining    = errors.New("no slots remaining for this internship")

	// Evaluation errors
	ErrEvaluationNotFound   = errors.New("evaluation not found")
	ErrEvaluationExists     = errors.New("application already has an evaluation")
	ErrEvaluationNotAllowed = errors.New("only accepted applications can be evaluated")

	// Notice and notification errors
	ErrNoticeNotFound       = errors.New("notice not found")
	ErrNotificationNotFound = errors.New("notification not found")
)
