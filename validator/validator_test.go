package validator

import (
	"internship-portal/models"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_Register(t *testing.T) {
	v := New()

	tests := []struct {
		name      string
		req       models.RegisterRequest
		wantError bool
		errorMsg  string
	}{
		{
			name: "Valid registration",
			req: models.RegisterRequest{
				Email:     "student@uni.ac.id",
				Password:  "secret123",
				Name:      "Budi",
				StudentNo: "2021-0042",
			},
			wantError: false,
		},
		{
			name: "Student number is optional",
			req: models.RegisterRequest{
				Email:    "student@uni.ac.id",
				Password: "secret123",
				Name:     "Budi",
			},
			wantError: false,
		},
		{
			name: "Invalid email",
			req: models.RegisterRequest{
				Email:    "not-an-email",
				Password: "secret123",
				Name:     "Budi",
			},
			wantError: true,
			errorMsg:  "email must be a valid email address",
		},
		{
			name: "Password without digit",
			req: models.RegisterRequest{
				Email:    "student@uni.ac.id",
				Password: "onlyletters",
				Name:     "Budi",
			},
			wantError: true,
			errorMsg:  "password must be at least 8 characters",
		},
		{
			name: "Password too short",
			req: models.RegisterRequest{
				Email:    "student@uni.ac.id",
				Password: "ab1",
				Name:     "Budi",
			},
			wantError: true,
		},
		{
			name: "Student number with spaces",
			req: models.RegisterRequest{
				Email:     "student@uni.ac.id",
				Password:  "secret123",
				Name:      "Budi",
				StudentNo: "20 21",
			},
			wantError: true,
			errorMsg:  "student_no must be 4-20",
		},
		{
			name: "Missing name",
			req: models.RegisterRequest{
				Email:    "student@uni.ac.id",
				Password: "secret123",
			},
			wantError: true,
			errorMsg:  "name is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.req)

			if tt.wantError {
				assert.Error(t, err)
				if tt.errorMsg != "" {
					assert.Contains(t, err.Error(), tt.errorMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidator_Internship(t *testing.T) {
	v := New()

	valid := models.InternshipRequest{
		Title:       "Data Intern",
		Company:     "Acme",
		Description: "Pipelines",
		Location:    "Bandung",
		WorkType:    "remote",
		Slots:       3,
		StartDate:   "2030-02-01",
		EndDate:     "2030-05-31",
		Deadline:    "2030-01-15",
	}
	assert.NoError(t, v.Validate(&valid))

	tests := []struct {
		name     string
		mutate   func(r *models.InternshipRequest)
		errorMsg string
	}{
		{"Unknown work type", func(r *models.InternshipRequest) { r.WorkType = "space" }, "work_type must be one of"},
		{"Impossible date", func(r *models.InternshipRequest) { r.Deadline = "2030-02-30" }, "deadline must be a valid date"},
		{"Wrong date layout", func(r *models.InternshipRequest) { r.StartDate = "01-02-2030" }, "start_date must be a valid date"},
		{"Zero slots", func(r *models.InternshipRequest) { r.Slots = 0 }, "slots must be greater than or equal to 1"},
		{"Negative stipend", func(r *models.InternshipRequest) { r.Stipend = -1 }, "stipend must be greater than or equal to 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			err := v.Validate(&req)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestValidator_ApplicationStatus(t *testing.T) {
	v := New()

	for _, status := range []string{"under_review", "accepted", "rejected"} {
		assert.NoError(t, v.Validate(&models.ApplicationStatusRequest{Status: status}), status)
	}
	for _, status := range []string{"pending", "withdrawn", "approved"} {
		assert.Error(t, v.Validate(&models.ApplicationStatusRequest{Status: status}), status)
	}
}

func TestValidator_Role(t *testing.T) {
	v := New()

	req := models.CreateUserRequest{
		Email:    "admin@uni.ac.id",
		Password: "secret123",
		Name:     "Admin",
		Role:     "superuser",
	}
	err := v.Validate(&req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "role must be either 'student' or 'admin'")

	req.Role = "admin"
	assert.NoError(t, v.Validate(&req))
}

func TestValidationErrors_Details(t *testing.T) {
	v := New()

	err := v.Validate(&models.RegisterRequest{Email: "bad", Password: "short", Name: "x"})
	require.Error(t, err)

	errs, ok := err.(ValidationErrors)
	require.True(t, ok)
	assert.Len(t, errs, 3)

	for _, e := range errs {
		if e.Field == "password" {
			assert.Empty(t, e.Value, "password values are never echoed")
		}
	}
	assert.Equal(t, 2, strings.Count(err.Error(), ";"))
}

func TestPasswordStrong(t *testing.T) {
	assert.True(t, PasswordStrong("abcdefg1"))
	assert.False(t, PasswordStrong("abcdefgh"))
	assert.False(t, PasswordStrong("12345678"))
	assert.False(t, PasswordStrong("a1"))
	assert.False(t, PasswordStrong(strings.Repeat("a1", 40)))
}

func TestValidator_ChangePassword(t *testing.T) {
	v := New()

	// Accounts created through Google or Supabase have no current password.
	assert.NoError(t, v.Validate(&models.ChangePasswordRequest{NewPassword: "newsecret1"}))
	assert.NoError(t, v.Validate(&models.ChangePasswordRequest{CurrentPassword: "secret123", NewPassword: "newsecret1"}))

	err := v.Validate(&models.ChangePasswordRequest{CurrentPassword: "secret123", NewPassword: "short"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "new_password")
}
