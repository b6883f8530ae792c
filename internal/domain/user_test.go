package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNewUser(t *testing.T) {
	// Test valid user creation
	user, err := NewUser("  Test@Example.com ", "Alex Doe", "correct horse battery", "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if user.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}
	if user.Email != "test@example.com" {
		t.Errorf("Expected normalized email, got %s", user.Email)
	}
	if user.Role != RoleMember {
		t.Errorf("Expected default role %s, got %s", RoleMember, user.Role)
	}
	if user.CreatedAt.IsZero() || user.UpdatedAt.IsZero() {
		t.Error("Expected non-zero timestamps")
	}

	tests := []struct {
		name     string
		email    string
		userName string
		password string
		role     Role
		wantErr  error
	}{
		{"empty email", "", "Alex", "correct horse battery", RoleMember, ErrEmptyEmail},
		{"invalid email", "invalidemail", "Alex", "correct horse battery", RoleMember, ErrInvalidEmail},
		{"email without domain dot", "alex@localhost", "Alex", "correct horse battery", RoleMember, ErrInvalidEmail},
		{"empty name", "alex@example.com", " ", "correct horse battery", RoleMember, ErrEmptyName},
		{"short password", "alex@example.com", "Alex", "short", RoleMember, ErrPasswordTooShort},
		{"long password", "alex@example.com", "Alex", strings.Repeat("a", 73), RoleMember, ErrPasswordTooLong},
		{"unknown role", "alex@example.com", "Alex", "correct horse battery", Role("coach"), ErrInvalidRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUser(tt.email, tt.userName, tt.password, tt.role)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected error %v, got %v", tt.wantErr, err)
			}
			if !errors.Is(err, ErrValidation) {
				t.Errorf("Expected error to match ErrValidation, got %v", err)
			}
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Field == "" {
				t.Errorf("Expected ValidationError with a field, got %v", err)
			}
		})
	}
}

func TestUserValidateStoredUser(t *testing.T) {
	u := User{
		ID:             uuid.New(),
		Email:          "owner@example.com",
		Name:           "Owner",
		Role:           RoleGymOwner,
		HashedPassword: "$2a$10$abcdefghijklmnopqrstuv",
	}
	if err := u.Validate(); err != nil {
		t.Errorf("Expected stored user to validate, got %v", err)
	}

	u.HashedPassword = ""
	if err := u.Validate(); !errors.Is(err, ErrEmptyPassword) {
		t.Errorf("Expected %v, got %v", ErrEmptyPassword, err)
	}
}

func TestUserCanManage(t *testing.T) {
	owner := uuid.New()

	member := &User{ID: uuid.New(), Role: RoleMember}
	if member.CanManage(owner) {
		t.Error("member should not manage another user's resource")
	}

	self := &User{ID: owner, Role: RoleGymOwner}
	if !self.CanManage(owner) {
		t.Error("owner should manage own resource")
	}

	admin := &User{ID: uuid.New(), Role: RoleAdmin}
	if !admin.CanManage(owner) {
		t.Error("admin should manage any resource")
	}
}
