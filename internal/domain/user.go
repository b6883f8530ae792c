package domain

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common validation errors
var (
	ErrEmptyUserID         = errors.New("user ID cannot be empty")
	ErrEmptyEmail          = errors.New("email cannot be empty")
	ErrEmptyName           = errors.New("name cannot be empty")
	ErrPasswordTooShort    = errors.New("password must be at least 12 characters long")
	ErrPasswordTooLong     = errors.New("password must be at most 72 characters long")
	ErrEmptyPassword       = errors.New("password cannot be empty")
	ErrEmptyHashedPassword = errors.New("hashed password cannot be empty")
	ErrInvalidRole         = errors.New("invalid role")
)

// Password length bounds. 72 bytes is the bcrypt input limit.
const (
	MinPasswordLength = 12
	MaxPasswordLength = 72
)

// Role determines what a user may do.
type Role string

// Known roles.
const (
	RoleMember   Role = "member"
	RoleGymOwner Role = "gym_owner"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleMember, RoleGymOwner, RoleAdmin:
		return true
	}
	return false
}

// User represents a registered user of the dashboard.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	Role           Role      `json:"role"`
	Password       string    `json:"-"` // plaintext, only set during registration/updates
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a new User with the given email, name, password and role.
// The caller is responsible for hashing the password before storing the user.
func NewUser(email, name, password string, role Role) (*User, error) {
	if role == "" {
		role = RoleMember
	}

	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Name:      strings.TrimSpace(name),
		Role:      role,
		Password:  password,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return NewValidationError("id", ErrEmptyUserID.Error(), ErrEmptyUserID)
	}
	if u.Email == "" {
		return NewValidationError("email", ErrEmptyEmail.Error(), ErrEmptyEmail)
	}
	if !validateEmailFormat(u.Email) {
		return NewValidationError("email", ErrInvalidEmail.Error(), ErrInvalidEmail)
	}
	if u.Name == "" {
		return NewValidationError("name", ErrEmptyName.Error(), ErrEmptyName)
	}
	if !u.Role.Valid() {
		return NewValidationError("role", ErrInvalidRole.Error(), ErrInvalidRole)
	}

	if u.Password != "" {
		return ValidatePassword(u.Password)
	}
	if u.HashedPassword == "" {
		return NewValidationError("password", ErrEmptyPassword.Error(), ErrEmptyPassword)
	}

	return nil
}

// ValidatePassword checks the length bounds of a plaintext password.
func ValidatePassword(password string) error {
	switch {
	case len(password) < MinPasswordLength:
		return NewValidationError("password", ErrPasswordTooShort.Error(), ErrPasswordTooShort)
	case len(password) > MaxPasswordLength:
		return NewValidationError("password", ErrPasswordTooLong.Error(), ErrPasswordTooLong)
	}
	return nil
}

// CanManage reports whether u may manage resources owned by ownerID.
func (u *User) CanManage(ownerID uuid.UUID) bool {
	return u.Role == RoleAdmin || u.ID == ownerID
}

func validateEmailFormat(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	at := strings.LastIndex(email, "@")
	return strings.Contains(email[at+1:], ".")
}
