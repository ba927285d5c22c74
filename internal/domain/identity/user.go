package identity

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/shopfront/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// UserType distinguishes buyers from shop partners
type UserType string

const (
	UserTypeBuyer UserType = "buyer"
	UserTypeShop  UserType = "shop"
)

// IsValid reports whether the user type is known
func (t UserType) IsValid() bool {
	return t == UserTypeBuyer || t == UserTypeShop
}

// Password cost for bcrypt
const bcryptCost = 12

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// User is the aggregate root for accounts. Email is the login name.
type User struct {
	shared.BaseAggregateRoot
	Email            string
	PasswordHash     string
	FirstName        string
	LastName         string
	MiddleName       string
	Company          string
	Position         string
	Type             UserType
	IsActive         bool
	IsStaff          bool
	IsEmailConfirmed bool
	LastLoginAt      *time.Time
}

// Profile carries the optional personal fields of a user
type Profile struct {
	FirstName  string
	LastName   string
	MiddleName string
	Company    string
	Position   string
}

// NewUser creates an active, unconfirmed user
func NewUser(email, password string, userType UserType, profile Profile) (*User, error) {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}
	if userType == "" {
		userType = UserTypeBuyer
	}
	if !userType.IsValid() {
		return nil, shared.NewDomainError("INVALID_USER_TYPE", "User type must be one of: shop, buyer")
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		PasswordHash:      passwordHash,
		Type:              userType,
		IsActive:          true,
	}
	if err := user.UpdateProfile(profile); err != nil {
		return nil, err
	}

	user.AddDomainEvent(NewUserRegisteredEvent(user))

	return user, nil
}

// UpdateProfile replaces the personal fields
func (u *User) UpdateProfile(p Profile) error {
	names := [][2]string{
		{"First name", p.FirstName},
		{"Last name", p.LastName},
		{"Middle name", p.MiddleName},
	}
	for _, n := range names {
		if len(strings.TrimSpace(n[1])) > 30 {
			return shared.NewDomainError("INVALID_NAME", n[0]+" cannot exceed 30 characters")
		}
	}
	if len(p.Company) > 40 || len(p.Position) > 40 {
		return shared.NewDomainError("INVALID_PROFILE", "Company and position cannot exceed 40 characters")
	}

	u.FirstName = strings.TrimSpace(p.FirstName)
	u.LastName = strings.TrimSpace(p.LastName)
	u.MiddleName = strings.TrimSpace(p.MiddleName)
	u.Company = strings.TrimSpace(p.Company)
	u.Position = strings.TrimSpace(p.Position)
	u.Touch()
	return nil
}

// Profile returns the personal fields
func (u *User) Profile() Profile {
	return Profile{
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		MiddleName: u.MiddleName,
		Company:    u.Company,
		Position:   u.Position,
	}
}

// VerifyPassword checks a plain password against the stored hash
func (u *User) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// SetPassword validates and stores a new password
func (u *User) SetPassword(password string) error {
	if err := ValidatePassword(password); err != nil {
		return err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	u.PasswordHash = hash
	u.Touch()
	return nil
}

// ConfirmEmail marks the address as confirmed
func (u *User) ConfirmEmail() {
	u.IsEmailConfirmed = true
	u.Touch()
}

// RecordLogin stores the login timestamp
func (u *User) RecordLogin() {
	now := time.Now()
	u.LastLoginAt = &now
}

// IsShop reports whether the user is a shop partner
func (u *User) IsShop() bool {
	return u.Type == UserTypeShop
}

// CanLogin reports whether the account may authenticate
func (u *User) CanLogin() bool {
	return u.IsActive
}

// ValidatePassword applies the password policy: at least 8 characters, at
// most 128, and not entirely numeric.
func ValidatePassword(password string) error {
	if password == "" {
		return shared.NewDomainError("INVALID_PASSWORD", "Password is required")
	}
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "This password is too short. It must contain at least 8 characters.")
	}
	if len(password) > 128 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 128 characters")
	}
	numeric := true
	for _, r := range password {
		if !unicode.IsDigit(r) {
			numeric = false
			break
		}
	}
	if numeric {
		return shared.NewDomainError("INVALID_PASSWORD", "This password is entirely numeric.")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email is required")
	}
	if len(email) > 254 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 254 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Enter a valid email address.")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeEmail lower-cases and trims an address for lookups
func NormalizeEmail(email string) string {
	return normalizeEmail(email)
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
