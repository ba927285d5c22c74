package contact

import (
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
)

// Type tells whose address a contact is
type Type string

const (
	TypeBuyer Type = "buyer"
	TypeShop  Type = "shop"
)

// MaxPerUser caps how many contacts a user may keep
const MaxPerUser = 5

// ErrLimitReached is returned by ContactRepository.CreateLimited when the
// user already keeps the maximum number of contacts
var ErrLimitReached = errors.New("contact limit reached")

// placeholder for address parts left empty
const notAvailable = "n/a"

var (
	phoneRegex = regexp.MustCompile(`^\+?1?\d{9,15}$`)
	cityRegex  = regexp.MustCompile(`^[a-zA-Z\s-]+$`)
)

// Validation messages
const (
	MsgInvalidPhone = "Phone number must be entered in the format: '+999999999'. Up to 15 digits allowed."
	MsgInvalidCity  = "City name is not a valid. Only letters, spaces, and hyphens are allowed."
)

// Contact is a delivery address and phone of a user
type Contact struct {
	shared.BaseEntity
	UserID    uuid.UUID
	Type      Type
	Name      string
	Phone     string
	City      string
	Street    string
	House     string
	Structure string
	Building  string
	Apartment string
}

// Details is the editable part of a contact
type Details struct {
	Type      Type
	Name      string
	Phone     string
	City      string
	Street    string
	House     string
	Structure string
	Building  string
	Apartment string
}

// NewContact creates a contact for a user
func NewContact(userID uuid.UUID, d Details) (*Contact, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User is required")
	}
	c := &Contact{BaseEntity: shared.NewBaseEntity(), UserID: userID}
	if err := c.Update(d); err != nil {
		return nil, err
	}
	return c, nil
}

// Update validates and applies new details
func (c *Contact) Update(d Details) error {
	if d.Type == "" {
		d.Type = TypeBuyer
	}
	if d.Type != TypeBuyer && d.Type != TypeShop {
		return shared.NewDomainError("INVALID_CONTACT_TYPE", "Contact type must be one of: buyer, shop")
	}
	d.Phone = strings.TrimSpace(d.Phone)
	if !phoneRegex.MatchString(d.Phone) {
		return shared.NewDomainError("INVALID_PHONE", MsgInvalidPhone)
	}
	d.City = orNA(d.City)
	if d.City != notAvailable && !cityRegex.MatchString(d.City) {
		return shared.NewDomainError("INVALID_CITY", MsgInvalidCity)
	}
	for _, v := range []string{d.Name, d.City, d.Street, d.House, d.Structure, d.Building, d.Apartment} {
		if len(v) > 100 {
			return shared.NewDomainError("INVALID_CONTACT", "Contact fields cannot exceed 100 characters")
		}
	}

	c.Type = d.Type
	c.Name = strings.TrimSpace(d.Name)
	c.Phone = d.Phone
	c.City = d.City
	c.Street = orNA(d.Street)
	c.House = orNA(d.House)
	c.Structure = strings.TrimSpace(d.Structure)
	c.Building = strings.TrimSpace(d.Building)
	c.Apartment = strings.TrimSpace(d.Apartment)
	c.Touch()
	return nil
}

// ValidPhone reports whether s is an acceptable phone number
func ValidPhone(s string) bool {
	return phoneRegex.MatchString(strings.TrimSpace(s))
}

// ValidCity reports whether s is an acceptable city name
func ValidCity(s string) bool {
	return cityRegex.MatchString(s)
}

// BelongsTo reports whether the contact is owned by the user
func (c *Contact) BelongsTo(userID uuid.UUID) bool {
	return c.UserID == userID
}

func orNA(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return notAvailable
	}
	return s
}
