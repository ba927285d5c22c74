package contact

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/contact"
	"github.com/shopfront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

var errContactNotFound = shared.NewDomainError("NOT_FOUND", "Contact not found")

// ContactRequest carries contact fields from create and update requests
type ContactRequest struct {
	Type      string `json:"type" binding:"omitempty,oneof=buyer shop"`
	Name      string `json:"name" binding:"max=100"`
	Phone     string `json:"phone" binding:"required,phone"`
	City      string `json:"city" binding:"omitempty,city"`
	Street    string `json:"street" binding:"max=100"`
	House     string `json:"house" binding:"max=15"`
	Structure string `json:"structure" binding:"max=15"`
	Building  string `json:"building" binding:"max=15"`
	Apartment string `json:"apartment" binding:"max=15"`
}

func (r ContactRequest) details() contact.Details {
	return contact.Details{
		Type:      contact.Type(r.Type),
		Name:      r.Name,
		Phone:     r.Phone,
		City:      r.City,
		Street:    r.Street,
		House:     r.House,
		Structure: r.Structure,
		Building:  r.Building,
		Apartment: r.Apartment,
	}
}

// ContactResponse represents a contact in API responses
type ContactResponse struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	City      string    `json:"city"`
	Street    string    `json:"street"`
	House     string    `json:"house"`
	Structure string    `json:"structure"`
	Building  string    `json:"building"`
	Apartment string    `json:"apartment"`
	CreatedAt time.Time `json:"created_at"`
}

// ToContactResponse converts a domain Contact to response DTO
func ToContactResponse(c *contact.Contact) ContactResponse {
	return ContactResponse{
		ID:        c.ID,
		Type:      string(c.Type),
		Name:      c.Name,
		Phone:     c.Phone,
		City:      c.City,
		Street:    c.Street,
		House:     c.House,
		Structure: c.Structure,
		Building:  c.Building,
		Apartment: c.Apartment,
		CreatedAt: c.CreatedAt,
	}
}

// DeleteContactsResult reports how many contacts were removed
type DeleteContactsResult struct {
	Deleted int64 `json:"deleted"`
}

// ContactService manages a user's delivery contacts
type ContactService struct {
	contactRepo contact.ContactRepository
	logger      *zap.Logger
}

// NewContactService creates a new ContactService
func NewContactService(contactRepo contact.ContactRepository, logger *zap.Logger) *ContactService {
	return &ContactService{
		contactRepo: contactRepo,
		logger:      logger,
	}
}

// ListContacts returns the user's contacts
func (s *ContactService) ListContacts(ctx context.Context, userID uuid.UUID) ([]ContactResponse, error) {
	contacts, err := s.contactRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]ContactResponse, len(contacts))
	for i := range contacts {
		out[i] = ToContactResponse(&contacts[i])
	}
	return out, nil
}

// CreateContact adds a contact; a user keeps at most contact.MaxPerUser
func (s *ContactService) CreateContact(ctx context.Context, userID uuid.UUID, req ContactRequest) (*ContactResponse, error) {
	c, err := contact.NewContact(userID, req.details())
	if err != nil {
		return nil, err
	}
	if err := s.contactRepo.CreateLimited(ctx, c, contact.MaxPerUser); err != nil {
		if errors.Is(err, contact.ErrLimitReached) {
			return nil, shared.NewDomainError("CONTACT_LIMIT",
				fmt.Sprintf("Maximum number of contacts (%d) reached", contact.MaxPerUser))
		}
		return nil, err
	}

	s.logger.Debug("Contact created", zap.String("user_id", userID.String()), zap.String("contact_id", c.ID.String()))
	resp := ToContactResponse(c)
	return &resp, nil
}

// UpdateContact replaces the details of one of the user's contacts
func (s *ContactService) UpdateContact(ctx context.Context, userID, contactID uuid.UUID, req ContactRequest) (*ContactResponse, error) {
	c, err := s.contactRepo.FindByID(ctx, contactID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, errContactNotFound
		}
		return nil, err
	}
	if !c.BelongsTo(userID) {
		return nil, errContactNotFound
	}
	if err := c.Update(req.details()); err != nil {
		return nil, err
	}
	if err := s.contactRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	resp := ToContactResponse(c)
	return &resp, nil
}

// DeleteContacts removes the user's contacts among ids
func (s *ContactService) DeleteContacts(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (*DeleteContactsResult, error) {
	if len(ids) == 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "All necessary arguments are not specified")
	}
	deleted, err := s.contactRepo.DeleteForUser(ctx, userID, ids)
	if err != nil {
		return nil, err
	}
	if deleted == 0 {
		return nil, errContactNotFound
	}
	return &DeleteContactsResult{Deleted: deleted}, nil
}
