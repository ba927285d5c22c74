package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appcontact "github.com/shopfront/backend/internal/application/contact"
)

// ContactService manages the user's delivery contacts
type ContactService interface {
	ListContacts(ctx context.Context, userID uuid.UUID) ([]appcontact.ContactResponse, error)
	CreateContact(ctx context.Context, userID uuid.UUID, req appcontact.ContactRequest) (*appcontact.ContactResponse, error)
	UpdateContact(ctx context.Context, userID, contactID uuid.UUID, req appcontact.ContactRequest) (*appcontact.ContactResponse, error)
	DeleteContacts(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (*appcontact.DeleteContactsResult, error)
}

// DeleteContactsRequest lists the contacts to delete
type DeleteContactsRequest struct {
	IDs []uuid.UUID `json:"ids" binding:"required,min=1,max=100"`
}

// ContactHandler serves /user/contact
type ContactHandler struct {
	BaseHandler
	contactService ContactService
}

// NewContactHandler creates a new contact handler
func NewContactHandler(contactService ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

// ListContacts godoc
// @Summary      List contacts
// @Tags         contact
// @Produce      json
// @Success      200 {object} APIResponse[[]contact.ContactResponse]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /user/contact [get]
func (h *ContactHandler) ListContacts(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	contacts, err := h.contactService.ListContacts(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if contacts == nil {
		contacts = []appcontact.ContactResponse{}
	}

	h.Success(c, contacts)
}

// CreateContact godoc
// @Summary      Create a contact
// @Description  At most five contacts per user
// @Tags         contact
// @Accept       json
// @Produce      json
// @Param        request body contact.ContactRequest true "Contact"
// @Success      201 {object} APIResponse[contact.ContactResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /user/contact [post]
func (h *ContactHandler) CreateContact(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	var req appcontact.ContactRequest
	if !h.BindJSON(c, &req) {
		return
	}

	contact, err := h.contactService.CreateContact(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, contact)
}

// UpdateContact godoc
// @Summary      Replace a contact
// @Tags         contact
// @Accept       json
// @Produce      json
// @Param        id      path string                 true "Contact ID" format(uuid)
// @Param        request body contact.ContactRequest true "Contact"
// @Success      200 {object} APIResponse[contact.ContactResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /user/contact/{id} [put]
func (h *ContactHandler) UpdateContact(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	contactID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req appcontact.ContactRequest
	if !h.BindJSON(c, &req) {
		return
	}

	contact, err := h.contactService.UpdateContact(c.Request.Context(), userID, contactID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, contact)
}

// DeleteContacts godoc
// @Summary      Delete contacts
// @Tags         contact
// @Accept       json
// @Produce      json
// @Param        request body DeleteContactsRequest true "Contact IDs"
// @Success      200 {object} APIResponse[contact.DeleteContactsResult]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /user/contact [delete]
func (h *ContactHandler) DeleteContacts(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	var req DeleteContactsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.contactService.DeleteContacts(c.Request.Context(), userID, req.IDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
