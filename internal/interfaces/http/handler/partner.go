package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apppartner "github.com/shopfront/backend/internal/application/partner"
	apptrade "github.com/shopfront/backend/internal/application/trade"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/domain/trade"
	"github.com/shopfront/backend/internal/interfaces/http/dto"
)

// ShopService lists shops and manages the partner's own shop
type ShopService interface {
	ListShops(ctx context.Context, filter shared.Filter) (shared.Paginated[apppartner.ShopResponse], error)
	GetState(ctx context.Context, userID uuid.UUID) (*apppartner.ShopResponse, error)
	SetState(ctx context.Context, userID uuid.UUID, state string) (*apppartner.ShopResponse, error)
	ListPartnerOrders(ctx context.Context, userID uuid.UUID, filter trade.OrderFilter) (shared.Paginated[apptrade.OrderResponse], error)
}

// UpdateService queues price-list imports and reports their progress
type UpdateService interface {
	RequestUpdate(ctx context.Context, userID uuid.UUID, url string) (*apppartner.UpdateJobResponse, error)
	GetUpdateStatus(ctx context.Context, userID, jobID uuid.UUID) (*apppartner.UpdateJobResponse, error)
}

// SetStateRequest switches the partner's shop on or off
type SetStateRequest struct {
	State string `json:"state" binding:"required,shop_state"`
}

// UpdateRequest points at the partner's price list
type UpdateRequest struct {
	URL string `json:"url" binding:"max=2048"`
}

// PartnerOrderListRequest filters the partner's orders
type PartnerOrderListRequest struct {
	dto.ListRequest
	Status string `form:"status" binding:"omitempty,oneof=new confirmed assembled sent delivered canceled returned"`
}

// PartnerHandler serves the shop list and the partner endpoints
type PartnerHandler struct {
	BaseHandler
	shopService   ShopService
	updateService UpdateService
}

// NewPartnerHandler creates a new partner handler
func NewPartnerHandler(shopService ShopService, updateService UpdateService) *PartnerHandler {
	return &PartnerHandler{
		shopService:   shopService,
		updateService: updateService,
	}
}

// ListShops godoc
// @Summary      List active shops
// @Tags         shops
// @Produce      json
// @Param        page      query int    false "Page number" minimum(1)
// @Param        page_size query int    false "Page size" minimum(1) maximum(100)
// @Param        search    query string false "Name search"
// @Success      200 {object} APIResponse[[]partner.ShopResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /shops [get]
func (h *PartnerHandler) ListShops(c *gin.Context) {
	var req dto.ListRequest
	if !h.BindQuery(c, &req) {
		return
	}

	page, err := h.shopService.ListShops(c.Request.Context(), req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	paginated(c, page)
}

// GetState godoc
// @Summary      Get the partner's shop state
// @Tags         partner
// @Produce      json
// @Success      200 {object} APIResponse[partner.ShopResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /partner/state [get]
func (h *PartnerHandler) GetState(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	shop, err := h.shopService.GetState(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, shop)
}

// SetState godoc
// @Summary      Switch the partner's shop on or off
// @Description  Accepts on/off as well as true/false
// @Tags         partner
// @Accept       json
// @Produce      json
// @Param        request body SetStateRequest true "New state"
// @Success      200 {object} APIResponse[partner.ShopResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /partner/state [post]
func (h *PartnerHandler) SetState(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	var req SetStateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	shop, err := h.shopService.SetState(c.Request.Context(), userID, req.State)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, shop)
}

// RequestUpdate godoc
// @Summary      Import the partner's price list
// @Description  Queues an import of the YAML price list at url. Only one import per partner runs at a time.
// @Tags         partner
// @Accept       json
// @Produce      json
// @Param        request body UpdateRequest true "Price list URL"
// @Success      202 {object} APIResponse[partner.UpdateJobResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /partner/update [post]
func (h *PartnerHandler) RequestUpdate(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	var req UpdateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	job, err := h.updateService.RequestUpdate(c.Request.Context(), userID, req.URL)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Accepted(c, job)
}

// GetUpdateStatus godoc
// @Summary      Get a price list import job
// @Tags         partner
// @Produce      json
// @Param        id path string true "Job ID" format(uuid)
// @Success      200 {object} APIResponse[partner.UpdateJobResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /partner/update/{id} [get]
func (h *PartnerHandler) GetUpdateStatus(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	jobID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	job, err := h.updateService.GetUpdateStatus(c.Request.Context(), userID, jobID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, job)
}

// ListOrders godoc
// @Summary      List orders containing the partner's products
// @Description  Each order carries only the lines of the partner's shop
// @Tags         partner
// @Produce      json
// @Param        page      query int    false "Page number" minimum(1)
// @Param        page_size query int    false "Page size" minimum(1) maximum(100)
// @Param        status    query string false "Order status"
// @Success      200 {object} APIResponse[[]trade.OrderResponse]
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /partner/orders [get]
func (h *PartnerHandler) ListOrders(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	var req PartnerOrderListRequest
	if !h.BindQuery(c, &req) {
		return
	}

	filter := trade.OrderFilter{Filter: req.ToFilter()}
	if req.Status != "" {
		status := trade.OrderStatus(req.Status)
		filter.Status = &status
	}

	page, err := h.shopService.ListPartnerOrders(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	paginated(c, page)
}
