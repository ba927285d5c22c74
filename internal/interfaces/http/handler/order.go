package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apptrade "github.com/shopfront/backend/internal/application/trade"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/interfaces/http/dto"
)

// OrderService places orders and drives their lifecycle
type OrderService interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID, input apptrade.PlaceOrderInput) (*apptrade.OrderResponse, error)
	ListOrders(ctx context.Context, userID uuid.UUID, filter shared.Filter) (shared.Paginated[apptrade.OrderResponse], error)
	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*apptrade.OrderResponse, error)
	ChangeOrderStatus(ctx context.Context, userID, orderID uuid.UUID, input apptrade.ChangeStatusInput) (*apptrade.OrderResponse, error)
}

// PlaceOrderRequest names the delivery contact of the order
type PlaceOrderRequest struct {
	Contact uuid.UUID `json:"contact" binding:"required"`
}

// ChangeStatusRequest moves an order to a new status
type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=new confirmed assembled sent delivered canceled returned"`
}

// OrderHandler serves the buyer's orders
type OrderHandler struct {
	BaseHandler
	orderService OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// PlaceOrder godoc
// @Summary      Place the basket as an order
// @Description  Reserves stock and moves the basket to status new
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body PlaceOrderRequest true "Delivery contact"
// @Success      201 {object} APIResponse[trade.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders [post]
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	var req PlaceOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	order, err := h.orderService.PlaceOrder(c.Request.Context(), userID, apptrade.PlaceOrderInput{
		Contact: req.Contact,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, order)
}

// ListOrders godoc
// @Summary      List the user's orders
// @Description  Placed orders, newest first
// @Tags         orders
// @Produce      json
// @Param        page      query int false "Page number" minimum(1)
// @Param        page_size query int false "Page size" minimum(1) maximum(100)
// @Success      200 {object} APIResponse[[]trade.OrderResponse]
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	var req dto.ListRequest
	if !h.BindQuery(c, &req) {
		return
	}

	page, err := h.orderService.ListOrders(c.Request.Context(), userID, req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	paginated(c, page)
}

// GetOrder godoc
// @Summary      Get an order
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[trade.OrderResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	orderID, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), userID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// ChangeStatus godoc
// @Summary      Change an order's status
// @Description  Staff, or a partner with lines in the order. Canceling or returning restores stock.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id      path string              true "Order ID" format(uuid)
// @Param        request body ChangeStatusRequest true "New status"
// @Success      200 {object} APIResponse[trade.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id}/status [patch]
func (h *OrderHandler) ChangeStatus(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	orderID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req ChangeStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	order, err := h.orderService.ChangeOrderStatus(c.Request.Context(), userID, orderID, apptrade.ChangeStatusInput{
		Status: req.Status,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}
