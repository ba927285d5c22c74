package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apptrade "github.com/shopfront/backend/internal/application/trade"
)

// BasketService manages the user's basket
type BasketService interface {
	GetBasket(ctx context.Context, userID uuid.UUID) (*apptrade.OrderResponse, error)
	AddToBasket(ctx context.Context, userID uuid.UUID, items []apptrade.BasketItemInput) (*apptrade.BasketChangeResult, error)
	UpdateBasket(ctx context.Context, userID uuid.UUID, items []apptrade.BasketItemInput) (*apptrade.BasketChangeResult, error)
	RemoveFromBasket(ctx context.Context, userID uuid.UUID, productInfoIDs []uuid.UUID) (*apptrade.BasketRemoveResult, error)
}

// BasketItemRequest is one basket line
type BasketItemRequest struct {
	Shop        uuid.UUID `json:"shop" binding:"required"`
	ProductInfo uuid.UUID `json:"product_info" binding:"required"`
	Quantity    int       `json:"quantity" binding:"required,min=1"`
}

// BasketItemsRequest carries the lines to add or update. An empty list is
// rejected by the service.
type BasketItemsRequest struct {
	Items []BasketItemRequest `json:"items" binding:"max=100,dive"`
}

// BasketRemoveRequest lists the offers to take out of the basket
type BasketRemoveRequest struct {
	Items []uuid.UUID `json:"items" binding:"required,min=1,max=100"`
}

func (r BasketItemsRequest) toInput() []apptrade.BasketItemInput {
	items := make([]apptrade.BasketItemInput, len(r.Items))
	for i, item := range r.Items {
		items[i] = apptrade.BasketItemInput{
			Shop:        item.Shop,
			ProductInfo: item.ProductInfo,
			Quantity:    item.Quantity,
		}
	}
	return items
}

// BasketHandler serves the basket endpoints
type BasketHandler struct {
	BaseHandler
	basketService BasketService
}

// NewBasketHandler creates a new basket handler
func NewBasketHandler(basketService BasketService) *BasketHandler {
	return &BasketHandler{basketService: basketService}
}

// GetBasket godoc
// @Summary      Get the basket
// @Description  The basket is created on first use
// @Tags         basket
// @Produce      json
// @Success      200 {object} APIResponse[trade.OrderResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /basket [get]
func (h *BasketHandler) GetBasket(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	basket, err := h.basketService.GetBasket(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, basket)
}

// AddToBasket godoc
// @Summary      Add items to the basket
// @Description  Sets the quantity of each offer, adding lines that are missing
// @Tags         basket
// @Accept       json
// @Produce      json
// @Param        request body BasketItemsRequest true "Basket lines"
// @Success      200 {object} APIResponse[trade.BasketChangeResult]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /basket [post]
func (h *BasketHandler) AddToBasket(c *gin.Context) {
	h.change(c, h.basketService.AddToBasket)
}

// UpdateBasket godoc
// @Summary      Update basket quantities
// @Description  Every offer must already be in the basket
// @Tags         basket
// @Accept       json
// @Produce      json
// @Param        request body BasketItemsRequest true "Basket lines"
// @Success      200 {object} APIResponse[trade.BasketChangeResult]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /basket [put]
func (h *BasketHandler) UpdateBasket(c *gin.Context) {
	h.change(c, h.basketService.UpdateBasket)
}

type basketChange func(ctx context.Context, userID uuid.UUID, items []apptrade.BasketItemInput) (*apptrade.BasketChangeResult, error)

func (h *BasketHandler) change(c *gin.Context, apply basketChange) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	var req BasketItemsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := apply(c.Request.Context(), userID, req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// RemoveFromBasket godoc
// @Summary      Remove items from the basket
// @Tags         basket
// @Accept       json
// @Produce      json
// @Param        request body BasketRemoveRequest true "Offer IDs"
// @Success      200 {object} APIResponse[trade.BasketRemoveResult]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /basket [delete]
func (h *BasketHandler) RemoveFromBasket(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	var req BasketRemoveRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.basketService.RemoveFromBasket(c.Request.Context(), userID, req.Items)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
