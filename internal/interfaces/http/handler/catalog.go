package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appcatalog "github.com/shopfront/backend/internal/application/catalog"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/interfaces/http/dto"
)

// CatalogService reads categories and products
type CatalogService interface {
	ListCategories(ctx context.Context, filter catalog.CategoryFilter) (shared.Paginated[appcatalog.CategoryResponse], error)
	ListProducts(ctx context.Context, filter catalog.ProductFilter) (shared.Paginated[appcatalog.ProductResponse], error)
	GetProduct(ctx context.Context, id uuid.UUID) (*appcatalog.ProductResponse, error)
}

// CategoryListRequest filters categories
type CategoryListRequest struct {
	dto.ListRequest
	ShopID string `form:"shop_id" binding:"omitempty,uuid"`
}

// ProductListRequest filters products
type ProductListRequest struct {
	dto.ListRequest
	ShopID     string `form:"shop_id" binding:"omitempty,uuid"`
	CategoryID string `form:"category_id" binding:"omitempty,uuid"`
}

// CatalogHandler serves the public catalog
type CatalogHandler struct {
	BaseHandler
	catalogService CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// ListCategories godoc
// @Summary      List categories
// @Description  Ordered by name, descending
// @Tags         catalog
// @Produce      json
// @Param        page      query int    false "Page number" minimum(1)
// @Param        page_size query int    false "Page size" minimum(1) maximum(100)
// @Param        search    query string false "Name search"
// @Param        shop_id   query string false "Only categories of this shop" format(uuid)
// @Success      200 {object} APIResponse[[]catalog.CategoryResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /categories [get]
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	var req CategoryListRequest
	if !h.BindQuery(c, &req) {
		return
	}
	shopID, _ := optionalUUID(req.ShopID)

	page, err := h.catalogService.ListCategories(c.Request.Context(), catalog.CategoryFilter{
		Filter: req.ToFilter(),
		ShopID: shopID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	paginated(c, page)
}

// ListProducts godoc
// @Summary      List products
// @Description  Products with their offers. Only offers of shops that are on are listed.
// @Tags         catalog
// @Produce      json
// @Param        page        query int    false "Page number" minimum(1)
// @Param        page_size   query int    false "Page size" minimum(1) maximum(100)
// @Param        search      query string false "Product name search"
// @Param        shop_id     query string false "Shop filter" format(uuid)
// @Param        category_id query string false "Category filter" format(uuid)
// @Success      200 {object} APIResponse[[]catalog.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /products [get]
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	var req ProductListRequest
	if !h.BindQuery(c, &req) {
		return
	}
	// both values passed the uuid binding rule
	shopID, _ := optionalUUID(req.ShopID)
	categoryID, _ := optionalUUID(req.CategoryID)

	page, err := h.catalogService.ListProducts(c.Request.Context(), catalog.ProductFilter{
		Filter:     req.ToFilter(),
		ShopID:     shopID,
		CategoryID: categoryID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	paginated(c, page)
}

// GetProduct godoc
// @Summary      Get a product
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} APIResponse[catalog.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /products/{id} [get]
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}

	product, err := h.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}
