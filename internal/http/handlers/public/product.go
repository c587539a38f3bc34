package public

import (
	"errors"
	"strconv"

	"github.com/stablefront/internal/cache"
	handlershared "github.com/stablefront/internal/http/handlers/shared"
	"github.com/stablefront/internal/http/response"
	"github.com/stablefront/internal/repository"
	"github.com/stablefront/internal/service"

	"github.com/gin-gonic/gin"
)

// ListProducts 商品列表（仅上架商品）
func (h *Handler) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	products, total, err := h.ProductService.List(repository.ProductListFilter{
		Search:     c.Query("search"),
		OnlyActive: true,
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list products", err)
		return
	}
	response.SuccessWithPage(c, products, response.NewPagination(page, pageSize, total))
}

// GetProduct 商品详情
func (h *Handler) GetProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid product id", nil)
		return
	}

	if cached, hit, cacheErr := cache.GetProduct(c.Request.Context(), uint(id)); cacheErr == nil && hit {
		if cached.IsActive {
			response.Success(c, cached)
			return
		}
	}

	product, err := h.ProductService.Get(uint(id))
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			response.NotFound(c, "product not found")
			return
		}
		respondError(c, response.CodeInternal, "failed to get product", err)
		return
	}
	if !product.IsActive {
		response.NotFound(c, "product not found")
		return
	}

	if err := cache.SetProduct(c.Request.Context(), product); err != nil {
		requestLog(c).Debugw("product_cache_set_failed", "product_id", product.ID, "error", err)
	}
	response.Success(c, product)
}
