package admin

import (
	"errors"
	"strconv"
	"time"

	handlershared "github.com/stablefront/internal/http/handlers/shared"
	"github.com/stablefront/internal/http/response"
	"github.com/stablefront/internal/muralpay"
	"github.com/stablefront/internal/repository"
	"github.com/stablefront/internal/service"

	"github.com/gin-gonic/gin"
)

// ListOrders 订单列表（支持状态/编号/邮箱/时间范围过滤）
func (h *Handler) ListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	filter := repository.OrderListFilter{
		Status:        c.Query("status"),
		OrderNo:       c.Query("order_no"),
		CustomerEmail: c.Query("customer_email"),
		Page:          page,
		PageSize:      pageSize,
	}
	if raw := c.Query("created_from"); raw != "" {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.CreatedFrom = &ts
		}
	}
	if raw := c.Query("created_to"); raw != "" {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.CreatedTo = &ts
		}
	}

	orders, total, err := h.OrderService.ListAdmin(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list orders", err)
		return
	}
	response.SuccessWithPage(c, orders, response.NewPagination(page, pageSize, total))
}

// GetOrder 订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := parseOrderID(c)
	if !ok {
		return
	}
	order, err := h.OrderService.GetOrderByID(id)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			response.NotFound(c, "order not found")
			return
		}
		respondError(c, response.CodeInternal, "failed to get order", err)
		return
	}
	response.Success(c, order)
}

// ExecutePayout 手动执行订单出金（兜底入口，队列故障时使用）
func (h *Handler) ExecutePayout(c *gin.Context) {
	id, ok := parseOrderID(c)
	if !ok {
		return
	}
	order, err := h.PayoutService.Execute(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			response.NotFound(c, "order not found")
		case errors.Is(err, service.ErrPayoutNotReady):
			response.Conflict(c, "payout request not created for this order")
		case errors.Is(err, muralpay.ErrRequestFailed):
			respondError(c, response.CodeInternal, "payout provider request failed", err)
		default:
			respondError(c, response.CodeInternal, "failed to execute payout", err)
		}
		return
	}
	response.Success(c, order)
}

// RefreshPayout 拉取出金请求最新状态
func (h *Handler) RefreshPayout(c *gin.Context) {
	id, ok := parseOrderID(c)
	if !ok {
		return
	}
	order, err := h.PayoutService.Refresh(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			response.NotFound(c, "order not found")
		case errors.Is(err, service.ErrPayoutNotReady):
			response.Conflict(c, "payout request not created for this order")
		default:
			respondError(c, response.CodeInternal, "failed to refresh payout", err)
		}
		return
	}
	response.Success(c, order)
}

// FulfillOrder 标记订单已履约
func (h *Handler) FulfillOrder(c *gin.Context) {
	id, ok := parseOrderID(c)
	if !ok {
		return
	}
	order, err := h.OrderService.Fulfill(id)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			response.NotFound(c, "order not found")
			return
		}
		response.Conflict(c, err.Error())
		return
	}
	response.Success(c, order)
}

func parseOrderID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid order id", nil)
		return 0, false
	}
	return uint(id), true
}
