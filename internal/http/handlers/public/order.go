package public

import (
	"errors"

	"github.com/stablefront/internal/http/response"
	"github.com/stablefront/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateOrder 买家下单
func (h *Handler) CreateOrder(c *gin.Context) {
	var input service.CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	order, err := h.OrderService.CreateOrder(input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyOrder),
			errors.Is(err, service.ErrInvalidQuantity):
			respondError(c, response.CodeBadRequest, err.Error(), nil)
		case errors.Is(err, service.ErrProductNotFound):
			response.NotFound(c, "product not found")
		case errors.Is(err, service.ErrProductInactive):
			respondError(c, response.CodeBadRequest, "product is not active", nil)
		default:
			respondError(c, response.CodeInternal, "failed to create order", err)
		}
		return
	}
	response.Success(c, order)
}

// GetOrder 订单查询（买家凭订单编号查询支付状态）
func (h *Handler) GetOrder(c *gin.Context) {
	orderNo := c.Param("order_no")
	order, err := h.OrderService.GetOrder(orderNo)
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

// AttachTxHashRequest 提交交易哈希请求体
type AttachTxHashRequest struct {
	TxHash string `json:"tx_hash" binding:"required"`
}

// AttachTxHash 买家提交链上交易哈希，等待 webhook 核销
func (h *Handler) AttachTxHash(c *gin.Context) {
	orderNo := c.Param("order_no")
	var req AttachTxHashRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	order, err := h.OrderService.AttachTxHash(orderNo, req.TxHash)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			response.NotFound(c, "order not found")
		case errors.Is(err, service.ErrInvalidTxHash):
			respondError(c, response.CodeBadRequest, "invalid transaction hash", nil)
		case errors.Is(err, service.ErrTxHashAlreadySet):
			response.Conflict(c, "transaction hash already set")
		default:
			respondError(c, response.CodeInternal, "failed to attach transaction hash", err)
		}
		return
	}
	response.Success(c, order)
}
