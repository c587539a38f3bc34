package public

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/stablefront/internal/constants"
	"github.com/stablefront/internal/muralpay"
	"github.com/stablefront/internal/service"

	"github.com/gin-gonic/gin"
)

// MuralWebhook Mural Pay 账户入账 webhook。
//
// 这条路由不走统一响应信封：HTTP 状态码就是协议本身。
// 提供方按状态码决定是否重投——2xx 确认收货，非 2xx 触发重投，
// 所以业务上已终结的投递（订单不存在、重复投递、金额不符）也必须回 200，
// 只有出金创建失败这类可重试故障才回 500。
func (h *Handler) MuralWebhook(c *gin.Context) {
	log := requestLog(c)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Warnw("mural_webhook_body_read_failed", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return
	}

	signature := strings.TrimSpace(c.GetHeader(constants.MuralWebhookSignatureHeader))
	timestamp := strings.TrimSpace(c.GetHeader(constants.MuralWebhookTimestampHeader))
	log.Infow("mural_webhook_received",
		"client_ip", c.ClientIP(),
		"body_size", len(body),
		"has_signature", signature != "",
		"timestamp", timestamp,
	)

	if h.WebhookVerifier == nil {
		log.Errorw("mural_webhook_verifier_not_configured")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook verification unavailable"})
		return
	}
	if signature == "" || timestamp == "" {
		log.Warnw("mural_webhook_signature_missing")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing signature"})
		return
	}
	if !h.WebhookVerifier.Verify(body, signature, timestamp) {
		log.Warnw("mural_webhook_signature_invalid")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	event, err := muralpay.ParseAccountCreditedEvent(body)
	if err != nil {
		var verr *muralpay.ValidationError
		if errors.As(err, &verr) {
			log.Warnw("mural_webhook_event_invalid", "fields", verr.Fields)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event", "fields": verr.Fields})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event"})
		return
	}

	result, err := h.ReconcileService.HandleAccountCredited(c.Request.Context(), event)
	if err != nil && (result == nil || result.Outcome != service.OutcomePayoutFailed) {
		log.Errorw("mural_webhook_reconcile_failed", "event_id", event.EventID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reconciliation failed"})
		return
	}

	switch result.Outcome {
	case service.OutcomePaid:
		c.JSON(http.StatusOK, gin.H{
			"outcome":  string(result.Outcome),
			"order_no": result.Order.OrderNo,
			"status":   result.Order.Status,
		})
	case service.OutcomeMismatch:
		c.JSON(http.StatusOK, gin.H{
			"outcome":  string(result.Outcome),
			"order_no": result.Order.OrderNo,
			"status":   result.Order.Status,
		})
	case service.OutcomeAlreadyProcessed:
		c.JSON(http.StatusOK, gin.H{
			"outcome":  string(result.Outcome),
			"order_no": result.Order.OrderNo,
			"status":   result.Order.Status,
		})
	case service.OutcomeOrderNotFound:
		c.JSON(http.StatusOK, gin.H{"outcome": string(result.Outcome)})
	case service.OutcomePayoutFailed:
		// 订单已回滚 PENDING，500 让提供方重投后重试出金
		c.JSON(http.StatusInternalServerError, gin.H{
			"outcome":  string(result.Outcome),
			"order_no": result.Order.OrderNo,
		})
	default:
		log.Errorw("mural_webhook_unknown_outcome", "outcome", result.Outcome)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unknown outcome"})
	}
}
