package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/stablefront/internal/logger"
	"github.com/stablefront/internal/provider"
	"github.com/stablefront/internal/queue"
	"github.com/stablefront/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskPayoutExecute, c.handlePayoutExecute)
	mux.HandleFunc(queue.TaskOrderPaidNotify, c.handleOrderPaidNotify)
}

// handlePayoutExecute 两阶段出金的第二阶段：执行已创建的出金请求。
// 失败返回错误交给 asynq 按退避重试；终态幂等由出金服务保证。
func (c *Consumer) handlePayoutExecute(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_payout_execute_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.PayoutExecutePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_payout_execute_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_payout_execute_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	if c.PayoutService == nil {
		logger.Warnw("worker_payout_execute_skip_service_nil", "order_id", payload.OrderID)
		return nil
	}
	_, err := c.PayoutService.Execute(ctx, payload.OrderID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			logger.Debugw("worker_payout_execute_skip_order_not_found", "order_id", payload.OrderID)
			return nil
		case errors.Is(err, service.ErrPayoutNotReady):
			logger.Debugw("worker_payout_execute_skip_not_ready", "order_id", payload.OrderID)
			return nil
		default:
			logger.Warnw("worker_payout_execute_failed", "order_id", payload.OrderID, "error", err)
			return err
		}
	}
	return nil
}

// handleOrderPaidNotify 支付成功通知。
// 当前通知通道为结构化日志，邮件通道接入后在这里替换发送实现。
func (c *Consumer) handleOrderPaidNotify(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_paid_notify_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderPaidNotifyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_paid_notify_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_paid_notify_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	order, err := c.OrderRepo.GetByID(payload.OrderID)
	if err != nil {
		logger.Warnw("worker_order_paid_notify_fetch_order_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	if order == nil {
		logger.Debugw("worker_order_paid_notify_skip_order_not_found", "order_id", payload.OrderID)
		return nil
	}
	logger.Infow("order_paid_notification",
		"order_no", order.OrderNo,
		"customer_email", order.CustomerEmail,
		"total_amount_usdc", order.TotalAmountUSDC,
	)
	return nil
}
