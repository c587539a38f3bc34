package queue

import (
	"encoding/json"

	"github.com/stablefront/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskPayoutExecute 出金执行任务（两阶段出金第二阶段）
	TaskPayoutExecute = constants.TaskPayoutExecute
	// TaskOrderPaidNotify 订单支付成功通知任务
	TaskOrderPaidNotify = constants.TaskOrderPaidNotify
)

// PayoutExecutePayload 出金执行任务载荷
type PayoutExecutePayload struct {
	OrderID uint `json:"order_id"`
}

// OrderPaidNotifyPayload 支付成功通知任务载荷
type OrderPaidNotifyPayload struct {
	OrderID uint `json:"order_id"`
}

// NewPayoutExecuteTask 创建出金执行任务
func NewPayoutExecuteTask(payload PayoutExecutePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPayoutExecute, body), nil
}

// NewOrderPaidNotifyTask 创建支付成功通知任务
func NewOrderPaidNotifyTask(payload OrderPaidNotifyPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderPaidNotify, body), nil
}
