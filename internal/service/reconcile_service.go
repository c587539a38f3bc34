package service

import (
	"context"
	"errors"
	"time"

	"github.com/stablefront/internal/constants"
	"github.com/stablefront/internal/logger"
	"github.com/stablefront/internal/models"
	"github.com/stablefront/internal/muralpay"
	"github.com/stablefront/internal/repository"
)

// PayoutClient Mural 出金客户端抽象，便于测试注入
type PayoutClient interface {
	CreatePayoutRequest(ctx context.Context, input muralpay.CreatePayoutInput) (*muralpay.PayoutRequest, error)
	ExecutePayoutRequest(ctx context.Context, payoutRequestID string) (*muralpay.PayoutRequest, error)
	GetPayoutRequest(ctx context.Context, payoutRequestID string) (*muralpay.PayoutRequest, error)
}

// TaskEnqueuer 异步任务投递抽象
type TaskEnqueuer interface {
	EnqueuePayoutExecute(orderID uint) error
	EnqueueOrderPaidNotify(orderID uint) error
}

// ReconcileOutcome 入账对账结果分类
type ReconcileOutcome string

const (
	OutcomePaid             ReconcileOutcome = "paid"              // 金额匹配，订单转 PAID，已创建出金请求
	OutcomeMismatch         ReconcileOutcome = "mismatch"          // 金额或代币不符，订单转 PAYMENT_MISMATCH
	OutcomeOrderNotFound    ReconcileOutcome = "order_not_found"   // 交易哈希未关联任何订单
	OutcomeAlreadyProcessed ReconcileOutcome = "already_processed" // 订单已离开 PENDING，重复投递
	OutcomePayoutFailed     ReconcileOutcome = "payout_failed"     // 出金创建失败，订单已回滚 PENDING
)

// ReconcileResult 入账对账结果
type ReconcileResult struct {
	Outcome ReconcileOutcome
	Order   *models.Order
	// ExpectedAtomic / ReceivedAtomic 仅在金额可换算时有意义
	ExpectedAtomic int64
	ReceivedAtomic int64
}

// ReconcileService 入账对账服务。
// 消费 Mural 账户入账事件，把链上到账核销到订单并触发出金。
type ReconcileService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	payout      PayoutClient
	enqueuer    TaskEnqueuer
}

// NewReconcileService 创建对账服务
func NewReconcileService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	payout PayoutClient,
	enqueuer TaskEnqueuer,
) *ReconcileService {
	return &ReconcileService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		payout:      payout,
		enqueuer:    enqueuer,
	}
}

// HandleAccountCredited 处理账户入账事件。
//
// 状态机：PENDING 订单按金额比对推进到 PAID 或 PAYMENT_MISMATCH；
// 两个方向都走条件更新，并发重投下只有一个投递能赢得状态迁移，
// 输掉的投递归类为 already_processed。只有赢得 PENDING→PAID 的投递
// 才会创建出金请求；创建失败时补偿回滚到 PENDING，由提供方重投重试。
func (s *ReconcileService) HandleAccountCredited(ctx context.Context, event *muralpay.AccountCreditedEvent) (*ReconcileResult, error) {
	txHash := event.Payload.TransactionDetails.TransactionHash

	order, err := s.orderRepo.GetByTxHash(txHash)
	if err != nil {
		return nil, err
	}
	if order == nil {
		logger.Infow("reconcile_order_not_found",
			"event_id", event.EventID,
			"delivery_id", event.DeliveryID,
			"tx_hash", txHash,
		)
		return &ReconcileResult{Outcome: OutcomeOrderNotFound}, nil
	}
	if order.Status != constants.OrderStatusPending {
		logger.Infow("reconcile_already_processed",
			"event_id", event.EventID,
			"delivery_id", event.DeliveryID,
			"attempt_number", event.AttemptNumber,
			"order_no", order.OrderNo,
			"status", order.Status,
		)
		return &ReconcileResult{Outcome: OutcomeAlreadyProcessed, Order: order}, nil
	}

	received, exact := models.AtomicFromToken(event.Payload.TokenAmount.TokenAmount, constants.USDCDecimals)
	matched := exact &&
		event.Payload.TokenAmount.TokenSymbol == order.TokenSymbol &&
		received == order.TotalAmountUSDC

	if !matched {
		return s.markMismatch(event, order, received)
	}
	return s.markPaid(ctx, event, order, received)
}

// markMismatch 推进 PENDING → PAYMENT_MISMATCH
func (s *ReconcileService) markMismatch(event *muralpay.AccountCreditedEvent, order *models.Order, received int64) (*ReconcileResult, error) {
	won, err := s.orderRepo.UpdateStatusIfCurrent(order.ID, constants.OrderStatusPending, constants.OrderStatusPaymentMismatch, nil)
	if err != nil {
		return nil, err
	}
	if !won {
		return &ReconcileResult{Outcome: OutcomeAlreadyProcessed, Order: order}, nil
	}

	logger.Warnw("payment_mismatch",
		"event_id", event.EventID,
		"delivery_id", event.DeliveryID,
		"order_no", order.OrderNo,
		"expected_atomic", order.TotalAmountUSDC,
		"received_amount", event.Payload.TokenAmount.TokenAmount.String(),
		"received_symbol", event.Payload.TokenAmount.TokenSymbol,
	)
	order.Status = constants.OrderStatusPaymentMismatch
	return &ReconcileResult{
		Outcome:        OutcomeMismatch,
		Order:          order,
		ExpectedAtomic: order.TotalAmountUSDC,
		ReceivedAtomic: received,
	}, nil
}

// markPaid 推进 PENDING → PAID 并创建出金请求
func (s *ReconcileService) markPaid(ctx context.Context, event *muralpay.AccountCreditedEvent, order *models.Order, received int64) (*ReconcileResult, error) {
	now := time.Now()
	won, err := s.orderRepo.UpdateStatusIfCurrent(order.ID, constants.OrderStatusPending, constants.OrderStatusPaid,
		map[string]interface{}{"paid_at": now})
	if err != nil {
		return nil, err
	}
	if !won {
		return &ReconcileResult{Outcome: OutcomeAlreadyProcessed, Order: order}, nil
	}
	order.Status = constants.OrderStatusPaid
	order.PaidAt = &now

	logger.Infow("order_paid",
		"event_id", event.EventID,
		"delivery_id", event.DeliveryID,
		"attempt_number", event.AttemptNumber,
		"order_no", order.OrderNo,
		"amount_atomic", received,
	)

	if s.payout == nil {
		return s.rollbackPaid(event, order, errors.New("payout client not configured"))
	}
	payoutReq, err := s.payout.CreatePayoutRequest(ctx, muralpay.CreatePayoutInput{
		Amount: models.TokenFromAtomic(order.TotalAmountUSDC, constants.USDCDecimals),
		Symbol: order.TokenSymbol,
		Memo:   order.OrderNo,
	})
	if err != nil {
		return s.rollbackPaid(event, order, err)
	}

	if err := s.orderRepo.UpdatePayoutFields(order.ID, map[string]interface{}{
		"payout_request_id": payoutReq.ID,
		"payout_status":     payoutReq.Status,
	}); err != nil {
		logger.Errorw("payout_fields_update_failed", "order_no", order.OrderNo, "error", err)
	}
	order.PayoutRequestID = payoutReq.ID
	order.PayoutStatus = payoutReq.Status

	// 销量只在出金请求创建成功后累加：回滚路径不会补偿销量，
	// 放在这里保证重投重试的订单最终只计一次。
	for _, item := range order.Items {
		if err := s.productRepo.IncrementSoldUnits(nil, item.ProductID, item.Quantity); err != nil {
			logger.Errorw("sold_units_increment_failed", "order_no", order.OrderNo, "product_id", item.ProductID, "error", err)
		}
	}

	logger.Infow("payout_request_created",
		"delivery_id", event.DeliveryID,
		"order_no", order.OrderNo,
		"payout_request_id", payoutReq.ID,
		"payout_status", payoutReq.Status,
	)

	if s.enqueuer != nil {
		if err := s.enqueuer.EnqueuePayoutExecute(order.ID); err != nil {
			logger.Errorw("payout_execute_enqueue_failed", "order_no", order.OrderNo, "error", err)
		}
		if err := s.enqueuer.EnqueueOrderPaidNotify(order.ID); err != nil {
			logger.Errorw("order_paid_notify_enqueue_failed", "order_no", order.OrderNo, "error", err)
		}
	}

	return &ReconcileResult{
		Outcome:        OutcomePaid,
		Order:          order,
		ExpectedAtomic: order.TotalAmountUSDC,
		ReceivedAtomic: received,
	}, nil
}

// rollbackPaid 出金创建失败的补偿回滚：PAID → PENDING，
// 让提供方重投时得以重试整个核销流程。
func (s *ReconcileService) rollbackPaid(event *muralpay.AccountCreditedEvent, order *models.Order, cause error) (*ReconcileResult, error) {
	rolledBack, rbErr := s.orderRepo.UpdateStatusIfCurrent(order.ID, constants.OrderStatusPaid, constants.OrderStatusPending,
		map[string]interface{}{"paid_at": nil})
	logger.Errorw("payout_create_failed",
		"event_id", event.EventID,
		"delivery_id", event.DeliveryID,
		"attempt_number", event.AttemptNumber,
		"order_no", order.OrderNo,
		"rolled_back", rolledBack,
		"rollback_error", rbErr,
		"error", cause,
	)
	order.Status = constants.OrderStatusPending
	order.PaidAt = nil
	return &ReconcileResult{Outcome: OutcomePayoutFailed, Order: order}, cause
}
