package service

import (
	"context"
	"errors"

	"github.com/stablefront/internal/constants"
	"github.com/stablefront/internal/logger"
	"github.com/stablefront/internal/models"
	"github.com/stablefront/internal/muralpay"
	"github.com/stablefront/internal/repository"
)

// PayoutService 出金执行服务（两阶段出金的第二阶段）
type PayoutService struct {
	orderRepo repository.OrderRepository
	payout    PayoutClient
}

// NewPayoutService 创建出金执行服务
func NewPayoutService(orderRepo repository.OrderRepository, payout PayoutClient) *PayoutService {
	return &PayoutService{orderRepo: orderRepo, payout: payout}
}

// Execute 执行订单关联的出金请求。
// 出金请求已处于终态时按幂等成功处理；提供方拒绝重复执行时
// 以查询到的最新状态为准回写订单。
func (s *PayoutService) Execute(ctx context.Context, orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.PayoutRequestID == "" {
		return nil, ErrPayoutNotReady
	}
	if isPayoutTerminal(order.PayoutStatus) {
		logger.Infow("payout_already_terminal",
			"order_no", order.OrderNo,
			"payout_request_id", order.PayoutRequestID,
			"payout_status", order.PayoutStatus,
		)
		return order, nil
	}

	result, err := s.payout.ExecutePayoutRequest(ctx, order.PayoutRequestID)
	if err != nil {
		if errors.Is(err, muralpay.ErrPayoutAlreadyExecuted) {
			result, err = s.payout.GetPayoutRequest(ctx, order.PayoutRequestID)
			if err != nil {
				return nil, err
			}
		} else {
			logger.Errorw("payout_execute_failed",
				"order_no", order.OrderNo,
				"payout_request_id", order.PayoutRequestID,
				"error", err,
			)
			return nil, err
		}
	}

	updates := map[string]interface{}{"payout_status": result.Status}
	if len(result.Payouts) > 0 {
		payout := result.Payouts[0]
		if payout.ID != "" {
			updates["payout_id"] = payout.ID
			order.PayoutID = payout.ID
		}
		if payout.FiatAmount != nil {
			amount := payout.FiatAmount.FiatAmount.String() + " " + payout.FiatAmount.FiatCurrencyCode
			updates["payout_amount"] = amount
			order.PayoutAmount = amount
		}
	}
	if err := s.orderRepo.UpdatePayoutFields(order.ID, updates); err != nil {
		return nil, err
	}
	order.PayoutStatus = result.Status

	logger.Infow("payout_executed",
		"order_no", order.OrderNo,
		"payout_request_id", order.PayoutRequestID,
		"payout_status", result.Status,
	)
	return order, nil
}

// Refresh 从提供方拉取出金请求最新状态并回写订单
func (s *PayoutService) Refresh(ctx context.Context, orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.PayoutRequestID == "" {
		return nil, ErrPayoutNotReady
	}

	result, err := s.payout.GetPayoutRequest(ctx, order.PayoutRequestID)
	if err != nil {
		return nil, err
	}
	if err := s.orderRepo.UpdatePayoutFields(order.ID, map[string]interface{}{"payout_status": result.Status}); err != nil {
		return nil, err
	}
	order.PayoutStatus = result.Status
	return order, nil
}

// isPayoutTerminal 出金请求是否已处于无需再执行的状态
func isPayoutTerminal(status string) bool {
	switch status {
	case constants.PayoutStatusExecuted, constants.PayoutStatusCompleted, constants.PayoutStatusCanceled:
		return true
	}
	return false
}
