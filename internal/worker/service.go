package worker

import (
	"context"
	"errors"
	"time"

	"github.com/stablefront/internal/config"
	"github.com/stablefront/internal/logger"
	"github.com/stablefront/internal/queue"

	"github.com/hibiken/asynq"
)

const payoutRefreshInterval = time.Minute

// Service 异步队列服务
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.PayoutService != nil {
		go s.runPayoutRefreshLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runPayoutRefreshLoop 周期同步未结算出金请求的提供方状态
func (s *Service) runPayoutRefreshLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.PayoutService == nil {
		return
	}
	runOnce := func() {
		orders, err := s.consumer.OrderRepo.ListUnsettledPayouts(50)
		if err != nil {
			logger.Warnw("worker_payout_refresh_list_failed", "error", err)
			return
		}
		for _, order := range orders {
			if _, err := s.consumer.PayoutService.Refresh(ctx, order.ID); err != nil {
				logger.Warnw("worker_payout_refresh_failed", "order_no", order.OrderNo, "error", err)
			}
		}
	}
	runOnce()

	ticker := time.NewTicker(payoutRefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
