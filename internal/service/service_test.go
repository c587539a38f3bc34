package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stablefront/internal/constants"
	"github.com/stablefront/internal/models"
	"github.com/stablefront/internal/muralpay"
	"github.com/stablefront/internal/repository"

	"github.com/shopspring/decimal"
)

func requireDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// newReconcileService 装配对账服务与替身依赖
func newReconcileService(payout *fakePayoutClient, enqueuer *fakeEnqueuer) *ReconcileService {
	orderRepo := repository.NewOrderRepository(models.DB)
	productRepo := repository.NewProductRepository(models.DB)
	return NewReconcileService(orderRepo, productRepo, payout, enqueuer)
}

// setupTestDB 打开独立的内存数据库并迁移表结构
func setupTestDB(t *testing.T) {
	t.Helper()
	dsn := fmt.Sprintf("file:service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	if err := models.InitDB("sqlite", dsn, models.DBPoolConfig{MaxOpenConns: 1, MaxIdleConns: 1}); err != nil {
		t.Fatalf("init db: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
}

// fakePayoutClient 可注入失败的出金客户端替身
type fakePayoutClient struct {
	mu           sync.Mutex
	createCalls  int
	executeCalls int
	createErr    error
	executeErr   error
	getResult    *muralpay.PayoutRequest
	fiat         *muralpay.FiatAmount
}

func (f *fakePayoutClient) CreatePayoutRequest(ctx context.Context, input muralpay.CreatePayoutInput) (*muralpay.PayoutRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &muralpay.PayoutRequest{
		ID:     fmt.Sprintf("pr_%d", f.createCalls),
		Status: constants.PayoutStatusAwaitingExecution,
		Payouts: []muralpay.PayoutDetails{
			{ID: "po_1", Status: constants.PayoutStatusAwaitingExecution},
		},
	}, nil
}

func (f *fakePayoutClient) ExecutePayoutRequest(ctx context.Context, payoutRequestID string) (*muralpay.PayoutRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.executeCalls++
	if f.executeErr != nil {
		return nil, f.executeErr
	}
	return &muralpay.PayoutRequest{
		ID:     payoutRequestID,
		Status: constants.PayoutStatusExecuted,
		Payouts: []muralpay.PayoutDetails{
			{ID: "po_1", Status: constants.PayoutStatusExecuted, FiatAmount: f.fiat},
		},
	}, nil
}

func (f *fakePayoutClient) GetPayoutRequest(ctx context.Context, payoutRequestID string) (*muralpay.PayoutRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getResult != nil {
		return f.getResult, nil
	}
	return &muralpay.PayoutRequest{ID: payoutRequestID, Status: constants.PayoutStatusExecuted}, nil
}

// fakeEnqueuer 记录投递的任务
type fakeEnqueuer struct {
	mu             sync.Mutex
	payoutExecutes []uint
	paidNotifies   []uint
}

func (f *fakeEnqueuer) EnqueuePayoutExecute(orderID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payoutExecutes = append(f.payoutExecutes, orderID)
	return nil
}

func (f *fakeEnqueuer) EnqueueOrderPaidNotify(orderID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paidNotifies = append(f.paidNotifies, orderID)
	return nil
}

// seedProduct 创建测试商品
func seedProduct(t *testing.T, priceUSDC int64, active bool) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:      "测试商品",
		PriceUSDC: priceUSDC,
		IsActive:  active,
	}
	if err := models.DB.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

// seedPendingOrder 创建已绑定交易哈希的待支付订单
func seedPendingOrder(t *testing.T, totalAtomic int64, txHash string) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderNo:         fmt.Sprintf("SF-TEST-%d", time.Now().UnixNano()),
		CustomerEmail:   "buyer@example.com",
		Status:          constants.OrderStatusPending,
		TokenSymbol:     constants.TokenSymbolUSDC,
		TotalAmountUSDC: totalAtomic,
	}
	if txHash != "" {
		order.BlockchainTxHash = &txHash
	}
	if err := models.DB.Create(order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return order
}

// creditedEvent 构造账户入账事件
func creditedEvent(txHash, amount, symbol string) *muralpay.AccountCreditedEvent {
	event := &muralpay.AccountCreditedEvent{
		EventID:       "evt_test",
		DeliveryID:    "dlv_test",
		AttemptNumber: 1,
		EventCategory: constants.MuralEventCategoryBalance,
	}
	event.Payload.Type = constants.MuralPayloadAccountCredited
	event.Payload.TokenAmount.TokenSymbol = symbol
	event.Payload.TokenAmount.Blockchain = "POLYGON"
	event.Payload.TokenAmount.TokenAmount = requireDecimal(amount)
	event.Payload.TransactionDetails.TransactionHash = txHash
	return event
}
