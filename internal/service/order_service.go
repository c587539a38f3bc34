package service

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/stablefront/internal/constants"
	"github.com/stablefront/internal/logger"
	"github.com/stablefront/internal/models"
	"github.com/stablefront/internal/repository"

	"github.com/google/uuid"
)

// txHashPattern EVM 交易哈希：0x 前缀 + 64 位十六进制
var txHashPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

// OrderService 订单服务
type OrderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository) *OrderService {
	return &OrderService{orderRepo: orderRepo, productRepo: productRepo}
}

// OrderItemInput 下单商品项
type OrderItemInput struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// CreateOrderInput 下单入参
type CreateOrderInput struct {
	CustomerEmail         string           `json:"customer_email" binding:"required,email"`
	CustomerWalletAddress string           `json:"customer_wallet_address"`
	Items                 []OrderItemInput `json:"items" binding:"required"`
}

// CreateOrder 创建订单。
// 单价在下单时快照进订单项，后续改价不影响已创建订单的应付金额。
func (s *OrderService) CreateOrder(input CreateOrderInput) (*models.Order, error) {
	if len(input.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	ids := make([]uint, 0, len(input.Items))
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		ids = append(ids, item.ProductID)
	}

	products, err := s.productRepo.GetByIDs(ids)
	if err != nil {
		return nil, err
	}
	productByID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		productByID[p.ID] = p
	}

	var total int64
	items := make([]models.OrderItem, 0, len(input.Items))
	for _, item := range input.Items {
		product, ok := productByID[item.ProductID]
		if !ok {
			return nil, ErrProductNotFound
		}
		if !product.IsActive {
			return nil, ErrProductInactive
		}
		lineTotal := product.PriceUSDC * int64(item.Quantity)
		total += lineTotal
		items = append(items, models.OrderItem{
			ProductID:     product.ID,
			Title:         product.Name,
			UnitPriceUSDC: product.PriceUSDC,
			Quantity:      item.Quantity,
			TotalUSDC:     lineTotal,
		})
	}

	order := &models.Order{
		OrderNo:               generateOrderNo(),
		CustomerEmail:         input.CustomerEmail,
		CustomerWalletAddress: input.CustomerWalletAddress,
		Status:                constants.OrderStatusPending,
		TokenSymbol:           constants.TokenSymbolUSDC,
		TotalAmountUSDC:       total,
	}
	if err := s.orderRepo.Create(order, items); err != nil {
		return nil, err
	}
	order.Items = items

	logger.Infow("order_created",
		"order_no", order.OrderNo,
		"total_amount_usdc", order.TotalAmountUSDC,
		"item_count", len(items),
	)
	return order, nil
}

// GetOrder 根据订单编号获取订单
func (s *OrderService) GetOrder(orderNo string) (*models.Order, error) {
	order, err := s.orderRepo.GetByOrderNo(orderNo)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// AttachTxHash 绑定客户提交的链上交易哈希。
// 哈希只允许写入一次；重复提交相同哈希按幂等成功处理。
func (s *OrderService) AttachTxHash(orderNo, txHash string) (*models.Order, error) {
	txHash = strings.TrimSpace(txHash)
	if !txHashPattern.MatchString(txHash) {
		return nil, ErrInvalidTxHash
	}

	order, err := s.orderRepo.GetByOrderNo(orderNo)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	ok, err := s.orderRepo.SetTxHash(orderNo, txHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		if order.BlockchainTxHash != nil && *order.BlockchainTxHash == txHash {
			return order, nil
		}
		return nil, ErrTxHashAlreadySet
	}

	logger.Infow("order_tx_hash_attached", "order_no", orderNo, "tx_hash", txHash)
	return s.GetOrder(orderNo)
}

// GetOrderByID 根据主键获取订单
func (s *OrderService) GetOrderByID(id uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListAdmin 商户端订单列表
func (s *OrderService) ListAdmin(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.ListAdmin(filter)
}

// Fulfill 标记已支付订单为已履约（PAID → FULFILLED）
func (s *OrderService) Fulfill(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	won, err := s.orderRepo.UpdateStatusIfCurrent(orderID, constants.OrderStatusPaid, constants.OrderStatusFulfilled, nil)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, fmt.Errorf("order %s is %s, only PAID orders can be fulfilled", order.OrderNo, order.Status)
	}
	order.Status = constants.OrderStatusFulfilled

	logger.Infow("order_fulfilled", "order_no", order.OrderNo)
	return order, nil
}

// generateOrderNo 生成订单编号：SF + 日期 + uuid 片段
func generateOrderNo() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
	return fmt.Sprintf("SF%s%s", time.Now().Format("20060102"), suffix)
}
