package muralpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/stablefront/internal/logger"

	"github.com/shopspring/decimal"
)

// Config Mural Pay API 配置
type Config struct {
	BaseURL        string // API 地址，默认 https://api.muralpay.com
	APIKey         string // 普通 API key（Bearer）
	TransferAPIKey string // 转账 API key，执行出金时附加
	AccountID      string // 收款账户 ID
	OrganizationID string // 组织 ID（on-behalf-of）
	CounterpartyID string // 出金收款方 ID
	PayoutMethodID string // 出金方式 ID
	TimeoutMS      int    // 请求超时（毫秒）
}

// Client Mural Pay 出金客户端
type Client struct {
	config     Config
	httpClient *http.Client
}

// PayoutAmount 出金金额
type PayoutAmount struct {
	TokenSymbol string          `json:"tokenSymbol"`
	TokenAmount decimal.Decimal `json:"tokenAmount"`
}

// FiatAmount 法币结算金额
type FiatAmount struct {
	FiatAmount       decimal.Decimal `json:"fiatAmount"`
	FiatCurrencyCode string          `json:"fiatCurrencyCode"`
}

// PayoutDetails 单笔出金明细
type PayoutDetails struct {
	ID         string        `json:"id"`
	Status     string        `json:"status,omitempty"`
	Amount     *PayoutAmount `json:"amount,omitempty"`
	FiatAmount *FiatAmount   `json:"fiatAmount,omitempty"`
}

// PayoutRequest 出金请求（两阶段：创建后需显式执行）
type PayoutRequest struct {
	ID        string          `json:"id"`
	Status    string          `json:"status"`
	CreatedAt string          `json:"createdAt"`
	Payouts   []PayoutDetails `json:"payouts"`
}

// CreatePayoutInput 创建出金请求入参
type CreatePayoutInput struct {
	Amount decimal.Decimal // 代币金额（代币单位，非原子单位）
	Symbol string          // 代币符号
	Memo   string          // 备注（订单编号）
}

// NewClient 创建客户端
func NewClient(config Config) (*Client, error) {
	if strings.TrimSpace(config.APIKey) == "" {
		return nil, fmt.Errorf("%w: api_key is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(config.AccountID) == "" {
		return nil, fmt.Errorf("%w: account_id is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(config.CounterpartyID) == "" {
		return nil, fmt.Errorf("%w: counterparty_id is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(config.PayoutMethodID) == "" {
		return nil, fmt.Errorf("%w: payout_method_id is required", ErrConfigInvalid)
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://api.muralpay.com"
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	timeout := time.Duration(config.TimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// CreatePayoutRequest 创建出金请求（阶段一，不触发实际转账）
func (c *Client) CreatePayoutRequest(ctx context.Context, input CreatePayoutInput) (*PayoutRequest, error) {
	body := map[string]interface{}{
		"sourceAccountId": c.config.AccountID,
		"memo":            input.Memo,
		"payouts": []map[string]interface{}{
			{
				"amount": PayoutAmount{
					TokenSymbol: input.Symbol,
					TokenAmount: input.Amount,
				},
				"recipientInfo": map[string]interface{}{
					"type":           "counterpartyInfo",
					"counterpartyId": c.config.CounterpartyID,
				},
				"payoutDetails": map[string]interface{}{
					"type":           "counterpartyPayoutMethod",
					"payoutMethodId": c.config.PayoutMethodID,
				},
			},
		},
	}

	var result PayoutRequest
	if err := c.do(ctx, http.MethodPost, "/api/payouts/payout", body, false, &result); err != nil {
		return nil, err
	}
	if result.ID == "" {
		return nil, fmt.Errorf("%w: create payout response missing id", ErrResponseInvalid)
	}
	return &result, nil
}

// ExecutePayoutRequest 执行出金请求（阶段二，触发实际转账）。
// 请求已被执行过时返回 ErrPayoutAlreadyExecuted。
func (c *Client) ExecutePayoutRequest(ctx context.Context, payoutRequestID string) (*PayoutRequest, error) {
	if strings.TrimSpace(payoutRequestID) == "" {
		return nil, fmt.Errorf("%w: payout request id is required", ErrRequestFailed)
	}
	path := fmt.Sprintf("/api/payouts/payout/%s/execute", payoutRequestID)
	var result PayoutRequest
	if err := c.do(ctx, http.MethodPost, path, map[string]interface{}{}, true, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetPayoutRequest 查询出金请求状态
func (c *Client) GetPayoutRequest(ctx context.Context, payoutRequestID string) (*PayoutRequest, error) {
	if strings.TrimSpace(payoutRequestID) == "" {
		return nil, fmt.Errorf("%w: payout request id is required", ErrRequestFailed)
	}
	path := fmt.Sprintf("/api/payouts/payout/%s", payoutRequestID)
	var result PayoutRequest
	if err := c.do(ctx, http.MethodGet, path, nil, false, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// do 统一请求入口
func (c *Client) do(ctx context.Context, method, path string, body interface{}, transfer bool, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: marshal request: %v", ErrRequestFailed, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if transfer && c.config.TransferAPIKey != "" {
		req.Header.Set("transfer-api-key", c.config.TransferAPIKey)
	}
	if c.config.OrganizationID != "" {
		req.Header.Set("on-behalf-of", c.config.OrganizationID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrResponseInvalid, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Warnw("muralpay_api_error",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"body", truncateForLog(payload),
		)
		if isAlreadyExecuted(resp.StatusCode, payload) {
			return ErrPayoutAlreadyExecuted
		}
		return fmt.Errorf("%w: %s %s returned %d", ErrRequestFailed, method, path, resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(payload, out); err != nil {
			return fmt.Errorf("%w: decode response: %v", ErrResponseInvalid, err)
		}
	}
	return nil
}

// isAlreadyExecuted 识别重复执行的拒绝响应
func isAlreadyExecuted(status int, body []byte) bool {
	if status != http.StatusBadRequest && status != http.StatusConflict {
		return false
	}
	return strings.Contains(strings.ToLower(string(body)), "already") &&
		strings.Contains(strings.ToLower(string(body)), "execut")
}

func truncateForLog(body []byte) string {
	const limit = 512
	if len(body) <= limit {
		return string(body)
	}
	return string(body[:limit]) + "..."
}
