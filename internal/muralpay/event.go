package muralpay

import (
	"encoding/json"
	"strings"

	"github.com/stablefront/internal/constants"

	"github.com/shopspring/decimal"
)

// AccountCreditedEvent 账户入账事件
// 字段命名跟随 Mural 事件文档（occuredAt 为提供方侧拼写）。
type AccountCreditedEvent struct {
	EventID       string                `json:"eventId"`
	DeliveryID    string                `json:"deliveryId"`
	AttemptNumber int                   `json:"attemptNumber"`
	EventCategory string                `json:"eventCategory"`
	OccurredAt    string                `json:"occuredAt"`
	Payload       AccountCreditedDetail `json:"payload"`
}

// AccountCreditedDetail 入账事件载荷
type AccountCreditedDetail struct {
	Type                 string             `json:"type"`
	AccountID            string             `json:"accountId"`
	OrganizationID       string             `json:"organizationId"`
	TransactionID        string             `json:"transactionId"`
	AccountWalletAddress string             `json:"accountWalletAddress"`
	TokenAmount          TokenAmount        `json:"tokenAmount"`
	TransactionDetails   TransactionDetails `json:"transactionDetails"`
}

// TokenAmount 代币金额
// 金额使用 decimal 精确解析，禁止经过 float 中转。
type TokenAmount struct {
	Blockchain  string          `json:"blockchain"`
	TokenAmount decimal.Decimal `json:"tokenAmount"`
	TokenSymbol string          `json:"tokenSymbol"`
}

// TransactionDetails 链上交易详情
type TransactionDetails struct {
	Blockchain               string `json:"blockchain"`
	TransactionDate          string `json:"transactionDate"`
	TransactionHash          string `json:"transactionHash"`
	SourceWalletAddress      string `json:"sourceWalletAddress"`
	DestinationWalletAddress string `json:"destinationWalletAddress"`
}

// ValidationError 事件结构校验错误，Fields 列出不合法的字段路径
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "muralpay: event validation failed: " + strings.Join(e.Fields, ", ")
}

// ParseAccountCreditedEvent 解析并校验账户入账事件。
// 必须在验签通过之后调用；未验签的请求体不做结构解析。
func ParseAccountCreditedEvent(body []byte) (*AccountCreditedEvent, error) {
	if len(body) == 0 {
		return nil, &ValidationError{Fields: []string{"body"}}
	}
	var event AccountCreditedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, &ValidationError{Fields: []string{"body"}}
	}

	var invalid []string
	if strings.TrimSpace(event.EventID) == "" {
		invalid = append(invalid, "eventId")
	}
	if strings.TrimSpace(event.DeliveryID) == "" {
		invalid = append(invalid, "deliveryId")
	}
	if event.EventCategory != constants.MuralEventCategoryBalance {
		invalid = append(invalid, "eventCategory")
	}
	if event.Payload.Type != constants.MuralPayloadAccountCredited {
		invalid = append(invalid, "payload.type")
	}
	if strings.TrimSpace(event.Payload.TransactionDetails.TransactionHash) == "" {
		invalid = append(invalid, "payload.transactionDetails.transactionHash")
	}
	if !event.Payload.TokenAmount.TokenAmount.IsPositive() {
		invalid = append(invalid, "payload.tokenAmount.tokenAmount")
	}
	if strings.TrimSpace(event.Payload.TokenAmount.TokenSymbol) == "" {
		invalid = append(invalid, "payload.tokenAmount.tokenSymbol")
	}
	if strings.TrimSpace(event.Payload.TokenAmount.Blockchain) == "" {
		invalid = append(invalid, "payload.tokenAmount.blockchain")
	}
	if len(invalid) > 0 {
		return nil, &ValidationError{Fields: invalid}
	}
	return &event, nil
}
