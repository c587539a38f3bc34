package constants

// 订单状态常量
// 状态只允许单向推进：PENDING → {PAID, PAYMENT_MISMATCH} → FULFILLED
const (
	OrderStatusPending         = "PENDING"
	OrderStatusPaid            = "PAID"
	OrderStatusPaymentMismatch = "PAYMENT_MISMATCH"
	OrderStatusFulfilled       = "FULFILLED"
)

// 出金状态常量（Mural Pay 侧状态快照）
const (
	PayoutStatusAwaitingExecution = "AWAITING_EXECUTION"
	PayoutStatusPending           = "PENDING"
	PayoutStatusExecuted          = "EXECUTED"
	PayoutStatusCompleted         = "COMPLETED"
	PayoutStatusFailed            = "FAILED"
	PayoutStatusCanceled          = "CANCELED"
)

// 结算代币常量
const (
	TokenSymbolUSDC = "USDC"
	// USDCDecimals USDC 原子单位精度（1 USDC = 1_000_000 原子单位）
	USDCDecimals = 6
)

// Mural webhook 协议常量
const (
	MuralWebhookSignatureHeader = "x-mural-webhook-signature"
	MuralWebhookTimestampHeader = "x-mural-webhook-timestamp"
	MuralEventCategoryBalance   = "MURAL_ACCOUNT_BALANCE_ACTIVITY"
	MuralPayloadAccountCredited = "account_credited"
)

// 队列名称常量
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 异步任务类型常量
const (
	TaskPayoutExecute   = "payout:execute"
	TaskOrderPaidNotify = "order:paid_notify"
)
