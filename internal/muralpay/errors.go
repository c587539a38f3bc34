package muralpay

import "errors"

var (
	// ErrConfigInvalid 配置缺失或非法
	ErrConfigInvalid = errors.New("muralpay: config invalid")
	// ErrSignatureInvalid webhook 签名不合法
	ErrSignatureInvalid = errors.New("muralpay: signature invalid")
	// ErrRequestFailed 请求 Mural API 失败（网络或非 2xx 响应）
	ErrRequestFailed = errors.New("muralpay: request failed")
	// ErrResponseInvalid Mural API 响应无法解析
	ErrResponseInvalid = errors.New("muralpay: response invalid")
	// ErrPayoutAlreadyExecuted 出金请求已执行过，不可重复执行
	ErrPayoutAlreadyExecuted = errors.New("muralpay: payout already executed")
)
