package service

import "errors"

var (
	// ErrOrderNotFound 订单不存在
	ErrOrderNotFound = errors.New("order not found")
	// ErrEmptyOrder 订单不含任何商品项
	ErrEmptyOrder = errors.New("order has no items")
	// ErrInvalidQuantity 商品数量非法
	ErrInvalidQuantity = errors.New("invalid item quantity")
	// ErrProductNotFound 商品不存在
	ErrProductNotFound = errors.New("product not found")
	// ErrProductInactive 商品已下架
	ErrProductInactive = errors.New("product is not active")
	// ErrInvalidTxHash 交易哈希格式非法
	ErrInvalidTxHash = errors.New("invalid transaction hash")
	// ErrTxHashAlreadySet 订单已绑定过不同的交易哈希
	ErrTxHashAlreadySet = errors.New("transaction hash already set")
	// ErrInvalidCredentials 登录名或密码错误
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrPayoutNotReady 订单尚未创建出金请求
	ErrPayoutNotReady = errors.New("payout request not created")
)
