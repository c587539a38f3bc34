package models

import (
	"github.com/shopspring/decimal"
)

// AtomicFromToken 将代币金额（十进制）换算为整数原子单位。
// 金额精度超过代币小数位（无法被原子单位整除）时返回 exact=false，
// 调用方必须按金额不一致处理，禁止四舍五入后比较。
func AtomicFromToken(amount decimal.Decimal, decimals int32) (atomic int64, exact bool) {
	shifted := amount.Shift(decimals)
	if !shifted.IsInteger() {
		return 0, false
	}
	if !shifted.BigInt().IsInt64() {
		return 0, false
	}
	return shifted.IntPart(), true
}

// TokenFromAtomic 将整数原子单位换算为代币金额（十进制）
func TokenFromAtomic(atomic int64, decimals int32) decimal.Decimal {
	return decimal.NewFromInt(atomic).Shift(-decimals)
}
