package domain

import "errors"

var (
	// ErrDiscountExceedsCap 请求使用的积分超过了档位上限
	ErrDiscountExceedsCap = errors.New("checkout: requested points exceed tier cap")
	// ErrInsufficientPoints 钱包余额不足，订单必须整体放弃
	ErrInsufficientPoints = errors.New("checkout: insufficient points")
	// ErrWalletUnavailable 钱包服务不可达
	ErrWalletUnavailable = errors.New("checkout: wallet service unavailable")
	// ErrInvalidCart 购物车金额不合法
	ErrInvalidCart = errors.New("checkout: invalid cart total")
)

// Quote 是一次报价结果：这笔购物车最多能用多少积分。
type Quote struct {
	MaxPoints      int64
	TotalAvailable int64
}
