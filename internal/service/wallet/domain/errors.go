package domain

import "errors"

var (
	// ErrInvalidAmount 发放/消费的点数不是正数
	ErrInvalidAmount = errors.New("wallet: amount must be positive")
	// ErrInsufficientPoints 可用余额不足，账本未被改动
	ErrInsufficientPoints = errors.New("wallet: insufficient points")
	// ErrUnknownCause 发放原因不在约定的枚举内
	ErrUnknownCause = errors.New("wallet: unknown grant cause")
	// ErrMalformedEvent 入站事件/命令无法解码为合法的 DTO
	ErrMalformedEvent = errors.New("wallet: malformed event payload")
	// ErrOwnerLocked 未能在限期内获得 owner 级互斥锁
	ErrOwnerLocked = errors.New("wallet: failed to acquire owner lock")
)
