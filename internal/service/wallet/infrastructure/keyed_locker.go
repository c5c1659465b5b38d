package infrastructure

import (
	"context"
	"sync"
)

// KeyedOwnerLocker 是 OwnerLocker 的进程内实现：每个 owner 一把互斥锁。
// 单实例部署时足够；多实例部署换用 adapter 包里的 ZooKeeper 实现。
type KeyedOwnerLocker struct {
	mu    sync.Mutex
	locks map[string]*ownerLock
}

type ownerLock struct {
	mu   sync.Mutex
	refs int
}

// NewKeyedOwnerLocker 创建进程内的 owner 锁。
func NewKeyedOwnerLocker() *KeyedOwnerLocker {
	return &KeyedOwnerLocker{locks: make(map[string]*ownerLock)}
}

// WithOwnerLock 在持有 ownerID 互斥锁的状态下执行 fn。
// 引用计数保证空闲的锁项会被回收，map 不随 owner 数无限增长。
func (l *KeyedOwnerLocker) WithOwnerLock(ctx context.Context, ownerID string, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	entry, ok := l.locks[ownerID]
	if !ok {
		entry = &ownerLock{}
		l.locks[ownerID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, ownerID)
		}
		l.mu.Unlock()
	}()

	return fn(ctx)
}
