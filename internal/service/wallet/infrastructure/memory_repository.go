package infrastructure

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"corre/internal/service/wallet/domain"
)

// MemoryGrantRepository 是 GrantRepository 的内存实现。
// 用于测试与无数据库的本地运行。读写都在内部锁内完成，
// 返回的永远是副本，调用方拿不到内部状态的引用。
type MemoryGrantRepository struct {
	mu     sync.RWMutex
	grants map[string][]*domain.PointGrant // ownerID -> 按追加顺序
}

// NewMemoryGrantRepository 创建内存仓储。
func NewMemoryGrantRepository() *MemoryGrantRepository {
	return &MemoryGrantRepository{grants: make(map[string][]*domain.PointGrant)}
}

func cloneGrant(g *domain.PointGrant) *domain.PointGrant {
	c := *g
	return &c
}

// Append 追加一笔新发放。
func (r *MemoryGrantRepository) Append(ctx context.Context, grant *domain.PointGrant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.grants[grant.OwnerID] = append(r.grants[grant.OwnerID], cloneGrant(grant))
	return nil
}

// FindByOwner 返回某个 owner 的全部发放记录的副本。
func (r *MemoryGrantRepository) FindByOwner(ctx context.Context, ownerID string) ([]*domain.PointGrant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored := r.grants[ownerID]
	out := make([]*domain.PointGrant, 0, len(stored))
	for _, g := range stored {
		out = append(out, cloneGrant(g))
	}
	return out, nil
}

// History 按发放时间降序返回最多 limit 条记录。
func (r *MemoryGrantRepository) History(ctx context.Context, ownerID string, limit int) ([]*domain.PointGrant, error) {
	all, _ := r.FindByOwner(ctx, ownerID)
	sort.Slice(all, func(i, j int) bool {
		if !all[i].GrantedAt.Equal(all[j].GrantedAt) {
			return all[i].GrantedAt.After(all[j].GrantedAt)
		}
		return all[i].ID > all[j].ID
	})
	if limit <= 0 {
		limit = 50
	}
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// ApplyDebits 原子地提交一批扣减。任何一笔扣穿都整体失败、不落任何变更。
func (r *MemoryGrantRepository) ApplyDebits(ctx context.Context, ownerID string, debits []domain.Debit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	byID := make(map[string]*domain.PointGrant)
	for _, g := range r.grants[ownerID] {
		byID[g.ID] = g
	}
	// 先校验全部，再提交全部
	for _, d := range debits {
		g, ok := byID[d.GrantID]
		if !ok {
			return fmt.Errorf("grant %s not found for owner %s", d.GrantID, ownerID)
		}
		if g.Remaining < d.Points {
			return domain.ErrInsufficientPoints
		}
	}
	for _, d := range debits {
		byID[d.GrantID].Remaining -= d.Points
	}
	return nil
}

// MemoryXPRepository 是 XPRepository 的内存实现。
type MemoryXPRepository struct {
	mu       sync.Mutex
	counters map[string]int64
}

// NewMemoryXPRepository 创建内存 XP 仓储。
func NewMemoryXPRepository() *MemoryXPRepository {
	return &MemoryXPRepository{counters: make(map[string]int64)}
}

// AddXP 增加经验值并返回新值。
func (r *MemoryXPRepository) AddXP(ctx context.Context, ownerID string, delta int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counters[ownerID] += delta
	return r.counters[ownerID], nil
}

// CurrentXP 返回当前经验值。
func (r *MemoryXPRepository) CurrentXP(ctx context.Context, ownerID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counters[ownerID], nil
}
