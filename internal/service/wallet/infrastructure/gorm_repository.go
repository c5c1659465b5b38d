package infrastructure

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"corre/internal/service/wallet/domain"
)

// GormGrantRepository 是 GrantRepository 的 GORM 实现。
type GormGrantRepository struct {
	db *gorm.DB
}

// NewGormGrantRepository 创建一个新的 GORM 仓储实例。
func NewGormGrantRepository(db *gorm.DB) *GormGrantRepository {
	return &GormGrantRepository{db: db}
}

// Append 追加一笔新发放。
func (r *GormGrantRepository) Append(ctx context.Context, grant *domain.PointGrant) error {
	return r.db.WithContext(ctx).Create(fromDomainGrant(grant)).Error
}

// FindByOwner 返回某个 owner 的全部发放记录。owner 不存在返回空集合。
func (r *GormGrantRepository) FindByOwner(ctx context.Context, ownerID string) ([]*domain.PointGrant, error) {
	var models []PointGrantModel
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Find(&models).Error
	if err != nil {
		return nil, err
	}
	grants := make([]*domain.PointGrant, 0, len(models))
	for i := range models {
		grants = append(grants, toDomainGrant(&models[i]))
	}
	return grants, nil
}

// History 按发放时间降序返回最多 limit 条记录。
func (r *GormGrantRepository) History(ctx context.Context, ownerID string, limit int) ([]*domain.PointGrant, error) {
	if limit <= 0 {
		limit = 50
	}
	var models []PointGrantModel
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("granted_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	grants := make([]*domain.PointGrant, 0, len(models))
	for i := range models {
		grants = append(grants, toDomainGrant(&models[i]))
	}
	return grants, nil
}

// ApplyDebits 在单个事务中提交一批扣减。
// WHERE remaining >= ? 是对计划与提交之间状态漂移的最后防线：
// 受影响行数为 0 说明账本已变，整个事务回滚。
func (r *GormGrantRepository) ApplyDebits(ctx context.Context, ownerID string, debits []domain.Debit) error {
	if len(debits) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, d := range debits {
			result := tx.Model(&PointGrantModel{}).
				Where("id = ? AND owner_id = ? AND remaining >= ?", d.GrantID, ownerID, d.Points).
				Update("remaining", gorm.Expr("remaining - ?", d.Points))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("debit of %d points on grant %s lost the race: %w",
					d.Points, d.GrantID, domain.ErrInsufficientPoints)
			}
		}
		return nil
	})
}

// GormXPRepository 是 XPRepository 的 GORM 实现。
type GormXPRepository struct {
	db *gorm.DB
}

// NewGormXPRepository 创建 XP 计数器仓储。
func NewGormXPRepository(db *gorm.DB) *GormXPRepository {
	return &GormXPRepository{db: db}
}

// AddXP 原子地增加经验值并返回新值。owner 不存在时先插入零行。
func (r *GormXPRepository) AddXP(ctx context.Context, ownerID string, delta int64) (int64, error) {
	var current int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&XPCounterModel{OwnerID: ownerID}).Error; err != nil {
			return err
		}
		if err := tx.Model(&XPCounterModel{}).
			Where("owner_id = ?", ownerID).
			Update("current_xp", gorm.Expr("current_xp + ?", delta)).Error; err != nil {
			return err
		}
		var model XPCounterModel
		if err := tx.Where("owner_id = ?", ownerID).First(&model).Error; err != nil {
			return err
		}
		current = model.CurrentXP
		return nil
	})
	return current, err
}

// CurrentXP 返回当前经验值。owner 不存在时为 0。
func (r *GormXPRepository) CurrentXP(ctx context.Context, ownerID string) (int64, error) {
	var model XPCounterModel
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return model.CurrentXP, nil
}
