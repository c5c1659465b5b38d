package infrastructure

import (
	"time"

	"corre/internal/service/wallet/domain"
)

// PointGrantModel 对应数据库中的 point_grant 表。
// 记录只增不删：过期/耗尽的发放保留作历史。
type PointGrantModel struct {
	ID        string       `gorm:"primaryKey;size:36"`
	OwnerID   string       `gorm:"index;size:64;not null"`
	Amount    int64        `gorm:"not null"`
	Remaining int64        `gorm:"not null"`
	Cause     domain.Cause `gorm:"size:32;not null"`
	GrantedAt time.Time    `gorm:"index;not null"`
	ExpiresAt time.Time    `gorm:"index;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName 指定 GORM 使用的表名。
func (PointGrantModel) TableName() string {
	return "point_grant"
}

// XPCounterModel 对应数据库中的 xp_counter 表。
// 每个 owner 一行，计数器只增不减。
type XPCounterModel struct {
	OwnerID   string `gorm:"primaryKey;size:64"`
	CurrentXP int64  `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

// TableName 指定 GORM 使用的表名。
func (XPCounterModel) TableName() string {
	return "xp_counter"
}
