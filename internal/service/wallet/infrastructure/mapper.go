package infrastructure

import "corre/internal/service/wallet/domain"

// toDomainGrant 将数据库模型转换为领域模型。
func toDomainGrant(model *PointGrantModel) *domain.PointGrant {
	if model == nil {
		return nil
	}
	return &domain.PointGrant{
		ID:        model.ID,
		OwnerID:   model.OwnerID,
		Amount:    model.Amount,
		Remaining: model.Remaining,
		Cause:     model.Cause,
		GrantedAt: model.GrantedAt,
		ExpiresAt: model.ExpiresAt,
	}
}

// fromDomainGrant 将领域模型转换为数据库模型（用于插入）。
func fromDomainGrant(g *domain.PointGrant) *PointGrantModel {
	if g == nil {
		return nil
	}
	return &PointGrantModel{
		ID:        g.ID,
		OwnerID:   g.OwnerID,
		Amount:    g.Amount,
		Remaining: g.Remaining,
		Cause:     g.Cause,
		GrantedAt: g.GrantedAt,
		ExpiresAt: g.ExpiresAt,
	}
}
