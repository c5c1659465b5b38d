package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMaxPointsDiscount(t *testing.T) {
	tests := []struct {
		name      string
		cartTotal int64
		tier      Tier
		available int64
		want      int64
	}{
		{"free tier never discounts", 10000, TierFree, 5000, 0},
		{"pro capped by 20 percent", 10000, TierPro, 5000, 2000},
		{"pro capped by balance", 10000, TierPro, 1000, 1000},
		{"club same cap as pro", 10000, TierClub, 5000, 2000},
		{"cap rounds down", 999, TierPro, 5000, 199},
		{"zero cart", 0, TierPro, 5000, 0},
		{"negative cart", -100, TierPro, 5000, 0},
		{"zero balance", 10000, TierPro, 0, 0},
		{"unknown tier treated as free", 10000, Tier("vip"), 5000, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, MaxPointsDiscount(tc.cartTotal, tc.tier, tc.available))
		})
	}
}
