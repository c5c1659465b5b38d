package application_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"corre/internal/service/checkout/application"
	"corre/internal/service/checkout/domain"
)

type fakeWalletClient struct {
	maxPoints      int64
	totalAvailable int64
	consumeErr     error
	consumed       []int64
}

func (c *fakeWalletClient) DiscountQuote(ctx context.Context, ownerID string, cartTotal int64, tier string) (*domain.Quote, error) {
	return &domain.Quote{MaxPoints: c.maxPoints, TotalAvailable: c.totalAvailable}, nil
}

func (c *fakeWalletClient) Consume(ctx context.Context, ownerID string, points int64) error {
	if c.consumeErr != nil {
		return c.consumeErr
	}
	c.consumed = append(c.consumed, points)
	return nil
}

func newTestService(wallet *fakeWalletClient) *application.CheckoutService {
	return application.NewCheckoutService(wallet, otel.Tracer("checkout-test"))
}

func TestQuote(t *testing.T) {
	svc := newTestService(&fakeWalletClient{maxPoints: 2000, totalAvailable: 5000})

	resp, err := svc.Quote(context.Background(), &application.QuoteRequest{
		OwnerID: "owner-1", CartTotal: 10000, Tier: "pro",
	})
	require.NoError(t, err)
	require.Equal(t, int64(2000), resp.MaxPoints)
	require.Equal(t, int64(5000), resp.TotalAvailable)

	_, err = svc.Quote(context.Background(), &application.QuoteRequest{OwnerID: "owner-1", CartTotal: 0})
	require.ErrorIs(t, err, domain.ErrInvalidCart)
}

func TestCommitWithinCap(t *testing.T) {
	wallet := &fakeWalletClient{maxPoints: 2000, totalAvailable: 5000}
	svc := newTestService(wallet)

	resp, err := svc.Commit(context.Background(), &application.CommitRequest{
		OrderID: "order-1", OwnerID: "owner-1", CartTotal: 10000, Tier: "pro", PointsToUse: 1500,
	})
	require.NoError(t, err)
	require.Equal(t, int64(1500), resp.PointsUsed)
	require.Equal(t, int64(8500), resp.CashDue)
	require.Equal(t, []int64{1500}, wallet.consumed)
}

func TestCommitRejectsOverCap(t *testing.T) {
	wallet := &fakeWalletClient{maxPoints: 2000, totalAvailable: 5000}
	svc := newTestService(wallet)

	_, err := svc.Commit(context.Background(), &application.CommitRequest{
		OrderID: "order-1", OwnerID: "owner-1", CartTotal: 10000, Tier: "pro", PointsToUse: 2001,
	})
	require.ErrorIs(t, err, domain.ErrDiscountExceedsCap)
	require.Empty(t, wallet.consumed)
}

func TestCommitInsufficientPointsAbortsOrder(t *testing.T) {
	wallet := &fakeWalletClient{maxPoints: 2000, totalAvailable: 5000, consumeErr: domain.ErrInsufficientPoints}
	svc := newTestService(wallet)

	_, err := svc.Commit(context.Background(), &application.CommitRequest{
		OrderID: "order-1", OwnerID: "owner-1", CartTotal: 10000, Tier: "pro", PointsToUse: 1000,
	})
	require.ErrorIs(t, err, domain.ErrInsufficientPoints)
}

func TestCommitWithoutPointsSkipsWallet(t *testing.T) {
	wallet := &fakeWalletClient{}
	svc := newTestService(wallet)

	resp, err := svc.Commit(context.Background(), &application.CommitRequest{
		OrderID: "order-1", OwnerID: "owner-1", CartTotal: 10000, Tier: "free", PointsToUse: 0,
	})
	require.NoError(t, err)
	require.Equal(t, int64(10000), resp.CashDue)
	require.Empty(t, wallet.consumed)
}
