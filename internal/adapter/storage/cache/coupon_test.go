package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/MikeRez0/storefront/internal/adapter/storage/cache"
	"github.com/MikeRez0/storefront/internal/core/domain"
	"github.com/MikeRez0/storefront/internal/core/port/mock"
	"github.com/alicebob/miniredis/v2"
	"github.com/golang/mock/gomock"
	"github.com/govalues/decimal"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCouponCache(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	expires := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	coupon := &domain.Coupon{
		ID:              "c1",
		Name:            "SAVE10",
		DiscountPercent: decimal.MustParse("10.5"),
		IsActive:        true,
		ExpiresAt:       &expires,
	}

	store := mock.NewMockCouponStore(mockCtrl)
	store.EXPECT().FindCouponByName(gomock.Any(), "SAVE10").Return(coupon, nil).Times(1)
	store.EXPECT().FindCouponByName(gomock.Any(), "NOPE").Return(nil, domain.ErrDataNotFound).Times(2)

	c := cache.NewCouponCache(store, client, time.Minute, zap.NewNop())
	ctx := context.Background()

	got, err := c.FindCouponByName(ctx, "SAVE10")
	require.NoError(t, err)
	assert.Equal(t, coupon, got)
	assert.True(t, mr.Exists("storefront:coupon:SAVE10"))

	got, err = c.FindCouponByName(ctx, "SAVE10")
	require.NoError(t, err)
	assert.Equal(t, "10.5", got.DiscountPercent.String())
	assert.Equal(t, expires, *got.ExpiresAt)

	for i := 0; i < 2; i++ {
		_, err = c.FindCouponByName(ctx, "NOPE")
		assert.ErrorIs(t, err, domain.ErrDataNotFound)
	}

	mr.FastForward(2 * time.Minute)
	assert.False(t, mr.Exists("storefront:coupon:SAVE10"))
}

func TestCouponCacheRedisDown(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	coupon := &domain.Coupon{ID: "c1", Name: "SAVE10", DiscountPercent: decimal.Ten, IsActive: true}
	store := mock.NewMockCouponStore(mockCtrl)
	store.EXPECT().FindCouponByName(gomock.Any(), "SAVE10").Return(coupon, nil).Times(2)

	c := cache.NewCouponCache(store, client, time.Minute, zap.NewNop())
	for i := 0; i < 2; i++ {
		got, err := c.FindCouponByName(context.Background(), "SAVE10")
		require.NoError(t, err)
		assert.Equal(t, "c1", got.ID)
	}
}

func TestCouponCacheInvalidate(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := mock.NewMockCouponStore(mockCtrl)
	store.EXPECT().FindCouponByName(gomock.Any(), "SAVE10").
		Return(&domain.Coupon{ID: "c1", Name: "SAVE10", DiscountPercent: decimal.Ten, IsActive: true}, nil).
		Times(2)

	c := cache.NewCouponCache(store, client, 0, zap.NewNop())
	ctx := context.Background()

	_, err := c.FindCouponByName(ctx, "SAVE10")
	require.NoError(t, err)
	require.NoError(t, c.Invalidate(ctx, "SAVE10"))
	_, err = c.FindCouponByName(ctx, "SAVE10")
	require.NoError(t, err)
}
