package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MikeRez0/storefront/internal/core/domain"
	"github.com/MikeRez0/storefront/internal/core/port"
	"github.com/govalues/decimal"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const DefaultTTL = time.Minute

// CouponCache serves coupon lookups from redis and falls back to the
// underlying store on a miss or when redis is unavailable. Unknown coupons
// are not cached.
type CouponCache struct {
	next   port.CouponStore
	client redis.UniversalClient
	ttl    time.Duration
	prefix string
	logger *zap.Logger
}

var _ port.CouponStore = (*CouponCache)(nil)

func NewCouponCache(next port.CouponStore, client redis.UniversalClient, ttl time.Duration,
	logger *zap.Logger) *CouponCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CouponCache{
		next:   next,
		client: client,
		ttl:    ttl,
		prefix: "storefront",
		logger: logger,
	}
}

func (c *CouponCache) key(name string) string {
	return fmt.Sprintf("%s:coupon:%s", c.prefix, name)
}

type cachedCoupon struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	DiscountPercent string     `json:"discount_percent"`
	IsActive        bool       `json:"is_active"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
}

func (c *CouponCache) FindCouponByName(ctx context.Context, name string) (*domain.Coupon, error) {
	raw, err := c.client.Get(ctx, c.key(name)).Bytes()
	switch {
	case err == nil:
		coupon, err := decode(raw)
		if err == nil {
			return coupon, nil
		}
		c.logger.Warn("Drop unreadable cached coupon", zap.String("coupon", name), zap.Error(err))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("Coupon cache read failed", zap.String("coupon", name), zap.Error(err))
	}

	coupon, err := c.next.FindCouponByName(ctx, name)
	if err != nil {
		return nil, err
	}

	if raw, err := encode(coupon); err == nil {
		if err := c.client.Set(ctx, c.key(name), raw, c.ttl).Err(); err != nil {
			c.logger.Warn("Coupon cache write failed", zap.String("coupon", name), zap.Error(err))
		}
	}
	return coupon, nil
}

// Invalidate drops the cached copy of a coupon.
func (c *CouponCache) Invalidate(ctx context.Context, name string) error {
	return c.client.Del(ctx, c.key(name)).Err()
}

func encode(coupon *domain.Coupon) ([]byte, error) {
	return json.Marshal(cachedCoupon{
		ID:              coupon.ID,
		Name:            coupon.Name,
		DiscountPercent: coupon.DiscountPercent.String(),
		IsActive:        coupon.IsActive,
		ExpiresAt:       coupon.ExpiresAt,
	})
}

func decode(raw []byte) (*domain.Coupon, error) {
	var cc cachedCoupon
	if err := json.Unmarshal(raw, &cc); err != nil {
		return nil, err
	}
	pct, err := decimal.Parse(cc.DiscountPercent)
	if err != nil {
		return nil, err
	}
	return &domain.Coupon{
		ID:              cc.ID,
		Name:            cc.Name,
		DiscountPercent: pct,
		IsActive:        cc.IsActive,
		ExpiresAt:       cc.ExpiresAt,
	}, nil
}
