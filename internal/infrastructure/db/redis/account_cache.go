package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/99minutos/accounts-service/internal/core/domain"
	"github.com/99minutos/accounts-service/internal/core/ports"
)

const (
	defaultCacheTTL = time.Minute
	keyPrefix       = "account:"
)

// AccountCache is a read-through cache in front of an AccountRepository.
// Lookups by id and username are cached under the current generation. Every
// write bumps the generation after it reaches the backing store, so an entry
// loaded before the write and stored after it lands under a generation no
// reader uses any more. Cache failures never fail a request, they only fall
// back to the store.
type AccountCache struct {
	next   ports.AccountRepository
	client redis.Cmdable
	ttl    time.Duration
	log    zerolog.Logger
}

func NewAccountCache(next ports.AccountRepository, client redis.Cmdable, ttl time.Duration, log zerolog.Logger) *AccountCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &AccountCache{next: next, client: client, ttl: ttl, log: log}
}

// cachedAccount mirrors domain.Account including the password hash, which
// the domain type hides from JSON.
type cachedAccount struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	IsActive     bool      `json:"is_active"`
	IsSuperuser  bool      `json:"is_superuser"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func encodeAccount(a *domain.Account) ([]byte, error) {
	return json.Marshal(cachedAccount(*a))
}

func decodeAccount(b []byte) (*domain.Account, error) {
	var c cachedAccount
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	a := domain.Account(c)
	return &a, nil
}

const generationKey = keyPrefix + "gen"

func genPrefix(gen int64) string { return keyPrefix + strconv.FormatInt(gen, 10) + ":" }

func idKey(gen, id int64) string { return genPrefix(gen) + "id:" + strconv.FormatInt(id, 10) }

func usernameKey(gen int64, username string) string {
	return genPrefix(gen) + "username:" + username
}

func (c *AccountCache) FindByID(ctx context.Context, id int64) (*domain.Account, error) {
	return c.readThrough(ctx, func(gen int64) string { return idKey(gen, id) }, func() (*domain.Account, error) {
		return c.next.FindByID(ctx, id)
	})
}

func (c *AccountCache) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return c.readThrough(ctx, func(gen int64) string { return usernameKey(gen, username) }, func() (*domain.Account, error) {
		return c.next.FindByUsername(ctx, username)
	})
}

func (c *AccountCache) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return c.next.FindByEmail(ctx, email)
}

func (c *AccountCache) List(ctx context.Context, skip, limit int) ([]*domain.Account, int64, error) {
	return c.next.List(ctx, skip, limit)
}

func (c *AccountCache) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	created, err := c.next.Create(ctx, account)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx)
	return created, nil
}

func (c *AccountCache) Update(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	updated, err := c.next.Update(ctx, account)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx)
	return updated, nil
}

func (c *AccountCache) Delete(ctx context.Context, account *domain.Account) error {
	if err := c.next.Delete(ctx, account); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// generation returns the current cache generation. A missing counter is
// generation zero.
func (c *AccountCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *AccountCache) readThrough(ctx context.Context, key func(gen int64) string, load func() (*domain.Account, error)) (*domain.Account, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("account cache generation read failed")
		return load()
	}
	k := key(gen)

	raw, err := c.client.Get(ctx, k).Bytes()
	switch {
	case err == nil:
		if a, derr := decodeAccount(raw); derr == nil {
			return a, nil
		}
		c.log.Warn().Str("key", k).Msg("discarding undecodable cache entry")
	case !errors.Is(err, redis.Nil):
		c.log.Warn().Err(err).Str("key", k).Msg("account cache read failed")
	}

	a, err := load()
	if err != nil {
		return nil, err
	}

	if b, err := encodeAccount(a); err == nil {
		if err := c.client.Set(ctx, k, b, c.ttl).Err(); err != nil {
			c.log.Warn().Err(err).Str("key", k).Msg("account cache write failed")
		}
	}
	return a, nil
}

// invalidate retires every entry cached so far. Old generations expire on
// their own TTL.
func (c *AccountCache) invalidate(ctx context.Context) {
	if err := c.client.Incr(context.WithoutCancel(ctx), generationKey).Err(); err != nil {
		c.log.Error().Err(fmt.Errorf("bump %s: %w", generationKey, err)).Msg("account cache invalidation failed")
	}
}
