package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"portfolio-tracker/internal/tracker/repository"
	"portfolio-tracker/pkg/logger"
	redisPkg "portfolio-tracker/pkg/redis"

	"github.com/patrickmn/go-cache"
	redis "github.com/redis/go-redis/v9"
)

const redisKeyPrice = "price:%s"

// PriceCache serves ticker prices, caching provider results for a bounded
// time so repeated portfolio reads do not hammer the market data API.
type PriceCache interface {
	// GetPrice returns the cached price for the ticker if it is still
	// fresh, otherwise queries the provider and caches the result.
	// Provider failures are not cached, so a transient error is retried
	// on the next call.
	GetPrice(ctx context.Context, ticker string) (float64, error)
	// Refresh clears the entire cache, forcing the next read per ticker
	// to hit the provider.
	Refresh(ctx context.Context) error
}

// NewMemoryPriceCache creates an in-process price cache with the given TTL.
func NewMemoryPriceCache(priceRepo repository.PriceRepository, log *logger.Logger, ttl time.Duration) PriceCache {
	return &memoryPriceCache{
		priceRepo: priceRepo,
		log:       log,
		cache:     cache.New(ttl, 2*ttl),
	}
}

type memoryPriceCache struct {
	priceRepo repository.PriceRepository
	log       *logger.Logger
	mu        sync.Mutex
	cache     *cache.Cache
}

func (c *memoryPriceCache) GetPrice(ctx context.Context, ticker string) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cached, found := c.cache.Get(ticker); found {
		return cached.(float64), nil
	}

	price, err := c.priceRepo.GetQuote(ctx, ticker)
	if err != nil {
		return 0, err
	}

	c.cache.SetDefault(ticker, price)
	return price, nil
}

func (c *memoryPriceCache) Refresh(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Flush()
	return nil
}

// NewRedisPriceCache creates a price cache shared across instances through
// Redis, with per-ticker expiry handled by the Redis TTL.
func NewRedisPriceCache(priceRepo repository.PriceRepository, log *logger.Logger, redisClient *redisPkg.Client, ttl time.Duration) PriceCache {
	return &redisPriceCache{
		priceRepo:   priceRepo,
		log:         log,
		redisClient: redisClient,
		ttl:         ttl,
	}
}

type redisPriceCache struct {
	priceRepo   repository.PriceRepository
	log         *logger.Logger
	redisClient *redisPkg.Client
	ttl         time.Duration
}

func (c *redisPriceCache) GetPrice(ctx context.Context, ticker string) (float64, error) {
	key := fmt.Sprintf(redisKeyPrice, ticker)

	cached, err := c.redisClient.Get(ctx, key).Result()
	if err == nil {
		price, parseErr := strconv.ParseFloat(cached, 64)
		if parseErr == nil {
			return price, nil
		}
		c.log.ErrorContext(ctx, "Corrupt cached price, refetching", logger.ErrorField(parseErr), logger.StringField("ticker", ticker))
	} else if !errors.Is(err, redis.Nil) {
		c.log.ErrorContext(ctx, "Failed to read price from redis", logger.ErrorField(err), logger.StringField("ticker", ticker))
	}

	price, err := c.priceRepo.GetQuote(ctx, ticker)
	if err != nil {
		return 0, err
	}

	if err := c.redisClient.Set(ctx, key, strconv.FormatFloat(price, 'f', -1, 64), c.ttl).Err(); err != nil {
		c.log.ErrorContext(ctx, "Failed to cache price in redis", logger.ErrorField(err), logger.StringField("ticker", ticker))
	}
	return price, nil
}

func (c *redisPriceCache) Refresh(ctx context.Context) error {
	iter := c.redisClient.Scan(ctx, 0, fmt.Sprintf(redisKeyPrice, "*"), 100).Iterator()
	for iter.Next(ctx) {
		if err := c.redisClient.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
