package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/epeers/holdings/internal/cache"
	"github.com/epeers/holdings/internal/models"
	log "github.com/sirupsen/logrus"
)

// FundResolver answers "what is inside this fund". Implementations return
// models.ErrFundNotFound when they do not know the fund.
type FundResolver interface {
	Resolve(ctx context.Context, fund models.Holding) (models.Instrument, error)
}

// RegistryResolver serves fund constituents registered in memory by ticker
// (or by normalized name when the fund has no ticker).
type RegistryResolver struct {
	mu    sync.RWMutex
	funds map[string]models.Instrument
}

// NewRegistryResolver creates an empty RegistryResolver
func NewRegistryResolver() *RegistryResolver {
	return &RegistryResolver{funds: make(map[string]models.Instrument)}
}

// Register stores the constituents of a fund under key (a ticker or name)
func (r *RegistryResolver) Register(key string, inst models.Instrument) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funds[registryKey(key)] = inst
}

func (r *RegistryResolver) Resolve(ctx context.Context, fund models.Holding) (models.Instrument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if fund.Ticker != "" {
		if inst, ok := r.funds[registryKey(fund.Ticker)]; ok {
			return inst, nil
		}
	}
	if inst, ok := r.funds[registryKey(fund.Name)]; ok {
		return inst, nil
	}
	return nil, fmt.Errorf("%s: %w", fund, models.ErrFundNotFound)
}

func registryKey(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}

// ChainResolver asks each resolver in order and returns the first hit.
// Errors other than models.ErrFundNotFound stop the chain.
type ChainResolver []FundResolver

func (c ChainResolver) Resolve(ctx context.Context, fund models.Holding) (models.Instrument, error) {
	for _, r := range c {
		inst, err := r.Resolve(ctx, fund)
		if err == nil && inst != nil {
			return inst, nil
		}
		if err != nil && !errors.Is(err, models.ErrFundNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%s: %w", fund, models.ErrFundNotFound)
}

// CachedResolver memoizes another resolver's hits in a FundCache
type CachedResolver struct {
	next  FundResolver
	cache *cache.FundCache
}

// NewCachedResolver wraps next with fund caching
func NewCachedResolver(next FundResolver, fundCache *cache.FundCache) *CachedResolver {
	return &CachedResolver{next: next, cache: fundCache}
}

func (c *CachedResolver) Resolve(ctx context.Context, fund models.Holding) (models.Instrument, error) {
	key := fundIdentity(fund)
	if inst, ok := c.cache.Get(key); ok {
		log.Debugf("CachedResolver: hit for %s", fund)
		return inst, nil
	}

	inst, err := c.next.Resolve(ctx, fund)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, inst)
	return inst, nil
}
