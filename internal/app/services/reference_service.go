package services

import (
	"context"
	"time"

	"github.com/yigit/skillmart/internal/app/models"
	"github.com/yigit/skillmart/internal/pkg/cache"
)

// ReferenceService serves lookup lists that rarely change
type ReferenceService struct {
	api   ReferenceAPI
	cache cache.Cache
	ttl   time.Duration
}

// NewReferenceService creates a new reference service instance
func NewReferenceService(api ReferenceAPI, c cache.Cache, ttl time.Duration) *ReferenceService {
	return &ReferenceService{api: api, cache: c, ttl: ttl}
}

// Categories returns every course category
func (s *ReferenceService) Categories(ctx context.Context) ([]models.Category, error) {
	return cache.Remember(ctx, s.cache, "categories", s.ttl, s.api.Categories)
}

// Banks returns the payout bank list
func (s *ReferenceService) Banks(ctx context.Context) ([]models.Bank, error) {
	return cache.Remember(ctx, s.cache, "banks", s.ttl, s.api.Banks)
}
