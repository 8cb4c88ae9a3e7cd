// services/plan_service.go
package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/LFroesch/project-management-sub010/models"
	"github.com/LFroesch/project-management-sub010/repositories"
)

const planCacheTTL = 5 * time.Minute

// PlanService resolves user plan tiers, caching lookups in Redis when a
// client is available. A nil cache degrades to direct reads.
type PlanService struct {
	users *repositories.UserRepository
	cache *redis.Client
}

func NewPlanService(users *repositories.UserRepository, cache *redis.Client) *PlanService {
	return &PlanService{
		users: users,
		cache: cache,
	}
}

func planCacheKey(userID primitive.ObjectID) string {
	return fmt.Sprintf("plan:%s", userID.Hex())
}

func (s *PlanService) GetPlanTier(ctx context.Context, userID primitive.ObjectID) (models.PlanTier, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, planCacheKey(userID)).Result()
		if err == nil && cached != "" {
			return models.PlanTier(cached), nil
		}
		if err != nil && err != redis.Nil {
			log.Printf("Plan cache read failed: %v", err)
		}
	}

	tier, err := s.users.PlanTierOf(ctx, userID)
	if err != nil {
		return models.PlanFree, fmt.Errorf("failed to resolve plan tier: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, planCacheKey(userID), string(tier), planCacheTTL).Err(); err != nil {
			log.Printf("Plan cache write failed: %v", err)
		}
	}
	return tier, nil
}

// InvalidatePlanTier drops the cached tier after a plan change.
func (s *PlanService) InvalidatePlanTier(ctx context.Context, userID primitive.ObjectID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, planCacheKey(userID)).Err(); err != nil {
		log.Printf("Plan cache invalidate failed: %v", err)
	}
}
