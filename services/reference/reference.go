package reference

import (
	"context"
	"encoding/json"
	"time"

	employeeRepo "glowdesk/database/repository/employee"
	placeRepo "glowdesk/database/repository/place"
	"glowdesk/models"
	"glowdesk/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Service exposes the read-only reference data the scheduling core consumes.
type Service interface {
	GetPlace(ctx context.Context, placeID string) (*models.Place, error)
	GetEmployee(ctx context.Context, employeeID string) (*models.Employee, error)
}

// CachedReferenceService reads places and employees through a Redis
// cache-aside layer. Cache failures are logged and fall through to Mongo;
// lookups that miss there return the repository's ErrNotFound.
type CachedReferenceService struct {
	Places    placeRepo.PlaceRepository
	Employees employeeRepo.EmployeeRepository
	Cache     *redis.Client
	TTL       time.Duration
}

func (s *CachedReferenceService) GetPlace(ctx context.Context, placeID string) (*models.Place, error) {
	key := utils.ReferenceCachePrefix + "place:" + placeID

	var cached models.Place
	if s.readCache(ctx, key, &cached) {
		return &cached, nil
	}

	place, err := s.Places.GetPlaceByID(ctx, placeID)
	if err != nil {
		return nil, err
	}
	s.writeCache(ctx, key, place)
	return place, nil
}

func (s *CachedReferenceService) GetEmployee(ctx context.Context, employeeID string) (*models.Employee, error) {
	key := utils.ReferenceCachePrefix + "employee:" + employeeID

	var cached models.Employee
	if s.readCache(ctx, key, &cached) {
		return &cached, nil
	}

	employee, err := s.Employees.GetEmployeeByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	s.writeCache(ctx, key, employee)
	return employee, nil
}

func (s *CachedReferenceService) readCache(ctx context.Context, key string, out any) bool {
	if s.Cache == nil {
		return false
	}
	data, err := s.Cache.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			utils.GetLogger().Warn("reference cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal([]byte(data), out); err != nil {
		utils.GetLogger().Warn("reference cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *CachedReferenceService) writeCache(ctx context.Context, key string, value any) {
	if s.Cache == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	ttl := s.TTL
	if ttl <= 0 {
		ttl = utils.ReferenceCacheTTL
	}
	if err := s.Cache.Set(ctx, key, data, ttl).Err(); err != nil {
		utils.GetLogger().Warn("reference cache write failed", zap.String("key", key), zap.Error(err))
	}
}
