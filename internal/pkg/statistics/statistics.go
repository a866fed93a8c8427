package statistics

import (
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/vietscribe/vietscribe/app/models"
	"github.com/vietscribe/vietscribe/internal/pkg/cache"
	"github.com/vietscribe/vietscribe/internal/pkg/database"
)

const (
	CacheKeyUsersTotal    = "statistics:users:total"
	CacheKeyProjectsTotal = "statistics:projects:total"
	CacheKeyActiveSubs    = "statistics:subscriptions:active"
	CacheExpiration       = 30 * time.Minute
)

// Data holds the aggregate numbers shown on the admin dashboard.
type Data struct {
	TotalUsers          int `json:"total_users"`
	TotalProjects       int `json:"total_projects"`
	ActiveSubscriptions int `json:"active_subscriptions"`
}

var (
	lastCacheUpdate     time.Time
	cacheUpdateMutex    sync.Mutex
	cacheUpdateInterval = 5 * time.Minute
)

// UpdateCacheIfNeeded refreshes the statistics cache at most every few
// minutes, whichever request happens to trigger it.
func UpdateCacheIfNeeded() {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()
	if time.Since(lastCacheUpdate) <= cacheUpdateInterval {
		return
	}
	if err := UpdateCache(); err != nil {
		log.Printf("[Statistics] cache refresh failed: %v", err)
		return
	}
	lastCacheUpdate = time.Now()
}

// UpdateCache recomputes the aggregates from the database and stores them.
func UpdateCache() error {
	db := database.GetDB()

	var users int64
	if err := db.Model(&models.User{}).Count(&users).Error; err != nil {
		return err
	}
	var projects int64
	if err := db.Model(&models.Project{}).Count(&projects).Error; err != nil {
		return err
	}
	var activeSubs int64
	if err := db.Model(&models.Subscription{}).
		Where("status = ? AND tier <> ?", models.SubscriptionStatusActive, "free").
		Count(&activeSubs).Error; err != nil {
		return err
	}

	if err := cache.Set(CacheKeyUsersTotal, strconv.FormatInt(users, 10), CacheExpiration); err != nil {
		return err
	}
	if err := cache.Set(CacheKeyProjectsTotal, strconv.FormatInt(projects, 10), CacheExpiration); err != nil {
		return err
	}
	return cache.Set(CacheKeyActiveSubs, strconv.FormatInt(activeSubs, 10), CacheExpiration)
}

// Get returns the cached aggregates, refreshing the cache when stale or
// missing.
func Get() Data {
	UpdateCacheIfNeeded()

	data := Data{}
	if v, err := cache.GetInt(CacheKeyUsersTotal); err == nil {
		data.TotalUsers = v
	} else if err := UpdateCache(); err == nil {
		data.TotalUsers, _ = cache.GetInt(CacheKeyUsersTotal)
	}
	data.TotalProjects, _ = cache.GetInt(CacheKeyProjectsTotal)
	data.ActiveSubscriptions, _ = cache.GetInt(CacheKeyActiveSubs)
	return data
}
