package rules

import (
	"context"
	"sync"
	"time"

	"health-recipe-api/internal/pkg/common"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// StoreOptions 規則快取設定
type StoreOptions struct {
	TTL             time.Duration
	MaxSize         int
	CleanupInterval time.Duration
}

// Store 規則存取層
// 規則庫前的 read-through 快取：條目（含負向結果）在 TTL 內有效，
// 同一鍵的併發未命中以 single-flight 合併為一次規則庫查詢
type Store struct {
	repo Repository
	opts StoreOptions

	mu      sync.RWMutex
	entries map[string]ruleEntry
	keys    map[string]struct{}
	stats   storeStats

	group    singleflight.Group
	stopCh   chan struct{}
	stopOnce sync.Once
}

// ruleEntry 快取條目，rule 為 nil 表示已確認無此規則
type ruleEntry struct {
	rule        *common.IngredientRule
	expiresAt   time.Time
	createdAt   time.Time
	lastAccess  time.Time
	accessCount int
}

// storeStats 快取統計
type storeStats struct {
	hits      int64
	misses    int64
	evictions int64
	errors    int64
}

// NewStore 創建規則存取層
func NewStore(repo Repository, opts StoreOptions) *Store {
	if opts.TTL <= 0 {
		opts.TTL = 5 * time.Minute
	}
	if opts.MaxSize <= 0 {
		opts.MaxSize = 1000
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = time.Minute
	}

	s := &Store{
		repo:    repo,
		opts:    opts,
		entries: make(map[string]ruleEntry),
		keys:    SeedRuleNames(),
		stopCh:  make(chan struct{}),
	}

	// 啟動清理過期條目的協程
	go s.startCleanup()

	common.LogInfo("規則快取已初始化",
		zap.Int("最大容量", opts.MaxSize),
		zap.Duration("存活時間", opts.TTL),
		zap.Duration("清理間隔", opts.CleanupInterval),
	)

	return s
}

// Lookup 查詢食材規則
// 回傳 (規則, 是否存在, 錯誤)；規則庫不可用時當次視為查無規則，
// 不寫入快取、不讓錯誤外洩（呼叫端會按預設安全策略分類）
func (s *Store) Lookup(ctx context.Context, name string) (*common.IngredientRule, bool, error) {
	if name == "" {
		return nil, false, common.NewValidationError("ingredient name is required")
	}

	// 快取命中
	s.mu.RLock()
	entry, ok := s.entries[name]
	s.mu.RUnlock()

	if ok && time.Now().Before(entry.expiresAt) {
		s.mu.Lock()
		if e, still := s.entries[name]; still {
			e.lastAccess = time.Now()
			e.accessCount++
			s.entries[name] = e
		}
		s.stats.hits++
		s.mu.Unlock()
		common.LogCacheHit("rules", name)
		return entry.rule, entry.rule != nil, nil
	}

	s.mu.Lock()
	s.stats.misses++
	s.mu.Unlock()
	common.LogCacheMiss("rules", name)

	// 未命中：同鍵併發查詢合併為一次規則庫存取
	v, err, _ := s.group.Do(name, func() (interface{}, error) {
		// 勝者可能已回填，先重查快取
		s.mu.RLock()
		e, exists := s.entries[name]
		s.mu.RUnlock()
		if exists && time.Now().Before(e.expiresAt) {
			return e.rule, nil
		}

		rule, err := s.repo.FetchRule(ctx, name)
		if err != nil {
			return nil, err
		}
		s.set(name, rule)
		return rule, nil
	})

	if err != nil {
		s.mu.Lock()
		s.stats.errors++
		s.mu.Unlock()
		common.LogWarn("規則庫查詢失敗，當次視為無規則",
			zap.String("ingredient", name),
			zap.String("code", common.ErrRuleRepositoryUnavailable.Code),
			zap.Error(err),
		)
		return nil, false, nil
	}

	rule, _ := v.(*common.IngredientRule)
	return rule, rule != nil, nil
}

// IsKnownKey 檢查名稱是否為已知規則鍵（供正規化器的單複數折疊使用）
func (s *Store) IsKnownKey(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.keys[name]
	return ok
}

// ListRules 列出全部規則，規則庫不可用時退回種子規則
func (s *Store) ListRules(ctx context.Context) []common.IngredientRule {
	ruleList, err := s.repo.ListRules(ctx)
	if err != nil {
		common.LogWarn("規則庫列舉失敗，退回種子規則", zap.Error(err))
		return SeedRules()
	}
	return ruleList
}

// Conditions 列出所有已知病症，規則庫不可用時由種子規則推導
func (s *Store) Conditions(ctx context.Context) []string {
	conditions, err := s.repo.Conditions(ctx)
	if err != nil {
		common.LogWarn("規則庫病症列舉失敗，退回種子規則", zap.Error(err))
		seen := make(map[string]struct{})
		conditions = conditions[:0]
		for _, rule := range SeedRules() {
			for _, c := range rule.HarmfulFor {
				if _, ok := seen[c]; ok {
					continue
				}
				seen[c] = struct{}{}
				conditions = append(conditions, c)
			}
		}
	}
	return conditions
}

// set 寫入快取條目並登錄已知鍵
func (s *Store) set(name string, rule *common.IngredientRule) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// 容量保護：先清過期，仍滿則 LRU 淘汰
	if len(s.entries) >= s.opts.MaxSize {
		s.cleanupLocked()
		if len(s.entries) >= s.opts.MaxSize {
			s.evictLRULocked()
		}
	}

	now := time.Now()
	s.entries[name] = ruleEntry{
		rule:        rule,
		expiresAt:   now.Add(s.opts.TTL),
		createdAt:   now,
		lastAccess:  now,
		accessCount: 0,
	}
	if rule != nil {
		s.keys[name] = struct{}{}
	}
}

// startCleanup 啟動清理過期條目的協程
func (s *Store) startCleanup() {
	ticker := time.NewTicker(s.opts.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			count := s.cleanupLocked()
			s.mu.Unlock()
			if count > 0 {
				common.LogDebug("規則快取清理完成", zap.Int("count", count))
			}
		case <-s.stopCh:
			return
		}
	}
}

// cleanupLocked 清除過期條目，呼叫端須持有寫鎖
func (s *Store) cleanupLocked() int {
	now := time.Now()
	count := 0
	for key, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, key)
			s.stats.evictions++
			count++
		}
	}
	return count
}

// evictLRULocked 淘汰最少使用的條目，呼叫端須持有寫鎖
func (s *Store) evictLRULocked() {
	var oldestKey string
	var oldestAccess time.Time
	var lowestAccessCount int

	for key, entry := range s.entries {
		if oldestKey == "" ||
			entry.accessCount < lowestAccessCount ||
			(entry.accessCount == lowestAccessCount && entry.lastAccess.Before(oldestAccess)) {
			oldestKey = key
			oldestAccess = entry.lastAccess
			lowestAccessCount = entry.accessCount
		}
	}

	if oldestKey != "" {
		delete(s.entries, oldestKey)
		s.stats.evictions++
		common.LogDebug("規則快取已淘汰(LRU)", zap.String("鍵", oldestKey))
	}
}

// Stats 獲取快取統計信息
func (s *Store) Stats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := s.stats.hits + s.stats.misses
	hitRatio := 0.0
	if total > 0 {
		hitRatio = float64(s.stats.hits) / float64(total)
	}

	return map[string]interface{}{
		"size":      len(s.entries),
		"max_size":  s.opts.MaxSize,
		"hits":      s.stats.hits,
		"misses":    s.stats.misses,
		"evictions": s.stats.evictions,
		"errors":    s.stats.errors,
		"hit_ratio": hitRatio,
	}
}

// Close 關閉規則存取層並停止背景清理
func (s *Store) Close() error {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]ruleEntry)
	common.LogInfo("規則快取已關閉",
		zap.Int64("命中次數", s.stats.hits),
		zap.Int64("未命中次數", s.stats.misses),
		zap.Int64("淘汰次數", s.stats.evictions),
	)
	return nil
}
