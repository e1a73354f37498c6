package api

import (
	"context"
	"net/http"
	"time"

	"health-recipe-api/internal/api/handlers"
	"health-recipe-api/internal/api/handlers/health"
	"health-recipe-api/internal/api/middleware"
	"health-recipe-api/internal/core/extraction"
	"health-recipe-api/internal/core/generation"
	"health-recipe-api/internal/core/nutrition"
	"health-recipe-api/internal/core/recipe"
	"health-recipe-api/internal/core/rules"
	"health-recipe-api/internal/core/tips"
	"health-recipe-api/internal/infrastructure/config"
	"health-recipe-api/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	// 超時設置
	timeoutDuration = 60 * time.Second
	// 請求體大小限制 (1MB)
	maxBodySize = 1 << 20
)

// Dependencies 路由所需的服務集合
type Dependencies struct {
	RedisClient *redis.Client
	RuleStore   *rules.Store
	Classifier  *rules.Classifier
	Extractor   *extraction.Orchestrator
	Generator   *recipe.Generator
	Aggregator  *nutrition.Aggregator
	TipsService *tips.Service

	ruleRepo *rules.RedisRepository
	dishRepo *extraction.RedisDishRepository
}

// NewDependencies 依設定組裝全部服務
// 生成服務停用時走純規則/備援路徑，提供者為 nil 的服務會自行降級
func NewDependencies(cfg *config.Config, redisClient *redis.Client) *Dependencies {
	var provider generation.Provider
	if cfg.OpenRouter.Enabled {
		provider = generation.NewOpenRouterClient(generation.Config{
			APIKey:      cfg.OpenRouter.APIKey,
			BaseURL:     cfg.OpenRouter.BaseURL,
			Model:       cfg.OpenRouter.Model,
			MaxTokens:   cfg.OpenRouter.MaxTokens,
			Temperature: cfg.OpenRouter.Temperature,
			Timeout:     cfg.OpenRouter.Timeout,
			MaxRetries:  cfg.OpenRouter.MaxRetries,
		})
	}

	ruleRepo := rules.NewRedisRepository(redisClient)
	ruleStore := rules.NewStore(ruleRepo, rules.StoreOptions{
		TTL:             cfg.Rules.CacheTTL,
		MaxSize:         cfg.Rules.CacheMaxSize,
		CleanupInterval: cfg.Rules.CleanupInterval,
	})
	normalizer := rules.NewNormalizer(ruleStore.IsKnownKey)
	classifier := rules.NewClassifier(ruleStore, normalizer, rules.UnknownPolicy(cfg.Rules.UnknownPolicy))

	// 萃取策略鏈依固定順序組裝：生成式 → 本地表 → 外部查詢 → 啟發式
	dishRepo := extraction.NewRedisDishRepository(redisClient)
	strategies := make([]extraction.Strategy, 0, 4)
	if provider != nil {
		strategies = append(strategies, extraction.NewGenerativeStrategy(provider, 150, cfg.OpenRouter.Temperature, cfg.OpenRouter.Timeout))
	}
	strategies = append(strategies,
		extraction.NewRepositoryStrategy(dishRepo),
		extraction.NewExternalStrategy(extraction.NewMealLookupClient(cfg.RecipeLookup.BaseURL, cfg.RecipeLookup.Timeout)),
		extraction.NewHeuristicStrategy(),
	)
	extractor := extraction.NewOrchestrator(normalizer, strategies...)

	generator := recipe.NewGenerator(provider, recipe.NewRedisStore(redisClient), recipe.GeneratorOptions{
		MaxTokens:   cfg.OpenRouter.MaxTokens,
		Temperature: cfg.OpenRouter.Temperature,
		Timeout:     cfg.OpenRouter.Timeout,
		MaxRetries:  cfg.OpenRouter.MaxRetries,
	})

	aggregator := nutrition.NewAggregator(
		nutrition.NewUSDAClient(cfg.Nutrition.BaseURL, cfg.Nutrition.APIKey, cfg.Nutrition.Timeout),
		normalizer,
		nutrition.AggregatorOptions{
			WorkerCount:   cfg.Pipeline.WorkerCount,
			LookupTimeout: cfg.Pipeline.LookupTimeout,
		},
	)

	tipsService := tips.NewService(provider, tips.ServiceOptions{
		Temperature: cfg.OpenRouter.Temperature,
		Timeout:     cfg.OpenRouter.Timeout,
	})

	return &Dependencies{
		RedisClient: redisClient,
		RuleStore:   ruleStore,
		Classifier:  classifier,
		Extractor:   extractor,
		Generator:   generator,
		Aggregator:  aggregator,
		TipsService: tipsService,
		ruleRepo:    ruleRepo,
		dishRepo:    dishRepo,
	}
}

// EnsureSeedData 寫入初始規則與本地菜色表（僅在缺少時）
// 失敗只記錄，服務仍以種子表的記憶體備援運作
func (d *Dependencies) EnsureSeedData(ctx context.Context) {
	if d.ruleRepo != nil {
		if err := d.ruleRepo.EnsureSeed(ctx); err != nil {
			common.LogWarn("規則種子寫入失敗", zap.Error(err))
		}
	}
	if d.dishRepo != nil {
		if err := d.dishRepo.EnsureSeed(ctx); err != nil {
			common.LogWarn("菜色種子寫入失敗", zap.Error(err))
		}
	}
}

// Close 釋放服務資源
func (d *Dependencies) Close() {
	if d.RuleStore != nil {
		d.RuleStore.Close()
	}
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, deps *Dependencies) (*gin.Engine, error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 創建路由引擎
	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New()) // 自動生成請求 ID
	router.Use(middleware.Logger())

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(maxBodySize))

	// 限流與去重
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	router.Use(middleware.Deduplication(cfg.DedupWindow))

	// 全局中間件：設置超時和服務
	router.Use(func(c *gin.Context) {
		// 設置請求超時
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		// 健康檢查處理器由上下文取得設定與共用資源
		c.Set("config", cfg)
		c.Set("redis", deps.RedisClient)
		c.Set("rule_store", deps.RuleStore)

		// 處理請求
		c.Next()

		// 檢查是否超時
		if ctx.Err() == context.DeadlineExceeded {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", requestid.Get(c)),
				zap.Duration("timeout", timeoutDuration),
			)
			c.JSON(http.StatusGatewayTimeout, gin.H{
				"error": "Request timeout",
				"code":  common.ErrCodeRequestTimeout,
				"details": gin.H{
					"timeout": timeoutDuration.String(),
				},
			})
			c.Abort()
			return
		}
	})

	// 健康檢查路由
	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	// API 路由組
	handler := handlers.NewHandler(
		deps.Classifier,
		deps.RuleStore,
		deps.Extractor,
		deps.Generator,
		deps.Aggregator,
		deps.TipsService,
	)

	api := router.Group("/api/v1")
	{
		ingredientGroup := api.Group("/ingredients")
		{
			ingredientGroup.POST("/check", handler.CheckIngredients)
			ingredientGroup.POST("/extract", handler.ExtractIngredients)
			ingredientGroup.GET("", handler.ListIngredients)
		}

		recipeGroup := api.Group("/recipes")
		{
			recipeGroup.POST("/generate", handler.GenerateRecipe)
		}

		nutritionGroup := api.Group("/nutrition")
		{
			nutritionGroup.POST("/analyze", handler.AnalyzeNutrition)
		}

		conditionGroup := api.Group("/conditions")
		{
			conditionGroup.GET("", handler.ListConditions)
			conditionGroup.GET("/:condition/tips", handler.ConditionTips)
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router, nil
}
