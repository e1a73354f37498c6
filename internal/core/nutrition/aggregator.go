package nutrition

import (
	"context"
	"sync"
	"time"

	"health-recipe-api/internal/core/rules"
	"health-recipe-api/internal/pkg/common"

	"go.uber.org/zap"
)

// AggregatorOptions 營養彙總設定
type AggregatorOptions struct {
	WorkerCount   int
	LookupTimeout time.Duration
}

// Aggregator 營養彙總服務
// 以固定寬度的 worker pool 並行查詢各食材，結果按輸入索引收集，
// 部分失敗記錄於 Unmatched 並排除在總計外，不會中斷整次呼叫
type Aggregator struct {
	client     Lookuper
	normalizer *rules.Normalizer
	opts       AggregatorOptions
}

// NewAggregator 創建營養彙總服務
func NewAggregator(client Lookuper, normalizer *rules.Normalizer, opts AggregatorOptions) *Aggregator {
	if opts.WorkerCount <= 0 {
		opts.WorkerCount = 8
	}
	if opts.LookupTimeout <= 0 {
		opts.LookupTimeout = 3 * time.Second
	}
	return &Aggregator{
		client:     client,
		normalizer: normalizer,
		opts:       opts,
	}
}

// lookupResult 單一食材的查詢結果
type lookupResult struct {
	vector map[string]float64
	err    error
}

// Aggregate 並行查詢並彙總營養資料
// 全部查詢失敗時回傳 DataUnavailable=true 的結果而非錯誤，
// 呼叫端必須先檢查該旗標再把總計當作可信數據
func (a *Aggregator) Aggregate(ctx context.Context, ingredients []string, condition string, servings int) (*common.NutritionProfile, error) {
	if servings < 1 {
		return nil, common.NewValidationError("servings must be a positive integer")
	}

	normalizedCondition := rules.NormalizeCondition(condition)
	items := common.UniqueStrings(a.normalizer.NormalizeAll(ingredients))
	if len(items) == 0 {
		return nil, common.NewValidationError("ingredient list is empty")
	}

	results := a.fanOut(ctx, items)

	profile := &common.NutritionProfile{
		Condition:     normalizedCondition,
		Servings:      servings,
		Totals:        make(map[string]float64),
		PerServing:    make(map[string]float64),
		DailyValuePct: make(map[string]float64),
		Warnings:      []common.WarningEvent{},
		Matched:       make([]string, 0, len(items)),
		Unmatched:     make([]string, 0),
	}

	// 按輸入索引彙總，輸出順序與完成順序無關
	for i, item := range items {
		res := results[i]
		if res.err != nil {
			common.LogWarn("營養查詢失敗，排除於總計外",
				zap.String("ingredient", item),
				zap.String("code", common.ErrNutritionUnavailable.Code),
				zap.Error(res.err),
			)
			profile.Unmatched = append(profile.Unmatched, item)
			continue
		}
		if res.vector == nil {
			profile.Unmatched = append(profile.Unmatched, item)
			continue
		}

		profile.Matched = append(profile.Matched, item)
		for nutrient, value := range res.vector {
			profile.Totals[nutrient] += value
		}
	}

	// 全數失敗：明確標示資料不可用，不產生警告
	if len(profile.Matched) == 0 {
		profile.DataUnavailable = true
		profile.Accuracy = "estimated"
		common.LogWarn("營養資料完全不可用",
			zap.String("condition", normalizedCondition),
			zap.Int("ingredients", len(items)),
		)
		return profile, nil
	}

	if float64(len(profile.Matched)) < float64(len(items))/2 {
		profile.Accuracy = "estimated"
	} else {
		profile.Accuracy = "calculated"
	}

	// 每份數值與每日參考值百分比，一律取到一位小數
	for _, nutrient := range Nutrients {
		total, ok := profile.Totals[nutrient.Name]
		if !ok {
			continue
		}
		profile.Totals[nutrient.Name] = round1(total)
		perServing := round1(total / float64(servings))
		profile.PerServing[nutrient.Name] = perServing
		if nutrient.DailyValue > 0 {
			profile.DailyValuePct[nutrient.Name] = round1(perServing / nutrient.DailyValue * 100)
		}
	}

	// 病症門檻掃描
	for _, threshold := range ThresholdsFor(normalizedCondition) {
		value, ok := profile.PerServing[threshold.Nutrient]
		if !ok || value <= threshold.Max {
			continue
		}
		profile.Warnings = append(profile.Warnings, common.WarningEvent{
			Nutrient:  threshold.Nutrient,
			Value:     value,
			Threshold: threshold.Max,
			Message:   threshold.Message,
			Severity:  severityFor(value, threshold.Max),
		})
	}

	common.LogInfo("營養彙總完成",
		zap.String("condition", normalizedCondition),
		zap.Int("matched", len(profile.Matched)),
		zap.Int("unmatched", len(profile.Unmatched)),
		zap.Int("warnings", len(profile.Warnings)),
	)

	return profile, nil
}

// fanOut 以固定數量的 worker 並行查詢，等待全部完成後回傳
// 不因單一失敗提前取消；呼叫端逾時透過 ctx 傳遞給在途任務
func (a *Aggregator) fanOut(ctx context.Context, items []string) []lookupResult {
	results := make([]lookupResult, len(items))

	workers := a.opts.WorkerCount
	if workers > len(items) {
		workers = len(items)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = a.lookupOne(ctx, items[idx])
			}
		}()
	}

	for i := range items {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

// lookupOne 單一查詢任務，附帶獨立逾時
// 整體期限已到時直接標記為逾時失敗，不再發出請求
func (a *Aggregator) lookupOne(ctx context.Context, item string) lookupResult {
	if err := ctx.Err(); err != nil {
		return lookupResult{err: err}
	}

	lookupCtx, cancel := context.WithTimeout(ctx, a.opts.LookupTimeout)
	defer cancel()

	vector, err := a.client.LookupNutrients(lookupCtx, item)
	return lookupResult{vector: vector, err: err}
}
