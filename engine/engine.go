package engine

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/trendkit/core"
	"github.com/rushteam/trendkit/feature"
	"github.com/rushteam/trendkit/filter"
	"github.com/rushteam/trendkit/pipeline"
	"github.com/rushteam/trendkit/pkg/utils"
	"github.com/rushteam/trendkit/recall"
	"github.com/rushteam/trendkit/rerank"
	"github.com/rushteam/trendkit/trend"
)

// Recommendation 是推荐结果的一行。
type Recommendation struct {
	ItemID string  `json:"item_id"`
	Score  float64 `json:"score"`
}

// ColdStart 是冷启动降级的诊断位：哪些策略本次打了零分。
// 降级不是错误，但必须可观测。
type ColdStart struct {
	Collaborative bool `json:"collaborative"`
	Content       bool `json:"content"`
}

// Result 是一次推荐调用的完整结果。
type Result struct {
	Items     []Recommendation `json:"items"`
	ColdStart ColdStart        `json:"cold_start"`
}

// Option 配置 Engine 的可选协作方。
type Option func(*Engine)

// WithHotStore 挂接 zset 后端：趋势分析器把单品热榜写进去，
// 推荐链路的趋势策略优先从落盘趋势分取数。
func WithHotStore(kv core.KeyValueStore) Option {
	return func(e *Engine) { e.hot = kv }
}

// WithItemFeatureSource 挂接外部特征源（如 Feast），推荐结果
// 附带在线特征返回。
func WithItemFeatureSource(src feature.ItemFeatureSource) Option {
	return func(e *Engine) { e.featureSource = src }
}

// WithNowFn 注入时间源，测试用。
func WithNowFn(fn func() time.Time) Option {
	return func(e *Engine) { e.nowFn = fn }
}

// Engine 是推荐引擎门面。自身不持有跨调用的模型状态：矩阵、
// 编码器、口味向量都是每次调用基于数据快照重建的，反馈写入后
// 下一次调用必然反映（按用户的读后写一致由存储层保证）。
type Engine struct {
	data core.DataStore
	cfg  *Config

	analyzer *trend.Analyzer

	hot           core.KeyValueStore
	featureSource feature.ItemFeatureSource
	exprFilters   []filter.Filter
	nowFn         func() time.Time
}

// New 构建引擎。配置非法时返回 INVALID_CONFIG，构建期即失败。
func New(data core.DataStore, cfg *Config, opts ...Option) (*Engine, error) {
	if data == nil {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput,
			"data store is required")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{data: data, cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}

	// 规则过滤表达式在构建期编译，表达式错误立刻暴露
	for _, expr := range cfg.FilterExprs {
		f, err := filter.NewExpr(expr)
		if err != nil {
			return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidConfig,
				fmt.Sprintf("filter expr %q: %v", expr, err))
		}
		e.exprFilters = append(e.exprFilters, f)
	}

	e.analyzer = &trend.Analyzer{
		Data:          data,
		Hot:           e.hot,
		Epsilon:       cfg.GrowthEpsilon,
		MaxGrowthRate: cfg.MaxGrowthRate,
		ThresholdUp:   cfg.ThresholdUp,
		ThresholdDown: cfg.ThresholdDown,
		DecayLambda:   cfg.DecayLambda,
		NowFn:         e.nowFn,
	}
	return e, nil
}

func (e *Engine) now() time.Time {
	if e.nowFn != nil {
		return e.nowFn()
	}
	return time.Now()
}

// snapshot 是一次推荐调用的数据快照，取数并发进行。
type snapshot struct {
	catalog          []*core.Item
	interactions     []core.Interaction
	userInteractions []core.Interaction
	preferences      []core.Preference
	trendScores      []core.TrendScore
}

func (e *Engine) fetchSnapshot(ctx context.Context, userID string) (*snapshot, error) {
	snap := &snapshot{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := e.data.FetchItems(gctx, nil)
		snap.catalog = items
		return err
	})
	g.Go(func() error {
		ins, err := e.data.FetchInteractions(gctx, core.InteractionQuery{})
		snap.interactions = ins
		return err
	})
	g.Go(func() error {
		prefs, err := e.data.FetchPreferences(gctx, userID)
		snap.preferences = prefs
		return err
	})
	g.Go(func() error {
		scores, err := e.data.FetchTrendScores(gctx, core.DimensionItem)
		snap.trendScores = scores
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, in := range snap.interactions {
		if in.UserID == userID {
			snap.userInteractions = append(snap.userInteractions, in)
		}
	}
	return snap, nil
}

// Recommend 为用户产出 TopN 推荐。
//
// 冷启动用户不会失败：协同/内容降级为零分后趋势分主导排序，
// 降级策略记录在 Result.ColdStart。只有候选目录为空时返回
// INSUFFICIENT_DATA。topN <= 0 时取 10。
func (e *Engine) Recommend(ctx context.Context, userID string, topN int) (*Result, error) {
	if userID == "" {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput,
			"user id is required")
	}
	if topN <= 0 {
		topN = 10
	}

	snap, err := e.fetchSnapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(snap.catalog) == 0 {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInsufficientData,
			"item catalog is empty")
	}

	p, err := e.buildPipeline(snap, topN)
	if err != nil {
		return nil, err
	}

	rctx := &core.RecommendContext{UserID: userID, Scene: "recommend"}
	items, err := p.Run(ctx, rctx, snap.catalog)
	if err != nil {
		return nil, err
	}

	result := &Result{Items: make([]Recommendation, 0, len(items))}
	for _, item := range items {
		result.Items = append(result.Items, Recommendation{ItemID: item.ID, Score: item.Score})
	}
	if lbl, ok := rctx.GetLabel(core.LabelColdStart); ok {
		result.ColdStart.Collaborative = utils.HasValue(lbl, "collaborative")
		result.ColdStart.Content = utils.HasValue(lbl, "content")
	}
	return result, nil
}

func (e *Engine) buildPipeline(snap *snapshot, topN int) (*pipeline.Pipeline, error) {
	cfg := e.cfg

	matrix, err := recall.BuildMatrix(snap.interactions, cfg.MaxCellWeight)
	if err != nil {
		return nil, err
	}
	encoder, err := feature.NewEncoder(cfg.FeatureWeights, snap.catalog)
	if err != nil {
		return nil, err
	}
	fusion, err := rerank.NewFusion(cfg.FusionWeights)
	if err != nil {
		return nil, err
	}

	strategies := []recall.Strategy{
		&recall.Collaborative{
			Matrix:    matrix,
			TopK:      cfg.TopKSimilarUsers,
			Threshold: cfg.SimilarityThreshold,
		},
		&recall.ContentBased{
			Encoder:      encoder,
			Interactions: snap.userInteractions,
			Preferences:  snap.preferences,
		},
		&recall.Trending{
			Stored:       snap.trendScores,
			Interactions: snap.interactions,
			Now:          e.now(),
			WindowDays:   cfg.TrendingWindowDays,
			Lambda:       cfg.DecayLambda,
		},
	}

	filters := []filter.Filter{
		filter.NewInteracted(snap.userInteractions, cfg.ExcludeInteractionTypes...),
	}
	filters = append(filters, e.exprFilters...)

	nodes := []pipeline.Node{
		&recall.ParallelScore{Strategies: strategies},
		&filter.FilterNode{Filters: filters},
		fusion,
		&rerank.TopN{N: topN},
	}
	if e.featureSource != nil {
		nodes = append(nodes, &feature.EnrichNode{Source: e.featureSource})
	}
	return &pipeline.Pipeline{Nodes: nodes}, nil
}

// RecordFeedback 记录一次反馈：追加交互，并按单品属性增量强化
// 用户偏好（指数更新，不整行覆盖）。rating 可选，取值 1-5。
func (e *Engine) RecordFeedback(ctx context.Context, userID, itemID string, t core.InteractionType, rating *float64) error {
	if userID == "" || itemID == "" {
		return core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput,
			"user id and item id are required")
	}
	if !t.Valid() {
		return core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput,
			fmt.Sprintf("unknown interaction type: %s", t))
	}
	if rating != nil && (*rating < 1 || *rating > 5) {
		return core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput,
			fmt.Sprintf("rating must be in [1,5], got %v", *rating))
	}

	items, err := e.data.FetchItems(ctx, []string{itemID})
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return core.NewDomainError(core.ModuleEngine, core.ErrorCodeNotFound,
			fmt.Sprintf("item not found: %s", itemID))
	}
	attrs := items[0].Attrs

	now := e.now()
	if err := e.data.AppendInteraction(ctx, core.Interaction{
		UserID:    userID,
		ItemID:    itemID,
		Type:      t,
		Rating:    rating,
		Timestamp: now,
	}); err != nil {
		return err
	}

	return e.reinforcePreferences(ctx, userID, attrs, t, now)
}

// reinforcePreferences 对单品命中的每个偏好维度做一次指数更新。
func (e *Engine) reinforcePreferences(ctx context.Context, userID string, attrs *core.ItemAttrs, t core.InteractionType, now time.Time) error {
	if attrs == nil {
		return nil
	}

	existing, err := e.data.FetchPreferences(ctx, userID)
	if err != nil {
		return err
	}
	oldWeight := make(map[string]float64, len(existing))
	for _, p := range existing {
		oldWeight[string(p.Dimension)+"|"+p.Value] = p.Weight
	}

	for _, dim := range core.PreferenceDimensions() {
		value := attrs.Attr(dim)
		if value == "" {
			continue
		}
		old := oldWeight[string(dim)+"|"+value]
		next := core.NextPreferenceWeight(old, t.Weight(), e.cfg.PreferenceAlpha, e.cfg.MaxPreferenceWeight)
		if err := e.data.UpsertPreference(ctx, core.Preference{
			UserID:    userID,
			Dimension: dim,
			Value:     value,
			Weight:    next,
			UpdatedAt: now,
		}); err != nil {
			return err
		}
	}
	return nil
}

// Trends 查询某维度的趋势榜单。window 零值取最近 14 天。
func (e *Engine) Trends(ctx context.Context, dim core.Dimension, window core.Window) ([]core.TrendEntry, error) {
	return e.analyzer.Analyze(ctx, dim, window)
}

// SeasonalTrends 查询指定季节的单品趋势。
func (e *Engine) SeasonalTrends(ctx context.Context, season string) ([]core.TrendEntry, error) {
	return e.analyzer.Seasonal(ctx, season)
}

// UpdateTrendScores 重算并落盘单品趋势分，由外部调度器周期触发。
func (e *Engine) UpdateTrendScores(ctx context.Context) error {
	return e.analyzer.UpdateTrendScores(ctx, e.cfg.TrendingWindowDays)
}
