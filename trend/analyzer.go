// Package trend 实现趋势分析器：按维度聚合交互权重、计算周环比
// 增长率并分类涨跌、支持季节过滤，并把单品趋势分写回存储供
// 推荐链路的趋势策略消费。
//
// 分析器按调用无状态（仅以窗口边界为键），周期性重算由外部调度器
// 触发；趋势分是派生数据，可随时重算，不作为交互历史的事实来源。
package trend

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rushteam/trendkit/core"
	"github.com/rushteam/trendkit/recall"
)

// 默认参数。ε 保证基线为零时增长率有限；增长率上限防止接近零的
// 基线放大出天文数字。
const (
	DefaultEpsilon       = 1e-9
	DefaultMaxGrowthRate = 1000.0
	DefaultThresholdUp   = 0.2
	DefaultThresholdDown = -0.2
	DefaultWindowDays    = 14
	DefaultDecayLambda   = 0.1
)

// Analyzer 是趋势分析器。零值字段取包内默认值。
type Analyzer struct {
	// Data 数据访问协作方
	Data core.DataStore

	// Hot 可选的有序集合后端，UpdateTrendScores 会把单品热榜写成 zset
	Hot core.KeyValueStore

	// HotKey zset key，为空时取 recall.DefaultTrendKey
	HotKey string

	// Epsilon 周环比除零保护
	Epsilon float64

	// MaxGrowthRate 增长率绝对值上限
	MaxGrowthRate float64

	// ThresholdUp / ThresholdDown 涨跌分类阈值
	ThresholdUp   float64
	ThresholdDown float64

	// DecayLambda UpdateTrendScores 用的指数衰减系数
	DecayLambda float64

	// NowFn 时间源，测试时注入固定时钟
	NowFn func() time.Time
}

func (a *Analyzer) now() time.Time {
	if a.NowFn != nil {
		return a.NowFn()
	}
	return time.Now()
}

func (a *Analyzer) epsilon() float64 {
	if a.Epsilon > 0 {
		return a.Epsilon
	}
	return DefaultEpsilon
}

func (a *Analyzer) maxGrowth() float64 {
	if a.MaxGrowthRate > 0 {
		return a.MaxGrowthRate
	}
	return DefaultMaxGrowthRate
}

func (a *Analyzer) thresholds() (up, down float64) {
	up, down = a.ThresholdUp, a.ThresholdDown
	if up == 0 && down == 0 {
		up, down = DefaultThresholdUp, DefaultThresholdDown
	}
	return up, down
}

// Analyze 按维度聚合窗口内的交互权重，返回 (值, 聚合分, 增长率, 涨跌) 列表。
//
// 增长率取窗口末尾两个相邻 7 天桶的环比：
//
//	growth = (本周分 − 上周分) / max(上周分, ε)
//
// 结果有限且以 MaxGrowthRate 封顶。排序：聚合分降序，同分按值升序。
// window 零值取截止当前的最近 14 天。
func (a *Analyzer) Analyze(ctx context.Context, dim core.Dimension, window core.Window) ([]core.TrendEntry, error) {
	if !dim.Valid() {
		return nil, core.NewDomainError(core.ModuleTrend, core.ErrorCodeInvalidInput,
			fmt.Sprintf("unknown dimension: %s", dim))
	}
	if window.IsZero() {
		window = core.LastDays(a.now(), DefaultWindowDays)
	}

	return a.analyze(ctx, dim, window, nil)
}

// Seasonal 返回指定季节的单品趋势：同样的聚合，但只统计 season 属性
// 匹配的单品（含标为 all 的全季单品）。季节匹配用单品的静态属性，
// 不看交互时间落在哪个日历季节。
func (a *Analyzer) Seasonal(ctx context.Context, season string) ([]core.TrendEntry, error) {
	if season == "" {
		return nil, core.NewDomainError(core.ModuleTrend, core.ErrorCodeInvalidInput,
			"season is required")
	}
	window := core.LastDays(a.now(), DefaultWindowDays)
	match := func(attrs *core.ItemAttrs) bool {
		if attrs == nil {
			return false
		}
		return attrs.Season == season || attrs.Season == "all"
	}
	return a.analyze(ctx, core.DimensionItem, window, match)
}

// analyze 是 Analyze / Seasonal 的共用实现。itemFilter 为 nil 表示不过滤。
func (a *Analyzer) analyze(
	ctx context.Context,
	dim core.Dimension,
	window core.Window,
	itemFilter func(*core.ItemAttrs) bool,
) ([]core.TrendEntry, error) {
	thisWeek := core.Window{Start: window.End.AddDate(0, 0, -7), End: window.End}
	lastWeek := thisWeek.Previous()

	// 取数窗口覆盖查询窗口和两个环比桶
	fetch := window
	if lastWeek.Start.Before(fetch.Start) {
		fetch.Start = lastWeek.Start
	}
	interactions, err := a.Data.FetchInteractions(ctx, core.InteractionQuery{Window: fetch})
	if err != nil {
		return nil, err
	}

	attrsByItem, err := a.itemAttrs(ctx)
	if err != nil {
		return nil, err
	}

	type bucket struct {
		score    float64
		thisWeek float64
		lastWeek float64
		count    int
	}
	buckets := make(map[string]*bucket)

	for _, in := range interactions {
		attrs := attrsByItem[in.ItemID]
		if itemFilter != nil && !itemFilter(attrs) {
			continue
		}

		var key string
		if dim == core.DimensionItem {
			key = in.ItemID
		} else {
			key = attrs.Attr(dim)
		}
		if key == "" {
			continue
		}

		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
		}
		w := in.Weight()
		if window.Contains(in.Timestamp) {
			b.score += w
			b.count++
		}
		if thisWeek.Contains(in.Timestamp) {
			b.thisWeek += w
		}
		if lastWeek.Contains(in.Timestamp) {
			b.lastWeek += w
		}
	}

	up, down := a.thresholds()
	entries := make([]core.TrendEntry, 0, len(buckets))
	for key, b := range buckets {
		growth := a.growthRate(b.thisWeek, b.lastWeek)
		state := core.TrendStable
		switch {
		case growth > up:
			state = core.TrendRising
		case growth < down:
			state = core.TrendFalling
		}
		entries = append(entries, core.TrendEntry{
			Value:        key,
			Score:        b.score,
			GrowthRate:   growth,
			Interactions: b.count,
			State:        state,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Value < entries[j].Value
	})
	return entries, nil
}

// growthRate 计算封顶的周环比增长率。
func (a *Analyzer) growthRate(cur, prev float64) float64 {
	base := prev
	if base < a.epsilon() {
		base = a.epsilon()
	}
	growth := (cur - prev) / base
	max := a.maxGrowth()
	if growth > max {
		growth = max
	}
	if growth < -max {
		growth = -max
	}
	return growth
}

// UpdateTrendScores 重算单品维度的趋势分并落盘。
//
// 分值 = 窗口内交互权重 × exp(-λ·age_days) 求和，按最大值归一到
// [0,1]；增长率沿用周环比。每个单品写一条 TrendScore，配置了
// Hot 后端时同步把热榜写成 zset（zset 写失败不影响落盘结果）。
// windowDays <= 0 时取 30。
func (a *Analyzer) UpdateTrendScores(ctx context.Context, windowDays int) error {
	if windowDays <= 0 {
		windowDays = 30
	}
	now := a.now()
	window := core.LastDays(now, windowDays)
	lambda := a.DecayLambda
	if lambda <= 0 {
		lambda = DefaultDecayLambda
	}

	entries, err := a.analyze(ctx, core.DimensionItem, window, nil)
	if err != nil {
		return err
	}

	interactions, err := a.Data.FetchInteractions(ctx, core.InteractionQuery{Window: window})
	if err != nil {
		return err
	}
	decayed := make(map[string]float64)
	for _, in := range interactions {
		if !window.Contains(in.Timestamp) {
			continue
		}
		ageDays := now.Sub(in.Timestamp).Hours() / 24
		decayed[in.ItemID] += in.Weight() * math.Exp(-lambda*ageDays)
	}
	var maxScore float64
	for _, v := range decayed {
		if v > maxScore {
			maxScore = v
		}
	}

	hotKey := a.HotKey
	if hotKey == "" {
		hotKey = recall.DefaultTrendKey
	}

	for _, e := range entries {
		score := 0.0
		if maxScore > 0 {
			score = decayed[e.Value] / maxScore
		}
		ts := core.TrendScore{
			Key:         e.Value,
			Dimension:   core.DimensionItem,
			WindowStart: window.Start,
			WindowEnd:   window.End,
			Score:       score,
			GrowthRate:  e.GrowthRate,
		}
		if err := a.Data.UpsertTrendScore(ctx, ts); err != nil {
			return err
		}
		if a.Hot != nil {
			// 热榜是加速层，不支持 zset 的后端直接跳过
			if err := a.Hot.ZAdd(ctx, hotKey, score, e.Value); err != nil && !core.IsNotSupported(err) {
				return err
			}
		}
	}
	return nil
}

// itemAttrs 拉取全量目录并建属性索引。
func (a *Analyzer) itemAttrs(ctx context.Context) (map[string]*core.ItemAttrs, error) {
	items, err := a.Data.FetchItems(ctx, nil)
	if err != nil {
		return nil, err
	}
	attrs := make(map[string]*core.ItemAttrs, len(items))
	for _, item := range items {
		if item != nil {
			attrs[item.ID] = item.Attrs
		}
	}
	return attrs, nil
}
