package recall

import (
	"context"
	"math"
	"time"

	"github.com/rushteam/trendkit/core"
)

// Trending 是与用户无关的趋势热度策略。
//
// 优先消费趋势分析器落盘的单品趋势分（Stored）；没有现成趋势分时
// 退化为就地计算：窗口内交互权重 × 指数衰减 exp(-λ·age_days) 求和。
// 两条路径最终都在候选集内做最大值归一，最热单品恒为 1.0，
// 窗口内零交互的单品为 0。
//
// 趋势策略没有冷启动：它不依赖目标用户，ColdStart 恒为 false。
type Trending struct {
	// Stored 分析器写回的单品维度趋势分，非空时直接消费
	Stored []core.TrendScore

	// Interactions 计算路径用的交互记录（可含窗口外记录，内部筛选）
	Interactions []core.Interaction

	// Now 打分基准时刻，零值取 time.Now()
	Now time.Time

	// WindowDays 统计窗口天数，<=0 时取 30
	WindowDays int

	// Lambda 衰减系数，<=0 时取 0.1
	Lambda float64
}

func (s *Trending) Name() string { return "trending" }

func (s *Trending) Score(ctx context.Context, rctx *core.RecommendContext, candidates []*core.Item) (*Result, error) {
	scores := make(map[string]float64, len(candidates))
	for _, item := range candidates {
		if item != nil {
			scores[item.ID] = 0
		}
	}

	raw := s.storedScores()
	if raw == nil {
		raw = s.computeScores()
	}

	var max float64
	for _, item := range candidates {
		if item == nil {
			continue
		}
		if v := raw[item.ID]; v > max {
			max = v
		}
	}
	if max == 0 {
		return &Result{Scores: scores}, nil
	}
	for _, item := range candidates {
		if item == nil {
			continue
		}
		scores[item.ID] = raw[item.ID] / max
	}

	return &Result{Scores: scores}, nil
}

// storedScores 把落盘趋势分转成 item -> score；无可用数据返回 nil。
func (s *Trending) storedScores() map[string]float64 {
	if len(s.Stored) == 0 {
		return nil
	}
	raw := make(map[string]float64, len(s.Stored))
	for _, ts := range s.Stored {
		if ts.Dimension != core.DimensionItem || ts.Score <= 0 {
			continue
		}
		raw[ts.Key] = ts.Score
	}
	if len(raw) == 0 {
		return nil
	}
	return raw
}

// computeScores 就地计算窗口内带衰减的热度分。
func (s *Trending) computeScores() map[string]float64 {
	now := s.Now
	if now.IsZero() {
		now = time.Now()
	}
	days := s.WindowDays
	if days <= 0 {
		days = 30
	}
	lambda := s.Lambda
	if lambda <= 0 {
		lambda = 0.1
	}
	window := core.LastDays(now, days)

	raw := make(map[string]float64)
	for _, in := range s.Interactions {
		if !window.Contains(in.Timestamp) {
			continue
		}
		ageDays := now.Sub(in.Timestamp).Hours() / 24
		raw[in.ItemID] += in.Weight() * math.Exp(-lambda*ageDays)
	}
	return raw
}

var _ Strategy = (*Trending)(nil)
