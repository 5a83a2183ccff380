package recall

import (
	"context"

	"github.com/rushteam/trendkit/core"
)

// DefaultTrendKey 是分析器写单品热榜用的有序集合 key。
const DefaultTrendKey = "trendkit:trend:item"

// TrendStore 是从有序集合读取预计算热榜的趋势策略。
//
// 趋势分析器通过 UpdateTrendScores 把归一化的单品趋势分写成 zset，
// 本策略按分数降序读 TopN 并在候选集内做最大值归一。适合把分析器
// 和推荐链路拆成两个进程的部署形态（Redis 作为中间层）。
//
// key 不存在或后端不支持 zset 时返回全零分，不报错：热榜缺失
// 等同于窗口内无交互。
type TrendStore struct {
	// Store 支持有序集合的存储后端
	Store core.KeyValueStore

	// Key zset key，为空时取 DefaultTrendKey
	Key string

	// Limit 读取的热榜长度，<=0 时取 1000
	Limit int64
}

func (s *TrendStore) Name() string { return "trending" }

func (s *TrendStore) Score(ctx context.Context, rctx *core.RecommendContext, candidates []*core.Item) (*Result, error) {
	scores := make(map[string]float64, len(candidates))
	for _, item := range candidates {
		if item != nil {
			scores[item.ID] = 0
		}
	}

	if s.Store == nil {
		return &Result{Scores: scores}, nil
	}

	key := s.Key
	if key == "" {
		key = DefaultTrendKey
	}
	limit := s.Limit
	if limit <= 0 {
		limit = 1000
	}

	entries, err := s.Store.ZRangeWithScores(ctx, key, 0, limit-1)
	if err != nil {
		if core.IsNotFound(err) || core.IsNotSupported(err) {
			return &Result{Scores: scores}, nil
		}
		return nil, err
	}

	raw := make(map[string]float64, len(entries))
	for _, e := range entries {
		if e.Score > 0 {
			raw[e.Member] = e.Score
		}
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

var _ Strategy = (*TrendStore)(nil)
