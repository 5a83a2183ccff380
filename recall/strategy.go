// Package recall 实现打分阶段的三路策略：协同过滤、基于内容、趋势热度。
// 每路策略对同一候选集独立打分，分数写入 item.Features 的打分列，
// 由后续 fuse 节点按固定权重合成最终分。
package recall

import (
	"context"

	"github.com/rushteam/trendkit/core"
)

// 打分列约定：score_<策略名>，fuse 节点按列名取分。
const (
	FeatureCollaborative = "score_collaborative"
	FeatureContent       = "score_content"
	FeatureTrending      = "score_trending"
)

// FeatureKey 返回策略的打分列名。
func FeatureKey(strategyName string) string {
	return "score_" + strategyName
}

// Result 是一路策略的打分结果。
// Scores 的 key 是 item id；缺失的候选按 0 分计。
// ColdStart 表示该策略因数据不足降级为全零分（降级不是错误）。
type Result struct {
	Scores    map[string]float64
	ColdStart bool
}

// Strategy 是打分策略接口。
// 实现必须只读：不修改 rctx 和 items（并发执行时由 ParallelScore
// 在汇合后统一写回），分数域为 [0,1]。
type Strategy interface {
	Name() string
	Score(ctx context.Context, rctx *core.RecommendContext, candidates []*core.Item) (*Result, error)
}
