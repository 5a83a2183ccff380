package pipeline

import (
	"context"

	"github.com/rushteam/trendkit/core"
)

// Kind 用于标记 Node 类型，方便观测/治理/编排（例如按阶段打点）。
type Kind string

const (
	KindRecall      Kind = "recall"      // 打分阶段：各策略为候选集写入打分列
	KindFilter      Kind = "filter"      // 过滤阶段：剔除不符合约束的候选
	KindFuse        Kind = "fuse"        // 融合阶段：按固定权重合成最终分
	KindReRank      Kind = "rerank"      // 重排阶段：确定性排序与截断
	KindPostProcess Kind = "postprocess" // 后处理阶段：补充特征或最终结果修饰
)

// Node 是 Pipeline 的最小可扩展单元。
// 统一采用“输入 items -> 输出 items”的形态，方便打分、过滤、截断等操作。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		rctx *core.RecommendContext,
		items []*core.Item,
	) ([]*core.Item, error)
}
