package rerank

import (
	"context"
	"sort"

	"github.com/rushteam/trendkit/core"
	"github.com/rushteam/trendkit/pipeline"
	"github.com/rushteam/trendkit/recall"
)

// TopN 做确定性排序与截断。
// 排序键：最终分降序 -> 趋势分降序 -> 单品 ID 升序。
// 完全确定的排序是可复现测试的前提：同一份数据两次调用
// 必须产出逐位一致的序。
type TopN struct {
	// N 截断长度，<=0 表示不截断
	N int
}

func (n *TopN) Name() string { return "rerank.topn" }

func (n *TopN) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *TopN) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	out := make([]*core.Item, 0, len(items))
	for _, item := range items {
		if item != nil {
			out = append(out, item)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		ta, tb := a.Feature(recall.FeatureTrending), b.Feature(recall.FeatureTrending)
		if ta != tb {
			return ta > tb
		}
		return a.ID < b.ID
	})

	if n.N > 0 && len(out) > n.N {
		out = out[:n.N]
	}
	return out, nil
}

var _ pipeline.Node = (*TopN)(nil)
