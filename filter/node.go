package filter

import (
	"context"

	"github.com/rushteam/trendkit/core"
	"github.com/rushteam/trendkit/pipeline"
	"github.com/rushteam/trendkit/pkg/utils"
)

// FilterNode 是过滤 Node，可以组合多个过滤器。
// 任何一个过滤器命中该单品即被移除，命中的过滤器名写入
// rctx 的 filtered 标签便于排查"为什么没推出来"。
type FilterNode struct {
	Filters []Filter
}

func (n *FilterNode) Name() string {
	return "filter.node"
}

func (n *FilterNode) Kind() pipeline.Kind {
	return pipeline.KindFilter
}

func (n *FilterNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(n.Filters) == 0 || len(items) == 0 {
		return items, nil
	}

	out := make([]*core.Item, 0, len(items))

	for _, item := range items {
		if item == nil {
			continue
		}

		removed := false
		for _, f := range n.Filters {
			ok, err := f.ShouldFilter(ctx, rctx, item)
			if err != nil {
				// 过滤器错误不中断链路，宁可多推不要误杀
				continue
			}
			if ok {
				removed = true
				rctx.PutLabel("filtered", utils.Label{Value: item.ID, Source: f.Name()})
				break
			}
		}

		if !removed {
			out = append(out, item)
		}
	}

	return out, nil
}

var _ pipeline.Node = (*FilterNode)(nil)
