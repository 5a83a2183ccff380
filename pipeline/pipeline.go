package pipeline

import (
	"context"

	"github.com/rushteam/trendkit/core"
)

// Pipeline 是 Trendkit 的核心抽象：把推荐逻辑拆成可组合的 Node 链。
// 一次 Recommend 调用即一次 Run：无跨调用共享状态，重算即重放。
type Pipeline struct {
	Nodes []Node
}

func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		next, err := node.Process(ctx, rctx, cur)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}
