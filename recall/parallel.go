package recall

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/trendkit/core"
	"github.com/rushteam/trendkit/pipeline"
	"github.com/rushteam/trendkit/pkg/utils"
)

// ParallelScore 并发执行多路打分策略，汇合后把分数写入候选的打分列。
//
// 三路策略只读且互相独立，可安全并行；任何一路返回 error 整体失败
// （数据访问错误原样上抛，核心不掩盖）。冷启动降级的策略名在汇合后
// 统一写入 rctx 的 cold_start 标签，多路同时降级时 Value 累积为
// "collaborative|content" 形式。
type ParallelScore struct {
	Strategies []Strategy
}

func (n *ParallelScore) Name() string { return "recall.parallel_score" }

func (n *ParallelScore) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *ParallelScore) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(n.Strategies) == 0 || len(items) == 0 {
		return items, nil
	}

	results := make([]*Result, len(n.Strategies))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range n.Strategies {
		i, s := i, s
		g.Go(func() error {
			r, err := s.Score(gctx, rctx, items)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// 写回在汇合之后串行进行，策略实现无需考虑并发写
	for i, s := range n.Strategies {
		r := results[i]
		if r == nil {
			continue
		}
		key := FeatureKey(s.Name())
		for _, item := range items {
			if item == nil {
				continue
			}
			score := r.Scores[item.ID]
			item.PutFeature(key, score)
			// 正分策略记入 strategy 标签，解释"这个单品为什么出现"
			if score > 0 {
				item.PutLabel("strategy", utils.Label{Value: s.Name(), Source: "recall"})
			}
		}
		if r.ColdStart {
			rctx.PutLabel(core.LabelColdStart, utils.Label{Value: s.Name(), Source: "recall"})
		}
	}

	return items, nil
}

var _ pipeline.Node = (*ParallelScore)(nil)
