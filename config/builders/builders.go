// Package builders 在 init 中注册可由配置构建的 Node。
// 依赖运行期数据快照的节点（并行打分、已购过滤）由 engine 装配，
// 不走配置注册表。
package builders

import (
	"fmt"

	"github.com/rushteam/trendkit/config"
	"github.com/rushteam/trendkit/filter"
	"github.com/rushteam/trendkit/pipeline"
	"github.com/rushteam/trendkit/pkg/conv"
	"github.com/rushteam/trendkit/recall"
	"github.com/rushteam/trendkit/rerank"
	"github.com/rushteam/trendkit/store"
)

func init() {
	config.Register("rerank.fusion", BuildFusionNode)
	config.Register("rerank.topn", BuildTopNNode)
	config.Register("filter.expr", BuildExprFilterNode)
	config.Register("recall.trend_store", BuildTrendStoreNode)
}

// BuildFusionNode 构建融合节点。缺省权重 0.5/0.4/0.1。
//
//	type: rerank.fusion
//	config:
//	  collaborative: 0.5
//	  content: 0.4
//	  trending: 0.1
func BuildFusionNode(cfg map[string]interface{}) (pipeline.Node, error) {
	weights := rerank.DefaultFusionWeights()
	if len(cfg) > 0 {
		weights = rerank.FusionWeights{
			Collaborative: conv.ConfigGetFloat64(cfg, "collaborative", 0),
			Content:       conv.ConfigGetFloat64(cfg, "content", 0),
			Trending:      conv.ConfigGetFloat64(cfg, "trending", 0),
		}
	}
	return rerank.NewFusion(weights)
}

// BuildTopNNode 构建截断节点。
//
//	type: rerank.topn
//	config:
//	  n: 10
func BuildTopNNode(cfg map[string]interface{}) (pipeline.Node, error) {
	return &rerank.TopN{N: conv.ConfigGetInt(cfg, "n", 10)}, nil
}

// BuildExprFilterNode 构建表达式过滤节点，多条表达式任一命中即排除。
//
//	type: filter.expr
//	config:
//	  exprs:
//	    - item.season == "winter"
func BuildExprFilterNode(cfg map[string]interface{}) (pipeline.Node, error) {
	exprs := conv.SliceAnyToString(cfg["exprs"])
	if len(exprs) == 0 {
		return nil, fmt.Errorf("exprs not found")
	}
	filters := make([]filter.Filter, 0, len(exprs))
	for _, expr := range exprs {
		f, err := filter.NewExpr(expr)
		if err != nil {
			return nil, fmt.Errorf("compile %q: %w", expr, err)
		}
		filters = append(filters, f)
	}
	return &filter.FilterNode{Filters: filters}, nil
}

// BuildTrendStoreNode 构建从 Redis 热榜读趋势分的打分节点。
//
//	type: recall.trend_store
//	config:
//	  redis_addr: "127.0.0.1:6379"
//	  redis_db: 0
//	  key: "trendkit:trend:item"
//	  limit: 1000
func BuildTrendStoreNode(cfg map[string]interface{}) (pipeline.Node, error) {
	addr := conv.ConfigGet(cfg, "redis_addr", "")
	if addr == "" {
		return nil, fmt.Errorf("redis_addr not found")
	}
	kv, err := store.NewRedisStore(addr, conv.ConfigGetInt(cfg, "redis_db", 0))
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	strategy := &recall.TrendStore{
		Store: kv,
		Key:   conv.ConfigGet(cfg, "key", ""),
		Limit: int64(conv.ConfigGetInt(cfg, "limit", 0)),
	}
	return &recall.ParallelScore{Strategies: []recall.Strategy{strategy}}, nil
}
