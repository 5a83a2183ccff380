package feature

import (
	"context"
	"strings"

	"github.com/rushteam/trendkit/core"
	"github.com/rushteam/trendkit/pipeline"
)

// ItemFeatureSource 批量提供商品维度的外部特征（如 Feast 在线特征）。
type ItemFeatureSource interface {
	// BatchGetItemFeatures 按商品 ID 批量取特征，缺失的商品可不在结果中
	BatchGetItemFeatures(ctx context.Context, itemIDs []string) (map[string]map[string]float64, error)
}

// EnrichNode 是特征注入节点，在 pipeline 末端为候选补充外部特征。
// 注入的特征写入 item.Features（带 item_ 前缀），不改动打分列与 Score；
// 特征源不可用时静默跳过，推荐结果不因特征服务故障而失败。
type EnrichNode struct {
	// Source 商品特征源，nil 时节点为 no-op
	Source ItemFeatureSource

	// Prefix 特征名前缀，默认 "item_"
	Prefix string
}

func (n *EnrichNode) Name() string { return "feature.enrich" }

func (n *EnrichNode) Kind() pipeline.Kind { return pipeline.KindPostProcess }

func (n *EnrichNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 || n.Source == nil {
		return items, nil
	}

	itemIDs := make([]string, 0, len(items))
	for _, item := range items {
		if item != nil {
			itemIDs = append(itemIDs, item.ID)
		}
	}
	if len(itemIDs) == 0 {
		return items, nil
	}

	featuresByItem, err := n.Source.BatchGetItemFeatures(ctx, itemIDs)
	if err != nil {
		// 特征注入是增强路径，失败降级为不注入
		return items, nil
	}

	prefix := n.Prefix
	if prefix == "" {
		prefix = "item_"
	}

	for _, item := range items {
		if item == nil {
			continue
		}
		features, ok := featuresByItem[item.ID]
		if !ok {
			continue
		}
		for k, v := range features {
			key := k
			if !strings.HasPrefix(k, prefix) {
				key = prefix + k
			}
			// 已有同名特征（如策略打分列）保留原值
			if _, exists := item.Features[key]; !exists {
				item.PutFeature(key, v)
			}
		}
	}

	return items, nil
}

var _ pipeline.Node = (*EnrichNode)(nil)
