// Package rerank 实现融合与重排：三路打分列按固定权重合成最终分，
// 再做确定性排序与截断。
package rerank

import (
	"context"
	"fmt"
	"math"

	"github.com/rushteam/trendkit/core"
	"github.com/rushteam/trendkit/pipeline"
	"github.com/rushteam/trendkit/recall"
)

// FusionWeights 是三路策略的融合权重，必须非负且总和为 1.0。
type FusionWeights struct {
	Collaborative float64 `yaml:"collaborative" json:"collaborative"`
	Content       float64 `yaml:"content" json:"content"`
	Trending      float64 `yaml:"trending" json:"trending"`
}

// DefaultFusionWeights 返回默认融合权重 0.5 / 0.4 / 0.1。
func DefaultFusionWeights() FusionWeights {
	return FusionWeights{Collaborative: 0.5, Content: 0.4, Trending: 0.1}
}

// Validate 校验权重配置，非法时返回 INVALID_CONFIG。
func (w FusionWeights) Validate() error {
	if w.Collaborative < 0 || w.Content < 0 || w.Trending < 0 {
		return core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidConfig,
			"fusion weights must be non-negative")
	}
	sum := w.Collaborative + w.Content + w.Trending
	if math.Abs(sum-1.0) > 1e-6 {
		return core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidConfig,
			fmt.Sprintf("fusion weights must sum to 1.0, got %v", sum))
	}
	return nil
}

// Fusion 把三路打分列按权重合成候选的最终 Score。
// 缺失的打分列按 0 计，因此分数域是 [0,1]。
type Fusion struct {
	Weights FusionWeights
}

// NewFusion 用校验过的权重构建融合节点。
func NewFusion(w FusionWeights) (*Fusion, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &Fusion{Weights: w}, nil
}

func (n *Fusion) Name() string { return "rerank.fusion" }

func (n *Fusion) Kind() pipeline.Kind { return pipeline.KindFuse }

func (n *Fusion) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	w := n.Weights
	for _, item := range items {
		if item == nil {
			continue
		}
		item.Score = w.Collaborative*item.Feature(recall.FeatureCollaborative) +
			w.Content*item.Feature(recall.FeatureContent) +
			w.Trending*item.Feature(recall.FeatureTrending)
	}
	return items, nil
}

var _ pipeline.Node = (*Fusion)(nil)
