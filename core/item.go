package core

import (
	"time"

	"github.com/rushteam/trendkit/pkg/utils"
)

// ItemAttrs 是时尚单品的固定属性集（目录侧只读参照数据）。
// 属性值为空表示目录方未提供，编码时映射为全零子向量，不报错。
type ItemAttrs struct {
	Category   string    `json:"category"`    // dress / shoes / accessories ...
	Style      string    `json:"style"`       // casual / formal / sporty ...
	Color      string    `json:"color"`
	Brand      string    `json:"brand"`
	PriceRange string    `json:"price_range"` // budget / mid / premium ...
	Season     string    `json:"season"`      // spring / summer / fall / winter / all
	CreatedAt  time.Time `json:"created_at"`
}

// Attr 按维度取属性值。item 维度返回空串（item 维度按 ID 聚合，不走属性）。
func (a *ItemAttrs) Attr(dim Dimension) string {
	if a == nil {
		return ""
	}
	switch dim {
	case DimensionCategory:
		return a.Category
	case DimensionStyle:
		return a.Style
	case DimensionColor:
		return a.Color
	case DimensionBrand:
		return a.Brand
	case DimensionPriceRange:
		return a.PriceRange
	case DimensionSeason:
		return a.Season
	default:
		return ""
	}
}

// Item 是推荐链路中的统一承载结构：目录属性、分数、特征列、标签。
// Features 承载各策略的打分列（score_collaborative 等）；Score 是融合后的
// 最终排序分；Labels 用于解释与诊断。
type Item struct {
	ID       string
	Score    float64
	Attrs    *ItemAttrs
	Features map[string]float64
	Labels   map[string]utils.Label
}

func NewItem(id string) *Item {
	return &Item{
		ID:       id,
		Score:    0,
		Features: make(map[string]float64),
		Labels:   make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// PutFeature 写入策略打分列。
func (it *Item) PutFeature(key string, v float64) {
	if it.Features == nil {
		it.Features = make(map[string]float64)
	}
	it.Features[key] = v
}

// Feature 读取打分列，缺失返回 0。
func (it *Item) Feature(key string) float64 {
	if it.Features == nil {
		return 0
	}
	return it.Features[key]
}
