// Package feature 提供属性向量化与特征注入能力。
//
// Encoder 把商品的静态属性（品类、风格、颜色等）编码成固定长度的
// 加权 one-hot 向量，供基于内容的打分策略计算余弦相似度；
// EnrichNode 则在 pipeline 末端为候选注入外部特征（如 Feast 在线特征）。
package feature

import (
	"fmt"
	"math"
	"sort"

	"github.com/rushteam/trendkit/core"
)

// weightSumTolerance 是维度权重之和允许偏离 1.0 的误差。
const weightSumTolerance = 1e-6

// Encoder 是加权 one-hot 编码器。
// 每个属性维度对应向量中的一段子区间，子区间长度等于该维度在
// 全量商品目录中出现过的取值数；命中的位置写入该维度的重要性权重，
// 其余位置为 0。目录外的未知取值编码为全零子区间。
//
// 词表由商品目录构建且按字典序排序，同一目录多次构建得到的
// 向量布局完全一致。
type Encoder struct {
	weights map[core.Dimension]float64

	// vocab 每个维度的取值词表（字典序）
	vocab map[core.Dimension][]string
	// index 取值 -> 在所属维度子区间内的偏移
	index map[core.Dimension]map[string]int
	// offset 每个维度子区间在整个向量中的起始位置
	offset map[core.Dimension]int

	dim int
}

// NewEncoder 从维度权重和商品目录构建编码器。
// 权重必须覆盖待编码的维度且总和为 1.0，否则返回 INVALID_CONFIG。
func NewEncoder(weights map[core.Dimension]float64, catalog []*core.Item) (*Encoder, error) {
	if len(weights) == 0 {
		return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeInvalidConfig,
			"dimension weights are required")
	}

	sum := 0.0
	for d, w := range weights {
		if !d.Valid() {
			return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeInvalidConfig,
				fmt.Sprintf("unknown dimension: %s", d))
		}
		if w < 0 {
			return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeInvalidConfig,
				fmt.Sprintf("negative weight for dimension %s", d))
		}
		sum += w
	}
	if math.Abs(sum-1.0) > weightSumTolerance {
		return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeInvalidConfig,
			fmt.Sprintf("dimension weights must sum to 1.0, got %v", sum))
	}

	// 维度按名称排序，保证向量布局确定
	dims := make([]core.Dimension, 0, len(weights))
	for d := range weights {
		dims = append(dims, d)
	}
	sort.Slice(dims, func(i, j int) bool { return dims[i] < dims[j] })

	e := &Encoder{
		weights: make(map[core.Dimension]float64, len(weights)),
		vocab:   make(map[core.Dimension][]string, len(weights)),
		index:   make(map[core.Dimension]map[string]int, len(weights)),
		offset:  make(map[core.Dimension]int, len(weights)),
	}
	for d, w := range weights {
		e.weights[d] = w
	}

	for _, d := range dims {
		seen := make(map[string]struct{})
		for _, item := range catalog {
			if item == nil || item.Attrs == nil {
				continue
			}
			if v := item.Attrs.Attr(d); v != "" {
				seen[v] = struct{}{}
			}
		}

		values := make([]string, 0, len(seen))
		for v := range seen {
			values = append(values, v)
		}
		sort.Strings(values)

		idx := make(map[string]int, len(values))
		for i, v := range values {
			idx[v] = i
		}

		e.vocab[d] = values
		e.index[d] = idx
		e.offset[d] = e.dim
		e.dim += len(values)
	}

	return e, nil
}

// Dim 返回向量长度。
func (e *Encoder) Dim() int { return e.dim }

// Weight 返回某个维度的重要性权重，未配置的维度为 0。
func (e *Encoder) Weight(d core.Dimension) float64 { return e.weights[d] }

// Encode 将商品属性编码为加权 one-hot 向量。
// attrs 为 nil 时返回全零向量。
func (e *Encoder) Encode(attrs *core.ItemAttrs) []float64 {
	vec := make([]float64, e.dim)
	if attrs == nil {
		return vec
	}
	for d, idx := range e.index {
		v := attrs.Attr(d)
		if v == "" {
			continue
		}
		if i, ok := idx[v]; ok {
			vec[e.offset[d]+i] = e.weights[d]
		}
		// 词表外的取值保持全零子区间
	}
	return vec
}

// EncodePreferences 将用户的维度偏好编码到同一向量空间。
// 每个偏好的权重乘以所属维度的重要性，落到对应取值的位置；
// 用于“用户偏好向量 vs 商品属性向量”的余弦匹配。
func (e *Encoder) EncodePreferences(prefs []core.Preference) []float64 {
	vec := make([]float64, e.dim)
	for _, p := range prefs {
		idx, ok := e.index[p.Dimension]
		if !ok {
			continue
		}
		i, ok := idx[p.Value]
		if !ok {
			continue
		}
		vec[e.offset[p.Dimension]+i] = p.Weight * e.weights[p.Dimension]
	}
	return vec
}

// Cosine 计算两个向量的余弦相似度。
// 任一向量为零向量时返回 0，长度不一致时返回 0。
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
