package recall

import (
	"context"

	"github.com/rushteam/trendkit/core"
	"github.com/rushteam/trendkit/feature"
)

// ContentBased 是基于内容的打分策略。
//
// 算法：把用户交互过的单品的属性向量按交互权重加权平均，得到
// 用户口味向量；候选分 = 候选属性向量与口味向量的余弦相似度。
// 向量空间非负，分数天然落在 [0,1]。
//
// 用户没有任何交互但有偏好行时，用偏好行编码口味向量（反馈链路
// 持续强化的 UserPreference 在这里兑现）。两者都没有才算冷启动，
// 整表零分并置 ColdStart。
type ContentBased struct {
	// Encoder 用全量目录构建的属性编码器
	Encoder *feature.Encoder

	// Interactions 目标用户的交互记录
	Interactions []core.Interaction

	// Preferences 目标用户的偏好行（无交互时的口味来源）
	Preferences []core.Preference
}

func (s *ContentBased) Name() string { return "content" }

func (s *ContentBased) Score(ctx context.Context, rctx *core.RecommendContext, candidates []*core.Item) (*Result, error) {
	scores := make(map[string]float64, len(candidates))
	for _, item := range candidates {
		if item != nil {
			scores[item.ID] = 0
		}
	}

	if s.Encoder == nil {
		return &Result{Scores: scores, ColdStart: true}, nil
	}

	attrsByID := make(map[string]*core.ItemAttrs, len(candidates))
	for _, item := range candidates {
		if item != nil && item.Attrs != nil {
			attrsByID[item.ID] = item.Attrs
		}
	}

	taste := s.tasteVector(attrsByID)
	if taste == nil {
		return &Result{Scores: scores, ColdStart: true}, nil
	}

	for _, item := range candidates {
		if item == nil {
			continue
		}
		scores[item.ID] = feature.Cosine(taste, s.Encoder.Encode(item.Attrs))
	}

	return &Result{Scores: scores}, nil
}

// tasteVector 构建口味向量；无任何口味来源时返回 nil。
func (s *ContentBased) tasteVector(attrsByID map[string]*core.ItemAttrs) []float64 {
	taste := make([]float64, s.Encoder.Dim())
	var total float64
	for _, in := range s.Interactions {
		attrs, ok := attrsByID[in.ItemID]
		if !ok {
			// 已下架的单品不再参与口味刻画
			continue
		}
		w := in.Weight()
		if w <= 0 {
			continue
		}
		vec := s.Encoder.Encode(attrs)
		for i, v := range vec {
			taste[i] += w * v
		}
		total += w
	}
	if total > 0 {
		for i := range taste {
			taste[i] /= total
		}
		return taste
	}

	if len(s.Preferences) > 0 {
		prefVec := s.Encoder.EncodePreferences(s.Preferences)
		for _, v := range prefVec {
			if v != 0 {
				return prefVec
			}
		}
	}
	return nil
}

var _ Strategy = (*ContentBased)(nil)
