package core

import "github.com/rushteam/trendkit/pkg/utils"

// RecommendContext 承载用户/场景/请求级信息，贯穿整个 Pipeline 透传。
// 策略降级等诊断信息以 Label 形式写回到 Context 上。
type RecommendContext struct {
	UserID string
	Scene  string

	// Labels 是请求级标签：冷启动降级（cold_start）等诊断位写在这里。
	Labels map[string]utils.Label

	// Params 请求级上下文参数（top_n 之外的扩展参数）。
	Params map[string]any
}

// PutLabel 写入请求级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}

// 请求级标签 key。
const (
	// LabelColdStart 记录哪些策略因数据不足降级为零分
	// （Value 按 '|' 累积，如 "collaborative|content"）。
	LabelColdStart = "cold_start"
)
