package utils

// Label 是推荐链路中的一等公民：可解释、可追踪、可透传。
// Value 与 Source 的语义由业务自定义；Trendkit 用它承载策略来源
// （strategy）、冷启动降级（cold_start）、过滤原因（filtered）等诊断信息。
type Label struct {
	Value  string `json:"value"`
	Source string `json:"source"` // recall / filter / fuse / rerank / trend ...
}

// MergeLabel 用于合并同名 Label，遵循“保留历史、可追踪”的默认策略。
// - Value: 以 '|' 累积
// - Source: 以 ',' 累积
//
// 冷启动标记依赖该规则：多个策略同时降级时，cold_start 的 Value
// 会累积为 "collaborative|content" 形式。
func MergeLabel(existing Label, incoming Label) Label {
	if existing.Value == "" {
		return incoming
	}
	if incoming.Value == "" {
		return existing
	}

	merged := existing
	merged.Value = existing.Value + "|" + incoming.Value
	switch {
	case existing.Source == "":
		merged.Source = incoming.Source
	case incoming.Source == "":
		merged.Source = existing.Source
	default:
		merged.Source = existing.Source + "," + incoming.Source
	}
	return merged
}

// HasValue 判断合并后的 Label 中是否包含某个值（按 '|' 分段精确匹配）。
func HasValue(lbl Label, value string) bool {
	if lbl.Value == "" || value == "" {
		return false
	}
	start := 0
	for i := 0; i <= len(lbl.Value); i++ {
		if i == len(lbl.Value) || lbl.Value[i] == '|' {
			if lbl.Value[start:i] == value {
				return true
			}
			start = i + 1
		}
	}
	return false
}
