package core

import "time"

// Dimension 是趋势聚合的封闭维度枚举。
// 不使用字符串字典做权重/维度 key，避免拼写错误静默清零某个维度。
type Dimension string

const (
	DimensionCategory   Dimension = "category"
	DimensionStyle      Dimension = "style"
	DimensionColor      Dimension = "color"
	DimensionBrand      Dimension = "brand"
	DimensionPriceRange Dimension = "price_range"
	DimensionSeason     Dimension = "season"
	// DimensionItem 按单品聚合（key 为 item id），供趋势打分器消费。
	DimensionItem Dimension = "item"
)

// Valid 判断是否为已知聚合维度。
func (d Dimension) Valid() bool {
	switch d {
	case DimensionCategory, DimensionStyle, DimensionColor,
		DimensionBrand, DimensionPriceRange, DimensionSeason, DimensionItem:
		return true
	}
	return false
}

// PreferenceDimensions 返回反馈事件会强化的偏好维度。
// price_range / season 不入偏好：前者由价格分桶派生，后者是目录属性。
func PreferenceDimensions() []Dimension {
	return []Dimension{DimensionCategory, DimensionStyle, DimensionColor, DimensionBrand}
}

// TrendState 是趋势分类结果。
type TrendState string

const (
	TrendRising  TrendState = "rising"
	TrendFalling TrendState = "falling"
	TrendStable  TrendState = "stable"
)

// TrendScore 是趋势分析器周期性落盘的结果（派生数据，可重算，
// 不得作为交互历史的事实来源）。Key 为 item id 或维度值。
type TrendScore struct {
	Key         string    `json:"key"`
	Dimension   Dimension `json:"dimension"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
	Score       float64   `json:"score"`
	GrowthRate  float64   `json:"growth_rate"`
}

// TrendEntry 是一次趋势查询的单行结果。
type TrendEntry struct {
	Value        string     `json:"value"`
	Score        float64    `json:"score"`
	GrowthRate   float64    `json:"growth_rate"`
	Interactions int        `json:"interaction_count"`
	State        TrendState `json:"state"`
}
