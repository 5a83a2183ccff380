package core

import "time"

// InteractionType 是封闭的交互类型枚举。
// 权重表是全链路共享的唯一事实来源：协同过滤、内容画像、趋势打分
// 都通过 Interaction.Weight 取权重，不允许各组件私藏一份。
type InteractionType string

const (
	InteractionView     InteractionType = "view"
	InteractionLike     InteractionType = "like"
	InteractionCart     InteractionType = "cart"
	InteractionWishlist InteractionType = "wishlist"
	InteractionPurchase InteractionType = "purchase"
)

// typeWeights 是交互类型的隐式权重表。
var typeWeights = map[InteractionType]float64{
	InteractionView:     1,
	InteractionLike:     3,
	InteractionCart:     4,
	InteractionWishlist: 4,
	InteractionPurchase: 5,
}

// Valid 判断是否为已知交互类型。
func (t InteractionType) Valid() bool {
	_, ok := typeWeights[t]
	return ok
}

// Weight 返回交互类型的基础权重；未知类型按 view 计。
func (t InteractionType) Weight() float64 {
	if w, ok := typeWeights[t]; ok {
		return w
	}
	return typeWeights[InteractionView]
}

// MaxTypeWeight 返回权重表中的最大基础权重（purchase）。
// 用于把矩阵单元格 / 策略分数归一化到 [0,1]。
func MaxTypeWeight() float64 {
	max := 0.0
	for _, w := range typeWeights {
		if w > max {
			max = w
		}
	}
	return max
}

// Interaction 是一条用户行为记录（追加写，不更新不删除）。
// Rating 可选，取值 1-5。
type Interaction struct {
	UserID    string          `json:"user_id"`
	ItemID    string          `json:"item_id"`
	Type      InteractionType `json:"type"`
	Rating    *float64        `json:"rating,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Weight 返回该条交互的聚合权重：类型权重 × 可选评分系数（rating/5）。
func (in Interaction) Weight() float64 {
	w := in.Type.Weight()
	if in.Rating != nil && *in.Rating > 0 {
		w *= *in.Rating / 5.0
	}
	return w
}

// Window 是左闭右开的时间窗口 [Start, End)。
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// LastDays 返回截止 now 的最近 days 天窗口。
func LastDays(now time.Time, days int) Window {
	return Window{Start: now.AddDate(0, 0, -days), End: now}
}

// Contains 判断时间点是否落在窗口内。
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Previous 返回紧邻的前一个等长窗口。
func (w Window) Previous() Window {
	d := w.End.Sub(w.Start)
	return Window{Start: w.Start.Add(-d), End: w.Start}
}

// IsZero 判断窗口是否未设置。
func (w Window) IsZero() bool {
	return w.Start.IsZero() && w.End.IsZero()
}
