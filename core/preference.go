package core

import "time"

// Preference 是一行用户偏好：(user, dimension, value) 唯一。
// Weight 随反馈事件指数更新，不整行覆盖。
type Preference struct {
	UserID    string    `json:"user_id"`
	Dimension Dimension `json:"dimension"`
	Value     string    `json:"value"`
	Weight    float64   `json:"weight"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NextPreferenceWeight 是偏好权重的纯状态迁移：
//
//	next = clamp(old·(1−α) + α·typeWeight, 0, maxWeight)
//
// 新行传 old=0。α∈(0,1] 控制向最近强化值的偏置速度；不变式
// next ∈ [0, maxWeight] 恒成立。独立成纯函数，便于脱离存储单测。
func NextPreferenceWeight(old, typeWeight, alpha, maxWeight float64) float64 {
	if alpha <= 0 || alpha > 1 {
		alpha = 0.2
	}
	next := old*(1-alpha) + alpha*typeWeight
	if next < 0 {
		next = 0
	}
	if maxWeight > 0 && next > maxWeight {
		next = maxWeight
	}
	return next
}
