package filter

import (
	"context"

	"github.com/rushteam/trendkit/core"
)

// Interacted 过滤用户已经发生过指定类型交互的单品。
// 默认只排除已购买（purchase）的单品：看过、喜欢过的仍可再推，
// 买过的再推是浪费曝光。Types 可配置成排除更多交互类型。
type Interacted struct {
	// Interactions 目标用户的交互记录快照
	Interactions []core.Interaction

	// Types 触发排除的交互类型，为空时只排除 purchase
	Types []core.InteractionType

	// 内部索引：item id -> 是否排除
	excluded map[string]bool
}

// NewInteracted 构建已交互过滤器。
func NewInteracted(interactions []core.Interaction, types ...core.InteractionType) *Interacted {
	if len(types) == 0 {
		types = []core.InteractionType{core.InteractionPurchase}
	}
	typeSet := make(map[core.InteractionType]bool, len(types))
	for _, t := range types {
		typeSet[t] = true
	}

	excluded := make(map[string]bool)
	for _, in := range interactions {
		if typeSet[in.Type] {
			excluded[in.ItemID] = true
		}
	}

	return &Interacted{Interactions: interactions, Types: types, excluded: excluded}
}

func (f *Interacted) Name() string {
	return "filter.interacted"
}

func (f *Interacted) ShouldFilter(ctx context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error) {
	if item == nil {
		return false, nil
	}
	return f.excluded[item.ID], nil
}

var _ Filter = (*Interacted)(nil)
