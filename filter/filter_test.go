package filter

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/trendkit/core"
	"github.com/rushteam/trendkit/pkg/utils"
)

func TestInteractedDefaultExcludesPurchase(t *testing.T) {
	f := NewInteracted([]core.Interaction{
		{UserID: "u1", ItemID: "i1", Type: core.InteractionPurchase, Timestamp: time.Now()},
		{UserID: "u1", ItemID: "i2", Type: core.InteractionLike, Timestamp: time.Now()},
	})

	tests := []struct {
		itemID string
		want   bool
	}{
		{"i1", true},  // 已购买
		{"i2", false}, // 只是 like，保留
		{"i3", false}, // 没有交互
	}
	for _, tt := range tests {
		got, err := f.ShouldFilter(context.Background(), &core.RecommendContext{UserID: "u1"}, core.NewItem(tt.itemID))
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("ShouldFilter(%s) = %v, want %v", tt.itemID, got, tt.want)
		}
	}
}

func TestInteractedConfigurableTypes(t *testing.T) {
	f := NewInteracted([]core.Interaction{
		{UserID: "u1", ItemID: "i1", Type: core.InteractionCart, Timestamp: time.Now()},
	}, core.InteractionPurchase, core.InteractionCart)

	got, err := f.ShouldFilter(context.Background(), &core.RecommendContext{UserID: "u1"}, core.NewItem("i1"))
	if err != nil {
		t.Fatal(err)
	}
	if !got {
		t.Error("cart interaction should be excluded when configured")
	}
}

func TestExprFilter(t *testing.T) {
	f, err := NewExpr(`item.season == "winter"`)
	if err != nil {
		t.Fatal(err)
	}

	winter := core.NewItem("i1")
	winter.Attrs = &core.ItemAttrs{Season: "winter"}
	summer := core.NewItem("i2")
	summer.Attrs = &core.ItemAttrs{Season: "summer"}

	rctx := &core.RecommendContext{UserID: "u1"}
	if got, _ := f.ShouldFilter(context.Background(), rctx, winter); !got {
		t.Error("winter item should be filtered")
	}
	if got, _ := f.ShouldFilter(context.Background(), rctx, summer); got {
		t.Error("summer item should pass")
	}
}

func TestExprFilterCompileError(t *testing.T) {
	if _, err := NewExpr(`item.season ==`); err == nil {
		t.Error("invalid expression should fail at construction")
	}
}

func TestFilterNodeRemovesAndLabels(t *testing.T) {
	f := NewInteracted([]core.Interaction{
		{UserID: "u1", ItemID: "i1", Type: core.InteractionPurchase, Timestamp: time.Now()},
	})
	node := &FilterNode{Filters: []Filter{f}}

	rctx := &core.RecommendContext{UserID: "u1"}
	items := []*core.Item{core.NewItem("i1"), core.NewItem("i2"), nil}
	out, err := node.Process(context.Background(), rctx, items)
	if err != nil {
		t.Fatal(err)
	}

	if len(out) != 1 || out[0].ID != "i2" {
		t.Fatalf("expected only i2 to survive, got %v", out)
	}
	lbl, ok := rctx.GetLabel("filtered")
	if !ok || !utils.HasValue(lbl, "i1") {
		t.Errorf("filtered label should record i1, got %+v", lbl)
	}
}

func TestFilterNodeNoFilters(t *testing.T) {
	node := &FilterNode{}
	items := []*core.Item{core.NewItem("i1")}
	out, err := node.Process(context.Background(), &core.RecommendContext{}, items)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 {
		t.Errorf("no filters should pass everything through")
	}
}
