package engine

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/rushteam/trendkit/core"
	"github.com/rushteam/trendkit/store"
)

var testNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T, ds core.DataStore) *Engine {
	t.Helper()
	e, err := New(ds, DefaultConfig(), WithNowFn(func() time.Time { return testNow }))
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func dress(id, style, color string) *core.Item {
	it := core.NewItem(id)
	it.Attrs = &core.ItemAttrs{Category: "dress", Style: style, Color: color, Season: "summer"}
	return it
}

func item(id, category string) *core.Item {
	it := core.NewItem(id)
	it.Attrs = &core.ItemAttrs{Category: category, Style: "casual", Color: "black", Season: "all"}
	return it
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxCellWeight = 0
	if _, err := New(store.NewMemoryDataStore(), cfg); !core.IsInvalidConfig(err) {
		t.Fatalf("expected INVALID_CONFIG, got %v", err)
	}

	cfg = DefaultConfig()
	cfg.FilterExprs = []string{"item.season =="}
	if _, err := New(store.NewMemoryDataStore(), cfg); !core.IsInvalidConfig(err) {
		t.Fatalf("bad filter expr should fail construction, got %v", err)
	}

	if _, err := New(nil, DefaultConfig()); err == nil {
		t.Fatal("nil data store should fail")
	}
}

func TestRecommendEmptyCatalog(t *testing.T) {
	e := newTestEngine(t, store.NewMemoryDataStore())
	_, err := e.Recommend(context.Background(), "u1", 5)
	if !core.IsInsufficientData(err) {
		t.Fatalf("empty catalog should return INSUFFICIENT_DATA, got %v", err)
	}
}

func TestRecommendColdStartIsTrendingDriven(t *testing.T) {
	ds := store.NewMemoryDataStore()
	ds.SeedItems(dress("i1", "casual", "red"), dress("i2", "formal", "black"), item("i3", "shoes"))
	// 其他用户的行为决定趋势：i2 购买最热，i1 次之
	ds.SeedInteractions(
		core.Interaction{UserID: "u2", ItemID: "i2", Type: core.InteractionPurchase, Timestamp: testNow.Add(-time.Hour)},
		core.Interaction{UserID: "u3", ItemID: "i1", Type: core.InteractionLike, Timestamp: testNow.Add(-time.Hour)},
	)

	e := newTestEngine(t, ds)
	res, err := e.Recommend(context.Background(), "ghost", 10)
	if err != nil {
		t.Fatal(err)
	}

	// 冷启动不是错误：结果非空且降级可观测
	if len(res.Items) == 0 {
		t.Fatal("cold start user must still get recommendations")
	}
	if !res.ColdStart.Collaborative || !res.ColdStart.Content {
		t.Errorf("both strategies should report cold start, got %+v", res.ColdStart)
	}

	// 排序完全由趋势分驱动：i2 > i1 > i3
	want := []string{"i2", "i1", "i3"}
	for i, id := range want {
		if res.Items[i].ItemID != id {
			t.Errorf("position %d = %s, want %s", i, res.Items[i].ItemID, id)
		}
	}
}

func TestRecommendPurchaseRoundTripExclusion(t *testing.T) {
	ds := store.NewMemoryDataStore()
	ds.SeedItems(dress("i1", "casual", "red"), dress("i2", "formal", "black"))
	e := newTestEngine(t, ds)
	ctx := context.Background()

	if err := e.RecordFeedback(ctx, "u1", "i1", core.InteractionPurchase, nil); err != nil {
		t.Fatal(err)
	}

	res, err := e.Recommend(ctx, "u1", 10)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range res.Items {
		if r.ItemID == "i1" {
			t.Fatal("purchased item must be excluded from recommendations")
		}
	}
	// 购买行为同时强化了口味，内容策略不再是冷启动
	if res.ColdStart.Content {
		t.Error("user with a purchase should not be content cold start")
	}
}

func TestRecommendDeterministic(t *testing.T) {
	ds := store.NewMemoryDataStore()
	ds.SeedItems(dress("i1", "casual", "red"), dress("i2", "casual", "red"), dress("i3", "casual", "red"))
	ds.SeedInteractions(
		core.Interaction{UserID: "u2", ItemID: "i1", Type: core.InteractionLike, Timestamp: testNow.Add(-time.Hour)},
	)
	e := newTestEngine(t, ds)
	ctx := context.Background()

	first, err := e.Recommend(ctx, "u1", 10)
	if err != nil {
		t.Fatal(err)
	}
	for run := 0; run < 5; run++ {
		again, err := e.Recommend(ctx, "u1", 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(again.Items) != len(first.Items) {
			t.Fatalf("run %d: result length changed", run)
		}
		for i := range first.Items {
			if first.Items[i] != again.Items[i] {
				t.Fatalf("run %d: position %d changed: %+v vs %+v", run, i, first.Items[i], again.Items[i])
			}
		}
	}
}

func TestRecommendSimilarUserScenario(t *testing.T) {
	// u1 like i1 / view i2；u2 like i1 / purchase i3；i1-i3 同为 dress。
	// i3 应排进 top2，压过毫无交互历史的单品。
	ds := store.NewMemoryDataStore()
	ds.SeedItems(
		dress("i1", "casual", "red"),
		dress("i2", "casual", "black"),
		dress("i3", "casual", "red"),
		item("i4", "accessories"),
		item("i5", "shoes"),
	)
	ds.SeedInteractions(
		core.Interaction{UserID: "u1", ItemID: "i1", Type: core.InteractionLike, Timestamp: testNow.Add(-time.Hour)},
		core.Interaction{UserID: "u1", ItemID: "i2", Type: core.InteractionView, Timestamp: testNow.Add(-time.Hour)},
		core.Interaction{UserID: "u2", ItemID: "i1", Type: core.InteractionLike, Timestamp: testNow.Add(-time.Hour)},
		core.Interaction{UserID: "u2", ItemID: "i3", Type: core.InteractionPurchase, Timestamp: testNow.Add(-time.Hour)},
	)

	e := newTestEngine(t, ds)
	res, err := e.Recommend(context.Background(), "u1", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(res.Items))
	}

	found := false
	for _, r := range res.Items {
		if r.ItemID == "i4" || r.ItemID == "i5" {
			t.Errorf("no-history item %s should not outrank i3", r.ItemID)
		}
		if r.ItemID == "i3" {
			found = true
		}
	}
	if !found {
		t.Errorf("i3 should rank in top 2, got %+v", res.Items)
	}
}

func TestRecordFeedbackValidation(t *testing.T) {
	ds := store.NewMemoryDataStore()
	ds.SeedItems(dress("i1", "casual", "red"))
	e := newTestEngine(t, ds)
	ctx := context.Background()

	if err := e.RecordFeedback(ctx, "", "i1", core.InteractionLike, nil); err == nil {
		t.Error("empty user id should fail")
	}
	if err := e.RecordFeedback(ctx, "u1", "i1", core.InteractionType("teleport"), nil); err == nil {
		t.Error("unknown interaction type should fail")
	}
	bad := 9.0
	if err := e.RecordFeedback(ctx, "u1", "i1", core.InteractionLike, &bad); err == nil {
		t.Error("out-of-range rating should fail")
	}
	if err := e.RecordFeedback(ctx, "u1", "ghost", core.InteractionLike, nil); !core.IsNotFound(err) {
		t.Errorf("unknown item should return NOT_FOUND, got %v", err)
	}
}

func TestRecordFeedbackReinforcesPreferences(t *testing.T) {
	ds := store.NewMemoryDataStore()
	ds.SeedItems(dress("i1", "casual", "red"))
	e := newTestEngine(t, ds)
	ctx := context.Background()

	// like 权重 3，α=0.2：首次 0.6，再次 0.6·0.8 + 0.2·3 = 1.08
	if err := e.RecordFeedback(ctx, "u1", "i1", core.InteractionLike, nil); err != nil {
		t.Fatal(err)
	}
	prefs, err := ds.FetchPreferences(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	weight := prefWeight(prefs, core.DimensionCategory, "dress")
	if math.Abs(weight-0.6) > 1e-9 {
		t.Errorf("first reinforcement = %v, want 0.6", weight)
	}

	if err := e.RecordFeedback(ctx, "u1", "i1", core.InteractionLike, nil); err != nil {
		t.Fatal(err)
	}
	prefs, err = ds.FetchPreferences(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	weight = prefWeight(prefs, core.DimensionCategory, "dress")
	if math.Abs(weight-1.08) > 1e-9 {
		t.Errorf("second reinforcement = %v, want 1.08", weight)
	}

	// style/color/brand 同步强化；brand 为空不建行
	if prefWeight(prefs, core.DimensionStyle, "casual") == 0 {
		t.Error("style preference should be reinforced")
	}
	for _, p := range prefs {
		if p.Dimension == core.DimensionBrand {
			t.Error("empty brand attribute must not create a preference row")
		}
		if p.Weight < 0 || p.Weight > core.MaxTypeWeight() {
			t.Errorf("weight out of bounds: %+v", p)
		}
	}
}

func TestTrendsAndSeasonalViaEngine(t *testing.T) {
	ds := store.NewMemoryDataStore()
	ds.SeedItems(dress("i1", "casual", "red"), item("i2", "boots"))
	ds.SeedInteractions(
		core.Interaction{UserID: "u1", ItemID: "i2", Type: core.InteractionView, Timestamp: testNow.AddDate(0, 0, -2)},
	)
	e := newTestEngine(t, ds)
	ctx := context.Background()

	entries, err := e.Trends(ctx, core.DimensionCategory, core.Window{})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Value != "boots" {
		t.Fatalf("Trends = %+v", entries)
	}

	seasonal, err := e.SeasonalTrends(ctx, "summer")
	if err != nil {
		t.Fatal(err)
	}
	// i1 是 summer 单品但没有交互，i2 是 all 季节单品且有交互
	got := make(map[string]bool)
	for _, s := range seasonal {
		got[s.Value] = true
	}
	if !got["i2"] {
		t.Errorf("all-season item with interactions should appear, got %+v", seasonal)
	}
}

func TestUpdateTrendScoresFeedsTrendingStrategy(t *testing.T) {
	ds := store.NewMemoryDataStore()
	ds.SeedItems(dress("i1", "casual", "red"), dress("i2", "formal", "black"))
	ds.SeedInteractions(
		core.Interaction{UserID: "u2", ItemID: "i1", Type: core.InteractionPurchase, Timestamp: testNow.Add(-time.Hour)},
	)
	e := newTestEngine(t, ds)
	ctx := context.Background()

	if err := e.UpdateTrendScores(ctx); err != nil {
		t.Fatal(err)
	}
	scores, err := ds.FetchTrendScores(ctx, core.DimensionItem)
	if err != nil || len(scores) == 0 {
		t.Fatalf("trend scores should be persisted: %v, %v", scores, err)
	}

	// 落盘后冷启动用户的推荐仍以 i1 为首
	res, err := e.Recommend(ctx, "ghost", 10)
	if err != nil {
		t.Fatal(err)
	}
	if res.Items[0].ItemID != "i1" {
		t.Errorf("persisted trend scores should rank i1 first, got %s", res.Items[0].ItemID)
	}
}

func prefWeight(prefs []core.Preference, dim core.Dimension, value string) float64 {
	for _, p := range prefs {
		if p.Dimension == dim && p.Value == value {
			return p.Weight
		}
	}
	return 0
}
