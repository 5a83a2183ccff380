package trend

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/rushteam/trendkit/core"
	"github.com/rushteam/trendkit/recall"
	"github.com/rushteam/trendkit/store"
)

var testNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func newAnalyzer(ds core.DataStore, kv core.KeyValueStore) *Analyzer {
	return &Analyzer{
		Data: ds,
		Hot:  kv,
		NowFn: func() time.Time {
			return testNow
		},
	}
}

func seedCatalog(ds *store.MemoryDataStore) {
	mk := func(id, category, season string) *core.Item {
		it := core.NewItem(id)
		it.Attrs = &core.ItemAttrs{Category: category, Season: season}
		return it
	}
	ds.SeedItems(
		mk("b1", "boots", "winter"),
		mk("b2", "boots", "winter"),
		mk("d1", "dress", "summer"),
		mk("a1", "accessories", "all"),
	)
}

// view 权重为 1，用 n 条 view 精确构造聚合分
func views(user, item string, n int, at time.Time) []core.Interaction {
	ins := make([]core.Interaction, 0, n)
	for i := 0; i < n; i++ {
		ins = append(ins, core.Interaction{UserID: user, ItemID: item, Type: core.InteractionView, Timestamp: at})
	}
	return ins
}

func TestAnalyzeWeekOverWeekGrowth(t *testing.T) {
	ds := store.NewMemoryDataStore()
	seedCatalog(ds)

	// boots：上周聚合分 2，本周 8 → growth = (8-2)/2 = 3.0，rising
	ds.SeedInteractions(views("u1", "b1", 2, testNow.AddDate(0, 0, -10))...)
	ds.SeedInteractions(views("u2", "b1", 8, testNow.AddDate(0, 0, -2))...)

	a := newAnalyzer(ds, nil)
	entries, err := a.Analyze(context.Background(), core.DimensionCategory, core.LastDays(testNow, 14))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	e := entries[0]
	if e.Value != "boots" {
		t.Fatalf("value = %s, want boots", e.Value)
	}
	if e.Score != 10 {
		t.Errorf("aggregate score = %v, want 10", e.Score)
	}
	if math.Abs(e.GrowthRate-3.0) > 1e-9 {
		t.Errorf("growth rate = %v, want 3.0", e.GrowthRate)
	}
	if e.State != core.TrendRising {
		t.Errorf("state = %s, want rising", e.State)
	}
	if e.Interactions != 10 {
		t.Errorf("interaction count = %d, want 10", e.Interactions)
	}
}

func TestAnalyzeGrowthIsFiniteAndCapped(t *testing.T) {
	ds := store.NewMemoryDataStore()
	seedCatalog(ds)
	// 上周 0，本周 5：ε 保护下有限，且被上限封顶
	ds.SeedInteractions(views("u1", "d1", 5, testNow.AddDate(0, 0, -1))...)

	a := newAnalyzer(ds, nil)
	entries, err := a.Analyze(context.Background(), core.DimensionCategory, core.Window{})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	g := entries[0].GrowthRate
	if math.IsInf(g, 0) || math.IsNaN(g) {
		t.Fatalf("growth must be finite, got %v", g)
	}
	if g != DefaultMaxGrowthRate {
		t.Errorf("near-zero baseline should cap at %v, got %v", DefaultMaxGrowthRate, g)
	}
	if entries[0].State != core.TrendRising {
		t.Errorf("state = %s, want rising", entries[0].State)
	}
}

func TestAnalyzeFallingAndStable(t *testing.T) {
	ds := store.NewMemoryDataStore()
	seedCatalog(ds)
	// boots：上周 8 → 本周 2，growth = -0.75 < -0.2 → falling
	ds.SeedInteractions(views("u1", "b1", 8, testNow.AddDate(0, 0, -10))...)
	ds.SeedInteractions(views("u2", "b1", 2, testNow.AddDate(0, 0, -2))...)
	// dress：上周 5 → 本周 5，growth = 0 → stable
	ds.SeedInteractions(views("u1", "d1", 5, testNow.AddDate(0, 0, -10))...)
	ds.SeedInteractions(views("u2", "d1", 5, testNow.AddDate(0, 0, -2))...)

	a := newAnalyzer(ds, nil)
	entries, err := a.Analyze(context.Background(), core.DimensionCategory, core.LastDays(testNow, 14))
	if err != nil {
		t.Fatal(err)
	}

	byValue := make(map[string]core.TrendEntry)
	for _, e := range entries {
		byValue[e.Value] = e
	}
	if byValue["boots"].State != core.TrendFalling {
		t.Errorf("boots state = %s, want falling", byValue["boots"].State)
	}
	if byValue["dress"].State != core.TrendStable {
		t.Errorf("dress state = %s, want stable", byValue["dress"].State)
	}
}

func TestAnalyzeOrderingDeterministic(t *testing.T) {
	ds := store.NewMemoryDataStore()
	seedCatalog(ds)
	// boots 与 dress 同聚合分，按值升序 boots 在前
	ds.SeedInteractions(views("u1", "b1", 3, testNow.AddDate(0, 0, -2))...)
	ds.SeedInteractions(views("u2", "d1", 3, testNow.AddDate(0, 0, -2))...)
	ds.SeedInteractions(views("u3", "a1", 9, testNow.AddDate(0, 0, -2))...)

	a := newAnalyzer(ds, nil)
	entries, err := a.Analyze(context.Background(), core.DimensionCategory, core.LastDays(testNow, 14))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"accessories", "boots", "dress"}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(entries))
	}
	for i, v := range want {
		if entries[i].Value != v {
			t.Errorf("position %d = %s, want %s", i, entries[i].Value, v)
		}
	}
}

func TestAnalyzeInvalidDimension(t *testing.T) {
	a := newAnalyzer(store.NewMemoryDataStore(), nil)
	_, err := a.Analyze(context.Background(), core.Dimension("fabric"), core.Window{})
	if err == nil {
		t.Fatal("unknown dimension should fail")
	}
	if de := core.GetDomainError(err); de == nil || de.Code != core.ErrorCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestSeasonalFiltersByItemSeason(t *testing.T) {
	ds := store.NewMemoryDataStore()
	seedCatalog(ds)
	ds.SeedInteractions(views("u1", "b1", 4, testNow.AddDate(0, 0, -2))...) // winter
	ds.SeedInteractions(views("u2", "d1", 6, testNow.AddDate(0, 0, -2))...) // summer
	ds.SeedInteractions(views("u3", "a1", 2, testNow.AddDate(0, 0, -2))...) // all

	a := newAnalyzer(ds, nil)
	entries, err := a.Seasonal(context.Background(), "winter")
	if err != nil {
		t.Fatal(err)
	}

	// winter 单品 + 全季单品入选；summer 单品排除
	got := make(map[string]bool)
	for _, e := range entries {
		got[e.Value] = true
	}
	if !got["b1"] || !got["a1"] {
		t.Errorf("winter query should include b1 and a1, got %v", got)
	}
	if got["d1"] {
		t.Error("summer item should be excluded from winter query")
	}

	if _, err := a.Seasonal(context.Background(), ""); err == nil {
		t.Error("empty season should fail")
	}
}

func TestUpdateTrendScoresPersistsAndRanks(t *testing.T) {
	ds := store.NewMemoryDataStore()
	kv := store.NewMemoryStore()
	defer kv.Close()
	seedCatalog(ds)

	// b1 今天的 purchase 应压过 d1 十天前的 view
	ds.SeedInteractions(core.Interaction{UserID: "u1", ItemID: "b1", Type: core.InteractionPurchase, Timestamp: testNow.Add(-time.Hour)})
	ds.SeedInteractions(views("u2", "d1", 2, testNow.AddDate(0, 0, -10))...)

	a := newAnalyzer(ds, kv)
	if err := a.UpdateTrendScores(context.Background(), 30); err != nil {
		t.Fatal(err)
	}

	scores, err := ds.FetchTrendScores(context.Background(), core.DimensionItem)
	if err != nil {
		t.Fatal(err)
	}
	byKey := make(map[string]core.TrendScore)
	for _, ts := range scores {
		byKey[ts.Key] = ts
	}
	if byKey["b1"].Score != 1.0 {
		t.Errorf("hottest item should normalize to 1.0, got %v", byKey["b1"].Score)
	}
	if byKey["d1"].Score <= 0 || byKey["d1"].Score >= 1 {
		t.Errorf("d1 score should be in (0,1), got %v", byKey["d1"].Score)
	}

	// zset 热榜同步写入，榜首是 b1
	top, err := kv.ZRangeWithScores(context.Background(), recall.DefaultTrendKey, 0, 0)
	if err != nil || len(top) != 1 || top[0].Member != "b1" {
		t.Fatalf("zset top should be b1, got %v, %v", top, err)
	}
}
