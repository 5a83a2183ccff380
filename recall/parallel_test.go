package recall

import (
	"context"
	"errors"
	"testing"

	"github.com/rushteam/trendkit/core"
	"github.com/rushteam/trendkit/pkg/utils"
	"github.com/rushteam/trendkit/store"
)

// fakeStrategy 返回固定分数表，便于单测汇合逻辑。
type fakeStrategy struct {
	name      string
	scores    map[string]float64
	coldStart bool
	err       error
}

func (s *fakeStrategy) Name() string { return s.name }

func (s *fakeStrategy) Score(ctx context.Context, rctx *core.RecommendContext, candidates []*core.Item) (*Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &Result{Scores: s.scores, ColdStart: s.coldStart}, nil
}

func TestParallelScoreWritesFeatureColumns(t *testing.T) {
	node := &ParallelScore{Strategies: []Strategy{
		&fakeStrategy{name: "collaborative", scores: map[string]float64{"i1": 0.8}},
		&fakeStrategy{name: "content", scores: map[string]float64{"i1": 0.3, "i2": 0.6}},
	}}

	items := []*core.Item{core.NewItem("i1"), core.NewItem("i2")}
	rctx := &core.RecommendContext{UserID: "u1"}
	out, err := node.Process(context.Background(), rctx, items)
	if err != nil {
		t.Fatal(err)
	}

	if got := out[0].Feature(FeatureCollaborative); got != 0.8 {
		t.Errorf("i1 collaborative = %v, want 0.8", got)
	}
	if got := out[0].Feature(FeatureContent); got != 0.3 {
		t.Errorf("i1 content = %v, want 0.3", got)
	}
	// 策略未覆盖的候选写 0 分列，融合阶段不需要判缺失
	if got := out[1].Feature(FeatureCollaborative); got != 0 {
		t.Errorf("i2 collaborative = %v, want 0", got)
	}
	// 正分候选带 strategy 标签
	if lbl, ok := out[1].Labels["strategy"]; !ok || !utils.HasValue(lbl, "content") {
		t.Errorf("i2 strategy label = %+v, want content", out[1].Labels["strategy"])
	}
}

func TestParallelScoreColdStartLabelAccumulates(t *testing.T) {
	node := &ParallelScore{Strategies: []Strategy{
		&fakeStrategy{name: "collaborative", scores: map[string]float64{}, coldStart: true},
		&fakeStrategy{name: "content", scores: map[string]float64{}, coldStart: true},
		&fakeStrategy{name: "trending", scores: map[string]float64{"i1": 1}},
	}}

	rctx := &core.RecommendContext{UserID: "ghost"}
	if _, err := node.Process(context.Background(), rctx, []*core.Item{core.NewItem("i1")}); err != nil {
		t.Fatal(err)
	}

	lbl, ok := rctx.GetLabel(core.LabelColdStart)
	if !ok {
		t.Fatal("cold_start label should be set")
	}
	if !utils.HasValue(lbl, "collaborative") || !utils.HasValue(lbl, "content") {
		t.Errorf("cold_start = %q, want both strategies recorded", lbl.Value)
	}
	if utils.HasValue(lbl, "trending") {
		t.Errorf("trending did not cold start, got %q", lbl.Value)
	}
}

func TestParallelScorePropagatesStrategyError(t *testing.T) {
	wantErr := errors.New("store down")
	node := &ParallelScore{Strategies: []Strategy{
		&fakeStrategy{name: "collaborative", scores: map[string]float64{}},
		&fakeStrategy{name: "content", err: wantErr},
	}}

	_, err := node.Process(context.Background(), &core.RecommendContext{UserID: "u1"}, []*core.Item{core.NewItem("i1")})
	if !errors.Is(err, wantErr) {
		t.Fatalf("strategy error should fail the node, got %v", err)
	}
}

func TestTrendStoreReadsSortedSet(t *testing.T) {
	kv := store.NewMemoryStore()
	defer kv.Close()
	ctx := context.Background()

	kv.ZAdd(ctx, DefaultTrendKey, 0.9, "i1")
	kv.ZAdd(ctx, DefaultTrendKey, 0.3, "i2")

	s := &TrendStore{Store: kv}
	items := []*core.Item{core.NewItem("i1"), core.NewItem("i2"), core.NewItem("i3")}
	r, err := s.Score(ctx, &core.RecommendContext{UserID: "u1"}, items)
	if err != nil {
		t.Fatal(err)
	}

	// 候选集内最大值归一：i1 = 1.0
	if r.Scores["i1"] != 1.0 {
		t.Errorf("i1 = %v, want 1.0", r.Scores["i1"])
	}
	if got, want := r.Scores["i2"], 0.3/0.9; got != want {
		t.Errorf("i2 = %v, want %v", got, want)
	}
	if r.Scores["i3"] != 0 {
		t.Errorf("i3 has no trend score, want 0, got %v", r.Scores["i3"])
	}
	if r.ColdStart {
		t.Error("trend store strategy never cold starts")
	}
}

func TestTrendStoreMissingKeyIsZero(t *testing.T) {
	kv := store.NewMemoryStore()
	defer kv.Close()

	s := &TrendStore{Store: kv, Key: "missing"}
	r, err := s.Score(context.Background(), &core.RecommendContext{UserID: "u1"}, []*core.Item{core.NewItem("i1")})
	if err != nil {
		t.Fatal(err)
	}
	if r.Scores["i1"] != 0 {
		t.Errorf("missing key should score 0, got %v", r.Scores["i1"])
	}
}
