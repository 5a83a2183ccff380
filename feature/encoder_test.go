package feature

import (
	"math"
	"testing"

	"github.com/rushteam/trendkit/core"
)

func testCatalog() []*core.Item {
	mk := func(id, category, style, color string) *core.Item {
		it := core.NewItem(id)
		it.Attrs = &core.ItemAttrs{Category: category, Style: style, Color: color}
		return it
	}
	return []*core.Item{
		mk("i1", "dress", "casual", "red"),
		mk("i2", "shoes", "formal", "black"),
		mk("i3", "dress", "sporty", "red"),
	}
}

func testWeights() map[core.Dimension]float64 {
	return map[core.Dimension]float64{
		core.DimensionCategory: 0.5,
		core.DimensionStyle:    0.3,
		core.DimensionColor:    0.2,
	}
}

func TestNewEncoderWeightValidation(t *testing.T) {
	tests := []struct {
		name    string
		weights map[core.Dimension]float64
		wantErr bool
	}{
		{
			name:    "valid weights",
			weights: testWeights(),
			wantErr: false,
		},
		{
			name: "weights not summing to one",
			weights: map[core.Dimension]float64{
				core.DimensionCategory: 0.5,
				core.DimensionStyle:    0.3,
			},
			wantErr: true,
		},
		{
			name: "negative weight",
			weights: map[core.Dimension]float64{
				core.DimensionCategory: 1.2,
				core.DimensionStyle:    -0.2,
			},
			wantErr: true,
		},
		{
			name: "unknown dimension",
			weights: map[core.Dimension]float64{
				core.Dimension("fabric"): 1.0,
			},
			wantErr: true,
		},
		{
			name:    "empty weights",
			weights: nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEncoder(tt.weights, testCatalog())
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewEncoder() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !core.IsInvalidConfig(err) {
				t.Errorf("expected INVALID_CONFIG, got %v", err)
			}
		})
	}
}

func TestEncoderVectorLayout(t *testing.T) {
	enc, err := NewEncoder(testWeights(), testCatalog())
	if err != nil {
		t.Fatal(err)
	}

	// category: dress,shoes (2) + style: casual,formal,sporty (3) + color: black,red (2)
	if got, want := enc.Dim(), 7; got != want {
		t.Fatalf("Dim() = %d, want %d", got, want)
	}

	vec := enc.Encode(&core.ItemAttrs{Category: "dress", Style: "casual", Color: "red"})
	var nonZero int
	for _, v := range vec {
		if v != 0 {
			nonZero++
		}
	}
	if nonZero != 3 {
		t.Fatalf("expected 3 non-zero entries, got %d (vec=%v)", nonZero, vec)
	}

	// 同一商品编码两次应得到同一向量
	again := enc.Encode(&core.ItemAttrs{Category: "dress", Style: "casual", Color: "red"})
	for i := range vec {
		if vec[i] != again[i] {
			t.Fatalf("encoding not deterministic at %d: %v vs %v", i, vec[i], again[i])
		}
	}
}

func TestEncoderUnknownValueIsZero(t *testing.T) {
	enc, err := NewEncoder(testWeights(), testCatalog())
	if err != nil {
		t.Fatal(err)
	}

	vec := enc.Encode(&core.ItemAttrs{Category: "hat", Style: "casual", Color: "red"})
	// 未知 category 不应贡献任何非零位
	sum := 0.0
	for _, v := range vec {
		sum += v
	}
	if math.Abs(sum-(0.3+0.2)) > 1e-12 {
		t.Fatalf("unknown category should contribute zero, sum=%v", sum)
	}

	if v := enc.Encode(nil); len(v) != enc.Dim() {
		t.Fatalf("nil attrs should encode to zero vector of full length")
	}
}

func TestEncoderImportanceScaling(t *testing.T) {
	enc, err := NewEncoder(testWeights(), testCatalog())
	if err != nil {
		t.Fatal(err)
	}

	a := &core.ItemAttrs{Category: "dress", Style: "casual", Color: "red"}
	sameCategory := &core.ItemAttrs{Category: "dress", Style: "formal", Color: "black"}
	sameColor := &core.ItemAttrs{Category: "shoes", Style: "formal", Color: "red"}

	va := enc.Encode(a)
	simCategory := Cosine(va, enc.Encode(sameCategory))
	simColor := Cosine(va, enc.Encode(sameColor))

	// category 权重 0.5 > color 权重 0.2，仅品类相同的商品应更相似
	if simCategory <= simColor {
		t.Fatalf("category match (%v) should outweigh color match (%v)", simCategory, simColor)
	}
}

func TestEncodePreferences(t *testing.T) {
	enc, err := NewEncoder(testWeights(), testCatalog())
	if err != nil {
		t.Fatal(err)
	}

	prefs := []core.Preference{
		{UserID: "u1", Dimension: core.DimensionCategory, Value: "dress", Weight: 2.0},
		{UserID: "u1", Dimension: core.DimensionColor, Value: "red", Weight: 1.0},
		{UserID: "u1", Dimension: core.DimensionColor, Value: "green", Weight: 5.0}, // 词表外
	}
	vec := enc.EncodePreferences(prefs)

	itemVec := enc.Encode(&core.ItemAttrs{Category: "dress", Style: "casual", Color: "red"})
	if sim := Cosine(vec, itemVec); sim <= 0 {
		t.Fatalf("preference vector should match dress/red item, sim=%v", sim)
	}

	other := enc.Encode(&core.ItemAttrs{Category: "shoes", Style: "formal", Color: "black"})
	if sim := Cosine(vec, other); sim != 0 {
		t.Fatalf("preference vector should not match shoes/black item, sim=%v", sim)
	}
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 0, 1}, []float64{1, 0, 1}, 1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"zero vector", []float64{0, 0}, []float64{1, 1}, 0},
		{"length mismatch", []float64{1}, []float64{1, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cosine(tt.a, tt.b); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Cosine() = %v, want %v", got, tt.want)
			}
		})
	}
}
