package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/trendkit/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
	celEnvErr  error
)

// getCELEnv 获取或创建 CEL 环境，定义变量。
func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("item", cel.DynType),
			cel.Variable("label", cel.DynType),
			cel.Variable("rctx", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// Expr 是一条已编译的 CEL 布尔表达式，使用 CEL (Common Expression
// Language) 实现，可并发复用于多个 item。
//
// 表达式语法（CEL 标准语法）：
//   - 属性：item.category == "dress" / item.season != "winter"
//   - 数值：item.score > 0.7
//   - 标签：label.strategy.contains("trending")
//   - 上下文：rctx.scene == "feed"
//   - 逻辑：item.brand == "acme" && item.score > 0.5
//
// 存在性检查用 label.key != null（CEL 访问不存在的 key 会报错）。
type Expr struct {
	source string
	prg    cel.Program
}

// Compile 编译表达式；编译一次即可对任意多的 item 求值。
func Compile(expr string) (*Expr, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %v", issues.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %v", err)
	}

	return &Expr{source: expr, prg: prg}, nil
}

// Source 返回原始表达式文本。
func (e *Expr) Source() string { return e.source }

// Match 对单个 item 求值，返回布尔结果。
func (e *Expr) Match(item *core.Item, rctx *core.RecommendContext) (bool, error) {
	out, _, err := e.prg.Eval(buildInput(item, rctx))
	if err != nil {
		return false, fmt.Errorf("eval error: %v", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据。
func buildInput(item *core.Item, rctx *core.RecommendContext) map[string]interface{} {
	labels := make(map[string]interface{}, len(item.Labels))
	for k, v := range item.Labels {
		labels[k] = v.Value
	}

	itemMap := map[string]interface{}{
		"id":       item.ID,
		"score":    item.Score,
		"features": item.Features,
	}
	if item.Attrs != nil {
		// 属性平铺到 item 顶层，表达式直接写 item.category
		itemMap["category"] = item.Attrs.Category
		itemMap["style"] = item.Attrs.Style
		itemMap["color"] = item.Attrs.Color
		itemMap["brand"] = item.Attrs.Brand
		itemMap["price_range"] = item.Attrs.PriceRange
		itemMap["season"] = item.Attrs.Season
	}

	rctxMap := map[string]interface{}{}
	if rctx != nil {
		rctxMap["user_id"] = rctx.UserID
		rctxMap["scene"] = rctx.Scene
		rctxMap["params"] = rctx.Params
	}

	return map[string]interface{}{
		"item":  itemMap,
		"label": labels,
		"rctx":  rctxMap,
	}
}
