package filter

import (
	"context"

	"github.com/rushteam/trendkit/core"
	"github.com/rushteam/trendkit/pkg/dsl"
)

// Expr 是基于 CEL 表达式的规则过滤器。
// 表达式返回 true 时该单品被过滤，例如按场景排除反季单品：
//
//	item.season == "winter" && rctx.scene == "summer_sale"
//
// 表达式求值出错时放行（不误杀），编译错误在构建期暴露。
type Expr struct {
	expr *dsl.Expr
}

// NewExpr 编译表达式并构建过滤器。
func NewExpr(expression string) (*Expr, error) {
	compiled, err := dsl.Compile(expression)
	if err != nil {
		return nil, err
	}
	return &Expr{expr: compiled}, nil
}

func (f *Expr) Name() string {
	return "filter.expr"
}

// Source 返回原始表达式文本。
func (f *Expr) Source() string {
	return f.expr.Source()
}

func (f *Expr) ShouldFilter(ctx context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error) {
	if item == nil {
		return false, nil
	}
	match, err := f.expr.Match(item, rctx)
	if err != nil {
		return false, err
	}
	return match, nil
}

var _ Filter = (*Expr)(nil)
