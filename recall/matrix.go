package recall

import (
	"fmt"
	"math"
	"sort"

	"github.com/rushteam/trendkit/core"
)

// Matrix 是用户×单品的交互权重矩阵。
// 行按用户稀疏存储，缺失的 (u,i) 读出为 0，语义上等价于矩形矩阵；
// 零交互用户对应全零行，不报错。矩阵按调用重建，不跨调用持有。
type Matrix struct {
	rows map[string]map[string]float64

	// maxCell 构建时的单元格上限，用于把预测分归一化到 [0,1]
	maxCell float64
}

// BuildMatrix 从交互记录构建矩阵。
// 单元格值 = Σ 交互权重（类型权重 × 评分系数），累加后以 maxCellWeight
// 封顶，防止单个高频用户主导相似度计算。maxCellWeight 必须显式给出
// 且大于 0，否则返回 INVALID_CONFIG。
func BuildMatrix(interactions []core.Interaction, maxCellWeight float64) (*Matrix, error) {
	if maxCellWeight <= 0 {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidConfig,
			fmt.Sprintf("max cell weight must be positive, got %v", maxCellWeight))
	}

	rows := make(map[string]map[string]float64)
	for _, in := range interactions {
		if in.UserID == "" || in.ItemID == "" {
			continue
		}
		row, ok := rows[in.UserID]
		if !ok {
			row = make(map[string]float64)
			rows[in.UserID] = row
		}
		v := row[in.ItemID] + in.Weight()
		if v > maxCellWeight {
			v = maxCellWeight
		}
		row[in.ItemID] = v
	}

	return &Matrix{rows: rows, maxCell: maxCellWeight}, nil
}

// Row 返回用户的交互行；零交互用户返回 nil（读出全零）。
func (m *Matrix) Row(userID string) map[string]float64 {
	return m.rows[userID]
}

// Users 返回有交互行的用户列表（字典序，保证遍历确定性）。
func (m *Matrix) Users() []string {
	users := make([]string, 0, len(m.rows))
	for u := range m.rows {
		users = append(users, u)
	}
	sort.Strings(users)
	return users
}

// MaxCell 返回单元格上限，即矩阵中可能出现的最大值。
func (m *Matrix) MaxCell() float64 {
	return m.maxCell
}

// CosineRows 计算两行的余弦相似度。
// 行值非负，结果落在 [0,1]；任一行全零时返回 0。
func CosineRows(a, b map[string]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	var dot, na, nb float64
	for k, va := range a {
		na += va * va
		if vb, ok := b[k]; ok {
			dot += va * vb
		}
	}
	for _, vb := range b {
		nb += vb * vb
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
