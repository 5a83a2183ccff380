package recall

import (
	"context"
	"sort"

	"github.com/rushteam/trendkit/core"
)

// Collaborative 是基于用户的协同过滤策略。
//
// 算法：取目标用户在交互矩阵中的行，与其余用户逐行算余弦相似度，
// 按相似度降序取 TopK 邻居；候选分 = 邻居对该单品权重的相似度加权
// 平均，再除以矩阵单元格上限归一到 [0,1]。低于 Threshold 的邻居
// 分子按 0 计，但相似度仍留在分母中（避免除零，也压低弱证据的分）。
//
// 目标用户无交互时整表零分并置 ColdStart，由趋势分主导最终排序。
//
// 复杂度为 O(用户数 × 单品数)，是已知的扩展上限；超大 cohort 应在
// 取数阶段先按时间窗收窄。
type Collaborative struct {
	// Matrix 本次调用的交互矩阵快照
	Matrix *Matrix

	// TopK 邻居数，<=0 时取 5
	TopK int

	// Threshold 最小相似度门槛，低于门槛的邻居不贡献分子
	Threshold float64
}

func (s *Collaborative) Name() string { return "collaborative" }

type neighbor struct {
	userID string
	sim    float64
}

func (s *Collaborative) Score(ctx context.Context, rctx *core.RecommendContext, candidates []*core.Item) (*Result, error) {
	scores := make(map[string]float64, len(candidates))
	for _, item := range candidates {
		if item != nil {
			scores[item.ID] = 0
		}
	}

	if s.Matrix == nil {
		return &Result{Scores: scores, ColdStart: true}, nil
	}

	target := s.Matrix.Row(rctx.UserID)
	if len(target) == 0 {
		// 冷启动：零分降级，不报错
		return &Result{Scores: scores, ColdStart: true}, nil
	}

	topK := s.TopK
	if topK <= 0 {
		topK = 5
	}

	// Users() 返回字典序，相似度并列时先到先得即按用户 ID 升序，
	// 保证两次调用选出同一批邻居
	neighbors := make([]neighbor, 0, len(s.Matrix.rows))
	for _, u := range s.Matrix.Users() {
		if u == rctx.UserID {
			continue
		}
		sim := CosineRows(target, s.Matrix.Row(u))
		if sim <= 0 {
			continue
		}
		neighbors = append(neighbors, neighbor{userID: u, sim: sim})
	}
	sort.SliceStable(neighbors, func(i, j int) bool { return neighbors[i].sim > neighbors[j].sim })
	if len(neighbors) > topK {
		neighbors = neighbors[:topK]
	}

	var denom float64
	for _, n := range neighbors {
		denom += n.sim
	}
	if denom == 0 {
		return &Result{Scores: scores}, nil
	}

	maxCell := s.Matrix.MaxCell()
	for _, item := range candidates {
		if item == nil {
			continue
		}
		var num float64
		for _, n := range neighbors {
			if n.sim < s.Threshold {
				continue
			}
			if w, ok := s.Matrix.Row(n.userID)[item.ID]; ok {
				num += n.sim * w
			}
		}
		if num == 0 {
			continue
		}
		score := num / denom / maxCell
		if score > 1 {
			score = 1
		}
		scores[item.ID] = score
	}

	return &Result{Scores: scores}, nil
}

var _ Strategy = (*Collaborative)(nil)
