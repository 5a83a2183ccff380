package feature

import (
	"context"
	"strings"

	"github.com/rushteam/trendkit/feast"
)

// FeastItemSource 把 Feast 在线特征适配为 ItemFeatureSource。
// 仅保留数值型特征值，字符串等非数值特征被丢弃。
type FeastItemSource struct {
	// Client Feast 客户端
	Client feast.Client

	// Features 要获取的特征引用列表，如 ["item_stats:ctr", "item_stats:cvr"]
	Features []string

	// EntityKey 实体键名，默认 "item_id"
	EntityKey string

	// Project 项目名称，为空时使用客户端默认值
	Project string
}

func (s *FeastItemSource) BatchGetItemFeatures(ctx context.Context, itemIDs []string) (map[string]map[string]float64, error) {
	if s.Client == nil || len(s.Features) == 0 || len(itemIDs) == 0 {
		return map[string]map[string]float64{}, nil
	}

	entityKey := s.EntityKey
	if entityKey == "" {
		entityKey = "item_id"
	}

	entityRows := make([]map[string]interface{}, len(itemIDs))
	for i, id := range itemIDs {
		entityRows[i] = map[string]interface{}{entityKey: id}
	}

	resp, err := s.Client.GetOnlineFeatures(ctx, &feast.GetOnlineFeaturesRequest{
		Features:   s.Features,
		EntityRows: entityRows,
		Project:    s.Project,
	})
	if err != nil {
		return nil, err
	}

	out := make(map[string]map[string]float64, len(itemIDs))
	for i, vec := range resp.FeatureVectors {
		if i >= len(itemIDs) {
			break
		}
		features := make(map[string]float64, len(vec.Values))
		for name, v := range vec.Values {
			f, ok := v.(float64)
			if !ok {
				continue
			}
			// 特征引用 "view:feature" 只保留 feature 部分作为特征名
			if idx := strings.LastIndex(name, ":"); idx >= 0 {
				name = name[idx+1:]
			}
			features[name] = f
		}
		out[itemIDs[i]] = features
	}

	return out, nil
}

var _ ItemFeatureSource = (*FeastItemSource)(nil)
