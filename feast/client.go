// Package feast 封装 Feast 特征仓库的在线特征获取。
// 领域层只依赖 Client 接口，gRPC 实现在 grpc_client.go。
package feast

import "context"

// Client 是在线特征获取的领域接口。
type Client interface {
	// GetOnlineFeatures 按实体行批量获取在线特征
	GetOnlineFeatures(ctx context.Context, req *GetOnlineFeaturesRequest) (*GetOnlineFeaturesResponse, error)
	// Close 关闭客户端连接
	Close() error
}

// GetOnlineFeaturesRequest 是在线特征请求。
type GetOnlineFeaturesRequest struct {
	// Features 特征引用列表，如 "item_stats:ctr"
	Features []string
	// EntityRows 实体行，如 [{"item_id": "i1"}, {"item_id": "i2"}]
	EntityRows []map[string]interface{}
	// Project 项目名称，为空时使用客户端默认值
	Project string
}

// FeatureVector 是单个实体行的特征向量。
type FeatureVector struct {
	// Values 特征名 -> 特征值
	Values map[string]interface{}
	// EntityRow 对应的请求实体行
	EntityRow map[string]interface{}
}

// GetOnlineFeaturesResponse 是在线特征响应。
// FeatureVectors 与请求的 EntityRows 一一对应。
type GetOnlineFeaturesResponse struct {
	FeatureVectors []FeatureVector
}
