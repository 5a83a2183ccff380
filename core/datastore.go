package core

import "context"

// InteractionQuery 是交互记录的查询条件；零值表示不过滤。
type InteractionQuery struct {
	UserID string
	ItemID string
	Window Window
}

// DataStore 是数据访问协作方的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（store）实现
//   - 核心自身不做 I/O：所有阻塞都发生在对该接口的调用上
//   - 数据访问失败原样向上传递，核心不做重试/掩盖（退避是适配层的职责）
//
// 一致性：同一用户的反馈写入（AppendInteraction / UpsertPreference）
// 完成后，后续对该用户的读必须能看到它（按用户的读后写一致，
// 不要求全局一致）。写序列化由存储方负责，核心内部无锁。
//
// 实现：
//   - store.MemoryDataStore（内存切片，测试/原型）
//   - store.StoreDataStore（基于 core.Store 的 JSON 适配器，接 Redis 等）
type DataStore interface {
	// Name 返回存储后端名称（用于日志/监控）
	Name() string

	// FetchInteractions 按条件读取交互记录
	FetchInteractions(ctx context.Context, q InteractionQuery) ([]Interaction, error)

	// AppendInteraction 追加一条交互记录（只追加，不更新不删除）
	AppendInteraction(ctx context.Context, in Interaction) error

	// FetchItems 读取目录单品；ids 为空表示全量
	FetchItems(ctx context.Context, ids []string) ([]*Item, error)

	// FetchPreferences 读取用户的全部偏好行
	FetchPreferences(ctx context.Context, userID string) ([]Preference, error)

	// UpsertPreference 写入/更新一行偏好（按 user+dimension+value 定位）
	UpsertPreference(ctx context.Context, p Preference) error

	// UpsertTrendScore 写入一条趋势分（按 dimension+key 覆盖最新值）
	UpsertTrendScore(ctx context.Context, ts TrendScore) error

	// FetchTrendScores 读取某维度的最新趋势分
	FetchTrendScores(ctx context.Context, dim Dimension) ([]TrendScore, error)
}
