package core

import "context"

// Store 是底层 KV 存储的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（store）实现
//   - 遵循依赖倒置原则：领域层定义接口，基础设施层实现接口
//
// 使用场景：
//   - StoreDataStore 适配器把目录/交互/偏好/趋势分落在 KV key 上
//   - 趋势热榜使用有序集合（见 KeyValueStore）
type Store interface {
	// Name 返回存储后端名称（用于日志/监控）
	Name() string

	// Get 读取单个 key 的值
	Get(ctx context.Context, key string) ([]byte, error)

	// Set 写入单个 key-value
	Set(ctx context.Context, key string, value []byte, ttl ...int) error

	// Delete 删除单个 key（有序集合 key 同样适用）
	Delete(ctx context.Context, key string) error

	// BatchGet 批量读取（减少网络往返）
	BatchGet(ctx context.Context, keys []string) (map[string][]byte, error)

	// BatchSet 批量写入
	BatchSet(ctx context.Context, kvs map[string][]byte, ttl ...int) error

	// Close 关闭连接/释放资源
	Close() error
}

// ZEntry 是有序集合中的一个成员。
type ZEntry struct {
	Member string
	Score  float64
}

// KeyValueStore 是 Store 的扩展接口，增加有序集合操作。
// 趋势分析器把单品热榜写成 zset，趋势召回源按分数降序读 TopN。
// 如果后端不支持，可返回 ErrStoreNotSupported。
type KeyValueStore interface {
	Store

	// ZAdd 向有序集合添加/覆盖成员分数
	ZAdd(ctx context.Context, key string, score float64, member string) error

	// ZScore 获取成员的分数
	ZScore(ctx context.Context, key string, member string) (float64, error)

	// ZRangeWithScores 按分数降序获取 [start, stop] 区间成员（含分数）
	ZRangeWithScores(ctx context.Context, key string, start, stop int64) ([]ZEntry, error)
}
