package store

import (
	"context"
	"sort"
	"sync"

	"github.com/rushteam/trendkit/core"
)

// MemoryDataStore 是切片实现的 core.DataStore，用于测试和原型。
// 写读同一把锁，天然满足按用户的读后写一致。
type MemoryDataStore struct {
	mu           sync.RWMutex
	interactions []core.Interaction
	items        map[string]*core.Item
	prefs        map[string]map[string]core.Preference   // user -> dim|value -> row
	trends       map[core.Dimension]map[string]core.TrendScore
}

func NewMemoryDataStore() *MemoryDataStore {
	return &MemoryDataStore{
		items:  make(map[string]*core.Item),
		prefs:  make(map[string]map[string]core.Preference),
		trends: make(map[core.Dimension]map[string]core.TrendScore),
	}
}

func (m *MemoryDataStore) Name() string { return "memory" }

// SeedItems 批量写入目录单品（覆盖同 ID）。
func (m *MemoryDataStore) SeedItems(items ...*core.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range items {
		if item != nil {
			m.items[item.ID] = item
		}
	}
}

// SeedInteractions 批量写入交互记录。
func (m *MemoryDataStore) SeedInteractions(ins ...core.Interaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interactions = append(m.interactions, ins...)
}

func (m *MemoryDataStore) FetchInteractions(ctx context.Context, q core.InteractionQuery) ([]core.Interaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]core.Interaction, 0, len(m.interactions))
	for _, in := range m.interactions {
		if q.UserID != "" && in.UserID != q.UserID {
			continue
		}
		if q.ItemID != "" && in.ItemID != q.ItemID {
			continue
		}
		if !q.Window.IsZero() && !q.Window.Contains(in.Timestamp) {
			continue
		}
		out = append(out, in)
	}
	return out, nil
}

func (m *MemoryDataStore) AppendInteraction(ctx context.Context, in core.Interaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interactions = append(m.interactions, in)
	return nil
}

// FetchItems 返回目录单品的全新实例（ID 升序）。
// 每次调用都复制：打分链路会往 Item 上写 Score/Features/Labels，
// 不能让两次请求共享同一批可变对象。
func (m *MemoryDataStore) FetchItems(ctx context.Context, ids []string) ([]*core.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var picked []*core.Item
	if len(ids) == 0 {
		picked = make([]*core.Item, 0, len(m.items))
		for _, item := range m.items {
			picked = append(picked, item)
		}
	} else {
		picked = make([]*core.Item, 0, len(ids))
		for _, id := range ids {
			if item, ok := m.items[id]; ok {
				picked = append(picked, item)
			}
		}
	}

	out := make([]*core.Item, 0, len(picked))
	for _, item := range picked {
		fresh := core.NewItem(item.ID)
		fresh.Attrs = item.Attrs
		out = append(out, fresh)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryDataStore) FetchPreferences(ctx context.Context, userID string) ([]core.Preference, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows := m.prefs[userID]
	out := make([]core.Preference, 0, len(rows))
	for _, p := range rows {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Dimension != out[j].Dimension {
			return out[i].Dimension < out[j].Dimension
		}
		return out[i].Value < out[j].Value
	})
	return out, nil
}

func (m *MemoryDataStore) UpsertPreference(ctx context.Context, p core.Preference) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, ok := m.prefs[p.UserID]
	if !ok {
		rows = make(map[string]core.Preference)
		m.prefs[p.UserID] = rows
	}
	rows[string(p.Dimension)+"|"+p.Value] = p
	return nil
}

func (m *MemoryDataStore) UpsertTrendScore(ctx context.Context, ts core.TrendScore) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, ok := m.trends[ts.Dimension]
	if !ok {
		rows = make(map[string]core.TrendScore)
		m.trends[ts.Dimension] = rows
	}
	rows[ts.Key] = ts
	return nil
}

func (m *MemoryDataStore) FetchTrendScores(ctx context.Context, dim core.Dimension) ([]core.TrendScore, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows := m.trends[dim]
	out := make([]core.TrendScore, 0, len(rows))
	for _, ts := range rows {
		out = append(out, ts)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

var _ core.DataStore = (*MemoryDataStore)(nil)
