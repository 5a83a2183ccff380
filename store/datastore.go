package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/rushteam/trendkit/core"
)

// KV key 布局。交互按用户分 key，配合用户索引 key 支持全量扫描；
// 趋势分按维度分 key，读取侧永远只看最新一份。
const (
	keyCatalog          = "trendkit:catalog"
	keyInteractionsUser = "trendkit:interactions:%s"
	keyInteractionIndex = "trendkit:interactions:users"
	keyPreferences      = "trendkit:prefs:%s"
	keyTrendScores      = "trendkit:trends:%s"
)

// StoreDataStore 把 core.DataStore 适配到任意 core.Store（KV）后端，
// 记录以 JSON 编码。配 RedisStore 即可把目录/交互/偏好/趋势分
// 放进 Redis，配 MemoryStore 用于测试。
//
// 写路径是读改写，进程内用互斥锁串行化；多进程并发写同一用户
// 需要后端侧的串行化（如单写入者部署），这是 KV 适配的已知边界。
type StoreDataStore struct {
	mu sync.Mutex
	kv core.Store
}

// itemRecord 是目录单品的持久化形态（不含打分期的临时字段）。
type itemRecord struct {
	ID    string          `json:"id"`
	Attrs *core.ItemAttrs `json:"attrs"`
}

func NewStoreDataStore(kv core.Store) *StoreDataStore {
	return &StoreDataStore{kv: kv}
}

func (s *StoreDataStore) Name() string {
	return "store:" + s.kv.Name()
}

// SeedItems 覆盖写入整个目录。
func (s *StoreDataStore) SeedItems(ctx context.Context, items []*core.Item) error {
	records := make([]itemRecord, 0, len(items))
	for _, item := range items {
		if item != nil {
			records = append(records, itemRecord{ID: item.ID, Attrs: item.Attrs})
		}
	}
	return s.setJSON(ctx, keyCatalog, records)
}

func (s *StoreDataStore) FetchInteractions(ctx context.Context, q core.InteractionQuery) ([]core.Interaction, error) {
	var users []string
	if q.UserID != "" {
		users = []string{q.UserID}
	} else {
		if err := s.getJSON(ctx, keyInteractionIndex, &users); err != nil {
			if core.IsStoreNotFound(err) {
				return nil, nil
			}
			return nil, err
		}
	}

	out := make([]core.Interaction, 0)
	for _, user := range users {
		var ins []core.Interaction
		if err := s.getJSON(ctx, fmt.Sprintf(keyInteractionsUser, user), &ins); err != nil {
			if core.IsStoreNotFound(err) {
				continue
			}
			return nil, err
		}
		for _, in := range ins {
			if q.ItemID != "" && in.ItemID != q.ItemID {
				continue
			}
			if !q.Window.IsZero() && !q.Window.Contains(in.Timestamp) {
				continue
			}
			out = append(out, in)
		}
	}
	return out, nil
}

func (s *StoreDataStore) AppendInteraction(ctx context.Context, in core.Interaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := fmt.Sprintf(keyInteractionsUser, in.UserID)
	var ins []core.Interaction
	if err := s.getJSON(ctx, key, &ins); err != nil && !core.IsStoreNotFound(err) {
		return err
	}
	ins = append(ins, in)
	if err := s.setJSON(ctx, key, ins); err != nil {
		return err
	}

	// 维护用户索引，支持无 user 条件的全量扫描
	var users []string
	if err := s.getJSON(ctx, keyInteractionIndex, &users); err != nil && !core.IsStoreNotFound(err) {
		return err
	}
	for _, u := range users {
		if u == in.UserID {
			return nil
		}
	}
	users = append(users, in.UserID)
	sort.Strings(users)
	return s.setJSON(ctx, keyInteractionIndex, users)
}

// FetchItems 返回目录单品的全新实例（ID 升序），理由同 MemoryDataStore。
func (s *StoreDataStore) FetchItems(ctx context.Context, ids []string) ([]*core.Item, error) {
	var records []itemRecord
	if err := s.getJSON(ctx, keyCatalog, &records); err != nil {
		if core.IsStoreNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	out := make([]*core.Item, 0, len(records))
	for _, rec := range records {
		if len(want) > 0 && !want[rec.ID] {
			continue
		}
		item := core.NewItem(rec.ID)
		item.Attrs = rec.Attrs
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *StoreDataStore) FetchPreferences(ctx context.Context, userID string) ([]core.Preference, error) {
	var prefs []core.Preference
	if err := s.getJSON(ctx, fmt.Sprintf(keyPreferences, userID), &prefs); err != nil {
		if core.IsStoreNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return prefs, nil
}

func (s *StoreDataStore) UpsertPreference(ctx context.Context, p core.Preference) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := fmt.Sprintf(keyPreferences, p.UserID)
	var prefs []core.Preference
	if err := s.getJSON(ctx, key, &prefs); err != nil && !core.IsStoreNotFound(err) {
		return err
	}

	replaced := false
	for i, old := range prefs {
		if old.Dimension == p.Dimension && old.Value == p.Value {
			prefs[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		prefs = append(prefs, p)
		sort.Slice(prefs, func(i, j int) bool {
			if prefs[i].Dimension != prefs[j].Dimension {
				return prefs[i].Dimension < prefs[j].Dimension
			}
			return prefs[i].Value < prefs[j].Value
		})
	}
	return s.setJSON(ctx, key, prefs)
}

func (s *StoreDataStore) UpsertTrendScore(ctx context.Context, ts core.TrendScore) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := fmt.Sprintf(keyTrendScores, ts.Dimension)
	scores := make(map[string]core.TrendScore)
	if err := s.getJSON(ctx, key, &scores); err != nil && !core.IsStoreNotFound(err) {
		return err
	}
	scores[ts.Key] = ts
	return s.setJSON(ctx, key, scores)
}

func (s *StoreDataStore) FetchTrendScores(ctx context.Context, dim core.Dimension) ([]core.TrendScore, error) {
	scores := make(map[string]core.TrendScore)
	if err := s.getJSON(ctx, fmt.Sprintf(keyTrendScores, dim), &scores); err != nil {
		if core.IsStoreNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	out := make([]core.TrendScore, 0, len(scores))
	for _, ts := range scores {
		out = append(out, ts)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *StoreDataStore) getJSON(ctx context.Context, key string, v any) error {
	data, err := s.kv.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func (s *StoreDataStore) setJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, key, data)
}

var _ core.DataStore = (*StoreDataStore)(nil)
