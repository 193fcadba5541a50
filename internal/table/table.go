package table

import (
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// shardCount 分片数量，必须为 2 的幂。
// 16 个分片对进程内缓存的典型并发度已经足够，
// 再多只会增加批量操作的遍历开销。
const shardCount = 16

// Entry 表示表中的一个条目。
type Entry[V any] struct {
	// Value 条目的值。
	Value V

	// InsertedAt 条目的插入时间戳（unix 毫秒）。
	// 由 Insert 设置、UpdateTimestamp 重置，读取不会更新它。
	// 它同时是 TTL 过期和按时间淘汰的唯一排序依据。
	InsertedAt int64

	// TTL 条目的存活时长。<= 0 表示永不过期。
	TTL time.Duration
}

// Expired 判断条目在 nowMs（unix 毫秒）时刻是否已过期。
// 过期条件：TTL 有限且 InsertedAt + TTL <= nowMs。
func (e Entry[V]) Expired(nowMs int64) bool {
	return e.TTL > 0 && e.InsertedAt+e.TTL.Milliseconds() <= nowMs
}

type shard[V any] struct {
	mu      sync.RWMutex
	entries map[string]Entry[V]
}

// Table 是并发安全的条目表。
// 必须通过 [New] 创建，零值不可用。
// 所有方法都可以被任意多个 goroutine 并发调用，调用方无需加锁。
type Table[V any] struct {
	shards []shard[V]
	mask   uint64
}

// New 创建空的条目表。
func New[V any]() *Table[V] {
	t := &Table[V]{
		shards: make([]shard[V], shardCount),
		mask:   shardCount - 1,
	}
	for i := range t.shards {
		t.shards[i].entries = make(map[string]Entry[V])
	}
	return t
}

func (t *Table[V]) getShard(key string) *shard[V] {
	h := xxhash.Sum64String(key)
	return &t.shards[h&t.mask]
}

// Insert 写入条目，无条件覆盖同 key 的已有条目，
// InsertedAt 重置为 nowMs。
func (t *Table[V]) Insert(key string, value V, ttl time.Duration, nowMs int64) {
	s := t.getShard(key)
	s.mu.Lock()
	s.entries[key] = Entry[V]{Value: value, InsertedAt: nowMs, TTL: ttl}
	s.mu.Unlock()
}

// Lookup 查询条目。key 不存在或已过期时返回零值和 false。
// 已过期的条目不会作为副作用被删除，清理只由上层周期扫描完成。
func (t *Table[V]) Lookup(key string, nowMs int64) (V, bool) {
	s := t.getShard(key)
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok || e.Expired(nowMs) {
		var zero V
		return zero, false
	}
	return e.Value, true
}

// Delete 删除条目。幂等：key 不存在时也静默成功。
func (t *Table[V]) Delete(key string) {
	s := t.getShard(key)
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// UpdateTimestamp 将已有条目的 InsertedAt 重置为 nowMs，
// 不改变其值和 TTL。返回 key 是否存在。
// 对已过期但尚未清理的条目同样生效，等效于重新激活该条目。
func (t *Table[V]) UpdateTimestamp(key string, nowMs int64) bool {
	s := t.getShard(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return false
	}
	e.InsertedAt = nowMs
	s.entries[key] = e
	return true
}

// Keys 返回所有 key 的快照。
// includeExpired 为 false 时，按与 Lookup 相同的过期规则排除已过期 key。
// 返回顺序不确定。
func (t *Table[V]) Keys(includeExpired bool, nowMs int64) []string {
	keys := make([]string, 0, t.Len())
	for i := range t.shards {
		s := &t.shards[i]
		s.mu.RLock()
		for k, e := range s.entries {
			if includeExpired || !e.Expired(nowMs) {
				keys = append(keys, k)
			}
		}
		s.mu.RUnlock()
	}
	return keys
}

// Clear 删除所有条目。
func (t *Table[V]) Clear() {
	for i := range t.shards {
		s := &t.shards[i]
		s.mu.Lock()
		s.entries = make(map[string]Entry[V])
		s.mu.Unlock()
	}
}

// Len 返回当前条目数，可能包含已过期但尚未清理的条目。
func (t *Table[V]) Len() int {
	n := 0
	for i := range t.shards {
		s := &t.shards[i]
		s.mu.RLock()
		n += len(s.entries)
		s.mu.RUnlock()
	}
	return n
}

// DeleteWhere 批量删除所有满足 pred 的条目，返回删除数量。
// 逐分片持写锁执行，pred 不得回调本表的任何方法，否则会死锁。
func (t *Table[V]) DeleteWhere(pred func(key string, e Entry[V]) bool) int {
	removed := 0
	for i := range t.shards {
		s := &t.shards[i]
		s.mu.Lock()
		for k, e := range s.entries {
			if pred(k, e) {
				delete(s.entries, k)
				removed++
			}
		}
		s.mu.Unlock()
	}
	return removed
}

// Range 遍历所有条目，fn 返回 false 时提前终止。
// 逐分片持读锁执行，fn 不得回调本表的任何方法，否则会死锁。
func (t *Table[V]) Range(fn func(key string, e Entry[V]) bool) {
	for i := range t.shards {
		s := &t.shards[i]
		s.mu.RLock()
		for k, e := range s.entries {
			if !fn(k, e) {
				s.mu.RUnlock()
				return
			}
		}
		s.mu.RUnlock()
	}
}
