package xmemo

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/jonboulle/clockwork"

	"github.com/omeyang/xmemo/internal/table"
)

// FallbackFunc 定义 Fetch 未命中时的回源函数。
//
// commit 为 true 时，返回值会以与本次 Fetch 相同的选项写入缓存后返回；
// 为 false 时直接返回而不写入（适用于"查到了但不值得缓存"的场景，
// 如空结果、错误降级值）。err 非 nil 时不写入，错误传递给 Fetch 调用方。
type FallbackFunc[V any] func(key string) (value V, commit bool, err error)

// Cache 是带 TTL 过期和容量回收的进程内键值缓存。
//
// 必须通过 [New]（或 [Registry.Start]）创建，零值不可用。
// 所有方法都是并发安全的，调用方无需加锁。
// Close 后读操作返回零值/false，写操作返回 ErrClosed。
type Cache[V any] struct {
	name  string
	cfg   Config
	tbl   *table.Table[V]
	jan   *janitor[V]
	clock clockwork.Clock
	sink  Sink

	closed    atomic.Bool
	closeOnce sync.Once
}

// New 创建缓存并启动其 janitor。
//
// name 用于事件标识，必须非空。cfg 在此一次性校验并固化，
// 此后不可变。配置非法时返回对应的哨兵错误，缓存不会启动。
//
// 使用完毕必须调用 Close 释放 janitor goroutine。
func New[V any](name string, cfg Config) (*Cache[V], error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg = cfg.normalize()

	c := &Cache[V]{
		name:  name,
		cfg:   cfg,
		tbl:   table.New[V](),
		clock: cfg.Clock,
		sink:  cfg.Sink,
	}
	c.jan = newJanitor(c)
	c.jan.start()
	return c, nil
}

// Name 返回缓存名字。
func (c *Cache[V]) Name() string {
	return c.name
}

// Get 查询缓存值。
// key 不存在、已过期或缓存已关闭时返回零值和 false。
// 过期条目不会被删除（惰性过期），物理清理由 janitor 完成。
func (c *Cache[V]) Get(key string) (V, bool) {
	if c.closed.Load() {
		var zero V
		return zero, false
	}

	v, ok := c.tbl.Lookup(key, c.nowMs())
	if ok {
		c.sink.Hit(c.name, key)
	} else {
		c.sink.Miss(c.name, key)
	}
	return v, ok
}

// Put 写入缓存值，无条件覆盖同 key 的已有条目。
//
// 未显式指定 WithTTL 时使用配置的默认 TTL（默认 TTL 为 0 则永不过期）。
// 显式传入的 TTL 必须为正数，否则返回 ErrInvalidTTL 且不写入。
//
// 配置了 Limit 且写入后表大小超过 MaxSize 时，向 janitor 发送
// 异步回收请求。Put 不等待回收完成，表大小可能瞬时超过上限。
//
// 与 Close 并发的 Put 要么正常完成（条目随 Close 一起被清空），
// 要么写入被撤销并返回 ErrClosed，不会在已关闭的表里残留条目。
func (c *Cache[V]) Put(key string, value V, opts ...PutOption) error {
	if c.closed.Load() {
		return ErrClosed
	}

	o := applyPutOptions(opts)
	ttl := c.cfg.TTL
	if o.ttlSet {
		if o.ttl <= 0 {
			return ErrInvalidTTL
		}
		ttl = o.ttl
	}

	c.tbl.Insert(key, value, ttl, c.nowMs())
	if c.closed.Load() {
		// 与 Close 并发时插入可能落在 Clear 之后，
		// 撤销本次写入，保证已关闭的表不残留条目
		c.tbl.Delete(key)
		return ErrClosed
	}
	c.sink.Write(c.name, key)

	if limit := c.cfg.Limit; limit != nil && c.tbl.Len() > limit.MaxSize {
		n := int(math.Ceil(float64(limit.MaxSize) * limit.ReclaimFraction))
		c.jan.requestReclaim(n)
	}
	return nil
}

// Fetch 查询缓存，未命中时调用 fallback 回源。
//
// 命中时直接返回缓存值。未命中时调用 fallback(key)：
// commit 为 true 则以相同选项 Put 后返回，为 false 则只返回不写入，
// fallback 返回错误则原样传播且不写入。
//
// 并发的未命中不会被合并：同一 key 上并发的 Fetch 各自独立回源。
// 这是偏向简单性的明确取舍，不提供 singleflight 保证。
func (c *Cache[V]) Fetch(key string, fallback FallbackFunc[V], opts ...PutOption) (V, error) {
	var zero V
	if c.closed.Load() {
		return zero, ErrClosed
	}
	if fallback == nil {
		return zero, ErrNilFallback
	}

	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, commit, err := fallback(key)
	if err != nil {
		return zero, fmt.Errorf("xmemo: fetch %q: %w", key, err)
	}
	if !commit {
		return v, nil
	}
	if err := c.Put(key, v, opts...); err != nil {
		return zero, err
	}
	return v, nil
}

// Touch 将条目的 inserted_at 重置为当前时刻，不改变值和 TTL，
// 等效于重启其过期窗口。返回 key 是否存在。
// 缓存已关闭时返回 false。
func (c *Cache[V]) Touch(key string) bool {
	if c.closed.Load() {
		return false
	}
	return c.tbl.UpdateTimestamp(key, c.nowMs())
}

// Delete 删除条目。幂等：key 不存在时同样静默成功。
// 缓存已关闭时为空操作。
func (c *Cache[V]) Delete(key string) {
	if c.closed.Load() {
		return
	}
	c.tbl.Delete(key)
}

// Keys 返回所有未过期 key 的快照，顺序不确定。
// 缓存已关闭时返回 nil。
func (c *Cache[V]) Keys() []string {
	if c.closed.Load() {
		return nil
	}
	return c.tbl.Keys(false, c.nowMs())
}

// AllKeys 返回所有 key 的快照，包含已过期但尚未被清扫的条目。
// 缓存已关闭时返回 nil。
func (c *Cache[V]) AllKeys() []string {
	if c.closed.Load() {
		return nil
	}
	return c.tbl.Keys(true, c.nowMs())
}

// Purge 清空所有条目。
// 缓存已关闭时为空操作。
func (c *Cache[V]) Purge() {
	if c.closed.Load() {
		return
	}
	c.tbl.Clear()
}

// Len 返回当前条目数，可能包含已过期但尚未被清扫的条目。
// 缓存已关闭时返回 0。
func (c *Cache[V]) Len() int {
	if c.closed.Load() {
		return 0
	}
	return c.tbl.Len()
}

// Close 停止 janitor 并释放条目表。
// 首次调用返回 nil，后续调用返回 ErrClosed。
// Close 返回时 janitor goroutine 已退出；正在执行的清扫/回收
// 会完成当前这一轮，尚未被处理的回收请求则被丢弃（尽力而为的停止）。
func (c *Cache[V]) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	c.closeOnce.Do(func() {
		c.jan.stop()
		c.tbl.Clear()
	})
	return nil
}

// nowMs 返回注入时钟的当前 unix 毫秒。
func (c *Cache[V]) nowMs() int64 {
	return c.clock.Now().UnixMilli()
}
