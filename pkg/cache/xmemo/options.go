package xmemo

import (
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	// DefaultCleanupInterval janitor 清扫间隔的默认值。
	DefaultCleanupInterval = 5 * time.Second

	// DefaultReclaimFraction 容量回收比例的默认值。
	// 每次回收 ceil(MaxSize * 0.1) 条最旧的条目。
	DefaultReclaimFraction = 0.1
)

// Limit 定义容量上限策略。
type Limit struct {
	// MaxSize 条目数上限，必须大于 0。
	// 上限的检查发生在 Put 之后，回收是异步的，
	// 表大小可能瞬时超过 MaxSize。
	MaxSize int

	// ReclaimFraction 每次回收的条目数占 MaxSize 的比例，
	// 必须在 (0, 1] 区间。0 表示使用默认值 DefaultReclaimFraction。
	ReclaimFraction float64
}

// Config 定义缓存配置。
// 在 New/Start 时一次性校验和固化，缓存存续期间不可变。
type Config struct {
	// TTL 条目的默认存活时长。
	// Put 未显式指定 TTL 时使用该值；0 表示永不过期；负值为配置错误。
	TTL time.Duration

	// CleanupInterval janitor 清扫过期条目的间隔。
	// 0 表示使用默认值 DefaultCleanupInterval；负值为配置错误。
	CleanupInterval time.Duration

	// Limit 容量上限策略。nil 表示不限容量，janitor 只做过期清扫。
	Limit *Limit

	// Clock 时间来源。nil 表示使用真实时钟。
	// 测试中注入 clockwork.NewFakeClock() 以确定性驱动过期与清扫。
	Clock clockwork.Clock

	// Sink 事件出口。nil 表示丢弃所有事件（NoopSink）。
	Sink Sink
}

// validate 校验配置合法性。
func (c Config) validate() error {
	if c.TTL < 0 {
		return ErrInvalidDefaultTTL
	}
	if c.CleanupInterval < 0 {
		return ErrInvalidInterval
	}
	if c.Limit != nil {
		if c.Limit.MaxSize <= 0 {
			return ErrInvalidMaxSize
		}
		if c.Limit.ReclaimFraction < 0 || c.Limit.ReclaimFraction > 1 {
			return ErrInvalidFraction
		}
	}
	return nil
}

// normalize 返回填充了默认值的配置副本。
// Limit 会被复制一份，调用方后续修改原结构体不影响缓存。
func (c Config) normalize() Config {
	if c.CleanupInterval == 0 {
		c.CleanupInterval = DefaultCleanupInterval
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	if c.Sink == nil {
		c.Sink = NoopSink{}
	}
	if c.Limit != nil {
		limit := *c.Limit
		if limit.ReclaimFraction == 0 {
			limit.ReclaimFraction = DefaultReclaimFraction
		}
		c.Limit = &limit
	}
	return c
}

// =============================================================================
// Put 选项
// =============================================================================

// putOptions Put/Fetch 的每次调用级选项。
type putOptions struct {
	ttl    time.Duration
	ttlSet bool
}

// PutOption 定义 Put/Fetch 的可选配置函数类型。
type PutOption func(*putOptions)

// WithTTL 为本次写入指定条目级 TTL，覆盖配置的默认 TTL。
// 传入的值必须为正数，否则 Put 返回 ErrInvalidTTL 且不写入。
func WithTTL(d time.Duration) PutOption {
	return func(o *putOptions) {
		o.ttl = d
		o.ttlSet = true
	}
}

func applyPutOptions(opts []PutOption) putOptions {
	var o putOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
