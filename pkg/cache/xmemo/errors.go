package xmemo

import "errors"

// =============================================================================
// 配置错误
// =============================================================================

var (
	// ErrEmptyName 表示缓存名字为空。
	// 名字用于事件标识和 Registry 索引，必须非空。
	ErrEmptyName = errors.New("xmemo: cache name must not be empty")

	// ErrInvalidDefaultTTL 表示配置的默认 TTL 为负数。
	// 0 表示永不过期，负值属于配置错误。
	ErrInvalidDefaultTTL = errors.New("xmemo: default TTL must not be negative")

	// ErrInvalidInterval 表示清扫间隔为负数。
	// 0 表示使用默认值 DefaultCleanupInterval。
	ErrInvalidInterval = errors.New("xmemo: cleanup interval must not be negative")

	// ErrInvalidMaxSize 表示容量上限不是正数。
	ErrInvalidMaxSize = errors.New("xmemo: limit max size must be greater than 0")

	// ErrInvalidFraction 表示回收比例不在 (0, 1] 区间。
	// 0 表示使用默认值 DefaultReclaimFraction。
	ErrInvalidFraction = errors.New("xmemo: reclaim fraction must be in (0, 1]")

	// ErrUnsupportedFormat 表示配置数据格式不受支持。
	ErrUnsupportedFormat = errors.New("xmemo: unsupported config format")

	// ErrInvalidConfigFile 表示配置数据内容无效（无法解析或字段非法）。
	ErrInvalidConfigFile = errors.New("xmemo: invalid config data")
)

// =============================================================================
// 操作错误
// =============================================================================

var (
	// ErrInvalidTTL 表示 Put/Fetch 显式传入的 TTL 不是正数。
	// 校验失败时条目不会被写入。
	ErrInvalidTTL = errors.New("xmemo: TTL must be positive")

	// ErrNilFallback 表示 Fetch 的回源函数为 nil。
	ErrNilFallback = errors.New("xmemo: nil fallback function")

	// ErrClosed 表示缓存已关闭。
	ErrClosed = errors.New("xmemo: cache closed")
)

// =============================================================================
// Registry 错误
// =============================================================================

var (
	// ErrDuplicateCache 表示同名缓存已在 Registry 中启动。
	ErrDuplicateCache = errors.New("xmemo: cache already started")

	// ErrUnknownCache 表示 Registry 中不存在该名字的缓存。
	ErrUnknownCache = errors.New("xmemo: unknown cache")
)
