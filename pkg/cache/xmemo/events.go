package xmemo

import (
	"log/slog"
	"time"
)

// Sink 定义缓存事件的可插拔出口。
//
// 核心只负责发出结构化事件，不关心格式化和传输。
// 所有方法都在调用方或 janitor 的执行路径上同步调用，
// 实现必须快速返回且不得回调 Cache 自身的任何方法。
type Sink interface {
	// Hit 缓存命中。
	Hit(cache, key string)

	// Miss 缓存未命中（key 不存在或已过期）。
	Miss(cache, key string)

	// Write 缓存写入完成。
	Write(cache, key string)

	// SweepDone janitor 完成一次过期清扫。
	SweepDone(cache string, removed int, elapsed time.Duration)

	// ReclaimDone janitor 完成一次容量回收。
	ReclaimDone(cache string, removed int, elapsed time.Duration)
}

// 编译时接口检查
var (
	_ Sink = NoopSink{}
	_ Sink = (*SlogSink)(nil)
	_ Sink = (*OTelSink)(nil)
)

// NoopSink 是丢弃所有事件的空实现，未配置 Sink 时的默认值。
type NoopSink struct{}

// Hit 空实现。
func (NoopSink) Hit(_, _ string) {}

// Miss 空实现。
func (NoopSink) Miss(_, _ string) {}

// Write 空实现。
func (NoopSink) Write(_, _ string) {}

// SweepDone 空实现。
func (NoopSink) SweepDone(_ string, _ int, _ time.Duration) {}

// ReclaimDone 空实现。
func (NoopSink) ReclaimDone(_ string, _ int, _ time.Duration) {}

// =============================================================================
// slog 实现
// =============================================================================

// SlogSink 将缓存事件输出为 slog 结构化日志。
//
// 命中/未命中/写入以 Debug 级别输出（读写路径高频，默认级别下静默），
// 清扫/回收以 Info 级别输出。
type SlogSink struct {
	logger *slog.Logger
}

// NewSlogSink 创建基于 slog 的事件出口。
// logger 为 nil 时使用 slog.Default()。
func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{logger: logger}
}

// Hit 记录缓存命中日志。
func (s *SlogSink) Hit(cache, key string) {
	s.logger.Debug("cache hit",
		slog.String("cache", cache),
		slog.String("key", key),
	)
}

// Miss 记录缓存未命中日志。
func (s *SlogSink) Miss(cache, key string) {
	s.logger.Debug("cache miss",
		slog.String("cache", cache),
		slog.String("key", key),
	)
}

// Write 记录缓存写入日志。
func (s *SlogSink) Write(cache, key string) {
	s.logger.Debug("cache write",
		slog.String("cache", cache),
		slog.String("key", key),
	)
}

// SweepDone 记录清扫完成日志。
func (s *SlogSink) SweepDone(cache string, removed int, elapsed time.Duration) {
	s.logger.Info("janitor sweep completed",
		slog.String("cache", cache),
		slog.Int("removed", removed),
		slog.Duration("elapsed", elapsed),
	)
}

// ReclaimDone 记录回收完成日志。
func (s *SlogSink) ReclaimDone(cache string, removed int, elapsed time.Duration) {
	s.logger.Info("janitor reclaim completed",
		slog.String("cache", cache),
		slog.Int("removed", removed),
		slog.Duration("elapsed", elapsed),
	)
}
