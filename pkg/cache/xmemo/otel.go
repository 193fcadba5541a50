package xmemo

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	defaultInstrumentationName = "github.com/omeyang/xmemo"

	metricCacheHits       = "xmemo.cache.hits"
	metricCacheMisses     = "xmemo.cache.misses"
	metricCacheWrites     = "xmemo.cache.writes"
	metricJanitorRemoved  = "xmemo.janitor.removed"
	metricJanitorDuration = "xmemo.janitor.duration"

	opSweep   = "sweep"
	opReclaim = "reclaim"
)

type otelSinkConfig struct {
	instrumentationName string
	meterProvider       metric.MeterProvider
}

// OTelOption 定义 OTelSink 的配置选项。
type OTelOption func(*otelSinkConfig)

// WithInstrumentationName 设置 OTel instrumentation 名称。
func WithInstrumentationName(name string) OTelOption {
	return func(cfg *otelSinkConfig) {
		if name != "" {
			cfg.instrumentationName = name
		}
	}
}

// WithMeterProvider 设置 MeterProvider。
func WithMeterProvider(provider metric.MeterProvider) OTelOption {
	return func(cfg *otelSinkConfig) {
		if provider != nil {
			cfg.meterProvider = provider
		}
	}
}

// OTelSink 将缓存事件记录为 OpenTelemetry 指标。
//
// 指标属性只携带缓存名，不携带 key：key 是无界取值，
// 作为指标属性会造成基数爆炸。需要 key 级别观测时用 SlogSink。
type OTelSink struct {
	hits     metric.Int64Counter
	misses   metric.Int64Counter
	writes   metric.Int64Counter
	removed  metric.Int64Counter
	duration metric.Float64Histogram
}

// NewOTelSink 创建基于 OpenTelemetry 指标的事件出口。
// 未指定 MeterProvider 时使用全局 Provider。
func NewOTelSink(opts ...OTelOption) (*OTelSink, error) {
	cfg := &otelSinkConfig{
		instrumentationName: defaultInstrumentationName,
		meterProvider:       otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	meter := cfg.meterProvider.Meter(cfg.instrumentationName)

	hits, err := meter.Int64Counter(
		metricCacheHits,
		metric.WithDescription("cache lookup hits"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("xmemo: create hits counter: %w", err)
	}

	misses, err := meter.Int64Counter(
		metricCacheMisses,
		metric.WithDescription("cache lookup misses"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("xmemo: create misses counter: %w", err)
	}

	writes, err := meter.Int64Counter(
		metricCacheWrites,
		metric.WithDescription("cache writes"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("xmemo: create writes counter: %w", err)
	}

	removed, err := meter.Int64Counter(
		metricJanitorRemoved,
		metric.WithDescription("entries removed by janitor"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("xmemo: create removed counter: %w", err)
	}

	duration, err := meter.Float64Histogram(
		metricJanitorDuration,
		metric.WithDescription("janitor pass duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("xmemo: create duration histogram: %w", err)
	}

	return &OTelSink{
		hits:     hits,
		misses:   misses,
		writes:   writes,
		removed:  removed,
		duration: duration,
	}, nil
}

// Hit 累加命中计数。
func (s *OTelSink) Hit(cache, _ string) {
	s.hits.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("cache", cache),
	))
}

// Miss 累加未命中计数。
func (s *OTelSink) Miss(cache, _ string) {
	s.misses.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("cache", cache),
	))
}

// Write 累加写入计数。
func (s *OTelSink) Write(cache, _ string) {
	s.writes.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("cache", cache),
	))
}

// SweepDone 记录清扫删除数和耗时。
func (s *OTelSink) SweepDone(cache string, removed int, elapsed time.Duration) {
	s.record(cache, opSweep, removed, elapsed)
}

// ReclaimDone 记录回收删除数和耗时。
func (s *OTelSink) ReclaimDone(cache string, removed int, elapsed time.Duration) {
	s.record(cache, opReclaim, removed, elapsed)
}

func (s *OTelSink) record(cache, op string, removed int, elapsed time.Duration) {
	ctx := context.Background()
	attrs := metric.WithAttributes(
		attribute.String("cache", cache),
		attribute.String("op", op),
	)
	s.removed.Add(ctx, int64(removed), attrs)
	s.duration.Record(ctx, elapsed.Seconds(), attrs)
}
