package xmemo

import (
	"fmt"
	"time"

	kjson "github.com/knadh/koanf/parsers/json"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Format 表示序列化配置数据的格式。
type Format string

const (
	// FormatJSON JSON 格式。
	FormatJSON Format = "json"
	// FormatYAML YAML 格式。
	FormatYAML Format = "yaml"
)

// FileConfig 是 Config 的可序列化子集，用于从配置文件/ConfigMap
// 等外部数据构建缓存配置。时长字段使用 Go duration 字符串
// （如 "5s"、"1m30s"），空串表示使用零值语义。
//
// Clock 和 Sink 不可序列化，需要注入时先 Config() 再自行赋值。
type FileConfig struct {
	// TTL 默认存活时长，如 "5m"。空串表示永不过期。
	TTL string `koanf:"ttl"`

	// CleanupInterval 清扫间隔，如 "5s"。空串表示使用默认值。
	CleanupInterval string `koanf:"cleanup_interval"`

	// Limit 容量上限策略，缺省表示不限容量。
	Limit *FileLimit `koanf:"limit"`
}

// FileLimit 是 Limit 的可序列化形式。
type FileLimit struct {
	// MaxSize 条目数上限。
	MaxSize int `koanf:"max_size"`

	// ReclaimFraction 回收比例，0 表示使用默认值。
	ReclaimFraction float64 `koanf:"reclaim_fraction"`
}

// ParseConfig 从字节数据解析缓存配置。
// 空数据解析为零值 FileConfig（全部使用默认语义）。
// 格式不受支持返回 ErrUnsupportedFormat，数据无法解析时
// 返回包装了 ErrInvalidConfigFile 的错误。
func ParseConfig(data []byte, format Format) (*FileConfig, error) {
	var parser koanf.Parser
	switch format {
	case FormatJSON:
		parser = kjson.Parser()
	case FormatYAML:
		parser = kyaml.Parser()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	k := koanf.New(".")
	if len(data) > 0 {
		if err := k.Load(rawbytes.Provider(data), parser); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfigFile, err)
		}
	}

	fc := &FileConfig{}
	if err := k.UnmarshalWithConf("", fc, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfigFile, err)
	}
	return fc, nil
}

// Config 将 FileConfig 转为强类型的 Config。
// 时长字符串无法解析时返回包装了 ErrInvalidConfigFile 的错误；
// 数值范围的校验留给 New/Start 的统一配置校验。
func (fc *FileConfig) Config() (Config, error) {
	var cfg Config

	ttl, err := parseDuration(fc.TTL, "ttl")
	if err != nil {
		return Config{}, err
	}
	cfg.TTL = ttl

	interval, err := parseDuration(fc.CleanupInterval, "cleanup_interval")
	if err != nil {
		return Config{}, err
	}
	cfg.CleanupInterval = interval

	if fc.Limit != nil {
		cfg.Limit = &Limit{
			MaxSize:         fc.Limit.MaxSize,
			ReclaimFraction: fc.Limit.ReclaimFraction,
		}
	}
	return cfg, nil
}

func parseDuration(s, field string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: field %s: %w", ErrInvalidConfigFile, field, err)
	}
	return d, nil
}
