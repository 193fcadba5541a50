// Package xmemo 提供带 TTL 过期和容量回收的进程内键值缓存。
//
// # 设计理念
//
// xmemo 面向需要快速、并发安全的结果记忆化、又不想引入外部基础设施的
// 应用代码。核心是一个存储/淘汰引擎：并发条目表、读路径上的惰性过期、
// 周期性的过期清扫、以及超过容量上限后对最旧条目的异步回收。
//
// # 核心组件
//
//   - Cache：公开操作入口（Get/Put/Fetch/Touch/Delete/Keys/Purge），
//     持有本缓存的配置（默认 TTL、容量上限、回收比例、时钟）
//   - janitor：与 Cache 一一绑定的后台 goroutine，按固定间隔清扫
//     已过期条目，并响应异步的容量回收请求
//   - Registry：按名字管理多个相互独立的 Cache 实例的生命周期
//   - Sink：可插拔的事件出口（命中/未命中/写入/清扫/回收），
//     内置 Noop、slog、OpenTelemetry 三种实现
//
// # 过期语义
//
// 条目在 inserted_at + ttl <= now 时视为过期。过期采用"惰性 + 周期"
// 两层语义：Get 对过期条目返回未命中但不删除它，物理删除由 janitor
// 的周期清扫完成。因此 Len 和 AllKeys 可能包含已过期但尚未清扫的条目。
//
// inserted_at 由 Put 写入、Touch 重置，读取不会更新它。它同时是
// 过期判定和容量回收排序的唯一依据，是插入/触碰时间而非真实的
// 最近访问时间（近似 LRU，不是精确 LRU）。
//
// # 容量回收
//
// 配置 Limit 后，Put 在表大小超过 MaxSize 时向 janitor 发送一个
// 异步回收请求（回收 ceil(MaxSize*ReclaimFraction) 条），Put 本身
// 不等待回收完成，表大小可能瞬时越过上限。回收按 inserted_at 阈值
// 删除：先取第 N 小的时间戳作为阈值，再删除所有不晚于该阈值的条目。
// 多个条目的时间戳并列在阈值上时会被全部删除，实际删除数可能超过
// 请求数。这是有意的设计取舍，不是缺陷。
//
// # Fetch 并发约定
//
// Fetch 未命中时调用调用方提供的回源函数。并发的未命中不会被合并：
// 每个调用各自独立回源。这是偏向简单性的明确取舍，需要 singleflight
// 语义的场景应由调用方自行保证。
//
// # 时钟注入
//
// 所有时间判定都经由 clockwork.Clock，默认使用真实时钟。
// 测试中注入 clockwork.NewFakeClock() 即可确定性地驱动过期与清扫。
//
// # 快速开始
//
//	cache, err := xmemo.New[string]("sessions", xmemo.Config{
//	    TTL:             5 * time.Minute,
//	    CleanupInterval: time.Second,
//	    Limit:           &xmemo.Limit{MaxSize: 10000},
//	})
//	if err != nil {
//	    return err
//	}
//	defer cache.Close()
//
//	cache.Put("user:1", "alice")
//	if v, ok := cache.Get("user:1"); ok {
//	    fmt.Println(v)
//	}
//
// 详细使用示例参考 example_test.go。
package xmemo
