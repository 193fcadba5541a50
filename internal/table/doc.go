// Package table 提供 xmemo 缓存的并发条目表引擎。
//
// Table 是一个分片的并发哈希表，键为字符串，值为任意类型，
// 每个条目携带插入时间戳和 TTL。分片基于 xxhash，分片数为 2 的幂，
// 每个分片由独立的 sync.RWMutex 保护，点操作彼此无锁竞争。
//
// 过期语义为惰性：Lookup 对已过期条目返回未命中，但不会删除它，
// 物理清理由上层的 janitor 周期扫描完成。这保证读路径的开销
// 与清理开销彻底分离。
//
// 点操作（Insert/Lookup/Delete/UpdateTimestamp）对单个 key 是原子的。
// 批量操作（Keys/Len/DeleteWhere/Range）逐分片加锁，
// 结果是快照语义，不保证跨分片原子性。
package table
