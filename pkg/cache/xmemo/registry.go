package xmemo

import (
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Registry 按名字管理多个相互独立的缓存实例的生命周期。
//
// 每个实例持有自己的条目表、配置和 janitor。Registry 是显式对象
// 而非进程级单例：不同子系统可以各建各的 Registry，互不可见。
// 同一个 Registry 中的缓存值类型相同；值类型异构的场景
// 使用 Registry[any] 或建多个 Registry。
//
// 所有方法都是并发安全的。
type Registry[V any] struct {
	mu     sync.Mutex
	caches map[string]*Cache[V]
}

// NewRegistry 创建空的缓存注册表。
func NewRegistry[V any]() *Registry[V] {
	return &Registry[V]{
		caches: make(map[string]*Cache[V]),
	}
}

// Start 以给定配置启动一个命名缓存。
// 名字为空返回 ErrEmptyName，同名缓存已存在返回 ErrDuplicateCache，
// 配置非法返回对应的配置错误；任一失败都不会留下半启动的实例。
func (r *Registry[V]) Start(name string, cfg Config) (*Cache[V], error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.caches[name]; ok {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateCache, name)
	}

	c, err := New[V](name, cfg)
	if err != nil {
		return nil, err
	}
	r.caches[name] = c
	return c, nil
}

// StartFromBytes 从序列化的配置数据启动一个命名缓存。
// data 按 format 解析为 FileConfig 后转为 Config，其余语义与 Start 相同。
func (r *Registry[V]) StartFromBytes(name string, data []byte, format Format) (*Cache[V], error) {
	fc, err := ParseConfig(data, format)
	if err != nil {
		return nil, err
	}
	cfg, err := fc.Config()
	if err != nil {
		return nil, err
	}
	return r.Start(name, cfg)
}

// Get 返回指定名字的缓存实例。
func (r *Registry[V]) Get(name string) (*Cache[V], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.caches[name]
	return c, ok
}

// Names 返回当前所有缓存名字的快照，顺序不确定。
func (r *Registry[V]) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.caches))
	for name := range r.caches {
		names = append(names, name)
	}
	return names
}

// Stop 停止指定名字的缓存：janitor 退出、条目表释放、
// 名字从注册表移除。名字不存在时返回 ErrUnknownCache。
func (r *Registry[V]) Stop(name string) error {
	r.mu.Lock()
	c, ok := r.caches[name]
	if ok {
		delete(r.caches, name)
	}
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCache, name)
	}
	return c.Close()
}

// StopAll 并发停止所有缓存并清空注册表，返回首个停止错误。
// 直接通过 Cache.Close 关闭的实例会在这里报出 ErrClosed——
// 实例的生命周期应当交给 Registry 或调用方二者之一，不要混用。
func (r *Registry[V]) StopAll() error {
	r.mu.Lock()
	caches := make([]*Cache[V], 0, len(r.caches))
	for _, c := range r.caches {
		caches = append(caches, c)
	}
	r.caches = make(map[string]*Cache[V])
	r.mu.Unlock()

	var g errgroup.Group
	for _, c := range caches {
		g.Go(c.Close)
	}
	return g.Wait()
}
