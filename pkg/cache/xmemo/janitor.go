package xmemo

import (
	"slices"

	"github.com/omeyang/xmemo/internal/table"
)

// janitor 是与 Cache 一一绑定的后台清理 goroutine。
//
// 两条触发路径彼此独立：
//   - 定时器到期 → 清扫所有已过期条目
//   - 异步回收请求 → 按 inserted_at 阈值删除最旧的 N 条
//
// 回收请求通道容量为 1，发送方（Put）永不阻塞；已有请求排队时
// 新请求被合并丢弃。被丢弃的请求不会导致超限状态滞留：janitor
// 处理完一个请求后会复查表大小，仍然超限就继续回收直到回到上限以内，
// 所以突发写入之后即使再无新写入，表大小也会收敛。
type janitor[V any] struct {
	cache     *Cache[V]
	reclaimCh chan int
	stopCh    chan struct{}
	done      chan struct{}
}

func newJanitor[V any](c *Cache[V]) *janitor[V] {
	return &janitor[V]{
		cache:     c,
		reclaimCh: make(chan int, 1),
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
	}
}

func (j *janitor[V]) start() {
	go j.run()
}

// stop 通知 janitor 退出并等待 goroutine 结束。
// 正在执行的清扫/回收会完成当前一轮，排队中的回收请求被丢弃。
func (j *janitor[V]) stop() {
	close(j.stopCh)
	<-j.done
}

// requestReclaim 发送异步回收请求，永不阻塞调用方。
func (j *janitor[V]) requestReclaim(n int) {
	select {
	case j.reclaimCh <- n:
	default:
		// 已有请求在队，合并本次请求
	}
}

func (j *janitor[V]) run() {
	defer close(j.done)

	ticker := j.cache.clock.NewTicker(j.cache.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			j.sweep()
		case n := <-j.reclaimCh:
			j.reclaim(n)
			// 合并丢弃的请求在这里补上：只要仍然超限就继续回收，
			// 直到回到上限以内或收到停止信号
			for n > 0 && j.overLimit() {
				select {
				case <-j.stopCh:
					return
				default:
				}
				j.reclaim(n)
			}
		case <-j.stopCh:
			return
		}
	}
}

// overLimit 报告表大小是否仍然超过配置的上限。
// 未配置 Limit 时恒为 false。
func (j *janitor[V]) overLimit() bool {
	limit := j.cache.cfg.Limit
	return limit != nil && j.cache.tbl.Len() > limit.MaxSize
}

// sweep 删除所有已过期条目并发出清扫事件。
// 一轮失败不重试，下个周期会再次清扫（靠周期性自愈）。
func (j *janitor[V]) sweep() {
	clock := j.cache.clock
	start := clock.Now()
	nowMs := start.UnixMilli()

	removed := j.cache.tbl.DeleteWhere(func(_ string, e table.Entry[V]) bool {
		return e.Expired(nowMs)
	})

	j.cache.sink.SweepDone(j.cache.name, removed, clock.Since(start))
}

// reclaim 删除最旧的 n 条条目并发出回收事件。
//
// 阈值语义：取第 n 小的 inserted_at 作为阈值 t，删除所有
// inserted_at <= t 的条目。阈值上存在时间戳并列时会全部删除，
// 实际删除数可能超过 n——这是有意保留的过度回收行为。
// 表大小不足 n 时退化为全部删除。
func (j *janitor[V]) reclaim(n int) {
	if n <= 0 {
		return
	}

	clock := j.cache.clock
	start := clock.Now()
	tbl := j.cache.tbl

	stamps := make([]int64, 0, tbl.Len())
	tbl.Range(func(_ string, e table.Entry[V]) bool {
		stamps = append(stamps, e.InsertedAt)
		return true
	})

	var removed int
	if len(stamps) <= n {
		removed = tbl.DeleteWhere(func(_ string, _ table.Entry[V]) bool { return true })
	} else {
		slices.Sort(stamps)
		threshold := stamps[n-1]
		removed = tbl.DeleteWhere(func(_ string, e table.Entry[V]) bool {
			return e.InsertedAt <= threshold
		})
	}

	j.cache.sink.ReclaimDone(j.cache.name, removed, clock.Since(start))
}
