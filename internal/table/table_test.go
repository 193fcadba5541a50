package table

import (
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntry_Expired(t *testing.T) {
	tests := []struct {
		name    string
		entry   Entry[int]
		nowMs   int64
		expired bool
	}{
		{"infinite ttl", Entry[int]{InsertedAt: 0, TTL: 0}, 1 << 40, false},
		{"negative ttl treated as infinite", Entry[int]{InsertedAt: 0, TTL: -time.Second}, 1 << 40, false},
		{"not yet expired", Entry[int]{InsertedAt: 1000, TTL: 500 * time.Millisecond}, 1499, false},
		{"expired at exact boundary", Entry[int]{InsertedAt: 1000, TTL: 500 * time.Millisecond}, 1500, true},
		{"long expired", Entry[int]{InsertedAt: 1000, TTL: 500 * time.Millisecond}, 9000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expired, tt.entry.Expired(tt.nowMs))
		})
	}
}

func TestTable_InsertLookup(t *testing.T) {
	tbl := New[string]()

	t.Run("miss on empty table", func(t *testing.T) {
		v, ok := tbl.Lookup("absent", 0)
		assert.False(t, ok)
		assert.Empty(t, v)
	})

	t.Run("insert then lookup", func(t *testing.T) {
		tbl.Insert("k1", "v1", time.Minute, 1000)
		v, ok := tbl.Lookup("k1", 1000)
		require.True(t, ok)
		assert.Equal(t, "v1", v)
	})

	t.Run("overwrite resets inserted_at", func(t *testing.T) {
		tbl.Insert("k2", "old", 500*time.Millisecond, 1000)
		tbl.Insert("k2", "new", 500*time.Millisecond, 2000)

		// 旧时间戳下本应过期的时刻，覆盖后仍然命中
		v, ok := tbl.Lookup("k2", 2400)
		require.True(t, ok)
		assert.Equal(t, "new", v)
	})

	t.Run("expired entry is a miss but stays in table", func(t *testing.T) {
		tbl.Insert("k3", "v3", 100*time.Millisecond, 1000)

		_, ok := tbl.Lookup("k3", 1100)
		assert.False(t, ok)

		// 惰性过期：条目仍物理存在
		keys := tbl.Keys(true, 1100)
		assert.Contains(t, keys, "k3")
	})
}

func TestTable_Delete(t *testing.T) {
	tbl := New[int]()
	tbl.Insert("k", 1, 0, 0)

	tbl.Delete("k")
	_, ok := tbl.Lookup("k", 0)
	assert.False(t, ok)

	// 幂等：重复删除不报错、无副作用
	tbl.Delete("k")
	tbl.Delete("never-existed")
	assert.Equal(t, 0, tbl.Len())
}

func TestTable_UpdateTimestamp(t *testing.T) {
	tbl := New[int]()

	t.Run("missing key", func(t *testing.T) {
		assert.False(t, tbl.UpdateTimestamp("absent", 100))
	})

	t.Run("resets expiry window without touching value or ttl", func(t *testing.T) {
		tbl.Insert("k", 42, 500*time.Millisecond, 1000)

		require.True(t, tbl.UpdateTimestamp("k", 1200))

		// 原窗口之外、新窗口之内
		v, ok := tbl.Lookup("k", 1600)
		require.True(t, ok)
		assert.Equal(t, 42, v)

		// 新窗口之外
		_, ok = tbl.Lookup("k", 1700)
		assert.False(t, ok)
	})

	t.Run("reactivates an expired entry", func(t *testing.T) {
		tbl.Insert("e", 7, 100*time.Millisecond, 1000)
		require.True(t, tbl.UpdateTimestamp("e", 5000))

		v, ok := tbl.Lookup("e", 5050)
		require.True(t, ok)
		assert.Equal(t, 7, v)
	})
}

func TestTable_Keys(t *testing.T) {
	tbl := New[int]()
	tbl.Insert("live", 1, time.Minute, 1000)
	tbl.Insert("expired", 2, 100*time.Millisecond, 1000)
	tbl.Insert("forever", 3, 0, 1000)

	nowMs := int64(2000)

	live := tbl.Keys(false, nowMs)
	sort.Strings(live)
	assert.Equal(t, []string{"forever", "live"}, live)

	all := tbl.Keys(true, nowMs)
	sort.Strings(all)
	assert.Equal(t, []string{"expired", "forever", "live"}, all)
}

func TestTable_Clear(t *testing.T) {
	tbl := New[int]()
	for i := 0; i < 100; i++ {
		tbl.Insert(fmt.Sprintf("k%d", i), i, 0, 0)
	}
	require.Equal(t, 100, tbl.Len())

	tbl.Clear()
	assert.Equal(t, 0, tbl.Len())
	assert.Empty(t, tbl.Keys(true, 0))
}

func TestTable_DeleteWhere(t *testing.T) {
	tbl := New[int]()
	for i := 0; i < 10; i++ {
		tbl.Insert(fmt.Sprintf("k%d", i), i, 0, int64(i))
	}

	removed := tbl.DeleteWhere(func(_ string, e Entry[int]) bool {
		return e.InsertedAt < 5
	})
	assert.Equal(t, 5, removed)
	assert.Equal(t, 5, tbl.Len())

	removed = tbl.DeleteWhere(func(_ string, _ Entry[int]) bool { return false })
	assert.Equal(t, 0, removed)
	assert.Equal(t, 5, tbl.Len())
}

func TestTable_Range(t *testing.T) {
	tbl := New[int]()
	for i := 0; i < 20; i++ {
		tbl.Insert(fmt.Sprintf("k%d", i), i, 0, 0)
	}

	t.Run("visits every entry", func(t *testing.T) {
		seen := 0
		tbl.Range(func(_ string, _ Entry[int]) bool {
			seen++
			return true
		})
		assert.Equal(t, 20, seen)
	})

	t.Run("early stop", func(t *testing.T) {
		seen := 0
		tbl.Range(func(_ string, _ Entry[int]) bool {
			seen++
			return false
		})
		assert.Equal(t, 1, seen)
	})
}

func TestTable_Concurrency(t *testing.T) {
	tbl := New[int]()
	const goroutines = 16
	const opsPerGoroutine = 500

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < opsPerGoroutine; i++ {
				key := fmt.Sprintf("k%d", i%64)
				switch i % 5 {
				case 0:
					tbl.Insert(key, g, time.Minute, int64(i))
				case 1:
					tbl.Lookup(key, int64(i))
				case 2:
					tbl.UpdateTimestamp(key, int64(i))
				case 3:
					tbl.Delete(key)
				case 4:
					tbl.Keys(false, int64(i))
				}
			}
		}(g)
	}
	wg.Wait()

	// 只验证不 panic、不死锁，终态大小在合法范围内
	assert.LessOrEqual(t, tbl.Len(), 64)
}
