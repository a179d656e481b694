package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guilhermesenci/stock-control/internal/application/inventory"
	"github.com/guilhermesenci/stock-control/pkg/logger"
)

func newRedisLocker(t *testing.T, ttl, wait time.Duration) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLocker(client, ttl, wait, logger.Nop()), mr
}

// exclusion verifica que nunca haya dos secciones críticas simultáneas para la misma clave.
func exclusion(t *testing.T, l inventory.Locker) {
	t.Helper()
	var (
		inside  int32
		maxSeen int32
		wg      sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			release, err := l.Lock(ctx, "stock-control:sku:A")
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxSeen)
				if n <= m || atomic.CompareAndSwapInt32(&maxSeen, m, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&inside, -1)
			release()
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxSeen)
}

func TestLocalLocker_Exclusion(t *testing.T) {
	exclusion(t, NewLocalLocker())
}

func TestRedisLocker_Exclusion(t *testing.T) {
	l, _ := newRedisLocker(t, 5*time.Second, 5*time.Second)
	exclusion(t, l)
}

func TestLocalLocker_ClavesIndependientes(t *testing.T) {
	l := NewLocalLocker()
	relA, err := l.Lock(context.Background(), "A")
	require.NoError(t, err)
	defer relA()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	relB, err := l.Lock(ctx, "B")
	require.NoError(t, err)
	relB()
}

func TestLocalLocker_RespetaContexto(t *testing.T) {
	l := NewLocalLocker()
	rel, err := l.Lock(context.Background(), "A")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "A")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.ErrorIs(t, err, ErrNotObtained)

	rel()
	rel() // idempotente
	assert.Empty(t, l.slots)
}

func TestRedisLocker_NoObtenido(t *testing.T) {
	l, mr := newRedisLocker(t, 5*time.Second, 5*time.Second)
	rel, err := l.Lock(context.Background(), "stock-control:sku:A")
	require.NoError(t, err)
	assert.True(t, mr.Exists("stock-control:sku:A"))

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "stock-control:sku:A")
	assert.ErrorIs(t, err, ErrNotObtained)

	rel()
	assert.False(t, mr.Exists("stock-control:sku:A"))
}

func TestRedisLocker_EsperaAcotadaSinDeadline(t *testing.T) {
	l, _ := newRedisLocker(t, 30*time.Second, 150*time.Millisecond)
	rel, err := l.Lock(context.Background(), "stock-control:sku:C")
	require.NoError(t, err)
	defer rel()

	start := time.Now()
	_, err = l.Lock(context.Background(), "stock-control:sku:C")
	assert.ErrorIs(t, err, ErrNotObtained)
	assert.Less(t, time.Since(start), 5*time.Second, "no espera hasta el TTL")
}

func TestRedisLocker_ExpiraPorTTL(t *testing.T) {
	l, mr := newRedisLocker(t, time.Second, time.Second)
	_, err := l.Lock(context.Background(), "stock-control:sku:B")
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)

	rel, err := l.Lock(context.Background(), "stock-control:sku:B")
	require.NoError(t, err)
	rel()
}
