// Package lock implementa la exclusión mutua por SKU alrededor de las mutaciones del libro.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/guilhermesenci/stock-control/internal/application/inventory"
	"github.com/guilhermesenci/stock-control/pkg/config"
	"github.com/guilhermesenci/stock-control/pkg/logger"
)

var _ inventory.Locker = (*RedisLocker)(nil)

// ErrNotObtained el lock no se obtuvo dentro de la espera máxima o antes de que venciera el contexto.
var ErrNotObtained = errors.New("lock: no se pudo obtener")

// retryInterval intervalo entre intentos de Obtain mientras el lock está tomado.
const retryInterval = 50 * time.Millisecond

// defaultWait espera máxima cuando no se configura otra.
const defaultWait = 5 * time.Second

// RedisLocker lock distribuido (varias instancias de la API) sobre bsm/redislock.
type RedisLocker struct {
	client  *redislock.Client
	ttl     time.Duration
	retries int
	log     *logger.Logger
}

// NewRedisClient conecta a Redis y verifica con PING.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}

// NewRedisLocker construye el locker. ttl acota cuánto sobrevive un lock si el proceso muere;
// wait, cuánto espera Lock a que otro lo libere.
func NewRedisLocker(rdb redislock.RedisClient, ttl, wait time.Duration, log *logger.Logger) *RedisLocker {
	if wait <= 0 {
		wait = defaultWait
	}
	return &RedisLocker{
		client:  redislock.New(rdb),
		ttl:     ttl,
		retries: max(1, int(wait/retryInterval)),
		log:     log.Component("lock"),
	}
}

// Lock reintenta con backoff lineal hasta obtener el lock, agotar los reintentos o que venza ctx.
// Los dos últimos casos devuelven ErrNotObtained.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	lk, err := l.client.Obtain(ctx, key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(retryInterval), l.retries),
	})
	switch {
	case errors.Is(err, redislock.ErrNotObtained):
		return nil, fmt.Errorf("%w: %s", ErrNotObtained, key)
	case errors.Is(err, context.DeadlineExceeded):
		return nil, fmt.Errorf("%w: %s: %w", ErrNotObtained, key, err)
	case err != nil:
		return nil, fmt.Errorf("obtener lock %s: %w", key, err)
	}
	return func() {
		// El contexto de la request pudo cancelarse; liberar igual.
		if err := lk.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.log.Warn().Err(err).Str("key", key).Msg("no se pudo liberar el lock")
		}
	}, nil
}
