package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/jhoicas/vanstock-api/internal/domain"
)

// lockTable un semáforo de peso 1 por clave ("stock:<p>:<l>", "sale:<id>", "transfer:<id>").
// Claves disjuntas nunca se bloquean entre sí.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]*semaphore.Weighted
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]*semaphore.Weighted)}
}

func (t *lockTable) get(key string) *semaphore.Weighted {
	t.mu.Lock()
	defer t.mu.Unlock()
	sem, ok := t.locks[key]
	if !ok {
		sem = semaphore.NewWeighted(1)
		t.locks[key] = sem
	}
	return sem
}

// acquire espera la clave hasta timeout. Vencido el plazo devuelve ErrContention;
// si el ctx del caller se canceló devuelve ese error.
func (t *lockTable) acquire(ctx context.Context, key string, timeout time.Duration) error {
	wait, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := t.get(key).Acquire(wait, 1); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: bloqueo %s no disponible tras %s", domain.ErrContention, key, timeout)
	}
	return nil
}

func (t *lockTable) release(key string) {
	t.get(key).Release(1)
}

func stockLockKey(productID, locationID string) string {
	return "stock:" + productID + ":" + locationID
}
