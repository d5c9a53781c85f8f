package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vulpemventures/cardano-coinselect/internal/core/domain"
)

type spentUtxoInmemoryStore struct {
	utxos map[domain.UtxoKey]domain.SpentUtxo
	lock  *sync.RWMutex
}

type spentUtxoRepository struct {
	store    *spentUtxoInmemoryStore
	chEvents chan domain.SpentUtxoEvent
	chLock   *sync.Mutex
	closed   bool
}

func NewSpentUtxoRepository() domain.SpentUtxoRepository {
	return newSpentUtxoRepository()
}

func newSpentUtxoRepository() *spentUtxoRepository {
	return &spentUtxoRepository{
		store: &spentUtxoInmemoryStore{
			utxos: make(map[domain.UtxoKey]domain.SpentUtxo),
			lock:  &sync.RWMutex{},
		},
		chEvents: make(chan domain.SpentUtxoEvent),
		chLock:   &sync.Mutex{},
	}
}

func (r *spentUtxoRepository) MarkSpent(
	_ context.Context, keys []domain.UtxoKey, spendingTxHash string,
) (int, error) {
	r.store.lock.Lock()
	defer r.store.lock.Unlock()

	now := time.Now().Unix()
	marked := make([]domain.UtxoKey, 0, len(keys))
	for _, key := range keys {
		if _, ok := r.store.utxos[key]; ok {
			continue
		}
		r.store.utxos[key] = domain.SpentUtxo{
			UtxoKey:        key,
			SpendingTxHash: spendingTxHash,
			SpentAt:        now,
		}
		marked = append(marked, key)
	}

	if len(marked) > 0 {
		go r.publishEvent(domain.SpentUtxoEvent{
			EventType: domain.SpentUtxosMarked,
			Keys:      marked,
		})
	}

	return len(marked), nil
}

func (r *spentUtxoRepository) Release(
	_ context.Context, keys []domain.UtxoKey,
) (int, error) {
	r.store.lock.Lock()
	defer r.store.lock.Unlock()

	released := make([]domain.UtxoKey, 0, len(keys))
	for _, key := range keys {
		if _, ok := r.store.utxos[key]; !ok {
			continue
		}
		delete(r.store.utxos, key)
		released = append(released, key)
	}

	if len(released) > 0 {
		go r.publishEvent(domain.SpentUtxoEvent{
			EventType: domain.SpentUtxosReleased,
			Keys:      released,
		})
	}

	return len(released), nil
}

func (r *spentUtxoRepository) IsSpent(
	_ context.Context, key domain.UtxoKey,
) (bool, error) {
	r.store.lock.RLock()
	defer r.store.lock.RUnlock()

	_, ok := r.store.utxos[key]
	return ok, nil
}

func (r *spentUtxoRepository) GetSpentUtxos(
	_ context.Context,
) ([]domain.SpentUtxo, error) {
	r.store.lock.RLock()
	defer r.store.lock.RUnlock()

	utxos := make([]domain.SpentUtxo, 0, len(r.store.utxos))
	for _, u := range r.store.utxos {
		utxos = append(utxos, u)
	}
	sort.SliceStable(utxos, func(i, j int) bool {
		if utxos[i].SpentAt != utxos[j].SpentAt {
			return utxos[i].SpentAt < utxos[j].SpentAt
		}
		return utxos[i].String() < utxos[j].String()
	})
	return utxos, nil
}

func (r *spentUtxoRepository) GetSpentUtxoKeys(
	ctx context.Context,
) ([]domain.UtxoKey, error) {
	utxos, _ := r.GetSpentUtxos(ctx)
	keys := make([]domain.UtxoKey, 0, len(utxos))
	for _, u := range utxos {
		keys = append(keys, u.UtxoKey)
	}
	return keys, nil
}

func (r *spentUtxoRepository) publishEvent(event domain.SpentUtxoEvent) {
	r.chLock.Lock()
	defer r.chLock.Unlock()

	if r.closed {
		return
	}
	r.chEvents <- event
}

func (r *spentUtxoRepository) reset() {
	r.store.lock.Lock()
	defer r.store.lock.Unlock()

	r.store.utxos = make(map[domain.UtxoKey]domain.SpentUtxo)
}

func (r *spentUtxoRepository) close() {
	r.chLock.Lock()
	defer r.chLock.Unlock()

	r.closed = true
	close(r.chEvents)
}
