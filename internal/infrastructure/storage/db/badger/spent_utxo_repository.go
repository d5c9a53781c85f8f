package dbbadger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/timshannon/badgerhold/v4"
	"github.com/vulpemventures/cardano-coinselect/internal/core/domain"
)

type spentUtxoRepository struct {
	store    *badgerhold.Store
	chEvents chan domain.SpentUtxoEvent
	lock     *sync.Mutex
	closed   bool

	log func(format string, a ...interface{})
}

func NewSpentUtxoRepository(store *badgerhold.Store) domain.SpentUtxoRepository {
	return newSpentUtxoRepository(store)
}

func newSpentUtxoRepository(store *badgerhold.Store) *spentUtxoRepository {
	chEvents := make(chan domain.SpentUtxoEvent)
	lock := &sync.Mutex{}
	logFn := func(format string, a ...interface{}) {
		format = fmt.Sprintf("spent utxo repository: %s", format)
		log.Debugf(format, a...)
	}
	return &spentUtxoRepository{store, chEvents, lock, false, logFn}
}

func (r *spentUtxoRepository) MarkSpent(
	ctx context.Context, keys []domain.UtxoKey, spendingTxHash string,
) (int, error) {
	now := time.Now().Unix()
	marked := make([]domain.UtxoKey, 0, len(keys))
	for _, key := range keys {
		err := r.store.Insert(key.Hash(), domain.SpentUtxo{
			UtxoKey:        key,
			SpendingTxHash: spendingTxHash,
			SpentAt:        now,
		})
		if err != nil {
			if errors.Is(err, badgerhold.ErrKeyExists) {
				continue
			}
			return -1, err
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
	ctx context.Context, keys []domain.UtxoKey,
) (int, error) {
	released := make([]domain.UtxoKey, 0, len(keys))
	for _, key := range keys {
		err := r.store.Delete(key.Hash(), domain.SpentUtxo{})
		if err != nil {
			if errors.Is(err, badgerhold.ErrNotFound) {
				continue
			}
			return -1, err
		}
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
	ctx context.Context, key domain.UtxoKey,
) (bool, error) {
	var utxo domain.SpentUtxo
	if err := r.store.Get(key.Hash(), &utxo); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *spentUtxoRepository) GetSpentUtxos(
	ctx context.Context,
) ([]domain.SpentUtxo, error) {
	var utxos []domain.SpentUtxo
	if err := r.store.Find(&utxos, nil); err != nil {
		return nil, err
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
	utxos, err := r.GetSpentUtxos(ctx)
	if err != nil {
		return nil, err
	}
	keys := make([]domain.UtxoKey, 0, len(utxos))
	for _, u := range utxos {
		keys = append(keys, u.UtxoKey)
	}
	return keys, nil
}

func (r *spentUtxoRepository) publishEvent(event domain.SpentUtxoEvent) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.closed {
		return
	}
	r.log("publish event %s", event.EventType)
	r.chEvents <- event
}

func (r *spentUtxoRepository) reset() {
	if err := r.store.Badger().DropAll(); err != nil {
		r.log("failed to reset store: %s", err)
	}
}

func (r *spentUtxoRepository) close() {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.closed = true
	r.store.Close()
	close(r.chEvents)
}
