package postgresdb

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/vulpemventures/cardano-coinselect/internal/core/domain"
)

const (
	insertSpentUtxoQuery = `
INSERT INTO spent_utxo (tx_hash, tx_index, spending_tx_hash, spent_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (tx_hash, tx_index) DO NOTHING`
	deleteSpentUtxoQuery = `
DELETE FROM spent_utxo WHERE tx_hash = $1 AND tx_index = $2`
	existsSpentUtxoQuery = `
SELECT EXISTS (SELECT 1 FROM spent_utxo WHERE tx_hash = $1 AND tx_index = $2)`
	selectSpentUtxosQuery = `
SELECT tx_hash, tx_index, spending_tx_hash, spent_at FROM spent_utxo
ORDER BY spent_at, tx_hash, tx_index`
	deleteAllSpentUtxosQuery = `DELETE FROM spent_utxo`
)

type spentUtxoRepositoryPg struct {
	pgxPool  *pgxpool.Pool
	chLock   *sync.Mutex
	chEvents chan domain.SpentUtxoEvent
	closed   bool
}

func NewSpentUtxoRepositoryPgImpl(pgxPool *pgxpool.Pool) domain.SpentUtxoRepository {
	return newSpentUtxoRepositoryPgImpl(pgxPool)
}

func newSpentUtxoRepositoryPgImpl(pgxPool *pgxpool.Pool) *spentUtxoRepositoryPg {
	return &spentUtxoRepositoryPg{
		pgxPool:  pgxPool,
		chLock:   &sync.Mutex{},
		chEvents: make(chan domain.SpentUtxoEvent),
	}
}

func (r *spentUtxoRepositoryPg) MarkSpent(
	ctx context.Context, keys []domain.UtxoKey, spendingTxHash string,
) (int, error) {
	now := time.Now().Unix()
	marked := make([]domain.UtxoKey, 0, len(keys))

	err := r.withTx(ctx, func(tx pgx.Tx) error {
		for _, key := range keys {
			tag, err := tx.Exec(
				ctx, insertSpentUtxoQuery,
				key.TxHash, int64(key.TxIndex), spendingTxHash, now,
			)
			if err != nil {
				return err
			}
			if affected(tag) {
				marked = append(marked, key)
			}
		}
		return nil
	})
	if err != nil {
		return -1, err
	}

	if len(marked) > 0 {
		go r.publishEvent(domain.SpentUtxoEvent{
			EventType: domain.SpentUtxosMarked,
			Keys:      marked,
		})
	}

	return len(marked), nil
}

func (r *spentUtxoRepositoryPg) Release(
	ctx context.Context, keys []domain.UtxoKey,
) (int, error) {
	released := make([]domain.UtxoKey, 0, len(keys))

	err := r.withTx(ctx, func(tx pgx.Tx) error {
		for _, key := range keys {
			tag, err := tx.Exec(
				ctx, deleteSpentUtxoQuery, key.TxHash, int64(key.TxIndex),
			)
			if err != nil {
				return err
			}
			if affected(tag) {
				released = append(released, key)
			}
		}
		return nil
	})
	if err != nil {
		return -1, err
	}

	if len(released) > 0 {
		go r.publishEvent(domain.SpentUtxoEvent{
			EventType: domain.SpentUtxosReleased,
			Keys:      released,
		})
	}

	return len(released), nil
}

func (r *spentUtxoRepositoryPg) IsSpent(
	ctx context.Context, key domain.UtxoKey,
) (bool, error) {
	var exists bool
	err := r.pgxPool.QueryRow(
		ctx, existsSpentUtxoQuery, key.TxHash, int64(key.TxIndex),
	).Scan(&exists)
	return exists, err
}

func (r *spentUtxoRepositoryPg) GetSpentUtxos(
	ctx context.Context,
) ([]domain.SpentUtxo, error) {
	rows, err := r.pgxPool.Query(ctx, selectSpentUtxosQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	utxos := make([]domain.SpentUtxo, 0)
	for rows.Next() {
		var (
			utxo    domain.SpentUtxo
			txIndex int64
		)
		if err := rows.Scan(
			&utxo.TxHash, &txIndex, &utxo.SpendingTxHash, &utxo.SpentAt,
		); err != nil {
			return nil, err
		}
		utxo.TxIndex = uint32(txIndex)
		utxos = append(utxos, utxo)
	}

	return utxos, rows.Err()
}

func (r *spentUtxoRepositoryPg) GetSpentUtxoKeys(
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

func (r *spentUtxoRepositoryPg) withTx(
	ctx context.Context, fn func(tx pgx.Tx) error,
) error {
	tx, err := r.pgxPool.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func (r *spentUtxoRepositoryPg) publishEvent(event domain.SpentUtxoEvent) {
	r.chLock.Lock()
	defer r.chLock.Unlock()

	if r.closed {
		return
	}
	r.chEvents <- event
}

func (r *spentUtxoRepositoryPg) reset(ctx context.Context) {
	r.pgxPool.Exec(ctx, deleteAllSpentUtxosQuery)
}

func (r *spentUtxoRepositoryPg) close() {
	r.chLock.Lock()
	defer r.chLock.Unlock()

	r.closed = true
	close(r.chEvents)
}

func affected(tag pgconn.CommandTag) bool {
	return tag.RowsAffected() > 0
}
