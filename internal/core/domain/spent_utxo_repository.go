package domain

import "context"

const (
	SpentUtxosMarked SpentUtxoEventType = iota
	SpentUtxosReleased
)

var (
	spentUtxoEventTypeString = map[SpentUtxoEventType]string{
		SpentUtxosMarked:   "SpentUtxosMarked",
		SpentUtxosReleased: "SpentUtxosReleased",
	}
)

type SpentUtxoEventType int

func (t SpentUtxoEventType) String() string {
	return spentUtxoEventTypeString[t]
}

// SpentUtxoEvent holds info about an event occured within the repository.
type SpentUtxoEvent struct {
	EventType SpentUtxoEventType
	Keys      []UtxoKey
}

// SpentUtxo is an utxo spent by a transaction built by this wallet that is
// not yet visible on chain nor in the mempool.
type SpentUtxo struct {
	UtxoKey
	SpendingTxHash string
	SpentAt        int64
}

// SpentUtxoRepository is the abstraction for any kind of database intended to
// track the utxos spent by locally built transactions.
type SpentUtxoRepository interface {
	// MarkSpent adds the given utxos to the spent set, preventing duplicates.
	// Generates a SpentUtxosMarked event if successful.
	MarkSpent(
		ctx context.Context, keys []UtxoKey, spendingTxHash string,
	) (int, error)
	// Release removes the given utxos from the spent set.
	// Generates a SpentUtxosReleased event if successful.
	Release(ctx context.Context, keys []UtxoKey) (int, error)
	// IsSpent returns whether the given utxo is in the spent set.
	IsSpent(ctx context.Context, key UtxoKey) (bool, error)
	// GetSpentUtxos returns the entire spent set.
	GetSpentUtxos(ctx context.Context) ([]SpentUtxo, error)
	// GetSpentUtxoKeys returns the keys of the entire spent set.
	GetSpentUtxoKeys(ctx context.Context) ([]UtxoKey, error)
}
