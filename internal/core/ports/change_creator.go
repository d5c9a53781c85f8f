package ports

import (
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/vulpemventures/cardano-coinselect/internal/core/domain"
)

// ChangeCreator is the abstraction for any kind of service intended to
// compute the change outputs of a coin selection.
type ChangeCreator interface {
	// CalculateChange replaces the change outputs of the coin selection so
	// that selected = requested + change. The fee buffer must be left over by
	// the selection on top of the requested balance, and it is reserved in the
	// last change output so that the fee can later be deducted from it.
	// The result holds a *domain.InsufficientFundsError if the leftover cannot
	// cover the fee buffer or the min-utxo of the change outputs, with
	// Required set to the total lovelace the selection should hold.
	CalculateChange(
		cs domain.CoinSelection, requested domain.Balance,
		changeAddress string, feeBuffer uint64,
	) fn.Result[domain.CoinSelection]
}
