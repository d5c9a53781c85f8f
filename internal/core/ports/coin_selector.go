package ports

import (
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/vulpemventures/cardano-coinselect/internal/core/domain"
)

// SelectionResult is the outcome of a single selection round.
type SelectionResult struct {
	// CoinSelection is the input coin selection extended with the utxos
	// selected in this round.
	CoinSelection domain.CoinSelection
	// Available is the pool of candidates left for the following rounds.
	Available []domain.Utxo
}

// CoinSelector is the abstraction for any kind of service intended to extend
// a coin selection with a subset of the given utxos, covering the target
// amount of a certain asset based on a specific strategy.
type CoinSelector interface {
	// SelectInputs selects utxos from available until the coin selection
	// holds at least target of the given asset, or of lovelace if asset is
	// nil. The coin selection never holds more than limit utxos.
	// The result holds a *domain.InsufficientFundsError on failure.
	SelectInputs(
		cs domain.CoinSelection, available []domain.Utxo, target int64,
		asset *domain.AssetID, required []domain.Utxo, limit int,
	) fn.Result[SelectionResult]
	// SelectRequiredInputs adds the utxos that must be spent to the coin
	// selection.
	SelectRequiredInputs(
		cs domain.CoinSelection, required []domain.Utxo,
	) domain.CoinSelection
}
