package ports

import "github.com/vulpemventures/cardano-coinselect/internal/core/domain"

// MinUtxoCalculator returns the min amount of lovelace an output must hold to
// be accepted by the ledger.
type MinUtxoCalculator interface {
	MinUtxoLovelace(out domain.TransactionOutput) uint64
}
