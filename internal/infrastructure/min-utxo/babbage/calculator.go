package babbage_minutxo

import (
	"github.com/vulpemventures/cardano-coinselect/internal/core/domain"
	"github.com/vulpemventures/cardano-coinselect/internal/core/ports"
)

// utxoEntryOverhead is the size in bytes accounted for the utxo entry on top
// of the serialized output.
const utxoEntryOverhead = 160

type calculator struct {
	coinsPerUtxoByte uint64
	serializer       ports.TxSerializer
}

// NewMinUtxoCalculator returns a calculator applying the Babbage era min-utxo
// rule: (160 + serialized output size) * coinsPerUtxoByte.
func NewMinUtxoCalculator(
	coinsPerUtxoByte uint64, serializer ports.TxSerializer,
) ports.MinUtxoCalculator {
	return &calculator{coinsPerUtxoByte, serializer}
}

// MinUtxoLovelace returns the min lovelace for the given output. Since the
// size of the coin field depends on the coin itself, the rule is applied
// again with the coin set to the first result.
func (c *calculator) MinUtxoLovelace(out domain.TransactionOutput) uint64 {
	probe := out.Clone()
	first := c.minLovelace(probe)

	probe.Value.Lovelace = first
	return max(first, c.minLovelace(probe))
}

func (c *calculator) minLovelace(out domain.TransactionOutput) uint64 {
	size := c.serializer.OutputSize(out)
	return uint64(utxoEntryOverhead+size) * c.coinsPerUtxoByte
}
