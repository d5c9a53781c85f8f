package ports

import "github.com/vulpemventures/cardano-coinselect/internal/core/domain"

// TxSerializer is the abstraction for any kind of service intended to encode
// transaction parts in their on-chain format.
type TxSerializer interface {
	// InputSize returns the size in bytes of the serialized input.
	InputSize(in domain.TransactionInput) int
	// OutputSize returns the size in bytes of the serialized output.
	OutputSize(out domain.TransactionOutput) int
	// SerializeBody returns the serialized body of a transaction with the
	// given inputs, outputs and fee.
	SerializeBody(
		inputs []domain.TransactionInput, outputs []domain.TransactionOutput,
		fee uint64,
	) ([]byte, error)
}
