package domain

import (
	"fmt"
	"strings"
)

const (
	// TxChainingNone uses the candidates as they are.
	TxChainingNone TxChainingMode = iota
	// TxChainingFilter drops the candidates involved in pending transactions.
	TxChainingFilter
	// TxChainingChain drops the candidates involved in pending transactions
	// and adds the pending outputs paying to the wallet address.
	TxChainingChain
)

var (
	ErrUnknownTxChainingMode = fmt.Errorf("unknown tx chaining mode")

	txChainingModeString = map[TxChainingMode]string{
		TxChainingNone:   "none",
		TxChainingFilter: "filter",
		TxChainingChain:  "chain",
	}
)

type TxChainingMode int

func (m TxChainingMode) String() string {
	return txChainingModeString[m]
}

func ParseTxChainingMode(str string) (TxChainingMode, error) {
	for mode, s := range txChainingModeString {
		if strings.EqualFold(s, str) {
			return mode, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownTxChainingMode, str)
}
