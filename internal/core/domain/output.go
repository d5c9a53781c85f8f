package domain

const (
	OutputPurposeSpend OutputPurpose = iota
	OutputPurposeChange
	OutputPurposeCollateral
)

var (
	outputPurposeString = map[OutputPurpose]string{
		OutputPurposeSpend:      "Spend",
		OutputPurposeChange:     "Change",
		OutputPurposeCollateral: "Collateral",
	}
)

type OutputPurpose int

func (p OutputPurpose) String() string {
	return outputPurposeString[p]
}

// TransactionOutput is an output of a transaction being built.
type TransactionOutput struct {
	Address   string        `json:"address"`
	Value     Balance       `json:"value"`
	Purpose   OutputPurpose `json:"purpose,omitempty"`
	Datum     *DatumOption  `json:"datum,omitempty"`
	ScriptRef []byte        `json:"scriptRef,omitempty"`
}

// NewChangeOutput returns an empty output tagged as change.
func NewChangeOutput(address string) TransactionOutput {
	return TransactionOutput{Address: address, Purpose: OutputPurposeChange}
}

func (o TransactionOutput) Clone() TransactionOutput {
	clone := o
	clone.Value = o.Value.Clone()
	return clone
}

// TransactionInput references the output spent by a transaction. Output is
// set only if the spent output is known.
type TransactionInput struct {
	TxHash  string             `json:"txHash"`
	TxIndex uint32             `json:"txIndex"`
	Output  *TransactionOutput `json:"output,omitempty"`
}

func (i TransactionInput) Key() UtxoKey {
	return UtxoKey{i.TxHash, i.TxIndex}
}
