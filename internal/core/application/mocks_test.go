package application_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vulpemventures/cardano-coinselect/internal/core/domain"
)

const (
	ada = domain.LovelacePerAda
)

var (
	ctx = context.Background()

	ownAddress      = "addr_test1_own"
	receiverAddress = "addr_test1_receiver"

	tokenPolicy = strings.Repeat("aa", 28)
	token       = domain.AssetID{PolicyID: tokenPolicy, Name: "01"}
	otherToken  = domain.AssetID{PolicyID: strings.Repeat("bb", 28), Name: "02"}
)

// TxSerializer
type mockTxSerializer struct {
	mock.Mock
}

func newMockedTxSerializer(inputSize, outputSize int) *mockTxSerializer {
	m := &mockTxSerializer{}
	m.On("InputSize", mock.Anything).Return(inputSize)
	m.On("OutputSize", mock.Anything).Return(outputSize)
	return m
}

func (m *mockTxSerializer) InputSize(in domain.TransactionInput) int {
	args := m.Called(in)
	return args.Int(0)
}

func (m *mockTxSerializer) OutputSize(out domain.TransactionOutput) int {
	args := m.Called(out)
	return args.Int(0)
}

func (m *mockTxSerializer) SerializeBody(
	inputs []domain.TransactionInput, outputs []domain.TransactionOutput,
	fee uint64,
) ([]byte, error) {
	args := m.Called(inputs, outputs, fee)
	var res []byte
	if a := args.Get(0); a != nil {
		res = a.([]byte)
	}
	return res, args.Error(1)
}

// MinUtxoCalculator
type minUtxoCalculator struct{}

func (minUtxoCalculator) MinUtxoLovelace(out domain.TransactionOutput) uint64 {
	return domain.AdaOnlyMinUtxo + 100_000*uint64(len(out.Value.Assets))
}

func newUtxo(index int, lovelace uint64, assets ...domain.Asset) domain.Utxo {
	return domain.Utxo{
		UtxoKey: domain.UtxoKey{
			TxHash:  strings.Repeat(fmt.Sprintf("%02x", index%256), 32),
			TxIndex: uint32(index),
		},
		Balance:       domain.NewBalance(lovelace, assets...),
		OutputAddress: ownAddress,
	}
}

func newUtxos(lovelaces ...uint64) []domain.Utxo {
	utxos := make([]domain.Utxo, 0, len(lovelaces))
	for i, lovelace := range lovelaces {
		utxos = append(utxos, newUtxo(i, lovelace))
	}
	return utxos
}

func newOutput(address string, lovelace uint64, assets ...domain.Asset) domain.TransactionOutput {
	return domain.TransactionOutput{
		Address: address,
		Value:   domain.NewBalance(lovelace, assets...),
	}
}

func encodeAddress(t *testing.T, header byte) string {
	buf := append([]byte{header}, make([]byte, 56)...)
	data, err := bech32.ConvertBits(buf, 8, 5, true)
	require.NoError(t, err)
	addr, err := bech32.Encode("addr_test", data)
	require.NoError(t, err)
	return addr
}

func lovelaces(utxos []domain.Utxo) []uint64 {
	amounts := make([]uint64, 0, len(utxos))
	for _, u := range utxos {
		amounts = append(amounts, u.Balance.Lovelace)
	}
	return amounts
}
