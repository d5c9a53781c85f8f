package basic_change_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vulpemventures/cardano-coinselect/internal/core/domain"
	basic_change "github.com/vulpemventures/cardano-coinselect/internal/infrastructure/change-creator/basic"
)

const (
	ada           = domain.LovelacePerAda
	changeAddress = "change"
)

var token = domain.AssetID{PolicyID: strings.Repeat("aa", 28), Name: "01"}

type minUtxoCalculator struct{}

func (minUtxoCalculator) MinUtxoLovelace(out domain.TransactionOutput) uint64 {
	if !out.Value.HasAssets() {
		return 900_000
	}
	return 1_000_000 + 50_000*uint64(len(out.Value.Assets))
}

func newSelection(balances ...domain.Balance) domain.CoinSelection {
	cs := domain.NewCoinSelection()
	for i, b := range balances {
		cs = cs.AddUtxos(domain.Utxo{
			UtxoKey: domain.UtxoKey{
				TxHash: strings.Repeat(fmt.Sprintf("%02x", i), 32), TxIndex: uint32(i),
			},
			Balance: b,
		})
	}
	return cs
}

func TestCalculateChange(t *testing.T) {
	t.Parallel()

	creator := basic_change.NewBasicChangeCreator(minUtxoCalculator{})

	tests := []struct {
		name           string
		selected       []domain.Balance
		requested      domain.Balance
		feeBuffer      uint64
		expectedChange []domain.Balance
	}{
		{
			name: "single output with leftover assets",
			selected: []domain.Balance{
				domain.NewBalance(4*ada, domain.Asset{AssetID: token, Quantity: 5}),
				domain.NewBalance(6 * ada),
			},
			requested: domain.NewBalance(3*ada, domain.Asset{AssetID: token, Quantity: 2}),
			feeBuffer: ada,
			expectedChange: []domain.Balance{
				domain.NewBalance(7*ada, domain.Asset{AssetID: token, Quantity: 3}),
			},
		},
		{
			name:           "no change",
			selected:       []domain.Balance{domain.NewBalance(5 * ada)},
			requested:      domain.NewBalance(5 * ada),
			expectedChange: []domain.Balance{},
		},
		{
			name:           "fee buffer left in change",
			selected:       []domain.Balance{domain.NewBalance(10 * ada)},
			requested:      domain.NewBalance(5 * ada),
			feeBuffer:      2 * ada,
			expectedChange: []domain.Balance{domain.NewBalance(5 * ada)},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cs := newSelection(tt.selected...)
			res, err := creator.CalculateChange(
				cs, tt.requested, changeAddress, tt.feeBuffer,
			).Unpack()
			require.NoError(t, err)
			require.NoError(t, res.Validate(tt.requested))
			require.Len(t, res.ChangeOutputs, len(tt.expectedChange))

			for i, out := range res.ChangeOutputs {
				require.True(t, tt.expectedChange[i].Equal(out.Value))
				require.Equal(t, changeAddress, out.Address)
				require.Equal(t, domain.OutputPurposeChange, out.Purpose)
			}
			if len(res.ChangeOutputs) > 0 {
				last := res.ChangeOutputs[len(res.ChangeOutputs)-1]
				require.GreaterOrEqual(t, last.Value.Lovelace, tt.feeBuffer)
			}
		})
	}
}

func TestCalculateChangeFailure(t *testing.T) {
	t.Parallel()

	creator := basic_change.NewBasicChangeCreator(minUtxoCalculator{})

	tests := []struct {
		name              string
		selected          []domain.Balance
		requested         domain.Balance
		feeBuffer         uint64
		expectedAsset     *domain.AssetID
		expectedRequired  int64
		expectedAvailable int64
	}{
		{
			name: "leftover below min utxo",
			selected: []domain.Balance{
				domain.NewBalance(3*ada, domain.Asset{AssetID: token, Quantity: 5}),
			},
			requested:         domain.NewBalance(2*ada+500_000, domain.Asset{AssetID: token, Quantity: 2}),
			expectedRequired:  2*ada + 500_000 + 1_050_000,
			expectedAvailable: 3 * ada,
		},
		{
			name:              "fee buffer not covered",
			selected:          []domain.Balance{domain.NewBalance(5 * ada)},
			requested:         domain.NewBalance(5 * ada),
			feeBuffer:         ada,
			expectedRequired:  6 * ada,
			expectedAvailable: 5 * ada,
		},
		{
			name:              "missing asset",
			selected:          []domain.Balance{domain.NewBalance(5 * ada)},
			requested:         domain.NewBalance(ada, domain.Asset{AssetID: token, Quantity: 1}),
			expectedAsset:     &token,
			expectedRequired:  1,
			expectedAvailable: 0,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := creator.CalculateChange(
				newSelection(tt.selected...), tt.requested, changeAddress,
				tt.feeBuffer,
			).Unpack()
			require.ErrorIs(t, err, domain.ErrInsufficientFunds)

			var fundsErr *domain.InsufficientFundsError
			require.ErrorAs(t, err, &fundsErr)
			require.Equal(t, tt.expectedAsset, fundsErr.Asset)
			require.Equal(t, tt.expectedRequired, fundsErr.Required)
			require.Equal(t, tt.expectedAvailable, fundsErr.Available)
		})
	}
}
