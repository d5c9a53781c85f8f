package randomimprove_selector_test

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vulpemventures/cardano-coinselect/internal/core/domain"
	"github.com/vulpemventures/cardano-coinselect/internal/core/ports"
	randomimprove_selector "github.com/vulpemventures/cardano-coinselect/internal/infrastructure/coin-selector/random-improve"
)

const ada = domain.LovelacePerAda

var (
	policy = strings.Repeat("aa", 28)
	token  = domain.AssetID{PolicyID: policy, Name: "01"}
)

type selectorFactory func(rng *rand.Rand) ports.CoinSelector

var selectors = map[string]selectorFactory{
	"random improve":           randomimprove_selector.NewRandomImproveCoinSelector,
	"optimized random improve": randomimprove_selector.NewOptimizedRandomImproveCoinSelector,
}

func newUtxo(index uint32, lovelace uint64, assets ...domain.Asset) domain.Utxo {
	return domain.Utxo{
		UtxoKey: domain.UtxoKey{
			TxHash: strings.Repeat(fmt.Sprintf("%02x", index), 32), TxIndex: index,
		},
		Balance: domain.NewBalance(lovelace, assets...),
	}
}

func newTokens(count int) []domain.Asset {
	assets := make([]domain.Asset, 0, count)
	for i := 0; i < count; i++ {
		assets = append(assets, domain.Asset{
			AssetID:  domain.AssetID{PolicyID: strings.Repeat("cc", 28), Name: fmt.Sprintf("%02x", i)},
			Quantity: 1,
		})
	}
	return assets
}

func TestSelectInputsReachesTarget(t *testing.T) {
	t.Parallel()

	utxos := make([]domain.Utxo, 0, 20)
	for i := uint32(0); i < 20; i++ {
		utxos = append(utxos, newUtxo(i, uint64(i+1)*ada))
	}

	for name, factory := range selectors {
		factory := factory
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			for seed := int64(0); seed < 50; seed++ {
				selector := factory(rand.New(rand.NewSource(seed)))
				res, err := selector.SelectInputs(
					domain.NewCoinSelection(), utxos, 40*ada, nil, nil, 20,
				).Unpack()
				require.NoError(t, err)

				cs := res.CoinSelection
				require.GreaterOrEqual(t, cs.CurrentQuantity(nil), int64(40*ada))
				require.NotEmpty(t, cs.SelectedUtxos)
				require.LessOrEqual(t, len(cs.SelectedUtxos), 20)
				require.Len(t, res.Available, len(utxos)-len(cs.SelectedUtxos))
				for _, u := range res.Available {
					require.False(t, cs.Contains(u.Key()))
				}
			}
		})
	}
}

func TestSelectInputsIsReproducible(t *testing.T) {
	t.Parallel()

	utxos := make([]domain.Utxo, 0, 30)
	for i := uint32(0); i < 30; i++ {
		utxos = append(utxos, newUtxo(i, uint64(i%7+1)*ada))
	}

	for name, factory := range selectors {
		factory := factory
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			first, err := factory(rand.New(rand.NewSource(42))).SelectInputs(
				domain.NewCoinSelection(), utxos, 25*ada, nil, nil, 30,
			).Unpack()
			require.NoError(t, err)

			second, err := factory(rand.New(rand.NewSource(42))).SelectInputs(
				domain.NewCoinSelection(), utxos, 25*ada, nil, nil, 30,
			).Unpack()
			require.NoError(t, err)

			require.Equal(t, first.CoinSelection, second.CoinSelection)
		})
	}
}

func TestSelectInputsLimit(t *testing.T) {
	t.Parallel()

	utxos := make([]domain.Utxo, 0, 10)
	for i := uint32(0); i < 10; i++ {
		utxos = append(utxos, newUtxo(i, 10*ada))
	}

	for name, factory := range selectors {
		factory := factory
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			selector := factory(rand.New(rand.NewSource(1)))
			_, err := selector.SelectInputs(
				domain.NewCoinSelection(), utxos, 100*ada, nil, nil, 5,
			).Unpack()
			require.ErrorIs(t, err, domain.ErrInsufficientFunds)

			var fundsErr *domain.InsufficientFundsError
			require.ErrorAs(t, err, &fundsErr)
			require.Equal(t, 5, fundsErr.Limit)
			require.Equal(t, int64(100*ada), fundsErr.Required)
		})
	}
}

func TestSelectInputsRequiredAboveLimit(t *testing.T) {
	t.Parallel()

	required := []domain.Utxo{newUtxo(1, ada), newUtxo(2, ada), newUtxo(3, ada)}
	utxos := []domain.Utxo{newUtxo(4, 100*ada)}

	for name, factory := range selectors {
		factory := factory
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			selector := factory(rand.New(rand.NewSource(1)))
			_, err := selector.SelectInputs(
				domain.NewCoinSelection(), utxos, 10*ada, nil, required, 2,
			).Unpack()
			require.ErrorIs(t, err, domain.ErrInsufficientFunds)
		})
	}
}

func TestSelectInputsMinLovelaceInputs(t *testing.T) {
	t.Parallel()

	utxos := []domain.Utxo{
		newUtxo(1, 100*ada), newUtxo(2, 100*ada), newUtxo(3, 100*ada),
		newUtxo(4, 100*ada),
	}

	for seed := int64(0); seed < 20; seed++ {
		selector := randomimprove_selector.NewRandomImproveCoinSelector(
			rand.New(rand.NewSource(seed)),
		)
		res, err := selector.SelectInputs(
			domain.NewCoinSelection(), utxos, 150*ada, nil, nil, 10,
		).Unpack()
		require.NoError(t, err)
		require.Len(t, res.CoinSelection.SelectedUtxos, 3)
	}
}

func TestSelectInputsOptimizedDropsUnneeded(t *testing.T) {
	t.Parallel()

	utxos := []domain.Utxo{
		newUtxo(1, 100*ada), newUtxo(2, 100*ada), newUtxo(3, 100*ada),
		newUtxo(4, 100*ada),
	}

	for seed := int64(0); seed < 20; seed++ {
		selector := randomimprove_selector.NewOptimizedRandomImproveCoinSelector(
			rand.New(rand.NewSource(seed)),
		)
		res, err := selector.SelectInputs(
			domain.NewCoinSelection(), utxos, 150*ada, nil, nil, 10,
		).Unpack()
		require.NoError(t, err)
		require.Len(t, res.CoinSelection.SelectedUtxos, 2)
		require.Len(t, res.Available, 2)
	}
}

func TestSelectInputsImprovePrefersFewerAssets(t *testing.T) {
	t.Parallel()

	crowded := newUtxo(1, 100*ada, newTokens(5)...)
	utxos := []domain.Utxo{
		crowded, newUtxo(2, 100*ada), newUtxo(3, 100*ada), newUtxo(4, 100*ada),
	}

	for name, factory := range selectors {
		factory := factory
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			for seed := int64(0); seed < 20; seed++ {
				selector := factory(rand.New(rand.NewSource(seed)))
				res, err := selector.SelectInputs(
					domain.NewCoinSelection(), utxos, 250*ada, nil, nil, 10,
				).Unpack()
				require.NoError(t, err)
				require.False(t, res.CoinSelection.Contains(crowded.Key()))
				require.GreaterOrEqual(
					t, res.CoinSelection.CurrentQuantity(nil), int64(250*ada),
				)
			}
		})
	}
}

func TestSelectInputsAsset(t *testing.T) {
	t.Parallel()

	utxos := []domain.Utxo{
		newUtxo(1, 2*ada, domain.Asset{AssetID: token, Quantity: 10}),
		newUtxo(2, 100*ada),
		newUtxo(3, 2*ada, domain.Asset{AssetID: token, Quantity: 30}),
		newUtxo(4, 2*ada, domain.Asset{AssetID: token, Quantity: 5}),
	}

	for name, factory := range selectors {
		factory := factory
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			for seed := int64(0); seed < 20; seed++ {
				selector := factory(rand.New(rand.NewSource(seed)))
				res, err := selector.SelectInputs(
					domain.NewCoinSelection(), utxos, 40, &token, nil, 10,
				).Unpack()
				require.NoError(t, err)

				cs := res.CoinSelection
				require.GreaterOrEqual(t, cs.CurrentQuantity(&token), int64(40))
				for _, u := range cs.SelectedUtxos {
					require.True(t, u.HoldsAsset(&token))
				}
			}
		})
	}
}

func TestSelectInputsKeepsPreviousRounds(t *testing.T) {
	t.Parallel()

	previous := newUtxo(9, 3*ada, domain.Asset{AssetID: token, Quantity: 1})
	cs := domain.NewCoinSelection().AddUtxos(previous)
	utxos := []domain.Utxo{newUtxo(1, 10*ada), newUtxo(2, 10*ada), newUtxo(3, 10*ada)}

	for name, factory := range selectors {
		factory := factory
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			selector := factory(rand.New(rand.NewSource(7)))
			res, err := selector.SelectInputs(cs, utxos, 20*ada, nil, nil, 10).Unpack()
			require.NoError(t, err)
			require.True(t, res.CoinSelection.Contains(previous.Key()))
			require.Len(t, cs.SelectedUtxos, 1)
		})
	}
}
