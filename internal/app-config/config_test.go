package appconfig_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	appconfig "github.com/vulpemventures/cardano-coinselect/internal/app-config"
	"github.com/vulpemventures/cardano-coinselect/internal/core/application"
	"github.com/vulpemventures/cardano-coinselect/internal/core/domain"
)

func TestAppConfig(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()

		cfg := &appconfig.AppConfig{
			ProtocolParameters: domain.DefaultProtocolParameters(),
			RandomSeed:         1,
			MetricsRegisterer:  prometheus.NewRegistry(),
			RepoManagerType:    "inmemory",
		}
		require.NoError(t, cfg.Validate())
		t.Cleanup(cfg.RepoManager().Close)

		require.NotNil(t, cfg.TxSerializer())
		require.NotNil(t, cfg.ChainingService())
		require.NotNil(t, cfg.CollateralService())

		svc := cfg.CoinSelectionService()
		require.NotNil(t, svc)
		require.Same(t, svc, cfg.CoinSelectionService())

		utxos := []domain.Utxo{newUtxo(0, 50_000_000), newUtxo(1, 40_000_000)}
		cs, err := svc.SelectCoins(context.Background(), application.SelectionRequest{
			Outputs: []domain.TransactionOutput{
				{Address: "addr_test1_receiver", Value: domain.NewBalance(30_000_000)},
			},
			Utxos:          utxos,
			ChangeAddress:  "addr_test1_own",
			Strategy:       application.CoinSelectionStrategyLargestFirst,
			ChangeStrategy: application.ChangeStrategyBasic,
		})
		require.NoError(t, err)
		require.Len(t, cs.SelectedUtxos, 1)
		require.Equal(t, utxos[0].Key(), cs.SelectedUtxos[0].Key())
		require.Equal(t, uint64(20_000_000), cs.ChangeBalance().Lovelace)
	})

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()

		invalidParams := domain.DefaultProtocolParameters()
		invalidParams.CoinsPerUtxoByte = 0

		registry := prometheus.NewRegistry()
		_, err := application.NewMetrics(registry)
		require.NoError(t, err)

		tests := []struct {
			name string
			cfg  *appconfig.AppConfig
		}{
			{
				name: "invalid protocol parameters",
				cfg: &appconfig.AppConfig{
					ProtocolParameters: invalidParams,
					RepoManagerType:    "inmemory",
				},
			},
			{
				name: "missing repo manager type",
				cfg: &appconfig.AppConfig{
					ProtocolParameters: domain.DefaultProtocolParameters(),
				},
			},
			{
				name: "unsupported repo manager type",
				cfg: &appconfig.AppConfig{
					ProtocolParameters: domain.DefaultProtocolParameters(),
					RepoManagerType:    "redis",
				},
			},
			{
				name: "missing badger datadir",
				cfg: &appconfig.AppConfig{
					ProtocolParameters: domain.DefaultProtocolParameters(),
					RepoManagerType:    "badger",
				},
			},
			{
				name: "invalid postgres config",
				cfg: &appconfig.AppConfig{
					ProtocolParameters: domain.DefaultProtocolParameters(),
					RepoManagerType:    "postgres",
					RepoManagerConfig:  "postgres://localhost",
				},
			},
			{
				name: "metrics already registered",
				cfg: &appconfig.AppConfig{
					ProtocolParameters: domain.DefaultProtocolParameters(),
					MetricsRegisterer:  registry,
					RepoManagerType:    "inmemory",
				},
			},
		}

		for _, tt := range tests {
			tt := tt
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()
				require.Error(t, tt.cfg.Validate())
			})
		}
	})
}

func newUtxo(index int, lovelace uint64) domain.Utxo {
	return domain.Utxo{
		UtxoKey: domain.UtxoKey{
			TxHash:  strings.Repeat(fmt.Sprintf("%02x", index), 32),
			TxIndex: uint32(index),
		},
		Balance:       domain.NewBalance(lovelace),
		OutputAddress: "addr_test1_own",
	}
}
