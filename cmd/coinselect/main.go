package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	appconfig "github.com/vulpemventures/cardano-coinselect/internal/app-config"
	"github.com/vulpemventures/cardano-coinselect/internal/config"
	"github.com/vulpemventures/cardano-coinselect/internal/core/domain"
	postgresdb "github.com/vulpemventures/cardano-coinselect/internal/infrastructure/storage/db/postgres"
	"github.com/vulpemventures/cardano-coinselect/pkg/profiler"
)

var (
	// Build info.
	version = "dev"
	commit  = "none"
	date    = "unknown"

	// Config from env vars.
	dbType     = config.GetString(config.DatabaseTypeKey)
	logLevel   = config.GetInt(config.LogLevelKey)
	datadir    = config.GetDatadir()
	noMetrics  = config.GetBool(config.NoMetricsKey)
	randomSeed = config.GetInt64(config.RandomSeedKey)
	dbDir      = filepath.Join(datadir, config.DbLocation)
	metricsDir = filepath.Join(datadir, config.MetricsLocation)

	appCfg      *appconfig.AppConfig
	profilerSvc *profiler.ProfilerService

	rootCmd = &cobra.Command{
		Use:   "coinselect",
		Short: "CLI for Cardano coin selection",
		Long: "This CLI lets you select the inputs, the change and the " +
			"collateral of Cardano transactions, and keep track of the utxos " +
			"spent by transactions not yet confirmed",
		PersistentPreRunE: setup,
		PersistentPostRun: teardown,
		SilenceUsage:      true,
		SilenceErrors:     true,
		Version:           formatVersion(),
	}
)

func init() {
	rootCmd.AddCommand(selectCmd, collateralCmd, filterCmd, spentCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		printErr(err)
		os.Exit(1)
	}
}

func setup(_ *cobra.Command, _ []string) error {
	log.SetLevel(log.Level(logLevel))

	if err := config.InitDatadir(); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}

	registry := prometheus.NewRegistry()
	appCfg = &appconfig.AppConfig{
		ProtocolParameters: protocolParameters(),
		RandomSeed:         randomSeed,
		MetricsRegisterer:  registry,
		RepoManagerType:    dbType,
		RepoManagerConfig:  repoManagerConfig(),
	}
	if err := appCfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %s", err)
	}

	if noMetrics {
		return nil
	}
	svc, err := profiler.NewService(profiler.ServiceOpts{
		Gatherer: registry,
		Datadir:  metricsDir,
	})
	if err != nil {
		return err
	}
	profilerSvc = svc
	profilerSvc.Start()
	return nil
}

func teardown(_ *cobra.Command, _ []string) {
	if profilerSvc != nil {
		profilerSvc.Stop()
	}
	if appCfg != nil && appCfg.RepoManager() != nil {
		appCfg.RepoManager().Close()
	}
}

func protocolParameters() domain.ProtocolParameters {
	params := domain.DefaultProtocolParameters()
	params.CoinsPerUtxoByte = config.GetUint64(config.CoinsPerUtxoByteKey)
	params.MinFeeA = config.GetUint64(config.MinFeeAKey)
	params.MinFeeB = config.GetUint64(config.MinFeeBKey)
	return params
}

func repoManagerConfig() interface{} {
	switch dbType {
	case "badger":
		return dbDir
	case "postgres":
		return postgresdb.DbConfig{
			DbUser:             config.GetString(config.DbUserKey),
			DbPassword:         config.GetString(config.DbPassKey),
			DbHost:             config.GetString(config.DbHostKey),
			DbPort:             config.GetInt(config.DbPortKey),
			DbName:             config.GetString(config.DbNameKey),
			MigrationSourceURL: config.GetString(config.DbMigrationPath),
		}
	default:
		return nil
	}
}
