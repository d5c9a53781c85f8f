package appconfig

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/vulpemventures/cardano-coinselect/internal/config"
	"github.com/vulpemventures/cardano-coinselect/internal/core/application"
	"github.com/vulpemventures/cardano-coinselect/internal/core/domain"
	"github.com/vulpemventures/cardano-coinselect/internal/core/ports"
	babbage_minutxo "github.com/vulpemventures/cardano-coinselect/internal/infrastructure/min-utxo/babbage"
	cborserializer "github.com/vulpemventures/cardano-coinselect/internal/infrastructure/serializer/cbor"
	dbbadger "github.com/vulpemventures/cardano-coinselect/internal/infrastructure/storage/db/badger"
	"github.com/vulpemventures/cardano-coinselect/internal/infrastructure/storage/db/inmemory"
	postgresdb "github.com/vulpemventures/cardano-coinselect/internal/infrastructure/storage/db/postgres"
)

// AppConfig is the struct holding all configuration options for every
// application service (coin selection, collateral and chaining).
// This data structure acts also as a factory of the mentioned application
// services and the portable services used by them.
// Public config args:
//   - ProtocolParameters - (required) The ledger parameters used for fees, collateral and min-utxo.
//   - RandomSeed - (optional) Seed of the random selections, defaults to the current time.
//   - MetricsRegisterer - (optional) Where to register the selection metrics.
//   - RepoManagerType - (required) One of the supported repository manager types.
//   - RepoManagerConfig - (optional) Custom config args for the repository manager based on its type.
type AppConfig struct {
	ProtocolParameters domain.ProtocolParameters
	RandomSeed         int64
	MetricsRegisterer  prometheus.Registerer

	RepoManagerType   string
	RepoManagerConfig interface{}

	rm            ports.RepoManager
	serializer    ports.TxSerializer
	minUtxo       ports.MinUtxoCalculator
	metrics       *application.Metrics
	coinSelectSvc *application.CoinSelectionService
	collateralSvc *application.CollateralService
	chainingSvc   *application.ChainingService
}

func (c *AppConfig) Validate() error {
	if err := c.ProtocolParameters.Validate(); err != nil {
		return err
	}
	if len(c.RepoManagerType) == 0 {
		return fmt.Errorf("missing repo manager type")
	}
	if _, ok := config.SupportedDbs[c.RepoManagerType]; !ok {
		return fmt.Errorf(
			"repo manager type not supported, must be one of: %s",
			config.SupportedDbs,
		)
	}
	if _, err := c.txSerializer(); err != nil {
		return err
	}
	if _, err := c.selectionMetrics(); err != nil {
		return err
	}
	if _, err := c.repoManager(); err != nil {
		return err
	}

	return nil
}

func (c *AppConfig) RepoManager() ports.RepoManager {
	return c.rm
}

func (c *AppConfig) TxSerializer() ports.TxSerializer {
	return c.serializer
}

func (c *AppConfig) CoinSelectionService() *application.CoinSelectionService {
	return c.coinSelectionService()
}

func (c *AppConfig) CollateralService() *application.CollateralService {
	return c.collateralService()
}

func (c *AppConfig) ChainingService() *application.ChainingService {
	return c.chainingService()
}

func (c *AppConfig) repoManager() (ports.RepoManager, error) {
	if c.rm != nil {
		return c.rm, nil
	}

	switch c.RepoManagerType {
	case "inmemory":
		c.rm = inmemory.NewRepoManager()
		return c.rm, nil
	case "badger":
		if c.RepoManagerConfig == nil {
			return nil, fmt.Errorf("missing repo manager config args")
		}
		datadir, ok := c.RepoManagerConfig.(string)
		if !ok {
			return nil, fmt.Errorf("invalid repo manager config type, must be string")
		}
		rm, err := dbbadger.NewRepoManager(datadir, log.New())
		if err != nil {
			return nil, err
		}
		c.rm = rm
		return c.rm, nil
	case "postgres":
		dbConfig, ok := c.RepoManagerConfig.(postgresdb.DbConfig)
		if !ok {
			return nil, fmt.Errorf("invalid repo manager config type, must be postgresdb.DbConfig")
		}

		rm, err := postgresdb.NewRepoManager(dbConfig)
		if err != nil {
			return nil, err
		}

		c.rm = rm
		return c.rm, nil
	default:
		return nil, fmt.Errorf("unknown repo manager type")
	}
}

func (c *AppConfig) txSerializer() (ports.TxSerializer, error) {
	if c.serializer != nil {
		return c.serializer, nil
	}

	serializer, err := cborserializer.NewTxSerializer()
	if err != nil {
		return nil, err
	}
	c.serializer = serializer
	return c.serializer, nil
}

func (c *AppConfig) selectionMetrics() (*application.Metrics, error) {
	if c.metrics != nil {
		return c.metrics, nil
	}

	metrics, err := application.NewMetrics(c.MetricsRegisterer)
	if err != nil {
		return nil, err
	}
	c.metrics = metrics
	return c.metrics, nil
}

func (c *AppConfig) minUtxoCalculator() ports.MinUtxoCalculator {
	if c.minUtxo != nil {
		return c.minUtxo
	}

	serializer, _ := c.txSerializer()
	c.minUtxo = babbage_minutxo.NewMinUtxoCalculator(
		c.ProtocolParameters.CoinsPerUtxoByte, serializer,
	)
	return c.minUtxo
}

func (c *AppConfig) coinSelectionService() *application.CoinSelectionService {
	if c.coinSelectSvc != nil {
		return c.coinSelectSvc
	}

	seed := c.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	serializer, _ := c.txSerializer()
	metrics, _ := c.selectionMetrics()
	c.coinSelectSvc = application.NewCoinSelectionService(
		c.minUtxoCalculator(), serializer, rand.New(rand.NewSource(seed)), metrics,
	)
	return c.coinSelectSvc
}

func (c *AppConfig) collateralService() *application.CollateralService {
	if c.collateralSvc != nil {
		return c.collateralSvc
	}

	c.collateralSvc = application.NewCollateralService(
		c.coinSelectionService(), c.ProtocolParameters,
	)
	return c.collateralSvc
}

func (c *AppConfig) chainingService() *application.ChainingService {
	if c.chainingSvc != nil {
		return c.chainingSvc
	}

	rm, _ := c.repoManager()
	serializer, _ := c.txSerializer()
	c.chainingSvc = application.NewChainingService(rm, serializer)
	return c.chainingSvc
}
