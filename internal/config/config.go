package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/spf13/viper"
)

const (
	// DatadirKey is the key to customize the coinselect datadir.
	DatadirKey = "DATADIR"
	// DatabaseTypeKey is the key to customize the type of database used to
	// track the utxos spent by the wallet.
	DatabaseTypeKey = "DATABASE_TYPE"
	// LogLevelKey is the key to customize the log level to catch more specific
	// or more high level logs.
	LogLevelKey = "LOG_LEVEL"
	// SelectionLimitKey is the key to customize the max number of inputs a
	// selection can be made of.
	SelectionLimitKey = "SELECTION_LIMIT"
	// FeeBufferKey is the key to customize the amount of lovelace reserved in
	// change to pay for the transaction fee.
	FeeBufferKey = "FEE_BUFFER"
	// MaxTxSizeKey is the key to customize the max size in bytes of the inputs
	// and change outputs of a selection. Zero disables the check.
	MaxTxSizeKey = "MAX_TX_SIZE"
	// CoinSelectionStrategyKey is the key to customize the default strategy
	// used to select inputs.
	CoinSelectionStrategyKey = "COIN_SELECTION_STRATEGY"
	// ChangeStrategyKey is the key to customize the default strategy used to
	// create change outputs.
	ChangeStrategyKey = "CHANGE_STRATEGY"
	// TxChainingModeKey is the key to customize how pending transactions are
	// taken into account when filtering candidate utxos.
	TxChainingModeKey = "TX_CHAINING_MODE"
	// CollateralAmountKey is the key to set a fixed collateral amount instead
	// of estimating it from the transaction.
	CollateralAmountKey = "COLLATERAL_AMOUNT"
	// CoinsPerUtxoByteKey is the key to customize the protocol parameter used
	// to calculate the min ada of an output.
	CoinsPerUtxoByteKey = "COINS_PER_UTXO_BYTE"
	// MinFeeAKey is the key to customize the linear fee coefficient.
	MinFeeAKey = "MIN_FEE_A"
	// MinFeeBKey is the key to customize the linear fee constant.
	MinFeeBKey = "MIN_FEE_B"
	// RandomSeedKey is the key to make random selections reproducible. Zero
	// seeds the generator with the current time.
	RandomSeedKey = "RANDOM_SEED"
	// NoMetricsKey is the key to disable dumping selection metrics.
	NoMetricsKey = "NO_METRICS"

	// DbLocation is the folder inside the datadir containing db files.
	DbLocation = "db"
	// MetricsLocation is the folder inside the datadir containing metrics
	// dumps.
	MetricsLocation = "stats"
	// DbUserKey is user used to connect to db
	DbUserKey = "DB_USER"
	// DbPassKey is password used to connect to db
	DbPassKey = "DB_PASS"
	// DbHostKey is host where db is installed
	DbHostKey = "DB_HOST"
	// DbPortKey is port on which db is listening
	DbPortKey = "DB_PORT"
	// DbNameKey is name of database
	DbNameKey = "DB_NAME"
	// DbMigrationPath is the path to migration files
	DbMigrationPath = "DB_MIGRATION_PATH"
)

var (
	vip *viper.Viper

	defaultDatadir               = btcutil.AppDataDir("coinselect", false)
	defaultDbType                = "badger"
	defaultLogLevel              = 4
	defaultSelectionLimit        = 50
	defaultFeeBuffer             = 1_000_000
	defaultMaxTxSize             = 12000
	defaultCoinSelectionStrategy = "optimized-random-improve"
	defaultChangeStrategy        = "multi-split"
	defaultTxChainingMode        = "filter"
	defaultCoinsPerUtxoByte      = 4310
	defaultMinFeeA               = 44
	defaultMinFeeB               = 155381

	SupportedDbs = supportedType{
		"badger":   {},
		"inmemory": {},
		"postgres": {},
	}
)

func init() {
	vip = viper.New()
	vip.SetEnvPrefix("COINSELECT")
	vip.AutomaticEnv()

	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(DatabaseTypeKey, defaultDbType)
	vip.SetDefault(LogLevelKey, defaultLogLevel)
	vip.SetDefault(SelectionLimitKey, defaultSelectionLimit)
	vip.SetDefault(FeeBufferKey, defaultFeeBuffer)
	vip.SetDefault(MaxTxSizeKey, defaultMaxTxSize)
	vip.SetDefault(CoinSelectionStrategyKey, defaultCoinSelectionStrategy)
	vip.SetDefault(ChangeStrategyKey, defaultChangeStrategy)
	vip.SetDefault(TxChainingModeKey, defaultTxChainingMode)
	vip.SetDefault(CoinsPerUtxoByteKey, defaultCoinsPerUtxoByte)
	vip.SetDefault(MinFeeAKey, defaultMinFeeA)
	vip.SetDefault(MinFeeBKey, defaultMinFeeB)
	vip.SetDefault(NoMetricsKey, false)
	vip.SetDefault(DbUserKey, "root")
	vip.SetDefault(DbPassKey, "secret")
	vip.SetDefault(DbHostKey, "127.0.0.1")
	vip.SetDefault(DbPortKey, 5432)
	vip.SetDefault(DbNameKey, "coinselect-db")
	vip.SetDefault(DbMigrationPath, "file://internal/infrastructure/storage/db/postgres/migration")

	if err := validate(); err != nil {
		log.Fatalf("invalid config: %s", err)
	}
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("datadir must not be null")
	}

	dbType := GetString(DatabaseTypeKey)
	if _, ok := SupportedDbs[dbType]; !ok {
		return fmt.Errorf("unsupported database type, must be one of %s", SupportedDbs)
	}

	if GetInt(SelectionLimitKey) <= 0 {
		return fmt.Errorf("selection limit must be positive")
	}
	if GetInt(FeeBufferKey) < 0 {
		return fmt.Errorf("fee buffer must not be negative")
	}
	if GetInt(MaxTxSizeKey) < 0 {
		return fmt.Errorf("max tx size must not be negative")
	}
	if GetInt(CollateralAmountKey) < 0 {
		return fmt.Errorf("collateral amount must not be negative")
	}
	if GetInt(CoinsPerUtxoByteKey) <= 0 {
		return fmt.Errorf("coins per utxo byte must be positive")
	}

	return nil
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetInt64(key string) int64 {
	return vip.GetInt64(key)
}

func GetUint64(key string) uint64 {
	return vip.GetUint64(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

func Set(key string, val interface{}) {
	vip.Set(key, val)
}

func Unset(key string) {
	vip.Set(key, nil)
}

func IsSet(key string) bool {
	return vip.IsSet(key)
}

// InitDatadir creates the folders used by the persistent db and the metrics
// dumps, if not disabled.
func InitDatadir() error {
	datadir := GetDatadir()
	if GetString(DatabaseTypeKey) == "badger" {
		if err := makeDirectoryIfNotExists(filepath.Join(datadir, DbLocation)); err != nil {
			return err
		}
	}

	if GetBool(NoMetricsKey) {
		return nil
	}
	return makeDirectoryIfNotExists(filepath.Join(datadir, MetricsLocation))
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}

type supportedType map[string]struct{}

func (t supportedType) String() string {
	types := make([]string, 0, len(t))
	for tt := range t {
		types = append(types, tt)
	}
	return strings.Join(types, " | ")
}
