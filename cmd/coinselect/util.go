package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/vulpemventures/cardano-coinselect/internal/config"
	"github.com/vulpemventures/cardano-coinselect/internal/core/application"
	"github.com/vulpemventures/cardano-coinselect/internal/core/domain"
)

const adaPrecision = 6

var (
	colorRed = string("\033[31m")
)

func readRequest(path string, v interface{}) error {
	if path == "" {
		return fmt.Errorf("missing request file path")
	}
	buf, err := os.ReadFile(cleanAndExpandPath(path))
	if err != nil {
		return fmt.Errorf("failed to read request file: %s", err)
	}
	if err := json.Unmarshal(buf, v); err != nil {
		return fmt.Errorf("failed to parse request file: %s", err)
	}
	return nil
}

func printJSON(v interface{}) error {
	buf, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal response: %s", err)
	}
	fmt.Println(string(buf))
	return nil
}

func printErr(err error) {
	msg := fmt.Sprintf("%s%s", colorRed, capitalize(err.Error()))
	fmt.Fprintln(os.Stderr, msg)
}

func capitalize(s string) string {
	if len(s) == 0 {
		return s
	}
	ss := strings.ToUpper(s[0:1])
	ss += s[1:]
	return ss
}

// formatAda returns the given lovelace amount in ada.
func formatAda(lovelace uint64) string {
	return decimal.NewFromInt(int64(lovelace)).Shift(-adaPrecision).
		StringFixed(adaPrecision)
}

// parseAda returns the lovelace amount of the given ada amount.
func parseAda(ada string) (uint64, error) {
	amount, err := decimal.NewFromString(ada)
	if err != nil {
		return 0, fmt.Errorf("invalid ada amount %s", ada)
	}
	lovelace := amount.Shift(adaPrecision)
	if lovelace.IsNegative() || !lovelace.IsInteger() {
		return 0, fmt.Errorf(
			"ada amount must be positive with at most %d decimals", adaPrecision,
		)
	}
	return uint64(lovelace.IntPart()), nil
}

func parseCoinSelectionStrategy(
	str string,
) (application.CoinSelectionStrategy, error) {
	if str == "" {
		str = config.GetString(config.CoinSelectionStrategyKey)
	}
	return application.ParseCoinSelectionStrategy(str)
}

func parseChangeStrategy(str string) (application.ChangeStrategy, error) {
	if str == "" {
		str = config.GetString(config.ChangeStrategyKey)
	}
	return application.ParseChangeStrategy(str)
}

func parseTxChainingMode(str string) (domain.TxChainingMode, error) {
	if str == "" {
		str = config.GetString(config.TxChainingModeKey)
	}
	return domain.ParseTxChainingMode(str)
}

func parseUtxoKeys(args []string) ([]domain.UtxoKey, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("missing utxo keys")
	}
	keys := make([]domain.UtxoKey, 0, len(args))
	for _, arg := range args {
		key, err := domain.ParseUtxoKey(arg)
		if err != nil {
			return nil, fmt.Errorf("%s: %s", arg, err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func cleanAndExpandPath(path string) string {
	if path == "" {
		return ""
	}

	// Expand initial ~ to OS specific home directory.
	if strings.HasPrefix(path, "~") {
		var homeDir string
		u, err := user.Current()
		if err == nil {
			homeDir = u.HomeDir
		} else {
			homeDir = os.Getenv("HOME")
		}

		path = strings.Replace(path, "~", homeDir, 1)
	}

	return filepath.Clean(os.ExpandEnv(path))
}

func formatVersion() string {
	return fmt.Sprintf(
		"\nVersion: %s\nCommit: %s\nDate: %s", version, commit, date,
	)
}
