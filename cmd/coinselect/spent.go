package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	spendingTxHash string

	spentMarkCmd = &cobra.Command{
		Use:   "mark <tx hash>#<index>...",
		Short: "mark one or more utxos as spent",
		Long: "this command lets you mark the utxos spent by a transaction " +
			"built by the wallet, so that they are not selected again until " +
			"released",
		RunE: spentMark,
	}
	spentReleaseCmd = &cobra.Command{
		Use:   "release <tx hash>#<index>...",
		Short: "release one or more utxos previously marked as spent",
		Long: "this command lets you make the given utxos available again, " +
			"for example if the spending transaction was rejected",
		RunE: spentRelease,
	}
	spentListCmd = &cobra.Command{
		Use:   "list",
		Short: "list the utxos marked as spent",
		RunE:  spentList,
	}
	spentCmd = &cobra.Command{
		Use:   "spent",
		Short: "keep track of the utxos spent by pending transactions",
		Long: "this command lets you manage the utxos spent by transactions " +
			"built by the wallet and not yet visible in the mempool",
	}
)

func init() {
	spentMarkCmd.Flags().StringVar(
		&spendingTxHash, "tx-hash", "", "hash of the spending transaction",
	)
	spentMarkCmd.MarkFlagRequired("tx-hash")

	spentCmd.AddCommand(spentMarkCmd, spentReleaseCmd, spentListCmd)
}

func spentMark(_ *cobra.Command, args []string) error {
	keys, err := parseUtxoKeys(args)
	if err != nil {
		return err
	}

	count, err := appCfg.ChainingService().MarkSpent(
		context.Background(), keys, spendingTxHash,
	)
	if err != nil {
		return err
	}
	fmt.Printf("marked %d utxos as spent\n", count)
	return nil
}

func spentRelease(_ *cobra.Command, args []string) error {
	keys, err := parseUtxoKeys(args)
	if err != nil {
		return err
	}

	count, err := appCfg.ChainingService().Release(context.Background(), keys)
	if err != nil {
		return err
	}
	fmt.Printf("released %d utxos\n", count)
	return nil
}

func spentList(_ *cobra.Command, _ []string) error {
	spentUtxos, err := appCfg.ChainingService().SpentUtxos(context.Background())
	if err != nil {
		return err
	}

	type spentUtxo struct {
		Utxo           string `json:"utxo"`
		SpendingTxHash string `json:"spendingTxHash"`
		SpentAt        string `json:"spentAt"`
	}
	list := make([]spentUtxo, 0, len(spentUtxos))
	for _, u := range spentUtxos {
		list = append(list, spentUtxo{
			Utxo:           u.UtxoKey.String(),
			SpendingTxHash: u.SpendingTxHash,
			SpentAt:        time.Unix(u.SpentAt, 0).Format(time.RFC3339),
		})
	}
	return printJSON(list)
}
