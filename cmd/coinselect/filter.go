package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vulpemventures/cardano-coinselect/internal/core/application"
)

var (
	filterRequestPath string

	filterCmd = &cobra.Command{
		Use:   "filter",
		Short: "filter the candidate utxos of a wallet with pending transactions",
		Long: "this command lets you drop the candidates spent or created by " +
			"transactions in the mempool or by transactions built by the " +
			"wallet, and optionally chain the pending outputs paying to the " +
			"wallet address. The utxos spent by the given transactions are " +
			"marked as spent. The request is read from a JSON file ({address, " +
			"candidates, mempool, transactions, mode})",
		RunE: filterCandidates,
	}
)

func init() {
	filterCmd.Flags().StringVarP(
		&filterRequestPath, "request", "r", "", "path of the JSON request file",
	)
	filterCmd.MarkFlagRequired("request")
}

func filterCandidates(_ *cobra.Command, _ []string) error {
	req := filterRequest{}
	if err := readRequest(filterRequestPath, &req); err != nil {
		return err
	}
	if req.Address == "" {
		return fmt.Errorf("missing address")
	}

	mode, err := parseTxChainingMode(req.Mode)
	if err != nil {
		return err
	}
	txs := make([]application.BuiltTransaction, 0, len(req.Transactions))
	for i, tx := range req.Transactions {
		builtTx, err := tx.toDomain()
		if err != nil {
			return fmt.Errorf("transaction %d: %s", i, err)
		}
		txs = append(txs, builtTx)
	}

	ctx := context.Background()
	svc := appCfg.ChainingService()

	candidates := req.Candidates
	if len(txs) > 0 {
		candidates, err = svc.CalculateNewCandidates(
			ctx, req.Address, candidates, txs,
		)
		if err != nil {
			return err
		}
	}
	candidates, err = svc.FilterCandidates(
		ctx, req.Address, candidates, req.Mempool, mode,
	)
	if err != nil {
		return err
	}

	return printJSON(newFilterResponse(candidates))
}
