package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/vulpemventures/cardano-coinselect/internal/core/domain"
)

var (
	selectRequestPath string
	selectUseAll      bool

	selectCmd = &cobra.Command{
		Use:   "select",
		Short: "select the inputs and the change of a transaction",
		Long: "this command lets you select the utxos funding the outputs of a " +
			"transaction, the assets to burn and the fee, and get the change " +
			"outputs for the leftover. The request is read from a JSON file " +
			"({outputs, utxos, changeAddress, mint, requiredUtxos, mempool, " +
			"limit, feeBuffer, maxTxSize, strategy, changeStrategy, chainingMode})",
		RunE: selectCoins,
	}
)

func init() {
	selectCmd.Flags().StringVarP(
		&selectRequestPath, "request", "r", "", "path of the JSON request file",
	)
	selectCmd.Flags().BoolVar(
		&selectUseAll, "use-all", false,
		"use this flag to spend all the given utxos up to the limit",
	)
	selectCmd.MarkFlagRequired("request")
}

func selectCoins(_ *cobra.Command, _ []string) error {
	req := selectionRequest{}
	if err := readRequest(selectRequestPath, &req); err != nil {
		return err
	}

	ctx := context.Background()
	candidates, err := filterSelectionCandidates(ctx, req)
	if err != nil {
		return err
	}
	req.Utxos = candidates

	selectionReq, err := req.toDomain()
	if err != nil {
		return err
	}

	svc := appCfg.CoinSelectionService()
	var cs *domain.CoinSelection
	if selectUseAll {
		cs, err = svc.UseAll(ctx, selectionReq)
	} else {
		cs, err = svc.SelectCoins(ctx, selectionReq)
	}
	if err != nil {
		return err
	}

	return printJSON(newSelectionResponse(*cs, svc.SelectionSize(*cs)))
}

func filterSelectionCandidates(
	ctx context.Context, req selectionRequest,
) ([]domain.Utxo, error) {
	mode, err := req.chainingMode()
	if err != nil {
		return nil, err
	}
	return appCfg.ChainingService().FilterCandidates(
		ctx, req.ChangeAddress, req.Utxos, req.Mempool, mode,
	)
}
