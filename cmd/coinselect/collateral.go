package main

import (
	"context"

	"github.com/spf13/cobra"
)

var (
	collateralRequestPath string

	collateralCmd = &cobra.Command{
		Use:   "collateral",
		Short: "select the collateral of a transaction executing scripts",
		Long: "this command lets you select at most 3 utxos locked by keys to " +
			"use as collateral, and get the collateral return output. If the " +
			"request has a selection, the transaction is funded first and the " +
			"collateral is selected among the utxos left. The request is read " +
			"from a JSON file ({utxos, changeAddress, amount, mint, " +
			"requiredUtxos, pinnedUtxos, feeBuffer, estimatedTxSize, strategy, " +
			"selection})",
		RunE: selectCollateral,
	}
)

func init() {
	collateralCmd.Flags().StringVarP(
		&collateralRequestPath, "request", "r", "",
		"path of the JSON request file",
	)
	collateralCmd.MarkFlagRequired("request")
}

func selectCollateral(_ *cobra.Command, _ []string) error {
	req := collateralRequest{}
	if err := readRequest(collateralRequestPath, &req); err != nil {
		return err
	}

	collateralReq, err := req.toDomain()
	if err != nil {
		return err
	}

	ctx := context.Background()
	svc := appCfg.CollateralService()

	if req.Selection == nil {
		collateral, err := svc.SelectCollateral(ctx, collateralReq)
		if err != nil {
			return err
		}
		return printJSON(newCollateralResponse(*collateral))
	}

	candidates, err := filterSelectionCandidates(ctx, *req.Selection)
	if err != nil {
		return err
	}
	req.Selection.Utxos = candidates
	selectionReq, err := req.Selection.toDomain()
	if err != nil {
		return err
	}

	cs, collateral, err := svc.SelectWithCollateral(
		ctx, selectionReq, collateralReq,
	)
	if err != nil {
		return err
	}

	resp := newCollateralResponse(*collateral)
	selection := newSelectionResponse(
		*cs, appCfg.CoinSelectionService().SelectionSize(*cs),
	)
	resp.Selection = &selection
	return printJSON(resp)
}
