package main

import (
	"encoding/hex"
	"fmt"

	"github.com/vulpemventures/cardano-coinselect/internal/config"
	"github.com/vulpemventures/cardano-coinselect/internal/core/application"
	"github.com/vulpemventures/cardano-coinselect/internal/core/domain"
)

type selectionRequest struct {
	Outputs        []domain.TransactionOutput  `json:"outputs"`
	Utxos          []domain.Utxo               `json:"utxos"`
	ChangeAddress  string                      `json:"changeAddress"`
	Mint           []domain.Asset              `json:"mint,omitempty"`
	RequiredUtxos  []domain.Utxo               `json:"requiredUtxos,omitempty"`
	Mempool        []domain.MempoolTransaction `json:"mempool,omitempty"`
	Limit          int                         `json:"limit,omitempty"`
	FeeBuffer      *uint64                     `json:"feeBuffer,omitempty"`
	MaxTxSize      *int                        `json:"maxTxSize,omitempty"`
	Strategy       string                      `json:"strategy,omitempty"`
	ChangeStrategy string                      `json:"changeStrategy,omitempty"`
	ChainingMode   string                      `json:"chainingMode,omitempty"`
}

func (r selectionRequest) chainingMode() (domain.TxChainingMode, error) {
	return parseTxChainingMode(r.ChainingMode)
}

func (r selectionRequest) toDomain() (application.SelectionRequest, error) {
	strategy, err := parseCoinSelectionStrategy(r.Strategy)
	if err != nil {
		return application.SelectionRequest{}, err
	}
	changeStrategy, err := parseChangeStrategy(r.ChangeStrategy)
	if err != nil {
		return application.SelectionRequest{}, err
	}

	limit := r.Limit
	if limit == 0 {
		limit = config.GetInt(config.SelectionLimitKey)
	}
	feeBuffer := config.GetUint64(config.FeeBufferKey)
	if r.FeeBuffer != nil {
		feeBuffer = *r.FeeBuffer
	}
	maxTxSize := config.GetInt(config.MaxTxSizeKey)
	if r.MaxTxSize != nil {
		maxTxSize = *r.MaxTxSize
	}

	return application.SelectionRequest{
		Outputs:        r.Outputs,
		Utxos:          r.Utxos,
		ChangeAddress:  r.ChangeAddress,
		Mint:           domain.AssetsBalance(r.Mint),
		RequiredUtxos:  r.RequiredUtxos,
		Limit:          limit,
		FeeBuffer:      feeBuffer,
		MaxTxSize:      maxTxSize,
		Strategy:       strategy,
		ChangeStrategy: changeStrategy,
	}, nil
}

type selectionResponse struct {
	domain.CoinSelection
	SelectedAda string `json:"selectedAda"`
	ChangeAda   string `json:"changeAda"`
	Size        int    `json:"size"`
}

func newSelectionResponse(
	cs domain.CoinSelection, size int,
) selectionResponse {
	return selectionResponse{
		CoinSelection: cs,
		SelectedAda:   formatAda(cs.SelectedBalance().Lovelace),
		ChangeAda:     formatAda(cs.ChangeBalance().Lovelace),
		Size:          size,
	}
}

type collateralRequest struct {
	Utxos           []domain.Utxo     `json:"utxos"`
	ChangeAddress   string            `json:"changeAddress"`
	Amount          string            `json:"amount,omitempty"`
	Mint            []domain.Asset    `json:"mint,omitempty"`
	RequiredUtxos   []domain.Utxo     `json:"requiredUtxos,omitempty"`
	PinnedUtxos     []domain.Utxo     `json:"pinnedUtxos,omitempty"`
	FeeBuffer       *uint64           `json:"feeBuffer,omitempty"`
	EstimatedTxSize int               `json:"estimatedTxSize,omitempty"`
	Strategy        string            `json:"strategy,omitempty"`
	Selection       *selectionRequest `json:"selection,omitempty"`
}

func (r collateralRequest) toDomain() (application.CollateralRequest, error) {
	strategy, err := parseCoinSelectionStrategy(r.Strategy)
	if err != nil {
		return application.CollateralRequest{}, err
	}

	amount := uint64(config.GetInt64(config.CollateralAmountKey))
	if r.Amount != "" {
		if amount, err = parseAda(r.Amount); err != nil {
			return application.CollateralRequest{}, err
		}
	}
	feeBuffer := config.GetUint64(config.FeeBufferKey)
	if r.FeeBuffer != nil {
		feeBuffer = *r.FeeBuffer
	}

	return application.CollateralRequest{
		Utxos:            r.Utxos,
		ChangeAddress:    r.ChangeAddress,
		CollateralAmount: amount,
		Mint:             domain.AssetsBalance(r.Mint),
		RequiredUtxos:    r.RequiredUtxos,
		PinnedUtxos:      r.PinnedUtxos,
		FeeBuffer:        feeBuffer,
		MaxTxSize:        config.GetInt(config.MaxTxSizeKey),
		EstimatedTxSize:  r.EstimatedTxSize,
		Strategy:         strategy,
	}, nil
}

type collateralResponse struct {
	Selection          *selectionResponse              `json:"selection,omitempty"`
	Collateral         application.CollateralSelection `json:"collateral"`
	AmountAda          string                          `json:"amountAda"`
	TotalCollateralAda string                          `json:"totalCollateralAda"`
}

func newCollateralResponse(
	collateral application.CollateralSelection,
) collateralResponse {
	return collateralResponse{
		Collateral:         collateral,
		AmountAda:          formatAda(collateral.Amount),
		TotalCollateralAda: formatAda(collateral.TotalCollateral),
	}
}

type builtTransaction struct {
	Body    string                     `json:"body,omitempty"`
	Inputs  []domain.TransactionInput  `json:"inputs"`
	Outputs []domain.TransactionOutput `json:"outputs"`
	Fee     uint64                     `json:"fee"`
}

func (t builtTransaction) toDomain() (application.BuiltTransaction, error) {
	body, err := hex.DecodeString(t.Body)
	if err != nil {
		return application.BuiltTransaction{}, fmt.Errorf(
			"invalid transaction body, must be in hex format",
		)
	}
	return application.BuiltTransaction{
		Body:    body,
		Inputs:  t.Inputs,
		Outputs: t.Outputs,
		Fee:     t.Fee,
	}, nil
}

type filterRequest struct {
	Address      string                      `json:"address"`
	Candidates   []domain.Utxo               `json:"candidates"`
	Mempool      []domain.MempoolTransaction `json:"mempool,omitempty"`
	Transactions []builtTransaction          `json:"transactions,omitempty"`
	Mode         string                      `json:"mode,omitempty"`
}

type filterResponse struct {
	Candidates []domain.Utxo `json:"candidates"`
	TotalAda   string        `json:"totalAda"`
}

func newFilterResponse(candidates []domain.Utxo) filterResponse {
	return filterResponse{
		Candidates: candidates,
		TotalAda:   formatAda(domain.AggregateUtxos(candidates).Lovelace),
	}
}
