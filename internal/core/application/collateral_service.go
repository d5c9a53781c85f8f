package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/lightningnetwork/lnd/fn/v2"
	log "github.com/sirupsen/logrus"
	"github.com/vulpemventures/cardano-coinselect/internal/core/domain"
)

const (
	MaxCollateralInputs     = 3
	MaxCollateralOutputs    = 1
	DefaultCollateralAmount = 4_000_000

	// collateralFeeMultiplier is applied to the fee of the transaction when
	// estimating the collateral amount.
	collateralFeeMultiplier = 4
)

// CollateralRequest holds the arguments of a collateral selection.
//   - Utxos - the candidate utxos. Those locked by a script are skipped.
//   - ChangeAddress - the address receiving the collateral return.
//   - CollateralAmount - (optional) the lovelace to pledge. If not set, it is
//     estimated from the tx size and the number of script executions.
//   - Mint - (optional) the minted assets, one execution per policy.
//   - RequiredUtxos - (optional) the script inputs of the transaction, one
//     execution each.
//   - PinnedUtxos - (optional) utxos that must be used as collateral.
//   - EstimatedTxSize - (optional) size in bytes of the transaction, defaults
//     to the max tx size.
type CollateralRequest struct {
	Utxos            []domain.Utxo
	ChangeAddress    string
	CollateralAmount uint64
	Mint             domain.Balance
	RequiredUtxos    []domain.Utxo
	PinnedUtxos      []domain.Utxo
	FeeBuffer        uint64
	MaxTxSize        int
	EstimatedTxSize  int
	Strategy         CoinSelectionStrategy
}

// CollateralSelection is the outcome of a collateral selection. The change
// outputs of the coin selection are the collateral return.
type CollateralSelection struct {
	domain.CoinSelection
	Amount          uint64 `json:"amount"`
	TotalCollateral uint64 `json:"totalCollateral"`
}

// CollateralService is responsible for selecting the collateral of
// transactions executing scripts. The collateral is made of at most
// MaxCollateralInputs utxos locked by keys, and is returned to at most
// MaxCollateralOutputs change outputs.
type CollateralService struct {
	coinSelectionSvc *CoinSelectionService
	params           domain.ProtocolParameters

	log func(format string, a ...interface{})
}

func NewCollateralService(
	coinSelectionSvc *CoinSelectionService, params domain.ProtocolParameters,
) *CollateralService {
	logFn := func(format string, a ...interface{}) {
		format = fmt.Sprintf("collateral service: %s", format)
		log.Debugf(format, a...)
	}
	return &CollateralService{coinSelectionSvc, params, logFn}
}

// SelectCollateral selects the collateral inputs and the collateral return
// output for a transaction.
func (s *CollateralService) SelectCollateral(
	ctx context.Context, req CollateralRequest,
) (*CollateralSelection, error) {
	if len(req.ChangeAddress) == 0 {
		return nil, ErrMissingChangeAddress
	}
	if len(req.PinnedUtxos) > MaxCollateralInputs {
		return nil, domain.NewCollateralError(
			domain.ReasonTooManyCollateralInputs, MaxCollateralInputs, nil,
		)
	}

	amount := s.CollateralAmount(req)
	candidates := make([]domain.Utxo, 0, len(req.Utxos))
	for _, u := range req.Utxos {
		if domain.IsSmartContractAddress(u.OutputAddress) {
			continue
		}
		candidates = append(candidates, u)
	}
	s.log(
		"selecting %d lovelace of collateral among %d candidates", amount,
		len(candidates),
	)

	target := domain.NewChangeOutput(req.ChangeAddress)
	target.Purpose = domain.OutputPurposeCollateral
	target.Value = domain.NewBalance(amount)

	cs, err := s.coinSelectionSvc.CoinSelection(SelectionRequest{
		Outputs:        []domain.TransactionOutput{target},
		Utxos:          candidates,
		ChangeAddress:  req.ChangeAddress,
		RequiredUtxos:  req.PinnedUtxos,
		Limit:          MaxCollateralInputs,
		FeeBuffer:      req.FeeBuffer,
		MaxTxSize:      req.MaxTxSize,
		Strategy:       req.Strategy,
		ChangeStrategy: ChangeStrategyBasic,
	}).Unpack()
	if err != nil {
		if !errors.Is(err, domain.ErrInsufficientFunds) {
			return nil, err
		}
		return nil, collateralError(err, amount+req.FeeBuffer, candidates, req.PinnedUtxos)
	}

	if len(cs.SelectedUtxos) > MaxCollateralInputs {
		return nil, domain.NewCollateralError(
			domain.ReasonTooManyCollateralInputs, MaxCollateralInputs, nil,
		)
	}
	if len(cs.ChangeOutputs) > MaxCollateralOutputs {
		return nil, domain.NewCollateralError(
			domain.ReasonTooManyCollateralOutputs, MaxCollateralOutputs, nil,
		)
	}

	for i := range cs.ChangeOutputs {
		cs.ChangeOutputs[i].Purpose = domain.OutputPurposeCollateral
	}
	selected := cs.SelectedBalance().Lovelace
	returned := cs.ChangeBalance().Lovelace

	return &CollateralSelection{
		CoinSelection:   cs,
		Amount:          amount,
		TotalCollateral: selected - returned,
	}, nil
}

// SelectWithCollateral funds a transaction and then selects its collateral
// among the utxos left, within the size left by the coin selection.
func (s *CollateralService) SelectWithCollateral(
	ctx context.Context, selectionReq SelectionRequest,
	collateralReq CollateralRequest,
) (*domain.CoinSelection, *CollateralSelection, error) {
	cs, err := s.coinSelectionSvc.SelectCoins(ctx, selectionReq)
	if err != nil {
		return nil, nil, err
	}

	if selectionReq.MaxTxSize > 0 {
		size := s.coinSelectionSvc.SelectionSize(*cs)
		if size >= selectionReq.MaxTxSize {
			return nil, nil, fmt.Errorf(
				"%w: no room left for collateral", ErrMaxTxSizeExceeded,
			)
		}
		collateralReq.MaxTxSize = selectionReq.MaxTxSize - size
	}

	collateralReq.Utxos = domain.Utxos(collateralReq.Utxos).Without(
		cs.SelectedKeys(),
	)
	collateral, err := s.SelectCollateral(ctx, collateralReq)
	if err != nil {
		return nil, nil, err
	}
	return cs, collateral, nil
}

// CollateralAmount returns the lovelace to pledge as collateral: the given
// amount if any, otherwise an estimate covering the fee of the transaction
// and the max cost of its script executions, never lower than
// DefaultCollateralAmount.
func (s *CollateralService) CollateralAmount(req CollateralRequest) uint64 {
	if req.CollateralAmount > 0 {
		return req.CollateralAmount
	}

	size := req.EstimatedTxSize
	if size <= 0 {
		size = s.params.MaxTxSize
	}

	policies := fn.NewSet[string]()
	for _, a := range req.Mint.Assets {
		policies.Add(a.PolicyID)
	}
	executions := uint64(len(policies) + len(req.RequiredUtxos))

	amount := collateralFeeMultiplier*s.params.Fee(size) +
		executions*s.params.MaxExecutionFee()
	return max(amount, DefaultCollateralAmount)
}

// collateralError tells apart a collateral that would need too many inputs
// from a wallet that cannot afford it at all.
func collateralError(
	err error, required uint64, candidates, pinned []domain.Utxo,
) error {
	available := domain.Utxos(append(
		append([]domain.Utxo{}, pinned...), candidates...,
	)).Dedup().Balance().Lovelace
	if available >= required {
		return domain.NewCollateralError(
			domain.ReasonTooManyCollateralInputs, MaxCollateralInputs, err,
		)
	}
	return domain.NewCollateralError(
		domain.ReasonNoViableCollateral, MaxCollateralInputs, err,
	)
}
