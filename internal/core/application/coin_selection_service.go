package application

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/lightningnetwork/lnd/fn/v2"
	log "github.com/sirupsen/logrus"
	"github.com/vulpemventures/cardano-coinselect/internal/core/domain"
	"github.com/vulpemventures/cardano-coinselect/internal/core/ports"
)

const (
	// maxChangeTopUps is the number of times the ada selection is extended
	// when the leftover cannot cover the min-utxo of the change outputs.
	maxChangeTopUps = 3

	stateStart                 = "Start"
	stateRequiredUtxosApplied  = "RequiredUtxosApplied"
	statePerAssetSelection     = "PerAssetSelection"
	stateAdaSelection          = "AdaSelection"
	stateChangeComputed        = "ChangeComputed"
	stateSizeChecked           = "SizeChecked"
	stateDone                  = "Done"
	stateRetryWithLargestFirst = "RetryWithLargestFirst"
	stateFailed                = "Failed"
)

var (
	ErrMissingChangeAddress = fmt.Errorf("missing change address")
	ErrInvalidLimit         = fmt.Errorf("inputs limit must not be negative")
	ErrInvalidMaxTxSize     = fmt.Errorf("max tx size must not be negative")
	ErrInvalidMint          = fmt.Errorf("mint must not hold lovelace")
	ErrInvalidOutputAmount  = fmt.Errorf("output asset quantity must be positive")
	ErrMaxTxSizeExceeded    = fmt.Errorf("coin selection exceeds max tx size")
)

// CoinSelectionService is responsible for funding transactions:
//   - Select the utxos covering the outputs of a transaction, the assets to
//     burn and the fee buffer, with the requested strategy.
//   - Compute the change outputs with the requested change strategy.
//   - Select all the given utxos and send the leftover to a single change
//     output.
//
// The selection is retried once with the largest-first strategy whenever the
// requested one fails or exceeds the max tx size.
type CoinSelectionService struct {
	minUtxo    ports.MinUtxoCalculator
	serializer ports.TxSerializer
	rng        *rand.Rand
	rngLock    *sync.Mutex
	metrics    *Metrics

	log  func(format string, a ...interface{})
	warn func(format string, a ...interface{})
}

func NewCoinSelectionService(
	minUtxo ports.MinUtxoCalculator, serializer ports.TxSerializer,
	rng *rand.Rand, metrics *Metrics,
) *CoinSelectionService {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	logFn := func(format string, a ...interface{}) {
		format = fmt.Sprintf("coin selection service: %s", format)
		log.Debugf(format, a...)
	}
	warnFn := func(format string, a ...interface{}) {
		format = fmt.Sprintf("coin selection service: %s", format)
		log.Warnf(format, a...)
	}
	return &CoinSelectionService{
		minUtxo, serializer, rng, &sync.Mutex{}, metrics, logFn, warnFn,
	}
}

// SelectCoins validates the request and returns the coin selection funding
// it, or an error wrapping domain.ErrInsufficientFunds.
func (s *CoinSelectionService) SelectCoins(
	ctx context.Context, req SelectionRequest,
) (*domain.CoinSelection, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	cs, err := s.CoinSelection(req).Unpack()
	if err != nil {
		return nil, err
	}
	return &cs, nil
}

// CoinSelection runs the selection with the requested strategy and falls
// back to largest-first if it fails or if the resulting inputs and change
// outputs exceed the max tx size.
func (s *CoinSelectionService) CoinSelection(
	req SelectionRequest,
) fn.Result[domain.CoinSelection] {
	s.rngLock.Lock()
	defer s.rngLock.Unlock()

	res := s.attempt(req, req.Strategy)
	if req.Strategy != CoinSelectionStrategyLargestFirst {
		res = orElse(res, func(err error) fn.Result[domain.CoinSelection] {
			cause := fallbackCauseFunds
			if errors.Is(err, ErrMaxTxSizeExceeded) {
				cause = fallbackCauseSize
			} else if !errors.Is(err, domain.ErrInsufficientFunds) {
				return fn.Err[domain.CoinSelection](err)
			}

			s.log("%s: %s", stateRetryWithLargestFirst, err)
			s.metrics.observeFallback(cause)
			return s.attempt(req, CoinSelectionStrategyLargestFirst)
		})
	}

	cs, err := res.Unpack()
	if err != nil {
		s.log("%s: %s", stateFailed, err)
	} else {
		s.log(
			"%s: %d inputs, %d change outputs", stateDone, len(cs.Inputs),
			len(cs.ChangeOutputs),
		)
	}
	s.metrics.observeSelection(req.Strategy, len(cs.SelectedUtxos), err)

	return res
}

// UseAll selects all the required utxos and then the candidates, up to the
// limit, and sends the leftover to a single change output.
func (s *CoinSelectionService) UseAll(
	ctx context.Context, req SelectionRequest,
) (*domain.CoinSelection, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	limit := req.limit()
	utxos := domain.Utxos(append(
		append([]domain.Utxo{}, req.RequiredUtxos...), req.Utxos...,
	)).Dedup()
	if len(utxos) > limit {
		utxos = utxos[:limit]
	}
	s.log("use all: selecting %d utxos", len(utxos))

	requested := req.requestedBalance()
	cs := domain.NewCoinSelection().AddUtxos(utxos...)
	changeCreator := changeCreatorByType[ChangeStrategyBasic](
		s.minUtxo, s.serializer,
	)
	cs, err := changeCreator.CalculateChange(
		cs, requested, req.ChangeAddress, req.FeeBuffer,
	).Unpack()
	if err != nil {
		return nil, err
	}

	cs = cs.BuildInputs()
	if err := cs.Validate(requested); err != nil {
		return nil, err
	}
	return &cs, nil
}

// SelectionSize returns the size in bytes of the inputs and change outputs of
// the given coin selection.
func (s *CoinSelectionService) SelectionSize(cs domain.CoinSelection) int {
	size := 0
	for _, in := range cs.Inputs {
		size += s.serializer.InputSize(in)
	}
	for _, out := range cs.ChangeOutputs {
		size += s.serializer.OutputSize(out)
	}
	return size
}

// attempt runs a whole selection from scratch with the given strategy.
func (s *CoinSelectionService) attempt(
	req SelectionRequest, strategy CoinSelectionStrategy,
) fn.Result[domain.CoinSelection] {
	selector := coinSelectorByType[strategy](s.rng)
	changeCreator := changeCreatorByType[req.ChangeStrategy](
		s.minUtxo, s.serializer,
	)
	limit := req.limit()
	requested := req.requestedBalance()

	s.log(
		"%s: strategy %s, change %s, %d candidates", stateStart, strategy,
		req.ChangeStrategy, len(req.Utxos),
	)

	required := domain.Utxos(req.RequiredUtxos).Dedup()
	available := domain.Utxos(req.Utxos).Without(required.KeySet())
	cs := selector.SelectRequiredInputs(domain.NewCoinSelection(), required)
	if len(cs.SelectedUtxos) > limit {
		return fn.Err[domain.CoinSelection](domain.NewInsufficientFundsError(
			nil, int64(requested.Lovelace+req.FeeBuffer),
			cs.CurrentQuantity(nil), limit,
		))
	}
	s.log("%s: %d required utxos", stateRequiredUtxosApplied, len(required))

	for _, asset := range requested.SortedAssetIDs() {
		asset := asset
		target := requested.AssetQuantity(asset)
		res, err := selector.SelectInputs(
			cs, available, target, &asset, nil, limit,
		).Unpack()
		if err != nil {
			return fn.Err[domain.CoinSelection](err)
		}
		cs, available = res.CoinSelection, res.Available
		s.log(
			"%s: %s %d/%d, %d utxos selected", statePerAssetSelection, asset,
			cs.CurrentQuantity(&asset), target, len(cs.SelectedUtxos),
		)
	}

	adaTarget := requested.Lovelace + req.FeeBuffer + s.mintMinUtxo(req)
	res, err := selector.SelectInputs(
		cs, available, int64(adaTarget), nil, nil, limit,
	).Unpack()
	if err != nil {
		return fn.Err[domain.CoinSelection](err)
	}
	cs, available = res.CoinSelection, res.Available
	s.log(
		"%s: %d/%d lovelace, %d utxos selected", stateAdaSelection,
		cs.CurrentQuantity(nil), adaTarget, len(cs.SelectedUtxos),
	)

	for topUps := 0; ; topUps++ {
		next, err := changeCreator.CalculateChange(
			cs, requested, req.ChangeAddress, req.FeeBuffer,
		).Unpack()
		if err == nil {
			cs = next
			break
		}

		var fundsErr *domain.InsufficientFundsError
		if topUps >= maxChangeTopUps || !errors.As(err, &fundsErr) ||
			fundsErr.Asset != nil || fundsErr.Required <= cs.CurrentQuantity(nil) {
			return fn.Err[domain.CoinSelection](err)
		}

		s.log(
			"%s: change needs %d lovelace, extending selection",
			stateChangeComputed, fundsErr.Required,
		)
		res, err := selector.SelectInputs(
			cs, available, fundsErr.Required, nil, nil, limit,
		).Unpack()
		if err != nil {
			return fn.Err[domain.CoinSelection](err)
		}
		cs, available = res.CoinSelection, res.Available
	}
	s.log("%s: %d change outputs", stateChangeComputed, len(cs.ChangeOutputs))

	cs = cs.BuildInputs()
	if err := cs.Validate(requested); err != nil {
		return fn.Err[domain.CoinSelection](err)
	}

	size := s.SelectionSize(cs)
	s.log("%s: %d bytes", stateSizeChecked, size)
	if req.MaxTxSize > 0 && size > req.MaxTxSize {
		if strategy != CoinSelectionStrategyLargestFirst {
			return fn.Err[domain.CoinSelection](fmt.Errorf(
				"%w: %d bytes, max %d", ErrMaxTxSizeExceeded, size, req.MaxTxSize,
			))
		}
		s.warn(
			"%s: %s selection of %d bytes exceeds max tx size %d", stateSizeChecked,
			strategy, size, req.MaxTxSize,
		)
	}

	return fn.Ok(cs)
}

// mintMinUtxo returns the lovelace needed by an output holding the minted
// assets.
func (s *CoinSelectionService) mintMinUtxo(req SelectionRequest) uint64 {
	minted := req.Mint.PositiveAssets()
	if len(minted) == 0 {
		return 0
	}
	out := domain.NewChangeOutput(req.ChangeAddress)
	out.Value = domain.AssetsBalance(minted)
	return s.minUtxo.MinUtxoLovelace(out)
}

// orElse returns res if successful, the result of fallback otherwise.
func orElse[T any](
	res fn.Result[T], fallback func(err error) fn.Result[T],
) fn.Result[T] {
	if _, err := res.Unpack(); err != nil {
		return fallback(err)
	}
	return res
}
