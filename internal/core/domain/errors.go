package domain

import (
	"errors"
	"fmt"
)

const (
	ReasonInsufficientFunds InsufficientFundsReason = iota
	ReasonTooManyCollateralInputs
	ReasonTooManyCollateralOutputs
	ReasonNoViableCollateral
)

var (
	// ErrInsufficientFunds matches every InsufficientFundsError through
	// errors.Is, whatever its reason.
	ErrInsufficientFunds = errors.New("insufficient funds")

	reasonString = map[InsufficientFundsReason]string{
		ReasonInsufficientFunds:        "InsufficientFunds",
		ReasonTooManyCollateralInputs:  "TooManyCollateralInputs",
		ReasonTooManyCollateralOutputs: "TooManyCollateralOutputs",
		ReasonNoViableCollateral:       "NoViableCollateral",
	}
)

type InsufficientFundsReason int

func (r InsufficientFundsReason) String() string {
	return reasonString[r]
}

// InsufficientFundsError is returned whenever a selection cannot be
// satisfied. Asset is nil when the missing amount is lovelace.
type InsufficientFundsError struct {
	Reason    InsufficientFundsReason
	Asset     *AssetID
	Required  int64
	Available int64
	Limit     int
	Err       error
}

// NewInsufficientFundsError returns an error for a selection that could not
// reach the required amount of the given asset within the inputs limit.
func NewInsufficientFundsError(
	asset *AssetID, required, available int64, limit int,
) *InsufficientFundsError {
	return &InsufficientFundsError{
		Reason:    ReasonInsufficientFunds,
		Asset:     asset,
		Required:  required,
		Available: available,
		Limit:     limit,
	}
}

// NewCollateralError returns an error for a failed collateral selection.
func NewCollateralError(
	reason InsufficientFundsReason, limit int, err error,
) *InsufficientFundsError {
	e := &InsufficientFundsError{Reason: reason, Limit: limit, Err: err}
	var fundsErr *InsufficientFundsError
	if errors.As(err, &fundsErr) {
		e.Asset = fundsErr.Asset
		e.Required = fundsErr.Required
		e.Available = fundsErr.Available
	}
	return e
}

func (e *InsufficientFundsError) Error() string {
	switch e.Reason {
	case ReasonTooManyCollateralInputs:
		return fmt.Sprintf(
			"unable to build collateral: cannot use more than %d collateral "+
				"inputs, please add more ada to your wallet", e.Limit,
		)
	case ReasonTooManyCollateralOutputs:
		return fmt.Sprintf(
			"unable to build collateral: cannot have more than %d collateral "+
				"change outputs", e.Limit,
		)
	case ReasonNoViableCollateral:
		return "unable to build collateral: add another utxo with ~5 ada to " +
			"your wallet"
	default:
		unit := LovelaceUnit
		if e.Asset != nil {
			unit = e.Asset.String()
		}
		msg := fmt.Sprintf(
			"UTxOs have insufficient balance: required %d %s, available %d",
			e.Required, unit, e.Available,
		)
		if e.Limit > 0 {
			msg = fmt.Sprintf("%s (max %d inputs)", msg, e.Limit)
		}
		return msg
	}
}

func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

func (e *InsufficientFundsError) Unwrap() error {
	return e.Err
}

// Shortfall returns how much is missing to reach the required amount.
func (e *InsufficientFundsError) Shortfall() int64 {
	if e.Required <= e.Available {
		return 0
	}
	return e.Required - e.Available
}

// InsufficientFundsReasonOf returns the reason of the given error, if it is
// or wraps an InsufficientFundsError.
func InsufficientFundsReasonOf(err error) (InsufficientFundsReason, bool) {
	var fundsErr *InsufficientFundsError
	if !errors.As(err, &fundsErr) {
		return 0, false
	}
	return fundsErr.Reason, true
}
