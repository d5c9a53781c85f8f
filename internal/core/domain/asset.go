package domain

import (
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	// LovelaceUnit is the unit used by chain indexers to identify ada amounts.
	LovelaceUnit = "lovelace"
	// PolicyIDLength is the length in bytes of a minting policy id.
	PolicyIDLength = 28
	// MaxAssetNameLength is the max length in bytes of an asset name.
	MaxAssetNameLength = 32
)

var (
	ErrInvalidPolicyID  = fmt.Errorf("policy id must be a 28-byte hex string")
	ErrInvalidAssetName = fmt.Errorf("asset name must be a hex string of at most 32 bytes")
	ErrInvalidAssetUnit = fmt.Errorf("invalid asset unit")
)

// AssetID identifies a native asset class by its hex encoded policy id and
// asset name. It is a comparable value and can be used as map key.
type AssetID struct {
	PolicyID string `json:"policyId"`
	Name     string `json:"name"`
}

func NewAssetID(policyID, name string) (AssetID, error) {
	id := AssetID{strings.ToLower(policyID), strings.ToLower(name)}
	if err := id.Validate(); err != nil {
		return AssetID{}, err
	}
	return id, nil
}

// ParseAssetUnit parses the concatenation of policy id and asset name as
// returned by chain indexers.
func ParseAssetUnit(unit string) (AssetID, error) {
	if len(unit) < PolicyIDLength*2 {
		return AssetID{}, fmt.Errorf("%w: %s", ErrInvalidAssetUnit, unit)
	}
	return NewAssetID(unit[:PolicyIDLength*2], unit[PolicyIDLength*2:])
}

func (id AssetID) Validate() error {
	buf, err := hex.DecodeString(id.PolicyID)
	if err != nil || len(buf) != PolicyIDLength {
		return ErrInvalidPolicyID
	}
	buf, err = hex.DecodeString(id.Name)
	if err != nil || len(buf) > MaxAssetNameLength {
		return ErrInvalidAssetName
	}
	return nil
}

// Unit returns the policy id and asset name concatenated.
func (id AssetID) Unit() string {
	return id.PolicyID + id.Name
}

func (id AssetID) String() string {
	if id.Name == "" {
		return id.PolicyID
	}
	return fmt.Sprintf("%s.%s", id.PolicyID, id.Name)
}

// Less orders asset ids by policy id first and then by name.
func (id AssetID) Less(other AssetID) bool {
	if id.PolicyID != other.PolicyID {
		return id.PolicyID < other.PolicyID
	}
	return id.Name < other.Name
}

// Asset is an amount of a native asset class. Quantity is signed so that the
// same type can express mint (positive) and burn (negative) deltas.
type Asset struct {
	AssetID
	Quantity int64 `json:"quantity"`
}

func NewAsset(policyID, name string, quantity int64) (Asset, error) {
	id, err := NewAssetID(policyID, name)
	if err != nil {
		return Asset{}, err
	}
	return Asset{id, quantity}, nil
}
