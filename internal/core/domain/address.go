package domain

import "github.com/btcsuite/btcd/btcutil/bech32"

// Shelley address header types whose payment credential is a script hash.
var scriptAddressTypes = map[byte]bool{
	0x1: true, // script, key stake
	0x3: true, // script, script stake
	0x5: true, // script, pointer
	0x7: true, // script, enterprise
	0xf: true, // script stake address
}

// AddressBytes returns the raw bytes of a bech32 encoded address.
func AddressBytes(address string) ([]byte, error) {
	_, data, err := bech32.DecodeNoLimit(address)
	if err != nil {
		return nil, err
	}
	return bech32.ConvertBits(data, 5, 8, false)
}

// IsSmartContractAddress returns whether the given bech32 address is locked
// by a script.
func IsSmartContractAddress(address string) bool {
	buf, err := AddressBytes(address)
	if err != nil || len(buf) == 0 {
		return false
	}
	return scriptAddressTypes[buf[0]>>4]
}
