package registry

import (
	"fmt"
	"strings"

	ethCommon "github.com/ethereum/go-ethereum/common"
)

// ParseAddress parses a 0x-prefixed, 20-byte hex address.
//
// All-lowercase and all-uppercase literals are accepted as-is. Mixed-case
// literals carry an EIP-55 checksum, which must match. The zero address is
// never a valid contract or token.
func ParseAddress(s string) (ethCommon.Address, error) {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return ethCommon.Address{}, fmt.Errorf("%w: '%s' is missing the 0x prefix", ErrInvalidAddress, s)
	}
	if !ethCommon.IsHexAddress(s) {
		return ethCommon.Address{}, fmt.Errorf("%w: '%s' is not 20 hex bytes", ErrInvalidAddress, s)
	}
	digits := s[2:]
	if digits != strings.ToLower(digits) && digits != strings.ToUpper(digits) {
		mixed, err := ethCommon.NewMixedcaseAddressFromString(s)
		if err != nil {
			return ethCommon.Address{}, fmt.Errorf("%w: '%s': %v", ErrInvalidAddress, s, err)
		}
		if !mixed.ValidChecksum() {
			return ethCommon.Address{}, fmt.Errorf("%w: '%s' has a bad checksum, expected %s", ErrInvalidAddress, s, mixed.Address().Hex())
		}
	}
	addr := ethCommon.HexToAddress(s)
	if addr == (ethCommon.Address{}) {
		return ethCommon.Address{}, fmt.Errorf("%w: zero address", ErrInvalidAddress)
	}
	return addr, nil
}

// IsLiteral reports whether ref looks like an address literal rather than a
// registry symbol.
func IsLiteral(ref string) bool {
	return strings.HasPrefix(ref, "0x") || strings.HasPrefix(ref, "0X")
}
