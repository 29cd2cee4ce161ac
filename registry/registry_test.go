package registry

import (
	"errors"
	"testing"

	ethCommon "github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/farmkit/stratreg/common"
)

func TestDefaultsResolve(t *testing.T) {
	tokens := DefaultTokens()
	addrs := DefaultAddresses()

	usdc, err := tokens.Resolve(common.ChainNameMainnet, TokenUSDC)
	require.NoError(t, err)
	require.Equal(t, "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", usdc.Hex())

	router, err := addrs.Resolve(common.ChainNameMainnet, AddrUniswapV3Router)
	require.NoError(t, err)
	require.Equal(t, "0xE592427A0AEce92De3Edee1F18E0157C05861564", router.Hex())

	// The 3Crv token and the THREE_CRV role point at the same contract.
	tok3crv, err := tokens.Resolve(common.ChainNameMainnet, Token3Crv)
	require.NoError(t, err)
	role3crv, err := addrs.Resolve(common.ChainNameMainnet, AddrThreeCrv)
	require.NoError(t, err)
	require.Equal(t, tok3crv, role3crv)
}

func TestResolveErrors(t *testing.T) {
	tokens := DefaultTokens()

	_, err := tokens.Resolve(common.ChainNameMainnet, "NOPE")
	require.ErrorIs(t, err, ErrNotFound)
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	require.Equal(t, KindTokens, nf.Kind)
	require.Equal(t, "NOPE", nf.Symbol)
	require.Contains(t, err.Error(), "tokens registry: NOPE on mainnet")

	_, err = tokens.Resolve(common.ChainNameTestnet, TokenUSDC)
	require.ErrorIs(t, err, ErrUnknownChain)
	require.False(t, tokens.Has(common.ChainNameTestnet))
	require.True(t, tokens.Has(common.ChainNameMainnet))

	// Symbols are case sensitive.
	_, err = tokens.Resolve(common.ChainNameMainnet, "susd")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestNewRejectsBadAddresses(t *testing.T) {
	for name, hex := range map[string]string{
		"empty":        "",
		"no prefix":    "A0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
		"too short":    "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB",
		"too long":     "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48ff",
		"not hex":      "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eBzz",
		"bad checksum": "0xa0B86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
		"zero":         "0x0000000000000000000000000000000000000000",
	} {
		_, err := New(KindTokens, map[common.ChainName]map[string]string{
			common.ChainNameMainnet: {"X": hex},
		})
		require.ErrorIs(t, err, ErrInvalidAddress, name)
	}

	_, err := New(KindTokens, map[common.ChainName]map[string]string{
		common.ChainNameMainnet: {"": "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"},
	})
	require.Error(t, err)
	_, err = New(KindTokens, map[common.ChainName]map[string]string{
		"": {"USDC": "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"},
	})
	require.Error(t, err)
}

func TestParseAddressCase(t *testing.T) {
	lower, err := ParseAddress("0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48")
	require.NoError(t, err)
	upper, err := ParseAddress("0xA0B86991C6218B36C1D19D4A2E9EB0CE3606EB48")
	require.NoError(t, err)
	checksummed, err := ParseAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	require.NoError(t, err)
	require.Equal(t, lower, upper)
	require.Equal(t, lower, checksummed)

	require.True(t, IsLiteral("0xabc"))
	require.False(t, IsLiteral("UniswapV3Router"))
}

func TestEntriesAndChains(t *testing.T) {
	addrs := DefaultAddresses()
	require.Equal(t, []common.ChainName{common.ChainNameMainnet}, addrs.Chains())
	require.Equal(t, KindAddresses, addrs.Kind())

	entries, err := addrs.Entries(common.ChainNameMainnet)
	require.NoError(t, err)
	require.Len(t, entries, len(DefaultAddressTable[common.ChainNameMainnet]))
	for i := 1; i < len(entries); i++ {
		require.Less(t, entries[i-1].Symbol, entries[i].Symbol)
	}

	_, err = addrs.Entries(common.ChainNameTestnet)
	require.ErrorIs(t, err, ErrUnknownChain)
}

func TestMerge(t *testing.T) {
	base := DefaultTokens()
	overlay := MustNew(KindTokens, map[common.ChainName]map[string]string{
		common.ChainNameMainnet: {
			TokenUSDC: "0x1111111111111111111111111111111111111111",
			"NEW":     "0x2222222222222222222222222222222222222222",
		},
		common.ChainNameTestnet: {
			TokenUSDC: "0x3333333333333333333333333333333333333333",
		},
	})
	merged := base.Merge(overlay)

	usdc, err := merged.Resolve(common.ChainNameMainnet, TokenUSDC)
	require.NoError(t, err)
	require.Equal(t, ethCommon.HexToAddress("0x1111111111111111111111111111111111111111"), usdc)

	_, err = merged.Resolve(common.ChainNameMainnet, "NEW")
	require.NoError(t, err)
	_, err = merged.Resolve(common.ChainNameMainnet, TokenFRAX)
	require.NoError(t, err)
	require.True(t, merged.Has(common.ChainNameTestnet))

	// Inputs are untouched.
	orig, err := base.Resolve(common.ChainNameMainnet, TokenUSDC)
	require.NoError(t, err)
	require.Equal(t, "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", orig.Hex())
	require.False(t, base.Has(common.ChainNameTestnet))

	require.Equal(t, base.Chains(), base.Merge(nil).Chains())
}
