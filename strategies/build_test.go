package strategies

import (
	"encoding/json"
	"errors"
	"testing"

	ethCommon "github.com/ethereum/go-ethereum/common"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/farmkit/stratreg/common"
	"github.com/farmkit/stratreg/naming"
	"github.com/farmkit/stratreg/registry"
)

func TestDefaultList(t *testing.T) {
	l, err := Default()
	require.NoError(t, err)
	require.Equal(t, 5, l.Len())

	require.Equal(t, []string{
		"LevCVX_USDC_sUSD_Gearbox_mainnet",
		"LevCVX_USDC_FRAX_Gearbox_mainnet",
		"LevCVX_USDC_gUSD+3Crv_Gearbox_mainnet",
		"LevCVX_USDC_lUSD+3Crv_Gearbox_mainnet",
		"LevCVX_USDC_FRAX+3Crv_Gearbox_mainnet",
	}, l.Names())

	all := l.All()
	explicit, meta := 0, 0
	names := map[string]bool{}
	for _, s := range all {
		// Exactly one pool indexing mode.
		_, hasCoin := s.PoolIndex.Explicit()
		require.NotEqual(t, hasCoin, s.PoolIndex.Is3Crv(), s.Name)
		if hasCoin {
			explicit++
		} else {
			meta++
		}

		for _, addr := range []ethCommon.Address{s.CurveAdapter, s.ConvexRewardPool, s.CreditFacade, s.ConvexBooster, s.FarmRouter, s.Underlying.Address, s.RiskAsset.Address} {
			require.NotEqual(t, ethCommon.Address{}, addr, s.Name)
		}
		require.Positive(t, s.LeverageFactor)
		require.NotEmpty(t, s.FarmTokens)
		require.Equal(t, common.ChainNameMainnet, s.Chain)
		require.Equal(t, registry.TokenUSDC, s.Underlying.Symbol)

		require.False(t, names[s.Name], "duplicate name %s", s.Name)
		names[s.Name] = true

		// Names round-trip through the generator.
		parsed, err := naming.Parse(s.Name)
		require.NoError(t, err)
		require.Equal(t, s.RiskAsset.Symbol, parsed.RiskAssets[0])
	}
	require.Equal(t, 2, explicit)
	require.Equal(t, 3, meta)

	coin, ok := all[0].PoolIndex.Explicit()
	require.True(t, ok)
	require.Equal(t, uint(1), coin)

	// Only the sUSD entry has a separate deposit adapter.
	require.NotNil(t, all[0].CurveAdapterDeposit)
	require.Equal(t, "0x2bBDcc2425fa4df06676c4fb69Bd211b63314feA", all[0].CurveAdapterDeposit.Hex())
	for _, s := range all[1:] {
		require.Nil(t, s.CurveAdapterDeposit, s.Name)
	}

	require.Equal(t, []string{"CRV", "CVX", "GEAR"}, []string{
		all[0].FarmTokens[0].Symbol, all[0].FarmTokens[1].Symbol, all[0].FarmTokens[2].Symbol,
	})
	require.Equal(t, "0xE592427A0AEce92De3Edee1F18E0157C05861564", all[0].FarmRouter.Hex())
	require.Equal(t, "5.00x", all[0].LeverageString())
}

func TestBuildIdempotent(t *testing.T) {
	first, err := Default()
	require.NoError(t, err)
	second, err := Default()
	require.NoError(t, err)

	if diff := cmp.Diff(first.All(), second.All()); diff != "" {
		t.Errorf("builds differ (-first +second):\n%s", diff)
	}
}

func TestBuildEmpty(t *testing.T) {
	l, err := Build(registry.DefaultTokens(), registry.DefaultAddresses(), nil)
	require.NoError(t, err)
	require.Equal(t, 0, l.Len())
	require.Empty(t, l.All())
}

func TestBuildUnresolvedUnderlying(t *testing.T) {
	params := LevConvex()
	params[3].Underlying = "NOTATOKEN"

	l, err := Build(registry.DefaultTokens(), registry.DefaultAddresses(), params)
	require.Nil(t, l)
	require.ErrorIs(t, err, registry.ErrNotFound)
	require.NotErrorIs(t, err, ErrInvariantViolation)

	var entryErr *EntryError
	require.True(t, errors.As(err, &entryErr))
	require.Equal(t, 3, entryErr.Index)

	var nf *registry.NotFoundError
	require.True(t, errors.As(err, &nf))
	require.Equal(t, registry.KindTokens, nf.Kind)
	require.Equal(t, "NOTATOKEN", nf.Symbol)
}

func TestBuildUnresolvedRouter(t *testing.T) {
	params := LevConvex()
	params[1].FarmRouter = "SushiRouter"

	_, err := Build(registry.DefaultTokens(), registry.DefaultAddresses(), params)
	var nf *registry.NotFoundError
	require.True(t, errors.As(err, &nf))
	require.Equal(t, registry.KindAddresses, nf.Kind)
	require.Contains(t, err.Error(), "strategy entry 1 (USDC/FRAX)")
}

func TestBuildInvariantViolations(t *testing.T) {
	for _, tc := range []struct {
		name      string
		mutate    func(p *Params)
		invariant Invariant
		field     string
	}{
		{
			name:      "coin id on meta-pool",
			mutate:    func(p *Params) { p.Is3Crv = true },
			invariant: InvariantPoolIndex,
			field:     "coin_id",
		},
		{
			name:      "no pool index",
			mutate:    func(p *Params) { p.CoinID = nil },
			invariant: InvariantPoolIndex,
			field:     "coin_id",
		},
		{
			name:      "bad checksum",
			mutate:    func(p *Params) { p.CurveAdapter = "0xBFB212e5D9F880bf93c47F3C32f6203fa4845222" },
			invariant: InvariantAddress,
			field:     "curve_adapter",
		},
		{
			name:      "short deposit adapter",
			mutate:    func(p *Params) { p.CurveAdapterDeposit = "0x2bBDcc" },
			invariant: InvariantAddress,
			field:     "curve_adapter_deposit",
		},
		{
			name:      "missing booster",
			mutate:    func(p *Params) { p.ConvexBooster = "" },
			invariant: InvariantAddress,
			field:     "convex_booster",
		},
		{
			name:      "zero leverage",
			mutate:    func(p *Params) { p.LeverageFactor = 0 },
			invariant: InvariantLeverage,
			field:     "leverage_factor",
		},
		{
			name:      "negative leverage",
			mutate:    func(p *Params) { p.LeverageFactor = -500 },
			invariant: InvariantLeverage,
			field:     "leverage_factor",
		},
		{
			name:      "no farm tokens",
			mutate:    func(p *Params) { p.FarmTokens = nil },
			invariant: InvariantFarmTokens,
			field:     "farm_tokens",
		},
		{
			name:      "unknown chain",
			mutate:    func(p *Params) { p.Chain = common.ChainNameTestnet },
			invariant: InvariantChain,
			field:     "chain",
		},
		{
			name:      "unsupported type",
			mutate:    func(p *Params) { p.Type = "LevAave" },
			invariant: InvariantRequired,
			field:     "type",
		},
		{
			name:      "empty farm token symbol",
			mutate:    func(p *Params) { p.FarmTokens = []string{registry.TokenCRV, ""} },
			invariant: InvariantRequired,
			field:     "farm_tokens",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			params := LevConvex()
			tc.mutate(&params[0])

			l, err := Build(registry.DefaultTokens(), registry.DefaultAddresses(), params)
			require.Nil(t, l)
			require.ErrorIs(t, err, ErrInvariantViolation)

			var entryErr *EntryError
			require.True(t, errors.As(err, &entryErr))
			require.Equal(t, 0, entryErr.Index)

			var invErr *InvariantError
			require.True(t, errors.As(err, &invErr))
			require.Equal(t, tc.invariant, invErr.Invariant)
			require.Equal(t, tc.field, invErr.Field)
			require.Contains(t, err.Error(), tc.invariant.String())
		})
	}
}

func TestBuildChainMissingFromOneRegistry(t *testing.T) {
	tokens := registry.DefaultTokens().Merge(registry.MustNew(registry.KindTokens, map[common.ChainName]map[string]string{
		common.ChainNameTestnet: {registry.TokenUSDC: "0x1111111111111111111111111111111111111111"},
	}))
	params := LevConvex()[:1]
	params[0].Chain = common.ChainNameTestnet

	_, err := Build(tokens, registry.DefaultAddresses(), params)
	var invErr *InvariantError
	require.True(t, errors.As(err, &invErr))
	require.Equal(t, InvariantChain, invErr.Invariant)
	require.Contains(t, invErr.Reason, "address registry")
}

func TestBuildDuplicateName(t *testing.T) {
	params := LevConvex()
	// Same pool on a different adapter still generates the same name.
	dup := LevConvex()[1]
	dup.CurveAdapter = "0x1111111111111111111111111111111111111111"
	params = append(params, dup)

	l, err := Build(registry.DefaultTokens(), registry.DefaultAddresses(), params)
	require.Nil(t, l)
	require.ErrorIs(t, err, ErrDuplicateName)

	var dupErr *DuplicateNameError
	require.True(t, errors.As(err, &dupErr))
	require.Equal(t, 1, dupErr.First)
	require.Equal(t, 5, dupErr.Second)
	require.Equal(t, "LevCVX_USDC_FRAX_Gearbox_mainnet", dupErr.Name)
}

func TestBuildOtherChain(t *testing.T) {
	tokens := registry.MustNew(registry.KindTokens, map[common.ChainName]map[string]string{
		common.ChainNameTestnet: {
			"USDC": "0x1111111111111111111111111111111111111111",
			"FRAX": "0x2222222222222222222222222222222222222222",
			"CRV":  "0x3333333333333333333333333333333333333333",
		},
	})
	addrs := registry.MustNew(registry.KindAddresses, map[common.ChainName]map[string]string{
		common.ChainNameTestnet: {
			"Router": "0x4444444444444444444444444444444444444444",
		},
	})
	l, err := Build(tokens, addrs, []Params{{
		Type:             common.StratTypeLevCVX,
		CurveAdapter:     "0x5555555555555555555555555555555555555555",
		ConvexRewardPool: "0x6666666666666666666666666666666666666666",
		CreditFacade:     "0x7777777777777777777777777777777777777777",
		ConvexBooster:    "0x8888888888888888888888888888888888888888",
		CoinID:           common.Ptr(0),
		Underlying:       "USDC",
		RiskAsset:        "FRAX",
		Protocols:        []common.Protocol{common.ProtocolGearbox, common.ProtocolConvex},
		LeverageFactor:   350,
		FarmRouter:       "Router",
		FarmTokens:       []string{"CRV"},
		Chain:            common.ChainNameTestnet,
	}})
	require.NoError(t, err)

	s, ok := l.ByName("LevCVX_USDC_FRAX_Gearbox+Convex_testnet")
	require.True(t, ok)
	coin, ok := s.PoolIndex.Explicit()
	require.True(t, ok)
	require.Equal(t, uint(0), coin)
	require.Equal(t, "3.50x", s.LeverageString())
	require.Equal(t, ethCommon.HexToAddress("0x4444444444444444444444444444444444444444"), s.FarmRouter)

	require.Len(t, l.ByChain(common.ChainNameTestnet), 1)
	require.Empty(t, l.ByChain(common.ChainNameMainnet))
	require.Equal(t, map[common.ChainName]int{common.ChainNameTestnet: 1}, l.CountByChain())
}

func testnetParams() Params {
	return Params{
		Type:             common.StratTypeLevCVX,
		CurveAdapter:     "0x5555555555555555555555555555555555555555",
		ConvexRewardPool: "0x6666666666666666666666666666666666666666",
		CreditFacade:     "0x7777777777777777777777777777777777777777",
		ConvexBooster:    "0x8888888888888888888888888888888888888888",
		CoinID:           common.Ptr(0),
		Underlying:       "USDC",
		RiskAsset:        "FRAX",
		LeverageFactor:   350,
		FarmRouter:       "0x4444444444444444444444444444444444444444",
		FarmTokens:       []string{"CRV"},
		Chain:            common.ChainNameTestnet,
	}
}

func testnetTokens() *registry.Registry {
	return registry.DefaultTokens().Merge(registry.MustNew(registry.KindTokens, map[common.ChainName]map[string]string{
		common.ChainNameTestnet: {
			"USDC": "0x1111111111111111111111111111111111111111",
			"FRAX": "0x2222222222222222222222222222222222222222",
			"CRV":  "0x3333333333333333333333333333333333333333",
		},
	}))
}

func testnetAddresses() *registry.Registry {
	return registry.DefaultAddresses().Merge(registry.MustNew(registry.KindAddresses, map[common.ChainName]map[string]string{
		common.ChainNameTestnet: {
			"Router": "0x4444444444444444444444444444444444444444",
		},
	}))
}

func TestBuildSources(t *testing.T) {
	bad := LevConvex()[0]
	bad.LeverageFactor = 0

	_, err := BuildSources(registry.DefaultTokens(), registry.DefaultAddresses(),
		Source{Name: SourceBuiltin, Params: LevConvex()},
		Source{Name: "ops.yaml", Params: []Params{testnetParams(), bad}},
	)
	require.ErrorIs(t, err, ErrInvariantViolation)

	// The testnet entry fails first: the default registries don't know the chain.
	var entryErr *EntryError
	require.True(t, errors.As(err, &entryErr))
	require.Equal(t, 5, entryErr.Index)
	require.Equal(t, "ops.yaml", entryErr.Source)
	require.Equal(t, 0, entryErr.SourceIndex)
	require.Contains(t, err.Error(), "strategy entry 0 of ops.yaml (USDC/FRAX)")

	l, err := BuildSources(testnetTokens(), testnetAddresses(),
		Source{Name: SourceBuiltin, Params: LevConvex()},
		Source{Name: "ops.yaml", Params: []Params{testnetParams(), bad}},
	)
	require.Nil(t, l)
	require.True(t, errors.As(err, &entryErr))
	require.Equal(t, 6, entryErr.Index)
	require.Equal(t, 1, entryErr.SourceIndex)
	var invErr *InvariantError
	require.True(t, errors.As(err, &invErr))
	require.Equal(t, InvariantLeverage, invErr.Invariant)

	l, err = BuildSources(testnetTokens(), testnetAddresses(),
		Source{Name: SourceBuiltin, Params: LevConvex()},
		Source{Name: "ops.yaml", Params: []Params{testnetParams()}},
	)
	require.NoError(t, err)
	require.Equal(t, 6, l.Len())
	_, ok := l.ByName("LevCVX_USDC_FRAX_Gearbox_testnet")
	require.True(t, ok)
}

func TestListOnChain(t *testing.T) {
	l, err := BuildSources(testnetTokens(), testnetAddresses(),
		Source{Name: SourceBuiltin, Params: LevConvex()},
		Source{Name: "ops.yaml", Params: []Params{testnetParams()}},
	)
	require.NoError(t, err)

	testnet := l.OnChain(common.ChainNameTestnet)
	require.Equal(t, []string{"LevCVX_USDC_FRAX_Gearbox_testnet"}, testnet.Names())
	_, ok := testnet.ByName("LevCVX_USDC_sUSD_Gearbox_mainnet")
	require.False(t, ok)
	s, ok := testnet.ByName("LevCVX_USDC_FRAX_Gearbox_testnet")
	require.True(t, ok)
	require.Equal(t, common.ChainNameTestnet, s.Chain)

	mainnet := l.OnChain(common.ChainNameMainnet)
	require.Equal(t, 5, mainnet.Len())
	require.Equal(t, l.Names()[:5], mainnet.Names())

	// The source list is left alone.
	require.Equal(t, 6, l.Len())
	require.Equal(t, 0, l.OnChain("sepolia").Len())
}

func TestBuildRiskAssets(t *testing.T) {
	params := LevConvex()
	params[2].RiskAssets = []string{"gUSD", "3Crv", "FRAX"}

	l, err := Build(registry.DefaultTokens(), registry.DefaultAddresses(), params)
	require.NoError(t, err)
	require.Equal(t, "LevCVX_USDC_gUSD+3Crv+FRAX_Gearbox_mainnet", l.Names()[2])
	// Entries without an override keep the derived names.
	require.Equal(t, "LevCVX_USDC_lUSD+3Crv_Gearbox_mainnet", l.Names()[3])

	params[2].RiskAssets = []string{"gUSD", ""}
	_, err = Build(registry.DefaultTokens(), registry.DefaultAddresses(), params)
	var invErr *InvariantError
	require.True(t, errors.As(err, &invErr))
	require.Equal(t, InvariantRequired, invErr.Invariant)
	require.Equal(t, "risk_assets", invErr.Field)
}

func TestListCopies(t *testing.T) {
	l, err := Default()
	require.NoError(t, err)

	all := l.All()
	all[0].FarmTokens[0].Symbol = "MUTATED"
	*all[0].CurveAdapterDeposit = ethCommon.Address{}
	all[0].Protocols[0] = "MUTATED"

	fresh, ok := l.ByName(all[0].Name)
	require.True(t, ok)
	require.Equal(t, registry.TokenCRV, fresh.FarmTokens[0].Symbol)
	require.NotEqual(t, ethCommon.Address{}, *fresh.CurveAdapterDeposit)
	require.Equal(t, common.ProtocolGearbox, fresh.Protocols[0])

	_, ok = l.ByName("LevCVX_USDC_DAI_Gearbox_mainnet")
	require.False(t, ok)
}

func TestStrategyJSON(t *testing.T) {
	l, err := Default()
	require.NoError(t, err)
	all := l.All()

	b, err := json.Marshal(all[0])
	require.NoError(t, err)
	var explicit map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &explicit))
	require.Equal(t, map[string]interface{}{"coin_id": float64(1)}, explicit["pool_index"])
	require.Contains(t, explicit, "curve_adapter_deposit")

	b, err = json.Marshal(all[2])
	require.NoError(t, err)
	var meta map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &meta))
	require.Equal(t, map[string]interface{}{"is_3crv": true}, meta["pool_index"])
	require.NotContains(t, meta, "curve_adapter_deposit")
	require.Equal(t, "LevCVX_USDC_gUSD+3Crv_Gearbox_mainnet", meta["name"])
	require.Equal(t, float64(500), meta["leverage_factor"])
}

func TestPoolIndex(t *testing.T) {
	var zero PoolIndex
	require.False(t, zero.Valid())
	require.Equal(t, "invalid", zero.String())

	e := ExplicitIndex(2)
	require.True(t, e.Valid())
	require.False(t, e.Is3Crv())
	require.Equal(t, "coin_id=2", e.String())
	require.True(t, e.Equal(ExplicitIndex(2)))
	require.False(t, e.Equal(ExplicitIndex(1)))

	m := Meta3Crv()
	require.True(t, m.Valid())
	id, ok := m.Explicit()
	require.False(t, ok)
	require.Zero(t, id)
	require.Equal(t, "is_3crv", m.String())
}
