package strategies

import (
	"github.com/farmkit/stratreg/common"
	"github.com/farmkit/stratreg/registry"
)

const (
	// Gearbox USDC credit manager facade shared by every entry below.
	mainnetUSDCCreditFacade = "0x61fbb350e39cc7bF22C01A469cf03085774184aa"
	mainnetConvexBooster    = "0xB548DaCb7e5d61BF47A026903904680564855B4E"
)

// defaultFarmTokens are the rewards every LevCVX strategy harvests, in
// harvesting order.
func defaultFarmTokens() []string {
	return []string{registry.TokenCRV, registry.TokenCVX, registry.TokenGEAR}
}

// LevConvex returns the built-in leveraged Convex/Curve entries. Each call
// returns fresh values.
func LevConvex() []Params {
	return []Params{
		{
			Type:         common.StratTypeLevCVX,
			CurveAdapter: "0xbfB212e5D9F880bf93c47F3C32f6203fa4845222",
			// The sUSD pool needs its own adapter to compute deposit amounts.
			CurveAdapterDeposit: "0x2bBDcc2425fa4df06676c4fb69Bd211b63314feA",
			ConvexRewardPool:    "0xbEf6108D1F6B85c4c9AA3975e15904Bb3DFcA980",
			CreditFacade:        mainnetUSDCCreditFacade,
			ConvexBooster:       mainnetConvexBooster,
			CoinID:              common.Ptr(1),
			Underlying:          registry.TokenUSDC,
			RiskAsset:           registry.TokenSUSD,
			LeverageFactor:      500,
			FarmRouter:          registry.AddrUniswapV3Router,
			FarmTokens:          defaultFarmTokens(),
			Chain:               common.ChainNameMainnet,
		},
		{
			Type:             common.StratTypeLevCVX,
			CurveAdapter:     "0xa4b2b3Dede9317fCbd9D78b8250ac44Bf23b64F4",
			ConvexRewardPool: "0x023e429Df8129F169f9756A4FBd885c18b05Ec2d",
			CreditFacade:     mainnetUSDCCreditFacade,
			ConvexBooster:    mainnetConvexBooster,
			CoinID:           common.Ptr(1),
			Underlying:       registry.TokenUSDC,
			RiskAsset:        registry.TokenFRAX,
			LeverageFactor:   500,
			FarmRouter:       registry.AddrUniswapV3Router,
			FarmTokens:       defaultFarmTokens(),
			Chain:            common.ChainNameMainnet,
		},
		{
			Type:             common.StratTypeLevCVX,
			CurveAdapter:     "0x6fA17Ffe020d72212A4DcA1560b27eA3cDAf965D",
			ConvexRewardPool: "0x3D4a70e5F355EAd0690213Ae9909f3Dc41236E3C",
			CreditFacade:     mainnetUSDCCreditFacade,
			ConvexBooster:    mainnetConvexBooster,
			Is3Crv:           true,
			Underlying:       registry.TokenUSDC,
			RiskAsset:        registry.TokenGUSD,
			LeverageFactor:   500,
			FarmRouter:       registry.AddrUniswapV3Router,
			FarmTokens:       defaultFarmTokens(),
			Chain:            common.ChainNameMainnet,
		},
		{
			Type:             common.StratTypeLevCVX,
			CurveAdapter:     "0xD4c39a18338EA89B29965a8CAd28B7fb063c1429",
			ConvexRewardPool: "0xc34Ef7306B82f4e38E3fAB975034Ed0f76e0fdAA",
			CreditFacade:     mainnetUSDCCreditFacade,
			ConvexBooster:    mainnetConvexBooster,
			Is3Crv:           true,
			Underlying:       registry.TokenUSDC,
			RiskAsset:        registry.TokenLUSD,
			LeverageFactor:   500,
			FarmRouter:       registry.AddrUniswapV3Router,
			FarmTokens:       defaultFarmTokens(),
			Chain:            common.ChainNameMainnet,
		},
		{
			Type:             common.StratTypeLevCVX,
			CurveAdapter:     "0x1C8281606377d79522515681BD94fc9d02b0d20B",
			ConvexRewardPool: "0xB26e063F062F76f9F7Dfa1a3f4b7fDa4A2197DfB",
			CreditFacade:     mainnetUSDCCreditFacade,
			ConvexBooster:    mainnetConvexBooster,
			Is3Crv:           true,
			Underlying:       registry.TokenUSDC,
			RiskAsset:        registry.TokenFRAX,
			LeverageFactor:   500,
			FarmRouter:       registry.AddrUniswapV3Router,
			FarmTokens:       defaultFarmTokens(),
			Chain:            common.ChainNameMainnet,
		},
	}
}

// Default builds LevConvex against the default registries.
func Default() (*List, error) {
	return Build(registry.DefaultTokens(), registry.DefaultAddresses(), LevConvex())
}
