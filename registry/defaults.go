package registry

import (
	"github.com/farmkit/stratreg/common"
)

// Token symbols with an entry in DefaultTokens.
const (
	TokenUSDC = "USDC"
	TokenSUSD = "sUSD"
	TokenFRAX = "FRAX"
	TokenGUSD = "gUSD"
	TokenLUSD = "lUSD"
	Token3Crv = "3Crv"
	TokenCRV  = "CRV"
	TokenCVX  = "CVX"
	TokenGEAR = "GEAR"
	TokenDAI  = "DAI"
	TokenUSDT = "USDT"
	TokenWETH = "WETH"
)

// Contract roles with an entry in DefaultAddresses.
const (
	AddrUniswapV3Router  = "UniswapV3Router"
	AddrThreeCrv         = "THREE_CRV"
	AddrGearDistributor  = "GearDistributor"
	AddrDegenDistributor = "DegenDistributor"
	AddrDegenNFT         = "DegenNFT"
)

// DefaultTokenTable is the literal token table per chain.
var DefaultTokenTable = map[common.ChainName]map[string]string{
	common.ChainNameMainnet: {
		TokenUSDC: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
		TokenSUSD: "0x57Ab1ec28D129707052df4dF418D58a2D46d5f51",
		TokenFRAX: "0x853d955aCEf822Db058eb8505911ED77F175b99e",
		TokenGUSD: "0x056Fd409E1d7A124BD7017459dFEa2F387b6d5Cd",
		TokenLUSD: "0x5f98805A4E8be255a32880FDeC7F6728C6568bA0",
		Token3Crv: "0x6c3F90f043a72FA612cbac8115EE7e52BDe6E490",
		TokenCRV:  "0xD533a949740bb3306d119CC777fa900bA034cd52",
		TokenCVX:  "0x4e3FBD56CD56c3e72c1403e103b45Db9da5B9D2B",
		TokenGEAR: "0xBa3335588D9403515223F109EdC4eB7269a9Ab5D",
		TokenDAI:  "0x6B175474E89094C44Da98b954EedeAC495271d0F",
		TokenUSDT: "0xdAC17F958D2ee523a2206206994597C13D831ec7",
		TokenWETH: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
	},
}

// DefaultAddressTable is the literal protocol contract table per chain.
var DefaultAddressTable = map[common.ChainName]map[string]string{
	common.ChainNameMainnet: {
		AddrUniswapV3Router:  "0xE592427A0AEce92De3Edee1F18E0157C05861564",
		AddrThreeCrv:         "0x6c3F90f043a72FA612cbac8115EE7e52BDe6E490",
		AddrGearDistributor:  "0xA7Df60785e556d65292A2c9A077bb3A8fBF048BC",
		AddrDegenDistributor: "0x6cA68adc7eC07a4bD97c97e8052510FBE6b67d10",
		AddrDegenNFT:         "0xB829a5b349b01fc71aFE46E50dD6Ec0222A6E599",
	},
}

// DefaultTokens returns the token registry built from DefaultTokenTable.
func DefaultTokens() *Registry {
	return MustNew(KindTokens, DefaultTokenTable)
}

// DefaultAddresses returns the address registry built from DefaultAddressTable.
func DefaultAddresses() *Registry {
	return MustNew(KindAddresses, DefaultAddressTable)
}
