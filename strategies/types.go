// Package strategies defines the leveraged Convex/Curve strategy
// configuration records, the builder that validates them against the token
// and address registries, and the process-wide list the rest of the program
// reads from.
package strategies

import (
	"encoding/json"
	"strconv"

	ethCommon "github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/farmkit/stratreg/common"
)

// LeverageScale is the fixed-point scale of LeverageFactor: 500 is 5.00x.
const LeverageScale = 100

// Token is a resolved token reference.
type Token struct {
	Symbol  string            `json:"symbol" yaml:"symbol"`
	Address ethCommon.Address `json:"address" yaml:"address"`
}

type poolIndexKind uint8

const (
	poolIndexExplicit poolIndexKind = iota + 1
	poolIndexMeta3Crv
)

// PoolIndex says where the underlying token sits in the Curve pool. It is
// either an explicit coin index, or implicit because the pool is a 3Crv
// meta-pool. The zero value is neither and never appears in a built
// StrategyConfig.
type PoolIndex struct {
	kind   poolIndexKind
	coinID uint
}

// ExplicitIndex is a pool whose underlying sits at coin index id.
func ExplicitIndex(id uint) PoolIndex {
	return PoolIndex{kind: poolIndexExplicit, coinID: id}
}

// Meta3Crv is a meta-pool paired against the 3Crv base pool. No coin index
// is configured; callers resolve it from the pool.
func Meta3Crv() PoolIndex {
	return PoolIndex{kind: poolIndexMeta3Crv}
}

// Explicit returns the configured coin index, if there is one.
func (p PoolIndex) Explicit() (uint, bool) {
	return p.coinID, p.kind == poolIndexExplicit
}

// Is3Crv reports whether the pool is a 3Crv meta-pool.
func (p PoolIndex) Is3Crv() bool {
	return p.kind == poolIndexMeta3Crv
}

// Valid reports whether p is one of the two variants.
func (p PoolIndex) Valid() bool {
	return p.kind == poolIndexExplicit || p.kind == poolIndexMeta3Crv
}

func (p PoolIndex) Equal(o PoolIndex) bool {
	return p == o
}

func (p PoolIndex) String() string {
	switch p.kind {
	case poolIndexExplicit:
		return "coin_id=" + strconv.FormatUint(uint64(p.coinID), 10)
	case poolIndexMeta3Crv:
		return "is_3crv"
	default:
		return "invalid"
	}
}

type poolIndexWire struct {
	CoinID *uint `json:"coin_id,omitempty" yaml:"coin_id,omitempty"`
	Is3Crv bool  `json:"is_3crv,omitempty" yaml:"is_3crv,omitempty"`
}

func (p PoolIndex) wire() poolIndexWire {
	if id, ok := p.Explicit(); ok {
		return poolIndexWire{CoinID: &id}
	}
	return poolIndexWire{Is3Crv: p.Is3Crv()}
}

// MarshalJSON renders the variant as {"coin_id": n} or {"is_3crv": true}.
func (p PoolIndex) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.wire())
}

// MarshalYAML renders the variant the same way as MarshalJSON.
func (p PoolIndex) MarshalYAML() (interface{}, error) {
	return p.wire(), nil
}

// StrategyConfig is one leveraged strategy instance. Values are built by
// Build and are not modified afterwards.
type StrategyConfig struct {
	// Name is the generated natural key, see package naming.
	Name string           `json:"name" yaml:"name"`
	Type common.StratType `json:"type" yaml:"type"`

	// CurveAdapter is the primary liquidity-pool adapter.
	CurveAdapter ethCommon.Address `json:"curve_adapter" yaml:"curve_adapter"`
	// CurveAdapterDeposit is set when deposit amounts have to be computed
	// by a different adapter than withdrawals and valuation.
	CurveAdapterDeposit *ethCommon.Address `json:"curve_adapter_deposit,omitempty" yaml:"curve_adapter_deposit,omitempty"`
	ConvexRewardPool    ethCommon.Address  `json:"convex_reward_pool" yaml:"convex_reward_pool"`
	CreditFacade        ethCommon.Address  `json:"credit_facade" yaml:"credit_facade"`
	ConvexBooster       ethCommon.Address  `json:"convex_booster" yaml:"convex_booster"`

	PoolIndex PoolIndex `json:"pool_index" yaml:"pool_index"`

	Underlying Token             `json:"underlying" yaml:"underlying"`
	RiskAsset  Token             `json:"risk_asset" yaml:"risk_asset"`
	Protocols  []common.Protocol `json:"protocols" yaml:"protocols"`

	// LeverageFactor is scaled by LeverageScale.
	LeverageFactor uint32 `json:"leverage_factor" yaml:"leverage_factor"`

	FarmRouter ethCommon.Address `json:"farm_router" yaml:"farm_router"`
	// FarmTokens are the reward tokens, in harvesting order.
	FarmTokens []Token `json:"farm_tokens" yaml:"farm_tokens"`

	Chain common.ChainName `json:"chain" yaml:"chain"`
}

// Multiplier returns LeverageFactor as a plain multiple, e.g. 5 for 500.
func (s StrategyConfig) Multiplier() decimal.Decimal {
	return decimal.New(int64(s.LeverageFactor), 0).Div(decimal.New(LeverageScale, 0))
}

// LeverageString renders the multiplier for humans, e.g. "5.00x".
func (s StrategyConfig) LeverageString() string {
	return s.Multiplier().StringFixed(2) + "x"
}

// clone returns a copy that shares no memory with s.
func (s StrategyConfig) clone() StrategyConfig {
	if s.CurveAdapterDeposit != nil {
		deposit := *s.CurveAdapterDeposit
		s.CurveAdapterDeposit = &deposit
	}
	s.Protocols = append([]common.Protocol(nil), s.Protocols...)
	s.FarmTokens = append([]Token(nil), s.FarmTokens...)
	return s
}
