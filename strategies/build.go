package strategies

import (
	"math"

	ethCommon "github.com/ethereum/go-ethereum/common"

	"github.com/farmkit/stratreg/common"
	"github.com/farmkit/stratreg/naming"
	"github.com/farmkit/stratreg/registry"
)

// DefaultProtocols are the protocols named when an entry doesn't list any.
var DefaultProtocols = []common.Protocol{common.ProtocolGearbox}

// SourceBuiltin names the entries compiled into the binary.
const SourceBuiltin = "builtin"

// Source is a named batch of entries, such as the built-in set or one
// operator file.
type Source struct {
	Name   string
	Params []Params
}

// Build resolves and validates params in order and returns the resulting
// list. It fails on the first bad entry and never returns a partial list.
// Building the same inputs twice yields element-wise equal lists.
func Build(tokens, addrs registry.Resolver, params []Params) (*List, error) {
	return BuildSources(tokens, addrs, Source{Params: params})
}

// BuildSources builds the concatenation of sources. Errors carry both the
// position in the concatenation and the position within the source.
func BuildSources(tokens, addrs registry.Resolver, sources ...Source) (*List, error) {
	var total int
	for _, src := range sources {
		total += len(src.Params)
	}
	configs := make([]StrategyConfig, 0, total)
	byName := make(map[string]int, total)
	for _, src := range sources {
		for j := range src.Params {
			p := &src.Params[j]
			i := len(configs)
			cfg, err := build(tokens, addrs, p)
			if err != nil {
				return nil, &EntryError{
					Index:       i,
					Source:      src.Name,
					SourceIndex: j,
					Underlying:  p.Underlying,
					RiskAsset:   p.RiskAsset,
					Err:         err,
				}
			}
			if first, ok := byName[cfg.Name]; ok {
				return nil, &DuplicateNameError{Name: cfg.Name, First: first, Second: i}
			}
			byName[cfg.Name] = i
			configs = append(configs, *cfg)
		}
	}
	return &List{configs: configs, byName: byName}, nil
}

// build turns one entry into a config. Structural rules are checked before
// any registry lookup.
func build(tokens, addrs registry.Resolver, p *Params) (*StrategyConfig, error) {
	if p.Type != common.StratTypeLevCVX {
		return nil, violation(InvariantRequired, "type", "unsupported strategy type '"+string(p.Type)+"'")
	}
	if p.Chain == "" {
		return nil, violation(InvariantRequired, "chain", "missing")
	}
	if p.Underlying == "" {
		return nil, violation(InvariantRequired, "underlying", "missing")
	}
	if p.RiskAsset == "" {
		return nil, violation(InvariantRequired, "risk_asset", "missing")
	}

	var poolIndex PoolIndex
	switch {
	case p.CoinID != nil && p.Is3Crv:
		return nil, violation(InvariantPoolIndex, "coin_id", "must not be set on a 3Crv meta-pool")
	case p.CoinID == nil && !p.Is3Crv:
		return nil, violation(InvariantPoolIndex, "coin_id", "required unless is_3crv is set")
	case p.Is3Crv:
		poolIndex = Meta3Crv()
	case *p.CoinID < 0:
		return nil, violation(InvariantPoolIndex, "coin_id", "must not be negative")
	default:
		poolIndex = ExplicitIndex(uint(*p.CoinID))
	}

	if p.LeverageFactor <= 0 {
		return nil, violation(InvariantLeverage, "leverage_factor", "must be positive")
	}
	if p.LeverageFactor != math.Trunc(p.LeverageFactor) {
		return nil, violation(InvariantLeverage, "leverage_factor", "must be a whole number")
	}
	if p.LeverageFactor > math.MaxUint32 {
		return nil, violation(InvariantLeverage, "leverage_factor", "out of range")
	}
	for _, ra := range p.RiskAssets {
		if ra == "" {
			return nil, violation(InvariantRequired, "risk_assets", "empty symbol")
		}
	}
	if len(p.FarmTokens) == 0 {
		return nil, violation(InvariantFarmTokens, "farm_tokens", "empty")
	}
	if !tokens.Has(p.Chain) {
		return nil, violation(InvariantChain, "chain", "no token registry for '"+string(p.Chain)+"'")
	}
	if !addrs.Has(p.Chain) {
		return nil, violation(InvariantChain, "chain", "no address registry for '"+string(p.Chain)+"'")
	}

	r := resolver{tokens: tokens, addrs: addrs, chain: p.Chain}
	cfg := &StrategyConfig{
		Type:           p.Type,
		PoolIndex:      poolIndex,
		LeverageFactor: uint32(p.LeverageFactor),
		Chain:          p.Chain,
	}
	for _, f := range []struct {
		field string
		ref   string
		dst   *ethCommon.Address
	}{
		{"curve_adapter", p.CurveAdapter, &cfg.CurveAdapter},
		{"convex_reward_pool", p.ConvexRewardPool, &cfg.ConvexRewardPool},
		{"credit_facade", p.CreditFacade, &cfg.CreditFacade},
		{"convex_booster", p.ConvexBooster, &cfg.ConvexBooster},
		{"farm_router", p.FarmRouter, &cfg.FarmRouter},
	} {
		addr, err := r.address(f.field, f.ref)
		if err != nil {
			return nil, err
		}
		*f.dst = addr
	}
	if p.CurveAdapterDeposit != "" {
		addr, err := r.address("curve_adapter_deposit", p.CurveAdapterDeposit)
		if err != nil {
			return nil, err
		}
		cfg.CurveAdapterDeposit = &addr
	}

	var err error
	if cfg.Underlying, err = r.token("underlying", p.Underlying); err != nil {
		return nil, err
	}
	if cfg.RiskAsset, err = r.token("risk_asset", p.RiskAsset); err != nil {
		return nil, err
	}
	cfg.FarmTokens = make([]Token, len(p.FarmTokens))
	for i, symbol := range p.FarmTokens {
		if cfg.FarmTokens[i], err = r.token("farm_tokens", symbol); err != nil {
			return nil, err
		}
	}

	cfg.Protocols = append([]common.Protocol(nil), p.Protocols...)
	if len(cfg.Protocols) == 0 {
		cfg.Protocols = append(cfg.Protocols, DefaultProtocols...)
	}
	riskAssets := append([]string(nil), p.RiskAssets...)
	if len(riskAssets) == 0 {
		riskAssets = append(riskAssets, p.RiskAsset)
		if poolIndex.Is3Crv() {
			riskAssets = append(riskAssets, registry.Token3Crv)
		}
	}
	name, err := naming.Generate(p.Type, p.Underlying, riskAssets, cfg.Protocols, p.Chain)
	if err != nil {
		return nil, &InvariantError{Invariant: InvariantRequired, Field: "name", Reason: "cannot generate", Err: err}
	}
	cfg.Name = name

	return cfg, nil
}

type resolver struct {
	tokens registry.Resolver
	addrs  registry.Resolver
	chain  common.ChainName
}

// address resolves a literal or a registry role.
func (r resolver) address(field, ref string) (ethCommon.Address, error) {
	if ref == "" {
		return ethCommon.Address{}, violation(InvariantAddress, field, "missing")
	}
	if registry.IsLiteral(ref) {
		addr, err := registry.ParseAddress(ref)
		if err != nil {
			return ethCommon.Address{}, &InvariantError{Invariant: InvariantAddress, Field: field, Reason: "malformed", Err: err}
		}
		return addr, nil
	}
	return r.addrs.Resolve(r.chain, ref)
}

func (r resolver) token(field, symbol string) (Token, error) {
	if symbol == "" {
		return Token{}, violation(InvariantRequired, field, "empty token symbol")
	}
	addr, err := r.tokens.Resolve(r.chain, symbol)
	if err != nil {
		return Token{}, err
	}
	return Token{Symbol: symbol, Address: addr}, nil
}
