package strategies

import (
	"fmt"
	"math"
	"reflect"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/mitchellh/mapstructure"

	"github.com/farmkit/stratreg/common"
)

// Params is one literal strategy entry as an operator writes it.
//
// Address fields take either a 0x literal or a role name that is resolved
// through the address registry of Chain (e.g. "UniswapV3Router"). Token
// fields are symbols resolved through the token registry of Chain.
type Params struct {
	Type common.StratType `koanf:"type"`

	CurveAdapter string `koanf:"curve_adapter"`
	// CurveAdapterDeposit is optional.
	CurveAdapterDeposit string `koanf:"curve_adapter_deposit"`
	ConvexRewardPool    string `koanf:"convex_reward_pool"`
	CreditFacade        string `koanf:"credit_facade"`
	ConvexBooster       string `koanf:"convex_booster"`

	// Exactly one of CoinID and Is3Crv must be set. CoinID is signed so
	// that a negative index is reported instead of wrapping.
	CoinID *int `koanf:"coin_id"`
	Is3Crv bool  `koanf:"is_3crv"`

	Underlying string `koanf:"underlying"`
	RiskAsset  string `koanf:"risk_asset"`
	// RiskAssets are the risk symbols written into the name. Defaults to
	// RiskAsset, followed by 3Crv for meta-pools.
	RiskAssets []string `koanf:"risk_assets"`
	// Protocols defaults to Gearbox.
	Protocols []common.Protocol `koanf:"protocols"`

	// LeverageFactor is scaled by LeverageScale and must be a whole number.
	// It is decoded as a float so that a fractional value is rejected
	// rather than truncated.
	LeverageFactor float64 `koanf:"leverage_factor"`

	FarmRouter string   `koanf:"farm_router"`
	FarmTokens []string `koanf:"farm_tokens"`

	Chain common.ChainName `koanf:"chain"`
}

// paramsFile is the layout of an operator strategy file.
type paramsFile struct {
	Strategies []Params `koanf:"strategies"`
}

// LoadParamsFile reads operator-authored entries from a YAML file of the form
//
//	strategies:
//	  - type: LevCVX
//	    curve_adapter: "0x..."
//	    ...
func LoadParamsFile(path string) ([]Params, error) {
	params, err := loadParams(file.Provider(path))
	if err != nil {
		return nil, fmt.Errorf("strategies file %s: %w", path, err)
	}
	return params, nil
}

func loadParams(p koanf.Provider) ([]Params, error) {
	k := koanf.New(".")
	if err := k.Load(p, yaml.Parser()); err != nil {
		return nil, err
	}
	var f paramsFile
	if err := k.UnmarshalWithConf("", &f, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook:       wholeNumberHook,
			ErrorUnused:      true,
			WeaklyTypedInput: false,
			Result:           &f,
		},
	}); err != nil {
		return nil, err
	}
	return f.Strategies, nil
}

// wholeNumberHook refuses to truncate a fractional number into an integer
// field.
func wholeNumberHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
	default:
		return data, nil
	}
	if from.Kind() != reflect.Float32 && from.Kind() != reflect.Float64 {
		return data, nil
	}
	if f := reflect.ValueOf(data).Float(); f != math.Trunc(f) {
		return nil, fmt.Errorf("%v is not a whole number", f)
	}
	return data, nil
}
