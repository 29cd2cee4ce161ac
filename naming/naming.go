// Package naming generates the human-readable strategy names that serve as
// natural keys in logs, dashboards and cross-references.
//
// A name is five fields joined by '_':
//
//	<type>_<underlying>_<risk>[+<risk>...]_<protocol>[+<protocol>...]_<chain>
//
// for example LevCVX_USDC_gUSD+3Crv_Gearbox_mainnet. Case is preserved.
// Inside a field, any byte outside [A-Za-z0-9.-] is written as %XX with
// upper-case hex, so '_', '+' and '%' only ever appear as separators or
// escapes. Every field and list must be non-empty. Together these make
// Generate injective, and Parse is its exact inverse.
package naming

import (
	"errors"
	"fmt"
	"strings"

	"github.com/farmkit/stratreg/common"
)

const (
	fieldSep = "_"
	listSep  = "+"
	hexDigit = "0123456789ABCDEF"
)

var (
	// ErrEmptyComponent is returned when a field, list or list element is
	// empty.
	ErrEmptyComponent = errors.New("empty name component")
	// ErrMalformedName is returned by Parse for strings Generate could not
	// have produced.
	ErrMalformedName = errors.New("malformed strategy name")
)

// Components are the inputs of a strategy name.
type Components struct {
	Type       common.StratType  `json:"type" yaml:"type"`
	Underlying string            `json:"underlying" yaml:"underlying"`
	RiskAssets []string          `json:"risk_assets" yaml:"risk_assets"`
	Protocols  []common.Protocol `json:"protocols" yaml:"protocols"`
	Chain      common.ChainName  `json:"chain" yaml:"chain"`
}

// Generate returns the name for the given inputs. It is a pure function.
func Generate(stratType common.StratType, underlying string, riskAssets []string, protocols []common.Protocol, chain common.ChainName) (string, error) {
	protoStrs := make([]string, len(protocols))
	for i, p := range protocols {
		protoStrs[i] = string(p)
	}

	fields := []struct {
		what  string
		items []string
	}{
		{"type", []string{string(stratType)}},
		{"underlying", []string{underlying}},
		{"risk assets", riskAssets},
		{"protocols", protoStrs},
		{"chain", []string{string(chain)}},
	}

	var b strings.Builder
	for i, f := range fields {
		if len(f.items) == 0 {
			return "", fmt.Errorf("%s: %w", f.what, ErrEmptyComponent)
		}
		if i > 0 {
			b.WriteString(fieldSep)
		}
		for j, item := range f.items {
			if item == "" {
				return "", fmt.Errorf("%s[%d]: %w", f.what, j, ErrEmptyComponent)
			}
			if j > 0 {
				b.WriteString(listSep)
			}
			escape(&b, item)
		}
	}
	return b.String(), nil
}

// MustGenerate is like Generate but panics on error.
func MustGenerate(stratType common.StratType, underlying string, riskAssets []string, protocols []common.Protocol, chain common.ChainName) string {
	name, err := Generate(stratType, underlying, riskAssets, protocols, chain)
	if err != nil {
		panic(err)
	}
	return name
}

// Name returns the name for c.
func (c Components) Name() (string, error) {
	return Generate(c.Type, c.Underlying, c.RiskAssets, c.Protocols, c.Chain)
}

// Parse splits a name back into its components.
func Parse(name string) (*Components, error) {
	fields := strings.Split(name, fieldSep)
	if len(fields) != 5 {
		return nil, fmt.Errorf("%w: expected 5 fields, got %d", ErrMalformedName, len(fields))
	}
	lists := make([][]string, len(fields))
	for i, f := range fields {
		for _, item := range strings.Split(f, listSep) {
			v, err := unescape(item)
			if err != nil {
				return nil, err
			}
			lists[i] = append(lists[i], v)
		}
	}
	for _, i := range []int{0, 1, 4} {
		if len(lists[i]) != 1 {
			return nil, fmt.Errorf("%w: field %d holds a list", ErrMalformedName, i)
		}
	}

	protocols := make([]common.Protocol, len(lists[3]))
	for i, p := range lists[3] {
		protocols[i] = common.Protocol(p)
	}
	return &Components{
		Type:       common.StratType(lists[0][0]),
		Underlying: lists[1][0],
		RiskAssets: lists[2],
		Protocols:  protocols,
		Chain:      common.ChainName(lists[4][0]),
	}, nil
}

func unreserved(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9') || c == '.' || c == '-'
}

func escape(b *strings.Builder, s string) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hexDigit[c>>4])
		b.WriteByte(hexDigit[c&0x0f])
	}
}

// unescape reverses escape. Only the canonical form is accepted, so that
// distinct strings never parse to the same components.
func unescape(s string) (string, error) {
	if s == "" {
		return "", fmt.Errorf("%w: %w", ErrMalformedName, ErrEmptyComponent)
	}
	var out []byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			out = append(out, c)
			continue
		}
		if c != '%' || i+2 >= len(s) {
			return "", fmt.Errorf("%w: unexpected '%c' in '%s'", ErrMalformedName, c, s)
		}
		hi := strings.IndexByte(hexDigit, s[i+1])
		lo := strings.IndexByte(hexDigit, s[i+2])
		if hi < 0 || lo < 0 {
			return "", fmt.Errorf("%w: bad escape in '%s'", ErrMalformedName, s)
		}
		decoded := byte(hi<<4 | lo)
		if unreserved(decoded) {
			return "", fmt.Errorf("%w: needless escape of '%c' in '%s'", ErrMalformedName, decoded, s)
		}
		out = append(out, decoded)
		i += 2
	}
	return string(out), nil
}
