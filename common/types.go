package common

import (
	"fmt"
	"strings"
)

// ChainName is a name given to a sequence of networks. Used to select the
// token and address registries that resolve a strategy's symbols.
type ChainName string

const (
	ChainNameMainnet ChainName = "mainnet"
	ChainNameTestnet ChainName = "testnet"
	ChainNameUnknown ChainName = "unknown"
)

// StratType identifies a strategy family. It implements the pflag.Value
// interface so it can be passed on the command line.
type StratType string

const (
	// StratTypeLevCVX is a leveraged Convex/Curve farming strategy.
	StratTypeLevCVX StratType = "LevCVX"
)

// String returns the string representation of a StratType.
func (t *StratType) String() string {
	return string(*t)
}

// Set sets the StratType to the value specified by the provided string.
func (t *StratType) Set(s string) error {
	switch strings.ToLower(s) {
	case "levcvx":
		*t = StratTypeLevCVX
	default:
		return fmt.Errorf("common: invalid strategy type: '%s'", s)
	}
	return nil
}

// Type returns the list of supported StratTypes.
func (t *StratType) Type() string {
	return "[LevCVX]"
}

// Protocol is the name of an external protocol a strategy touches.
type Protocol string

const (
	ProtocolGearbox Protocol = "Gearbox"
	ProtocolConvex  Protocol = "Convex"
	ProtocolCurve   Protocol = "Curve"
)

// Key used to set values in a web request context. API uses this to set
// values, handlers use this to retrieve values.
type ContextKey string

const (
	// RequestIDContextKey is used to set a request id for tracing
	// in a request context.
	RequestIDContextKey ContextKey = "request_id"
)
