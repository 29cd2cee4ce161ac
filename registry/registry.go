// Package registry holds the per-chain lookup tables that map symbolic names
// to on-chain addresses: one table for tokens, one for protocol contract roles.
package registry

import (
	"errors"
	"fmt"
	"sort"

	ethCommon "github.com/ethereum/go-ethereum/common"

	"github.com/farmkit/stratreg/common"
)

var (
	// ErrUnknownChain is returned when a registry has no table at all for
	// the requested chain.
	ErrUnknownChain = errors.New("unknown chain")
	// ErrNotFound is returned when a symbol has no entry for the requested
	// chain.
	ErrNotFound = errors.New("symbol not found")
	// ErrInvalidAddress is returned when a literal is not a well-formed
	// EVM address.
	ErrInvalidAddress = errors.New("invalid address")
)

// Kind names what a Registry resolves. It shows up in error messages and
// API paths.
type Kind string

const (
	KindTokens    Kind = "tokens"
	KindAddresses Kind = "addresses"
)

// NotFoundError is a resolution failure. It wraps either ErrUnknownChain or
// ErrNotFound.
type NotFoundError struct {
	Kind   Kind
	Chain  common.ChainName
	Symbol string
	Err    error
}

func (e *NotFoundError) Error() string {
	if errors.Is(e.Err, ErrUnknownChain) {
		return fmt.Sprintf("%s registry: %s: %v", e.Kind, e.Chain, e.Err)
	}
	return fmt.Sprintf("%s registry: %s on %s: %v", e.Kind, e.Symbol, e.Chain, e.Err)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// Resolver maps a symbolic name on a chain to an address.
type Resolver interface {
	Resolve(chain common.ChainName, symbol string) (ethCommon.Address, error)
	Has(chain common.ChainName) bool
}

// Entry is one symbol and its address.
type Entry struct {
	Symbol  string            `json:"symbol" yaml:"symbol"`
	Address ethCommon.Address `json:"address" yaml:"address"`
}

// Registry is an immutable per-chain symbol table.
type Registry struct {
	kind    Kind
	entries map[common.ChainName]map[string]ethCommon.Address
}

var _ Resolver = (*Registry)(nil)

// New builds a registry from literal hex addresses, validating every one.
func New(kind Kind, raw map[common.ChainName]map[string]string) (*Registry, error) {
	r := &Registry{
		kind:    kind,
		entries: make(map[common.ChainName]map[string]ethCommon.Address, len(raw)),
	}
	for chain, table := range raw {
		if chain == "" {
			return nil, fmt.Errorf("%s registry: empty chain name", kind)
		}
		resolved := make(map[string]ethCommon.Address, len(table))
		for symbol, hex := range table {
			if symbol == "" {
				return nil, fmt.Errorf("%s registry: %s: empty symbol", kind, chain)
			}
			addr, err := ParseAddress(hex)
			if err != nil {
				return nil, fmt.Errorf("%s registry: %s on %s: %w", kind, symbol, chain, err)
			}
			resolved[symbol] = addr
		}
		r.entries[chain] = resolved
	}
	return r, nil
}

// MustNew is like New but panics on error. Only use it for literal tables.
func MustNew(kind Kind, raw map[common.ChainName]map[string]string) *Registry {
	r, err := New(kind, raw)
	if err != nil {
		panic(err)
	}
	return r
}

// Kind returns what this registry resolves.
func (r *Registry) Kind() Kind {
	return r.kind
}

// Resolve returns the address registered for symbol on chain.
func (r *Registry) Resolve(chain common.ChainName, symbol string) (ethCommon.Address, error) {
	table, ok := r.entries[chain]
	if !ok {
		return ethCommon.Address{}, &NotFoundError{Kind: r.kind, Chain: chain, Symbol: symbol, Err: ErrUnknownChain}
	}
	addr, ok := table[symbol]
	if !ok {
		return ethCommon.Address{}, &NotFoundError{Kind: r.kind, Chain: chain, Symbol: symbol, Err: ErrNotFound}
	}
	return addr, nil
}

// Has reports whether the registry has a table for chain.
func (r *Registry) Has(chain common.ChainName) bool {
	_, ok := r.entries[chain]
	return ok
}

// Chains returns the chains this registry knows, sorted.
func (r *Registry) Chains() []common.ChainName {
	chains := make([]common.ChainName, 0, len(r.entries))
	for chain := range r.entries {
		chains = append(chains, chain)
	}
	sort.Slice(chains, func(i, j int) bool { return chains[i] < chains[j] })
	return chains
}

// Entries returns a copy of the table for chain, sorted by symbol.
func (r *Registry) Entries(chain common.ChainName) ([]Entry, error) {
	table, ok := r.entries[chain]
	if !ok {
		return nil, &NotFoundError{Kind: r.kind, Chain: chain, Err: ErrUnknownChain}
	}
	entries := make([]Entry, 0, len(table))
	for symbol, addr := range table {
		entries = append(entries, Entry{Symbol: symbol, Address: addr})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Symbol < entries[j].Symbol })
	return entries, nil
}

// Merge returns a new registry holding r's entries overlaid with overlay's.
// On conflicts overlay wins. Neither input is modified.
func (r *Registry) Merge(overlay *Registry) *Registry {
	merged := &Registry{
		kind:    r.kind,
		entries: make(map[common.ChainName]map[string]ethCommon.Address, len(r.entries)),
	}
	for _, src := range []*Registry{r, overlay} {
		if src == nil {
			continue
		}
		for chain, table := range src.entries {
			dst, ok := merged.entries[chain]
			if !ok {
				dst = make(map[string]ethCommon.Address, len(table))
				merged.entries[chain] = dst
			}
			for symbol, addr := range table {
				dst[symbol] = addr
			}
		}
	}
	return merged
}
