package strategies

import (
	"sync"

	"github.com/farmkit/stratreg/common"
	"github.com/farmkit/stratreg/registry"
)

// List is an ordered, immutable sequence of built strategies. Accessors hand
// out copies.
type List struct {
	configs []StrategyConfig
	byName  map[string]int
}

// Len returns the number of strategies.
func (l *List) Len() int {
	return len(l.configs)
}

// All returns every strategy in input order.
func (l *List) All() []StrategyConfig {
	out := make([]StrategyConfig, len(l.configs))
	for i := range l.configs {
		out[i] = l.configs[i].clone()
	}
	return out
}

// ByName looks a strategy up by its generated name.
func (l *List) ByName(name string) (StrategyConfig, bool) {
	i, ok := l.byName[name]
	if !ok {
		return StrategyConfig{}, false
	}
	return l.configs[i].clone(), true
}

// ByChain returns the strategies on chain, in input order.
func (l *List) ByChain(chain common.ChainName) []StrategyConfig {
	var out []StrategyConfig
	for i := range l.configs {
		if l.configs[i].Chain == chain {
			out = append(out, l.configs[i].clone())
		}
	}
	return out
}

// Names returns every name in input order.
func (l *List) Names() []string {
	names := make([]string, len(l.configs))
	for i := range l.configs {
		names[i] = l.configs[i].Name
	}
	return names
}

// CountByChain returns how many strategies each chain has.
func (l *List) CountByChain() map[common.ChainName]int {
	counts := make(map[common.ChainName]int)
	for i := range l.configs {
		counts[l.configs[i].Chain]++
	}
	return counts
}

// OnChain returns a new list holding only the strategies on chain.
func (l *List) OnChain(chain common.ChainName) *List {
	out := &List{byName: make(map[string]int)}
	for i := range l.configs {
		if l.configs[i].Chain != chain {
			continue
		}
		out.byName[l.configs[i].Name] = len(out.configs)
		out.configs = append(out.configs, l.configs[i].clone())
	}
	return out
}

var (
	mu      sync.RWMutex
	current *List
)

// Init builds params and installs the result as the process-wide list. It
// fails if a list is already installed; tests that need a fresh list call
// Reset first.
func Init(tokens, addrs registry.Resolver, params []Params) (*List, error) {
	l, err := Build(tokens, addrs, params)
	if err != nil {
		return nil, err
	}
	if err := Install(l); err != nil {
		return nil, err
	}
	return l, nil
}

// Install makes an already built list the process-wide one.
func Install(l *List) error {
	mu.Lock()
	defer mu.Unlock()

	if current != nil {
		return ErrAlreadyInitialized
	}
	current = l
	return nil
}

// Current returns the process-wide list installed by Init.
func Current() (*List, error) {
	mu.RLock()
	defer mu.RUnlock()

	if current == nil {
		return nil, ErrNotInitialized
	}
	return current, nil
}

// Reset drops the process-wide list so Init can run again.
func Reset() {
	mu.Lock()
	defer mu.Unlock()

	current = nil
}
