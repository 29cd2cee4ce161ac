package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/farmkit/stratreg/common"
	"github.com/farmkit/stratreg/naming"
	"github.com/farmkit/stratreg/registry"
	"github.com/farmkit/stratreg/strategies"
)

// StrategyList is the response of ListStrategies.
type StrategyList struct {
	Strategies []strategies.StrategyConfig `json:"strategies"`
}

// RegistryTable is the response of ListTokens and ListAddresses.
type RegistryTable struct {
	Kind    registry.Kind    `json:"kind"`
	Chain   common.ChainName `json:"chain"`
	Entries []registry.Entry `json:"entries"`
}

// GeneratedName is the response of GenerateName.
type GeneratedName struct {
	Name       string             `json:"name"`
	Components *naming.Components `json:"components"`
}

// ListStrategies lists every strategy, optionally filtered by ?chain=.
func (a *StrategyAPI) ListStrategies(w http.ResponseWriter, r *http.Request) {
	l, err := a.list()
	if err != nil {
		a.logAndReply(r.Context(), "failed to get strategy list", w, r, err)
		return
	}

	resp := StrategyList{}
	if chain := r.URL.Query().Get("chain"); chain != "" {
		resp.Strategies = l.ByChain(common.ChainName(chain))
	} else {
		resp.Strategies = l.All()
	}
	if resp.Strategies == nil {
		resp.Strategies = []strategies.StrategyConfig{}
	}
	a.reply(r.Context(), w, resp)
}

// GetStrategy gets one strategy by its name.
func (a *StrategyAPI) GetStrategy(w http.ResponseWriter, r *http.Request) {
	l, err := a.list()
	if err != nil {
		a.logAndReply(r.Context(), "failed to get strategy list", w, r, err)
		return
	}

	name := chi.URLParam(r, "name")
	cfg, ok := l.ByName(name)
	if !ok {
		HumanReadableJsonErrorHandler(w, r, fmt.Errorf("strategy %q: %w", name, ErrNotFound))
		return
	}
	a.reply(r.Context(), w, cfg)
}

// ListTokens lists the token registry for one chain.
func (a *StrategyAPI) ListTokens(w http.ResponseWriter, r *http.Request) {
	a.listRegistry(w, r, a.tokens)
}

// ListAddresses lists the address registry for one chain.
func (a *StrategyAPI) ListAddresses(w http.ResponseWriter, r *http.Request) {
	a.listRegistry(w, r, a.addrs)
}

func (a *StrategyAPI) listRegistry(w http.ResponseWriter, r *http.Request, reg *registry.Registry) {
	chain := common.ChainName(chi.URLParam(r, "chain"))
	entries, err := reg.Entries(chain)
	if err != nil {
		HumanReadableJsonErrorHandler(w, r, err)
		return
	}
	a.reply(r.Context(), w, RegistryTable{
		Kind:    reg.Kind(),
		Chain:   chain,
		Entries: entries,
	})
}

// GenerateName computes a strategy name from its components. The risk and
// protocol parameters may be repeated; type defaults to LevCVX and protocol
// to Gearbox.
func (a *StrategyAPI) GenerateName(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	stratType := common.StratTypeLevCVX
	if t := q.Get("type"); t != "" {
		if err := stratType.Set(t); err != nil {
			HumanReadableJsonErrorHandler(w, r, fmt.Errorf("%w: %v", ErrBadRequest, err))
			return
		}
	}
	protocols := strategies.DefaultProtocols
	if ps := q["protocol"]; len(ps) > 0 {
		protocols = make([]common.Protocol, len(ps))
		for i, p := range ps {
			protocols[i] = common.Protocol(p)
		}
	}
	c := naming.Components{
		Type:       stratType,
		Underlying: q.Get("underlying"),
		RiskAssets: q["risk"],
		Protocols:  protocols,
		Chain:      common.ChainName(q.Get("chain")),
	}

	name, err := c.Name()
	if err != nil {
		HumanReadableJsonErrorHandler(w, r, err)
		return
	}
	a.reply(r.Context(), w, GeneratedName{Name: name, Components: &c})
}

func (a *StrategyAPI) reply(ctx context.Context, w http.ResponseWriter, body interface{}) {
	resp, err := json.Marshal(body)
	if err != nil {
		a.logger.Error("failed to marshal response",
			"request_id", ctx.Value(common.RequestIDContextKey),
			"err", err,
		)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("content-type", "application/json")
	if _, err := w.Write(resp); err != nil {
		a.logger.Error("failed to write response",
			"request_id", ctx.Value(common.RequestIDContextKey),
			"err", err,
		)
	}
}

func (a *StrategyAPI) logAndReply(ctx context.Context, msg string, w http.ResponseWriter, r *http.Request, err error) {
	a.logger.Error(msg,
		"request_id", ctx.Value(common.RequestIDContextKey),
		"err", err,
	)
	HumanReadableJsonErrorHandler(w, r, err)
}
