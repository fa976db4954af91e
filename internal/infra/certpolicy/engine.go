// Package certpolicy decides whether a certificate URL from an assertion
// header may be fetched. The decision is a Rego policy over a configured
// host allow-list: with no hosts configured every source is accepted, and
// once hosts are listed only https URLs on those hosts pass.
package certpolicy

import (
	"context"
	"errors"
	"net/url"

	"github.com/open-policy-agent/opa/rego"
	"github.com/open-policy-agent/opa/storage/inmem"
)

const defaultQuery = "data.rpserver.certs.allow"

const policyModule = `package rpserver.certs

default allow = false

allow {
	count(data.allowed_hosts) == 0
}

allow {
	input.scheme == "https"
	data.allowed_hosts[_] == input.host
}
`

type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine compiles the allow-list policy with allowedHosts as policy data.
// Host entries are compared against the URL's host including any port.
func NewEngine(ctx context.Context, allowedHosts []string) (*Engine, error) {
	hosts := make([]any, 0, len(allowedHosts))
	for _, h := range allowedHosts {
		hosts = append(hosts, h)
	}
	store := inmem.NewFromObject(map[string]any{"allowed_hosts": hosts})

	prepared, err := rego.New(
		rego.Query(defaultQuery),
		rego.Module("certs.rego", policyModule),
		rego.Store(store),
		rego.StrictBuiltinErrors(true),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, err
	}
	return &Engine{query: prepared}, nil
}

// Allow reports whether the certificate at rawURL may be fetched. An
// unparsable URL is never allowed.
func (e *Engine) Allow(ctx context.Context, rawURL string) (bool, error) {
	if e == nil {
		return false, errors.New("cert policy engine is nil")
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false, nil
	}
	input := map[string]any{
		"scheme": u.Scheme,
		"host":   u.Host,
	}
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return false, err
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return false, errors.New("empty policy result")
	}
	allowed, ok := results[0].Expressions[0].Value.(bool)
	if !ok {
		return false, errors.New("policy result is not a boolean")
	}
	return allowed, nil
}
