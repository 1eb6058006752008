// Package secrets resolves per-request credentials from an injected source.
//
// Handlers never read the environment directly. They ask a Source for the
// keys an endpoint needs and get back a Set that lives only as long as the
// request that resolved it.
package secrets

import (
	"os"
	"strings"
)

// Credential keys used by the relay endpoints.
const (
	InferenceAPIKey           = "INFERENCE_API_KEY"
	AgentSearchToken          = "AGENT_SEARCH_TOKEN"
	AgentSearchDeploymentID   = "AGENT_SEARCH_DEPLOYMENT_ID"
	AgentResearchToken        = "AGENT_RESEARCH_TOKEN"
	AgentResearchDeploymentID = "AGENT_RESEARCH_DEPLOYMENT_ID"
)

// Source looks up a secret value by key.
type Source interface {
	Lookup(key string) (string, bool)
}

// Env reads secrets from the process environment.
type Env struct{}

// Lookup implements Source.
func (Env) Lookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

// Map is a fixed Source, mostly for tests.
type Map map[string]string

// Lookup implements Source.
func (m Map) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// MissingError lists required keys that were absent or blank.
type MissingError struct {
	Keys []string
}

func (e *MissingError) Error() string {
	return "server misconfigured: missing " + strings.Join(e.Keys, ", ")
}

// Set holds the values resolved for a single request.
type Set map[string]string

// Get returns the value for key, or "" if it was not resolved.
func (s Set) Get(key string) string {
	return s[key]
}

// Resolve fetches every key from src. Blank values count as missing. When
// anything is missing the returned error is a *MissingError naming all of
// the missing keys in the order requested.
func Resolve(src Source, keys ...string) (Set, error) {
	set := make(Set, len(keys))
	var missing []string
	for _, k := range keys {
		v, ok := src.Lookup(k)
		v = strings.TrimSpace(v)
		if !ok || v == "" {
			missing = append(missing, k)
			continue
		}
		set[k] = v
	}
	if len(missing) > 0 {
		return nil, &MissingError{Keys: missing}
	}
	return set, nil
}
