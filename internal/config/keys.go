package config

import "os"

// APIKeySource says where a provider key was picked up from.
type APIKeySource string

const (
	KeySourceEnv    APIKeySource = "env"
	KeySourceConfig APIKeySource = "config"
	KeySourceNone   APIKeySource = "none"
)

// KeyStatus describes one provider key without exposing it.
type KeyStatus struct {
	Name   string       `json:"name"   yaml:"name"`
	EnvVar string       `json:"env_var" yaml:"env_var"`
	Source APIKeySource `json:"source" yaml:"source"`
	IsSet  bool         `json:"is_set" yaml:"is_set"`
	Masked string       `json:"masked,omitempty" yaml:"masked,omitempty"`
}

// providerKey binds a display name to its env override and config field.
type providerKey struct {
	name  string
	env   string
	value func(ProvidersConfig) string
}

var providerKeys = []providerKey{
	{"Alpha Vantage API Key", EnvPrefix + "_PROVIDERS_ALPHAVANTAGE_KEY", func(p ProvidersConfig) string { return p.AlphaVantageKey }},
	{"Finnhub API Key", EnvPrefix + "_PROVIDERS_FINNHUB_KEY", func(p ProvidersConfig) string { return p.FinnhubKey }},
}

// CheckAPIKeys reports every provider key in quote-fallback order.
func CheckAPIKeys(cfg *Config) []KeyStatus {
	out := make([]KeyStatus, 0, len(providerKeys))
	for _, k := range providerKeys {
		out = append(out, checkKey(k.name, k.value(cfg.Providers), k.env))
	}
	return out
}

// HasAnyProviderKey reports whether at least one provider can be queried.
func HasAnyProviderKey(cfg *Config) bool {
	for _, k := range providerKeys {
		if k.value(cfg.Providers) != "" {
			return true
		}
	}
	return false
}

func checkKey(name, value, envVar string) KeyStatus {
	ks := KeyStatus{Name: name, EnvVar: envVar, Source: KeySourceNone}
	if value == "" {
		return ks
	}

	ks.IsSet = true
	ks.Masked = maskKey(value)
	// The env override wins in Load, so a matching variable is the source.
	if os.Getenv(envVar) == value {
		ks.Source = KeySourceEnv
		return ks
	}
	ks.Source = KeySourceConfig
	return ks
}

// maskKey keeps three characters at each end; short keys are hidden entirely.
func maskKey(key string) string {
	const keep = 3
	if len(key) <= 2*keep+2 {
		return "***"
	}
	return key[:keep] + "..." + key[len(key)-keep:]
}
