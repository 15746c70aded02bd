// Package config reads each process's recognized configuration keys:
// plain os.Getenv for deployment-local knobs (port, OTel endpoint, Vault
// address), with the credential-bearing values (directory/mapi/
// notificationPlugins secrets) sourced from Vault via
// SecretManager.GetKV2 rather than plaintext env.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Master holds every key spec.md §6 lists for the Master process.
type Master struct {
	Port int

	UFDS UFDS
	MAPI MAPI

	NotificationPlugins map[string]PluginConfig

	AccountCache CacheConfig
	ProbeCache   CacheConfig

	NATSURL string
	PGURL   string

	EventDedupWindow  time.Duration
	ReaperSweepPeriod time.Duration
}

// UFDS is ufds.{url,rootDn,password} — the directory bind parameters.
type UFDS struct {
	URL      string
	RootDN   string
	Password string
}

// MAPI is mapi.{url,username,password} — the cloud machine-info API.
type MAPI struct {
	URL      string
	Username string
	Password string
}

// PluginConfig is one notificationPlugins.{name} entry: {path, config}.
type PluginConfig struct {
	Path   string
	Config map[string]any
}

// CacheConfig is accountCache/probeCache's {size, expiry}.
type CacheConfig struct {
	Size       int
	ExpirySecs int
}

// LoadMaster builds a Master config from environment variables plus a
// Vault KV2 secret bundle already fetched by the caller (the caller owns
// the SecretManager the way iam-service's main.go does, so this package
// stays free of a live Vault dependency).
func LoadMaster(secrets map[string]any) Master {
	cfg := Master{
		Port: envInt("AMON_MASTER_PORT", 8080),
		UFDS: UFDS{
			URL:      secretString(secrets, "UFDS_URL", envOr("UFDS_URL", "ldap://localhost:389")),
			RootDN:   secretString(secrets, "UFDS_ROOT_DN", os.Getenv("UFDS_ROOT_DN")),
			Password: secretString(secrets, "UFDS_PASSWORD", os.Getenv("UFDS_PASSWORD")),
		},
		MAPI: MAPI{
			URL:      secretString(secrets, "MAPI_URL", envOr("MAPI_URL", "http://localhost:8081")),
			Username: secretString(secrets, "MAPI_USERNAME", os.Getenv("MAPI_USERNAME")),
			Password: secretString(secrets, "MAPI_PASSWORD", os.Getenv("MAPI_PASSWORD")),
		},
		NotificationPlugins: map[string]PluginConfig{
			"email":   {Path: "email", Config: map[string]any{}},
			"webhook": {Path: "webhook", Config: map[string]any{}},
			"sms":     {Path: "sms", Config: map[string]any{}},
		},
		AccountCache: CacheConfig{Size: envInt("ACCOUNT_CACHE_SIZE", 5000), ExpirySecs: envInt("ACCOUNT_CACHE_EXPIRY", 60)},
		ProbeCache:   CacheConfig{Size: envInt("PROBE_CACHE_SIZE", 20000), ExpirySecs: envInt("PROBE_CACHE_EXPIRY", 60)},
		NATSURL:      secretString(secrets, "NATS_URL", envOr("NATS_URL", "nats://localhost:4222")),
		PGURL:        secretString(secrets, "PG_URL", os.Getenv("PG_URL")),

		EventDedupWindow:  time.Duration(envInt("EVENT_DEDUP_WINDOW_SECS", 86400)) * time.Second,
		ReaperSweepPeriod: time.Duration(envInt("EVENT_DEDUP_REAPER_PERIOD_SECS", 300)) * time.Second,
	}
	return cfg
}

// Relay holds the keys spec.md §4.E/§6 lists for the relay process: which
// Master to poll, where to poll it for, how often, and where to cache
// manifests on local disk.
type Relay struct {
	Port int

	MasterURL    string
	DataDir      string
	PollInterval time.Duration

	Targets []Target
}

// Target is one (targetType, uuid) pair a relay serves — a tenant machine
// sandbox or the global zone's server UUID (spec.md §4.E).
type Target struct {
	Type string // "machine" or "server"
	UUID string
}

// LoadRelay builds a Relay config from environment variables. AMON_RELAY_TARGETS
// is a comma-separated list of "type:uuid" pairs and is the only source of
// targets: there is no discovery from a zone inventory, and a relay started
// without it set polls no targets.
func LoadRelay() Relay {
	return Relay{
		Port:         envInt("AMON_RELAY_PORT", 8090),
		MasterURL:    envOr("AMON_MASTER_URL", "http://localhost:8080"),
		DataDir:      envOr("AMON_RELAY_DATA_DIR", "/var/db/amon-relay"),
		PollInterval: time.Duration(envInt("AMON_RELAY_POLL_INTERVAL_SECS", 30)) * time.Second,
		Targets:      parseTargets(os.Getenv("AMON_RELAY_TARGETS")),
	}
}

func parseTargets(raw string) []Target {
	if raw == "" {
		return nil
	}
	var targets []Target
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		typeAndUUID := strings.SplitN(part, ":", 2)
		if len(typeAndUUID) != 2 {
			continue
		}
		targets = append(targets, Target{Type: typeAndUUID[0], UUID: typeAndUUID[1]})
	}
	return targets
}

// Agent holds the keys an agent process needs: which relay to poll and how
// often (spec.md §4.E's agent contract, left unspecified beyond HEAD/GET
// semantics — the poll cadence is this implementation's choice).
type Agent struct {
	RelayURL     string
	PollInterval time.Duration

	TargetType string // "machine" or "server" — which manifest this agent reconciles against
	TargetUUID string
}

func LoadAgent() Agent {
	return Agent{
		RelayURL:     envOr("AMON_RELAY_URL", "http://localhost:8090"),
		PollInterval: time.Duration(envInt("AMON_AGENT_POLL_INTERVAL_SECS", 10)) * time.Second,
		TargetType:   envOr("AMON_AGENT_TARGET_TYPE", "machine"),
		TargetUUID:   os.Getenv("AMON_AGENT_TARGET_UUID"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// secretString prefers the Vault-sourced value, falling back to an
// already-resolved env/default value when Vault did not carry the key.
func secretString(secrets map[string]any, key, fallback string) string {
	if v, ok := secrets[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return fallback
}
