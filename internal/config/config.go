// Package config resolves the server configuration. Values come from
// defaults, then an optional YAML file, then CABLECLUB_* environment
// variables, and are validated once at startup. A Config is never changed
// after Load returns it.
package config

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"golang.org/x/mod/semver"

	"github.com/roach88/cableclub/internal/party"
)

// EnvPrefix is prepended to the upper-cased key of every setting.
const EnvPrefix = "CABLECLUB_"

// Config holds every server setting. The yaml tags name the keys of the
// config file, the env tags the variables after EnvPrefix, and the json
// tags drive schema validation.
type Config struct {
	Host     string `yaml:"host" json:"host" env:"HOST"`
	Port     int    `yaml:"port" json:"port" env:"PORT"`
	PBSDir   string `yaml:"pbs_dir" json:"pbs_dir" env:"PBS_DIR"`
	RulesDir string `yaml:"rules_dir" json:"rules_dir" env:"RULES_DIR"`
	LogDir   string `yaml:"log_dir" json:"log_dir" env:"LOG_DIR"`

	LogLevel  string `yaml:"log_level" json:"log_level" env:"LOG_LEVEL"`
	LogFormat string `yaml:"log_format" json:"log_format" env:"LOG_FORMAT"`

	RulesRefreshRate int  `yaml:"rules_refresh_rate" json:"rules_refresh_rate" env:"RULES_REFRESH_RATE"`
	RulesWatch       bool `yaml:"rules_watch" json:"rules_watch" env:"RULES_WATCH"`
	PollIntervalMS   int  `yaml:"poll_interval_ms" json:"poll_interval_ms" env:"POLL_INTERVAL_MS"`

	GameVersion string `yaml:"game_version" json:"game_version" env:"GAME_VERSION"`

	PokemonMaxNameSize int   `yaml:"pokemon_max_name_size" json:"pokemon_max_name_size" env:"POKEMON_MAX_NAME_SIZE"`
	PlayerMaxNameSize  int   `yaml:"player_max_name_size" json:"player_max_name_size" env:"PLAYER_MAX_NAME_SIZE"`
	MaximumLevel       int64 `yaml:"maximum_level" json:"maximum_level" env:"MAXIMUM_LEVEL"`
	IVStatLimit        int64 `yaml:"iv_stat_limit" json:"iv_stat_limit" env:"IV_STAT_LIMIT"`
	EVLimit            int64 `yaml:"ev_limit" json:"ev_limit" env:"EV_LIMIT"`
	EVStatLimit        int64 `yaml:"ev_stat_limit" json:"ev_stat_limit" env:"EV_STAT_LIMIT"`

	EssentialsDeluxeInstalled bool `yaml:"essentials_deluxe_installed" json:"essentials_deluxe_installed" env:"ESSENTIALS_DELUXE_INSTALLED"`
	MUIMementosInstalled      bool `yaml:"mui_mementos_installed" json:"mui_mementos_installed" env:"MUI_MEMENTOS_INSTALLED"`
	ZUDDynamaxInstalled       bool `yaml:"zud_dynamax_installed" json:"zud_dynamax_installed" env:"ZUD_DYNAMAX_INSTALLED"`
	PLAInstalled              bool `yaml:"pla_installed" json:"pla_installed" env:"PLA_INSTALLED"`
	TeraInstalled             bool `yaml:"tera_installed" json:"tera_installed" env:"TERA_INSTALLED"`
	FocusInstalled            bool `yaml:"focus_installed" json:"focus_installed" env:"FOCUS_INSTALLED"`

	MaxFusionDepth     int  `yaml:"max_fusion_depth" json:"max_fusion_depth" env:"MAX_FUSION_DEPTH"`
	DetailedRejections bool `yaml:"detailed_rejections" json:"detailed_rejections" env:"DETAILED_REJECTIONS"`
	MaxLineBytes       int  `yaml:"max_line_bytes" json:"max_line_bytes" env:"MAX_LINE_BYTES"`
	MaxOutboundBytes   int  `yaml:"max_outbound_bytes" json:"max_outbound_bytes" env:"MAX_OUTBOUND_BYTES"`

	AcceptRate  float64 `yaml:"accept_rate" json:"accept_rate" env:"ACCEPT_RATE"`
	AcceptBurst int     `yaml:"accept_burst" json:"accept_burst" env:"ACCEPT_BURST"`

	TCPUserTimeoutMS int `yaml:"tcp_user_timeout_ms" json:"tcp_user_timeout_ms" env:"TCP_USER_TIMEOUT_MS"`

	MetricsAddr string `yaml:"metrics_addr" json:"metrics_addr" env:"METRICS_ADDR"`
	Database    string `yaml:"database" json:"database" env:"DATABASE"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Host:               "127.0.0.1",
		Port:               9999,
		PBSDir:             "PBS",
		RulesDir:           "OnlinePresets",
		LogLevel:           "info",
		LogFormat:          "text",
		RulesRefreshRate:   60,
		PollIntervalMS:     1000,
		GameVersion:        "1.0.0",
		PokemonMaxNameSize: 10,
		PlayerMaxNameSize:  10,
		MaximumLevel:       100,
		IVStatLimit:        31,
		EVLimit:            510,
		EVStatLimit:        252,
		MaxFusionDepth:     1,
		MaxLineBytes:       1 << 20,
		MaxOutboundBytes:   4 << 20,
		AcceptBurst:        16,
		TCPUserTimeoutMS:   30000,
	}
}

// Address is the host:port the server listens on.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// RefreshInterval is how often the rules directory is checked.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RulesRefreshRate) * time.Second
}

// UserTimeout is how long written data may stay unacknowledged before a
// client connection is dropped. Zero keeps the system default.
func (c *Config) UserTimeout() time.Duration {
	return time.Duration(c.TCPUserTimeoutMS) * time.Millisecond
}

// PollInterval bounds each wait of the server loop.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// MinVersion is the lowest accepted client version in canonical semver
// form. Validate guarantees it parses.
func (c *Config) MinVersion() string {
	v, _ := ParseVersion(c.GameVersion)
	return v
}

// Features derives the party sections enabled by the install flags.
func (c *Config) Features() party.Features {
	return party.Features{
		PLA:              c.PLAInstalled,
		EssentialsDeluxe: c.EssentialsDeluxeInstalled,
		MUIMementos:      c.MUIMementosInstalled,
		ZUDDynamax:       c.ZUDDynamaxInstalled,
		Tera:             c.TeraInstalled,
		Focus:            c.FocusInstalled,
	}
}

// Limits derives the party bounds.
func (c *Config) Limits() party.Limits {
	return party.Limits{
		MaxLevel:       c.MaximumLevel,
		IVStatLimit:    c.IVStatLimit,
		EVStatLimit:    c.EVStatLimit,
		EVLimit:        c.EVLimit,
		PlayerNameMax:  c.PlayerMaxNameSize,
		PokemonNameMax: c.PokemonMaxNameSize,
		MaxFusionDepth: c.MaxFusionDepth,
	}
}

// SlogLevel maps LogLevel onto a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseVersion turns a dotted version such as "1.11" into canonical
// semver ("v1.11.0"). The leading "v" is optional.
func ParseVersion(raw string) (string, bool) {
	v := strings.TrimSpace(raw)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "", false
	}
	return semver.Canonical(v), true
}

// VersionAtLeast reports whether client is a valid version no lower than
// min. min must already be canonical.
func VersionAtLeast(client, min string) bool {
	v, ok := ParseVersion(client)
	if !ok {
		return false
	}
	return semver.Compare(v, min) >= 0
}

func (c *Config) String() string {
	return fmt.Sprintf("%s (pbs=%s rules=%s version=%s)", c.Address(), c.PBSDir, c.RulesDir, c.GameVersion)
}
