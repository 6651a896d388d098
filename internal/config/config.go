package config

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"go.yaml.in/yaml/v4"

	"github.com/vango-dev/lokation/internal/errors"
	"github.com/vango-dev/lokation/pkg/location"
	"github.com/vango-dev/lokation/pkg/remote"
	"github.com/vango-dev/lokation/pkg/server"
)

const (
	// BaseName is the configuration file name without extension.
	BaseName = "lokation"

	// DefaultAddress is the default listen address.
	DefaultAddress = ":8080"

	// DefaultTitle is the default demo page title.
	DefaultTitle = "lokation"
)

// FileNames lists the configuration files Load looks for, in order.
var FileNames = []string{
	BaseName + ".json",
	BaseName + ".toml",
	BaseName + ".yaml",
	BaseName + ".yml",
}

// Config represents a lokation configuration file.
type Config struct {
	// Server contains the HTTP and WebSocket server settings.
	Server ServerConfig `json:"server" toml:"server" yaml:"server"`

	// Log contains logging settings.
	Log LogConfig `json:"log" toml:"log" yaml:"log"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains server settings.
type ServerConfig struct {
	// Address is the address to listen on.
	Address string `json:"address,omitempty" toml:"address,omitempty" yaml:"address,omitempty"`

	// Title is the demo page title.
	Title string `json:"title,omitempty" toml:"title,omitempty" yaml:"title,omitempty"`

	// ForceFragment puts every session in fragment mode.
	ForceFragment bool `json:"forceFragment,omitempty" toml:"forceFragment,omitempty" yaml:"forceFragment,omitempty"`

	// DefaultFragment is what Replace("") falls back to in fragment mode.
	DefaultFragment string `json:"defaultFragment,omitempty" toml:"defaultFragment,omitempty" yaml:"defaultFragment,omitempty"`

	// DevMode disables thin client caching.
	DevMode bool `json:"devMode,omitempty" toml:"devMode,omitempty" yaml:"devMode,omitempty"`

	// ShutdownTimeout bounds graceful shutdown (e.g., "30s").
	ShutdownTimeout string `json:"shutdownTimeout,omitempty" toml:"shutdownTimeout,omitempty" yaml:"shutdownTimeout,omitempty"`

	// Session contains per-connection settings.
	Session SessionConfig `json:"session" toml:"session" yaml:"session"`
}

// SessionConfig contains per-connection settings. Durations use
// time.ParseDuration syntax.
type SessionConfig struct {
	HandshakeTimeout  string `json:"handshakeTimeout,omitempty" toml:"handshakeTimeout,omitempty" yaml:"handshakeTimeout,omitempty"`
	ReadTimeout       string `json:"readTimeout,omitempty" toml:"readTimeout,omitempty" yaml:"readTimeout,omitempty"`
	WriteTimeout      string `json:"writeTimeout,omitempty" toml:"writeTimeout,omitempty" yaml:"writeTimeout,omitempty"`
	HeartbeatInterval string `json:"heartbeatInterval,omitempty" toml:"heartbeatInterval,omitempty" yaml:"heartbeatInterval,omitempty"`
	EventQueueSize    int    `json:"eventQueueSize,omitempty" toml:"eventQueueSize,omitempty" yaml:"eventQueueSize,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `json:"level,omitempty" toml:"level,omitempty" yaml:"level,omitempty"`

	// Format is "text" or "json".
	Format string `json:"format,omitempty" toml:"format,omitempty" yaml:"format,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Address:         DefaultAddress,
			Title:           DefaultTitle,
			DefaultFragment: location.DefaultFragment,
			ShutdownTimeout: "30s",
			Session: SessionConfig{
				HandshakeTimeout:  "5s",
				ReadTimeout:       "60s",
				WriteTimeout:      "10s",
				HeartbeatInterval: "25s",
				EventQueueSize:    64,
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the first configuration file found in dir.
func Load(dir string) (*Config, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("E123").
		WithDetail("No " + BaseName + ".{json,toml,yaml} found in " + dir).
		WithSuggestion("Create " + BaseName + ".toml or pass --config")
}

// LoadFile reads configuration from the specified file path. The format
// is chosen by extension.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E123").
				WithDetail("No configuration file at " + path)
		}
		return nil, errors.New("E120").Wrap(err)
	}

	cfg := New()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = decodeJSON(path, data, cfg)
	case ".toml":
		err = decodeTOML(path, data, cfg)
	case ".yaml", ".yml":
		err = decodeYAML(path, data, cfg)
	default:
		return nil, errors.New("E121").
			WithDetail("Extension " + ext + " is not supported").
			WithSuggestion("Use .json, .toml, .yaml or .yml")
	}
	if err != nil {
		return nil, err
	}

	cfg.configPath = path
	cfg.applyDefaults()
	return cfg, nil
}

func decodeJSON(path string, data []byte, cfg *Config) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		e := errors.New("E120").
			WithSuggestion("Check that " + filepath.Base(path) + " is valid JSON").
			Wrap(err)
		var syntax *json.SyntaxError
		if stderrors.As(err, &syntax) {
			line, col := lineCol(data, syntax.Offset)
			e.WithLocation(path, line, col)
		}
		return e
	}
	return nil
}

func decodeTOML(path string, data []byte, cfg *Config) error {
	if err := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(cfg); err != nil {
		e := errors.New("E120").
			WithSuggestion("Check that " + filepath.Base(path) + " is valid TOML").
			Wrap(err)
		var decErr *toml.DecodeError
		if stderrors.As(err, &decErr) {
			row, col := decErr.Position()
			e.WithLocation(path, row, col)
		}
		return e
	}
	return nil
}

// yamlLine finds the line number in a YAML error message.
var yamlLine = regexp.MustCompile(`line (\d+)`)

func decodeYAML(path string, data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !stderrors.Is(err, io.EOF) {
		e := errors.New("E120").
			WithSuggestion("Check that " + filepath.Base(path) + " is valid YAML").
			Wrap(err)
		if m := yamlLine.FindStringSubmatch(err.Error()); m != nil {
			line, _ := strconv.Atoi(m[1])
			e.WithLocation(path, line, 0)
		}
		return e
	}
	return nil
}

// lineCol converts a byte offset into a 1-based line and column.
func lineCol(data []byte, offset int64) (int, int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	before := data[:offset]
	line := bytes.Count(before, []byte("\n")) + 1
	col := int(offset) - bytes.LastIndexByte(before, '\n')
	return line, col
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	d := New()
	if c.Server.Address == "" {
		c.Server.Address = d.Server.Address
	}
	if c.Server.Title == "" {
		c.Server.Title = d.Server.Title
	}
	if c.Server.DefaultFragment == "" {
		c.Server.DefaultFragment = d.Server.DefaultFragment
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = d.Server.ShutdownTimeout
	}

	s, ds := &c.Server.Session, d.Server.Session
	if s.HandshakeTimeout == "" {
		s.HandshakeTimeout = ds.HandshakeTimeout
	}
	if s.ReadTimeout == "" {
		s.ReadTimeout = ds.ReadTimeout
	}
	if s.WriteTimeout == "" {
		s.WriteTimeout = ds.WriteTimeout
	}
	if s.HeartbeatInterval == "" {
		s.HeartbeatInterval = ds.HeartbeatInterval
	}
	if s.EventQueueSize == 0 {
		s.EventQueueSize = ds.EventQueueSize
	}

	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := c.ServerConfig(); err != nil {
		return err
	}
	if _, err := c.Log.level(); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return c.invalid("log.format", c.Log.Format, `must be "text" or "json"`)
	}
	return nil
}

// ServerConfig converts c into a server.Config.
func (c *Config) ServerConfig() (*server.Config, error) {
	if !strings.HasPrefix(c.Server.DefaultFragment, location.FragmentDelimiter) &&
		!strings.HasPrefix(c.Server.DefaultFragment, "/") {
		return nil, c.invalid("server.defaultFragment", c.Server.DefaultFragment, `must start with "/"`)
	}

	sc := server.DefaultConfig()
	sc.Address = c.Server.Address
	sc.Title = c.Server.Title
	sc.ForceFragment = c.Server.ForceFragment
	sc.DefaultFragment = strings.TrimPrefix(c.Server.DefaultFragment, location.FragmentDelimiter)
	sc.DevMode = c.Server.DevMode

	var err error
	if sc.ShutdownTimeout, err = c.duration("server.shutdownTimeout", c.Server.ShutdownTimeout); err != nil {
		return nil, err
	}

	s := c.Server.Session
	rc := remote.DefaultConfig()
	for _, f := range []struct {
		key string
		val string
		dst *time.Duration
	}{
		{"server.session.handshakeTimeout", s.HandshakeTimeout, &rc.HandshakeTimeout},
		{"server.session.readTimeout", s.ReadTimeout, &rc.ReadTimeout},
		{"server.session.writeTimeout", s.WriteTimeout, &rc.WriteTimeout},
		{"server.session.heartbeatInterval", s.HeartbeatInterval, &rc.HeartbeatInterval},
	} {
		if *f.dst, err = c.duration(f.key, f.val); err != nil {
			return nil, err
		}
	}
	if s.EventQueueSize < 0 {
		return nil, c.invalid("server.session.eventQueueSize", s.EventQueueSize, "must not be negative")
	}
	rc.EventQueueSize = s.EventQueueSize
	sc.Session = rc

	if err := sc.Validate(); err != nil {
		return nil, errors.New("E122").WithDetail(err.Error())
	}
	return sc, nil
}

func (c *Config) duration(key, val string) (time.Duration, error) {
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, c.invalid(key, val, "must be a duration such as \"30s\"")
	}
	if d <= 0 {
		return 0, c.invalid(key, val, "must be positive")
	}
	return d, nil
}

func (c *Config) invalid(key string, val any, why string) error {
	e := errors.New("E122").WithDetail(fmt.Sprintf("%s %s (got %v)", key, why, val))
	if c.configPath != "" {
		e.WithSuggestion("Fix " + key + " in " + c.configPath)
	}
	return e
}

// Handler returns a slog handler writing to w in the configured format.
func (l LogConfig) Handler(w io.Writer) (slog.Handler, error) {
	level, err := l.level()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.NewJSONHandler(w, opts), nil
	}
	return slog.NewTextHandler(w, opts), nil
}

func (l LogConfig) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, errors.New("E122").
			WithDetail("log.level must be debug, info, warn or error (got " + l.Level + ")")
	}
	return level, nil
}

// Exists reports whether dir contains a configuration file.
func Exists(dir string) bool {
	for _, name := range FileNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up directories to find the first one holding a
// configuration file.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E123").
				WithDetail("No " + BaseName + " configuration found in " + startDir + " or any parent directory").
				WithSuggestion("Create " + BaseName + ".toml or pass --config")
		}
		dir = parent
	}
}
