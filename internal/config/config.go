// Package config resolves the configuration directory, the settings file,
// environment overrides and the persisted API session.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/natefinch/atomic"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"plannercheck/internal/logging"
)

const (
	// AppName is the application directory name.
	AppName = "plannercheck"

	// SettingsFile is the optional YAML settings filename.
	SettingsFile = "config.yml"

	// SessionFile is the persisted API session filename.
	SessionFile = "session.json"
)

// Defaults applied before the settings file and environment.
const (
	DefaultMongoURI       = "mongodb://localhost:27017/swar-yoga-db"
	DefaultDatabase       = "swar-yoga-db"
	DefaultAPIURL         = "http://localhost:3001/api"
	DefaultName           = "Test User"
	DefaultConnectTimeout = 5 * time.Second
	DefaultRequestTimeout = 5 * time.Second
)

// Environment variables read after .env is loaded.
const (
	EnvMongoURI       = "MONGODB_URI"
	EnvDatabase       = "MONGODB_DATABASE"
	EnvCluster        = "PLANNER_CLUSTER"
	EnvConnectTimeout = "PLANNER_CONNECT_TIMEOUT"
	EnvLookupEmails   = "PLANNER_LOOKUP_EMAILS"
	EnvAPIURL         = "PLANNER_API_URL"
	EnvEmail          = "PLANNER_EMAIL"
	EnvPassword       = "PLANNER_PASSWORD"
	EnvName           = "PLANNER_NAME"
	EnvRequestTimeout = "PLANNER_REQUEST_TIMEOUT"
)

// ErrMissingCredentials is returned when the API account is not configured.
var ErrMissingCredentials = errors.New("account email and password required")

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// Logger receives structured logs. Never nil after New.
	Logger *zap.Logger

	// Settings is the resolved run configuration.
	Settings Settings
}

// Settings is the run configuration shared by all commands.
type Settings struct {
	MongoURI       string        `yaml:"mongo_uri,omitempty"`
	Database       string        `yaml:"database,omitempty"`
	Cluster        string        `yaml:"cluster,omitempty"`
	ConnectTimeout time.Duration `yaml:"connect_timeout,omitempty"`
	LookupEmails   []string      `yaml:"lookup_emails,omitempty"`

	APIURL         string        `yaml:"api_url,omitempty"`
	Email          string        `yaml:"email,omitempty"`
	Password       string        `yaml:"password,omitempty"`
	Name           string        `yaml:"name,omitempty"`
	RequestTimeout time.Duration `yaml:"request_timeout,omitempty"`
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() Settings {
	return Settings{
		MongoURI:       DefaultMongoURI,
		ConnectTimeout: DefaultConnectTimeout,
		APIURL:         DefaultAPIURL,
		Name:           DefaultName,
		RequestTimeout: DefaultRequestTimeout,
	}
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/plannercheck or $HOME/.config/plannercheck.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{
		Dir:      dir,
		Logger:   zap.NewNop(),
		Settings: DefaultSettings(),
	}, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// SettingsPath returns the path to the settings file.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.Dir, SettingsFile)
}

// SessionPath returns the path to the persisted session file.
func (c *Config) SessionPath() string {
	return filepath.Join(c.Dir, SessionFile)
}

// Load loads .env from the working directory (if present) and resolves
// settings from the settings file and the process environment.
func (c *Config) Load() error {
	_ = godotenv.Load()
	return c.LoadFrom(os.Getenv)
}

// LoadFrom resolves settings from the settings file, then getenv.
// A missing settings file is not an error.
func (c *Config) LoadFrom(getenv func(string) string) error {
	if err := c.loadFile(); err != nil {
		return err
	}
	if err := applyEnv(&c.Settings, getenv); err != nil {
		return err
	}
	c.derive()

	c.Logger.Debug("settings resolved",
		zap.String("dir", c.Dir),
		zap.String("mongo_uri", RedactURI(c.Settings.MongoURI)),
		zap.String("database", c.Settings.Database),
		zap.String("cluster", c.Settings.Cluster),
		zap.Duration("connect_timeout", c.Settings.ConnectTimeout),
		zap.Strings("lookup_emails", c.Settings.LookupEmails),
		zap.String("api_url", c.Settings.APIURL),
		zap.String("email", c.Settings.Email),
		zap.String("password", logging.Mask(c.Settings.Password)),
		zap.Duration("request_timeout", c.Settings.RequestTimeout),
	)
	return nil
}

// Finalize fills in values derived from other settings. Call after applying
// flag overrides.
func (c *Config) Finalize() {
	c.derive()
}

func (c *Config) loadFile() error {
	data, err := os.ReadFile(c.SettingsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading settings: %w", err)
	}

	var file Settings
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing settings %s: %w", c.SettingsPath(), err)
	}
	c.Settings.merge(file)
	return nil
}

// merge copies every non-zero field of o into s.
func (s *Settings) merge(o Settings) {
	if o.MongoURI != "" {
		s.MongoURI = o.MongoURI
	}
	if o.Database != "" {
		s.Database = o.Database
	}
	if o.Cluster != "" {
		s.Cluster = o.Cluster
	}
	if o.ConnectTimeout > 0 {
		s.ConnectTimeout = o.ConnectTimeout
	}
	if len(o.LookupEmails) > 0 {
		s.LookupEmails = o.LookupEmails
	}
	if o.APIURL != "" {
		s.APIURL = o.APIURL
	}
	if o.Email != "" {
		s.Email = o.Email
	}
	if o.Password != "" {
		s.Password = o.Password
	}
	if o.Name != "" {
		s.Name = o.Name
	}
	if o.RequestTimeout > 0 {
		s.RequestTimeout = o.RequestTimeout
	}
}

func applyEnv(s *Settings, getenv func(string) string) error {
	var env Settings
	env.MongoURI = getenv(EnvMongoURI)
	env.Database = getenv(EnvDatabase)
	env.Cluster = getenv(EnvCluster)
	env.LookupEmails = SplitList(getenv(EnvLookupEmails))
	env.APIURL = getenv(EnvAPIURL)
	env.Email = getenv(EnvEmail)
	env.Password = getenv(EnvPassword)
	env.Name = getenv(EnvName)

	var err error
	if env.ConnectTimeout, err = parseDuration(EnvConnectTimeout, getenv(EnvConnectTimeout)); err != nil {
		return err
	}
	if env.RequestTimeout, err = parseDuration(EnvRequestTimeout, getenv(EnvRequestTimeout)); err != nil {
		return err
	}

	s.merge(env)
	return nil
}

func parseDuration(name, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", name, value)
	}
	return d, nil
}

func (c *Config) derive() {
	s := &c.Settings
	s.APIURL = strings.TrimRight(s.APIURL, "/")
	if s.Database == "" {
		s.Database = DatabaseFromURI(s.MongoURI)
	}
	if s.Database == "" {
		s.Database = DefaultDatabase
	}
	if s.Cluster == "" {
		s.Cluster = ClusterFromURI(s.MongoURI)
	}
}

// RequireCredentials reports ErrMissingCredentials when the API account is
// not configured.
func (s Settings) RequireCredentials() error {
	if strings.TrimSpace(s.Email) == "" || s.Password == "" {
		return ErrMissingCredentials
	}
	return nil
}

// SplitList splits a comma-separated list, dropping empty items.
func SplitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// DatabaseFromURI returns the database path component of a MongoDB
// connection string, or "" when none is given.
func DatabaseFromURI(uri string) string {
	_, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return ""
	}
	_, path, ok := strings.Cut(rest, "/")
	if !ok {
		return ""
	}
	path, _, _ = strings.Cut(path, "?")
	return path
}

// ClusterFromURI returns the first DNS label of the first host in a MongoDB
// connection string ("swaryogadb" for "mongodb+srv://u:p@swaryogadb.x.mongodb.net/db").
func ClusterFromURI(uri string) string {
	_, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return ""
	}
	hosts, _, _ := strings.Cut(rest, "/")
	hosts, _, _ = strings.Cut(hosts, "?")
	if at := strings.LastIndex(hosts, "@"); at >= 0 {
		hosts = hosts[at+1:]
	}
	host, _, _ := strings.Cut(hosts, ",")
	host, _, _ = strings.Cut(host, ":")
	label, _, _ := strings.Cut(host, ".")
	return label
}

// RedactURI hides the password of a connection string for logging.
func RedactURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return logging.Mask(uri)
	}
	return u.Redacted()
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasSession checks if the session file exists.
func (c *Config) HasSession() bool {
	_, err := os.Stat(c.SessionPath())
	return err == nil
}

// ReadSession returns the raw session file.
func (c *Config) ReadSession() ([]byte, error) {
	return os.ReadFile(c.SessionPath())
}

// WriteSession atomically replaces the session file with data (mode 0600).
func (c *Config) WriteSession(data []byte) error {
	if err := c.EnsureDir(); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := atomic.WriteFile(c.SessionPath(), bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	return os.Chmod(c.SessionPath(), 0600)
}

// RemoveSession deletes the session file.
func (c *Config) RemoveSession() error {
	return os.Remove(c.SessionPath())
}
