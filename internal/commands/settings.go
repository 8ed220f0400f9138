package commands

import (
	"encoding/json"
	"fmt"
	"time"

	flag "github.com/spf13/pflag"

	"plannercheck/internal/api"
	"plannercheck/internal/config"
)

// storeFlags override the document-store settings.
type storeFlags struct {
	uri      string
	database string
	cluster  string
	timeout  time.Duration
}

func (f *storeFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.uri, "uri", "", "")
	fs.StringVar(&f.database, "database", "", "")
	fs.StringVar(&f.cluster, "cluster", "", "")
	fs.DurationVar(&f.timeout, "connect-timeout", 0, "")
}

// apply copies set flags into cfg. A new URI re-derives the database and
// cluster names unless those are given too.
func (f *storeFlags) apply(cfg *config.Config) {
	s := &cfg.Settings
	if f.uri != "" {
		s.MongoURI = f.uri
		s.Database = config.DatabaseFromURI(f.uri)
		s.Cluster = ""
	}
	if f.database != "" {
		s.Database = f.database
	}
	if f.cluster != "" {
		s.Cluster = f.cluster
	}
	if f.timeout > 0 {
		s.ConnectTimeout = f.timeout
	}
	cfg.Finalize()
}

// apiFlags override the planner API settings.
type apiFlags struct {
	url      string
	email    string
	password string
	name     string
	timeout  time.Duration
}

func (f *apiFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.url, "api-url", "", "")
	fs.StringVar(&f.email, "email", "", "")
	fs.StringVar(&f.password, "password", "", "")
	fs.StringVar(&f.name, "name", "", "")
	fs.DurationVar(&f.timeout, "timeout", 0, "")
}

func (f *apiFlags) apply(cfg *config.Config) {
	s := &cfg.Settings
	if f.url != "" {
		s.APIURL = f.url
	}
	if f.email != "" {
		s.Email = f.email
	}
	if f.password != "" {
		s.Password = f.password
	}
	if f.name != "" {
		s.Name = f.name
	}
	if f.timeout > 0 {
		s.RequestTimeout = f.timeout
	}
	cfg.Finalize()
}

// loadSession reads the saved API session.
func loadSession(cfg *config.Config) (api.Session, error) {
	data, err := cfg.ReadSession()
	if err != nil {
		return api.Session{}, err
	}
	var sess api.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return api.Session{}, fmt.Errorf("invalid session file: %w", err)
	}
	if sess.Token == "" {
		return api.Session{}, fmt.Errorf("invalid session file: no token")
	}
	return sess, nil
}

// saveSession persists sess for later commands.
func saveSession(cfg *config.Config, sess api.Session) error {
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}
	return cfg.WriteSession(data)
}
