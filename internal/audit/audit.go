// Package audit inspects the planner's document store: collections, counts,
// representative samples and known-record lookups. Reports are built as
// values; rendering lives in package output.
package audit

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"plannercheck/internal/config"
	"plannercheck/internal/field"
	"plannercheck/internal/store"
)

// ErrConnection wraps failures to reach the store. It is the only fatal
// audit error.
var ErrConnection = errors.New("cannot connect to document store")

const (
	// UsersCollection holds account documents.
	UsersCollection = "users"

	// LookupField is the users field matched against lookup keys.
	LookupField = "email"

	// UserField is the owner field of planner documents.
	UserField = "userId"

	// DetailLimit caps the documents shown per collection in the breakdown.
	DetailLimit = 3
)

// SampleKeys is the priority list for a document's representative field.
var SampleKeys = []string{store.IDField, "email", "title", "name"}

// UserDataCollections are the planner collections scanned per user.
var UserDataCollections = []string{
	"visions", "goals", "tasks", "todos", "health", "reminders",
	"dailyplans", "milestones", "users", "signupdata", "signindata", "contacts",
}

// CollectionSummary is the outcome for one collection.
type CollectionSummary struct {
	Name  string
	Count int64

	// Err is set when counting failed; Count is then meaningless.
	Err error

	// Sample is the representative field of one arbitrary document.
	Sample field.Value

	// SampleErr is set when fetching the sample failed.
	SampleErr error

	// Details are representative fields of up to DetailLimit documents.
	Details []field.Value

	// DetailErr is set when fetching the details failed.
	DetailErr error
}

// Empty reports a successfully counted collection with no documents.
func (c CollectionSummary) Empty() bool {
	return c.Err == nil && c.Count == 0
}

// HasData reports a successfully counted, non-empty collection.
func (c CollectionSummary) HasData() bool {
	return c.Err == nil && c.Count > 0
}

// UserLookup is the outcome of one known-record lookup.
type UserLookup struct {
	Key     string
	Found   bool
	ID      field.Value
	Name    field.Value
	Created field.Value
	Err     error
}

// Report is the full store audit.
type Report struct {
	Cluster   string
	Database  string
	Connected bool

	// ListErr is set when collections could not be enumerated.
	ListErr error

	// Collections are sorted by name.
	Collections []CollectionSummary

	// Total is the sum of successfully counted collections.
	Total int64

	// LookupKeys are the identifying keys looked up in Users.
	LookupKeys []string
	Users      []UserLookup

	Timestamp time.Time
}

// WithData returns the collections that have documents.
func (r *Report) WithData() []CollectionSummary {
	var out []CollectionSummary
	for _, c := range r.Collections {
		if c.HasData() {
			out = append(out, c)
		}
	}
	return out
}

// UserDataReport is the per-user audit across planner collections.
type UserDataReport struct {
	UserID      string
	Database    string
	Collections []CollectionSummary
	Total       int64
	Timestamp   time.Time
}

// Auditor runs audits against a store.
type Auditor struct {
	store    store.Store
	logger   *zap.Logger
	settings config.Settings

	// Now is the report clock.
	Now func() time.Time
}

// New creates an Auditor for s using cfg's settings and logger.
func New(s store.Store, cfg *config.Config) *Auditor {
	return &Auditor{
		store:    s,
		logger:   cfg.Logger.Named("audit"),
		settings: cfg.Settings,
		Now:      time.Now,
	}
}

// Connect pings the store. Failures wrap ErrConnection.
func (a *Auditor) Connect(ctx context.Context) error {
	if err := a.store.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrConnection, err)
	}
	return nil
}

// Run connects and builds the full report. Only a connection failure is
// returned as an error; every later failure is recorded in the report.
func (a *Auditor) Run(ctx context.Context) (*Report, error) {
	if err := a.Connect(ctx); err != nil {
		return nil, err
	}

	r := &Report{
		Cluster:    a.settings.Cluster,
		Database:   a.settings.Database,
		Connected:  true,
		LookupKeys: a.settings.LookupEmails,
	}

	names, err := a.store.CollectionNames(ctx)
	if err != nil {
		a.logger.Warn("listing collections failed", zap.Error(err))
		r.ListErr = err
	}
	sort.Strings(names)

	for _, name := range names {
		c := a.summarize(ctx, name)
		if c.Err == nil {
			r.Total += c.Count
		}
		r.Collections = append(r.Collections, c)
	}

	for i := range r.Collections {
		if r.Collections[i].HasData() {
			a.detail(ctx, &r.Collections[i], nil)
		}
	}

	for _, key := range r.LookupKeys {
		r.Users = append(r.Users, a.lookupUser(ctx, key))
	}

	r.Timestamp = a.Now()
	return r, nil
}

// summarize counts one collection and picks its sample.
func (a *Auditor) summarize(ctx context.Context, name string) CollectionSummary {
	c := CollectionSummary{Name: name}

	c.Count, c.Err = a.store.Count(ctx, name, nil)
	if c.Err != nil {
		a.logger.Warn("count failed", zap.String("collection", name), zap.Error(c.Err))
		return c
	}
	if c.Count == 0 {
		return c
	}

	doc, found, err := a.store.FindOne(ctx, name, nil)
	switch {
	case err != nil:
		a.logger.Warn("sample failed", zap.String("collection", name), zap.Error(err))
		c.SampleErr = err
	case found:
		c.Sample = field.First(SampleKeys, doc)
	}
	return c
}

// detail fetches up to DetailLimit documents matching filter.
func (a *Auditor) detail(ctx context.Context, c *CollectionSummary, filter store.Filter) {
	docs, err := a.store.Find(ctx, c.Name, filter, DetailLimit)
	if err != nil {
		a.logger.Warn("detail fetch failed", zap.String("collection", c.Name), zap.Error(err))
		c.DetailErr = err
		return
	}
	for _, doc := range docs {
		c.Details = append(c.Details, field.First(SampleKeys, doc))
	}
}

// lookupUser finds one account by its identifying key.
func (a *Auditor) lookupUser(ctx context.Context, key string) UserLookup {
	u := UserLookup{Key: key}

	doc, found, err := a.store.FindOne(ctx, UsersCollection, store.Filter{LookupField: key})
	if err != nil {
		a.logger.Warn("user lookup failed", zap.String("key", key), zap.Error(err))
		u.Err = err
		return u
	}
	if !found {
		return u
	}

	u.Found = true
	u.ID = field.First([]string{store.IDField}, doc)
	u.Name = field.First([]string{"name"}, doc)
	u.Created = field.First([]string{"createdAt"}, doc)
	return u
}

// RunUserData connects and reports documents owned by userID in each of
// UserDataCollections.
func (a *Auditor) RunUserData(ctx context.Context, userID string) (*UserDataReport, error) {
	if err := a.Connect(ctx); err != nil {
		return nil, err
	}

	r := &UserDataReport{UserID: userID, Database: a.settings.Database}
	filter := store.Filter{UserField: userID}

	for _, name := range UserDataCollections {
		c := CollectionSummary{Name: name}
		c.Count, c.Err = a.store.Count(ctx, name, filter)
		if c.Err != nil {
			a.logger.Warn("user count failed", zap.String("collection", name), zap.Error(c.Err))
		} else {
			r.Total += c.Count
			if c.Count > 0 {
				a.detail(ctx, &c, filter)
			}
		}
		r.Collections = append(r.Collections, c)
	}

	r.Timestamp = a.Now()
	return r, nil
}
