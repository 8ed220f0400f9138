// Package smoke drives the planner API end to end: authenticate, create one
// record of every resource kind, then re-read each listable collection.
package smoke

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"plannercheck/internal/api"
	"plannercheck/internal/config"
	"plannercheck/internal/logging"
	"plannercheck/internal/resource"
)

// ErrAuthFailed is returned by Authenticate when neither sign-in nor the
// sign-up path produced a session.
var ErrAuthFailed = errors.New("authentication failed")

// Authentication step names.
const (
	StepSignIn = "Sign in"
	StepSignUp = "Sign up"
	StepRetry  = "Sign in (retry)"
)

// Step is the outcome of one API call.
type Step struct {
	Name string
	OK   bool

	// Value is the created id, the record count, or the signed-in user id.
	Value string

	// Count is the number of records read by a verification step.
	Count int

	// Message describes a failure.
	Message string
}

func okStep(name, value string) Step {
	return Step{Name: name, OK: true, Value: value}
}

func failStep(name string, err error) Step {
	return Step{Name: name, Message: api.Describe(err)}
}

// Report is the outcome of a smoke run.
type Report struct {
	APIURL string
	Email  string

	// Password is masked.
	Password string

	Auth          []Step
	Authenticated bool

	// Creates holds one step per resource kind, in resource.All order.
	Creates []Step

	// Verifies holds one step per listable kind.
	Verifies []Step

	Started  time.Time
	Finished time.Time
}

// Steps returns every step in execution order.
func (r *Report) Steps() []Step {
	steps := make([]Step, 0, len(r.Auth)+len(r.Creates)+len(r.Verifies))
	steps = append(steps, r.Auth...)
	steps = append(steps, r.Creates...)
	return append(steps, r.Verifies...)
}

// Passed and Failed count steps by outcome.
func (r *Report) Passed() int { return r.count(true) }
func (r *Report) Failed() int { return r.count(false) }

func (r *Report) count(ok bool) int {
	n := 0
	for _, s := range r.Steps() {
		if s.OK == ok {
			n++
		}
	}
	return n
}

// ResourceFailures counts failed creation and verification steps.
func (r *Report) ResourceFailures() int {
	n := 0
	for _, s := range r.Creates {
		if !s.OK {
			n++
		}
	}
	for _, s := range r.Verifies {
		if !s.OK {
			n++
		}
	}
	return n
}

// Tester runs smoke checks with one account.
type Tester struct {
	client api.Client
	creds  api.Credentials
	apiURL string
	logger *zap.Logger

	// Now is the run clock; resource payload dates derive from it.
	Now func() time.Time
}

// New creates a Tester using cfg's API settings.
func New(client api.Client, cfg *config.Config) *Tester {
	s := cfg.Settings
	return &Tester{
		client: client,
		creds:  api.Credentials{Email: s.Email, Password: s.Password, Name: s.Name},
		apiURL: s.APIURL,
		logger: cfg.Logger.Named("smoke"),
		Now:    time.Now,
	}
}

// Authenticate signs in, falling back to sign-up plus one sign-in retry.
// A sign-in that succeeds without a token is final. The returned steps
// describe every call made.
func (t *Tester) Authenticate(ctx context.Context) ([]Step, api.Session, error) {
	var steps []Step

	sess, err := t.client.SignIn(ctx, t.creds)
	if err == nil {
		return append(steps, okStep(StepSignIn, sess.UserID)), sess, nil
	}
	steps = append(steps, failStep(StepSignIn, err))
	if errors.Is(err, api.ErrNoToken) {
		return steps, api.Session{}, fmt.Errorf("%w: %w", ErrAuthFailed, err)
	}
	t.logger.Debug("sign-in failed, trying sign-up", zap.Error(err))

	if err := t.client.SignUp(ctx, t.creds); err != nil {
		steps = append(steps, failStep(StepSignUp, err))
		return steps, api.Session{}, fmt.Errorf("%w: %w", ErrAuthFailed, err)
	}
	steps = append(steps, okStep(StepSignUp, t.creds.Email))

	sess, err = t.client.SignIn(ctx, t.creds)
	if err != nil {
		steps = append(steps, failStep(StepRetry, err))
		return steps, api.Session{}, fmt.Errorf("%w: %w", ErrAuthFailed, err)
	}
	return append(steps, okStep(StepRetry, sess.UserID)), sess, nil
}

// Run executes the full smoke sequence. Failures are recorded as steps;
// after a failed authentication no resource call is made.
func (t *Tester) Run(ctx context.Context) *Report {
	r := &Report{
		APIURL:   t.apiURL,
		Email:    t.creds.Email,
		Password: logging.Mask(t.creds.Password),
		Started:  t.Now(),
	}

	steps, sess, err := t.Authenticate(ctx)
	r.Auth = steps
	if err != nil {
		t.logger.Warn("authentication failed", zap.Error(err))
		r.Finished = t.Now()
		return r
	}
	r.Authenticated = true

	env := resource.Env{Now: r.Started, Email: t.creds.Email, Name: t.creds.Name}
	for _, kind := range resource.All() {
		r.Creates = append(r.Creates, t.create(ctx, sess, kind, env))
	}
	for _, kind := range resource.Listable() {
		r.Verifies = append(r.Verifies, t.verify(ctx, sess, kind))
	}

	r.Finished = t.Now()
	return r
}

func (t *Tester) create(ctx context.Context, sess api.Session, kind resource.Kind, env resource.Env) Step {
	id, err := t.client.Create(ctx, sess, kind, kind.Payload(env))
	if err != nil {
		t.logger.Debug("create failed", zap.String("kind", kind.Name), zap.Error(err))
		return failStep(kind.Label, err)
	}
	return okStep(kind.Label, id)
}

func (t *Tester) verify(ctx context.Context, sess api.Session, kind resource.Kind) Step {
	recs, err := t.client.List(ctx, sess, kind)
	if err != nil {
		t.logger.Debug("list failed", zap.String("kind", kind.Name), zap.Error(err))
		return failStep(kind.Plural, err)
	}
	s := okStep(kind.Plural, strconv.Itoa(len(recs)))
	s.Count = len(recs)
	return s
}
