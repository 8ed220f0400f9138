// Package api defines the backend-agnostic interface to the planner HTTP API.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"google.golang.org/api/googleapi"

	"plannercheck/internal/field"
	"plannercheck/internal/resource"
)

// BodyLimit is how much of an unexpected response body is reported.
const BodyLimit = 100

var (
	// ErrNoToken is returned when sign-in succeeds without a session token.
	ErrNoToken = errors.New("sign-in response carried no token")

	// ErrUnauthorized marks 401/403 responses.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTimeout marks calls that exceeded the request timeout.
	ErrTimeout = errors.New("request timed out")
)

// Credentials identify the test account.
type Credentials struct {
	Email    string
	Password string
	Name     string
}

// Session is an authenticated API session.
type Session struct {
	Token      string    `json:"token"`
	UserID     string    `json:"userId,omitempty"`
	Email      string    `json:"email"`
	SignedInAt time.Time `json:"signedInAt"`
}

// Client defines the planner API operations used by the tools.
// Status codes other than 200/201 are returned as *googleapi.Error.
type Client interface {
	// SignIn exchanges credentials for a session.
	SignIn(ctx context.Context, creds Credentials) (Session, error)

	// SignUp registers the account.
	SignUp(ctx context.Context, creds Credentials) error

	// Create posts payload to the kind's endpoint and returns the
	// server-assigned identifier ("" when the response carries none).
	Create(ctx context.Context, sess Session, kind resource.Kind, payload resource.Payload) (string, error)

	// List reads the kind's collection.
	List(ctx context.Context, sess Session, kind resource.Kind) ([]field.Record, error)
}

// StatusOK reports whether code counts as success for the planner API.
func StatusOK(code int) bool {
	return code == http.StatusOK || code == http.StatusCreated
}

// Describe renders err for a report line. HTTP errors show the status code
// and the first BodyLimit characters of the response body.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		body := strings.TrimSpace(gerr.Body)
		if body == "" {
			return fmt.Sprintf("HTTP %d", gerr.Code)
		}
		return fmt.Sprintf("HTTP %d: %s", gerr.Code, Truncate(body, BodyLimit))
	}
	return err.Error()
}

// Truncate returns the first n characters of s.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// Records interprets a decoded list response: a JSON array is the
// collection; an object with a "data" array is an envelope; any other
// non-empty object is a single record.
func Records(body any) []field.Record {
	switch v := body.(type) {
	case []any:
		return toRecords(v)
	case map[string]any:
		if data, ok := v["data"].([]any); ok {
			return toRecords(data)
		}
		if len(v) == 0 {
			return nil
		}
		return []field.Record{v}
	default:
		return nil
	}
}

func toRecords(items []any) []field.Record {
	out := make([]field.Record, 0, len(items))
	for _, item := range items {
		rec, ok := item.(map[string]any)
		if !ok {
			rec = field.Record{"value": item}
		}
		out = append(out, rec)
	}
	return out
}
