package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Request is one call received by FakeAPI.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   map[string]any
}

// Key returns "METHOD /path".
func (r Request) Key() string {
	return r.Method + " " + r.Path
}

// FakeAPI is an httptest server implementing the planner API endpoints the
// tools use. Create responses return the stored record with a top-level
// "_id"; paths listed in Envelope wrap records as {"success":true,"data":...}.
type FakeAPI struct {
	*httptest.Server

	mu       sync.Mutex
	accounts map[string]string              // email -> password
	tokens   map[string]string              // token -> email
	records  map[string][]map[string]any    // path -> records
	requests []Request

	// Status injects a response status per "METHOD /path" key. Injected
	// responses carry {"error":"injected failure"} as body.
	Status map[string]int

	// Envelope lists paths whose responses use the {"success","data"} shape.
	Envelope map[string]bool

	// OmitToken makes successful sign-ins return no token.
	OmitToken bool
}

// NewFakeAPI starts a FakeAPI. It is closed when the test ends via Close.
func NewFakeAPI() *FakeAPI {
	f := &FakeAPI{
		accounts: make(map[string]string),
		tokens:   make(map[string]string),
		records:  make(map[string][]map[string]any),
		Status:   make(map[string]int),
		Envelope: make(map[string]bool),
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	return f
}

// BaseURL returns the API base URL ("<server>/api").
func (f *FakeAPI) BaseURL() string {
	return f.URL + "/api"
}

// AddAccount registers an account.
func (f *FakeAPI) AddAccount(email, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[email] = password
}

// Seed stores a pre-existing record under path.
func (f *FakeAPI) Seed(path string, record map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[path] = append(f.records[path], record)
}

// Requests returns a copy of every request received, in order.
func (f *FakeAPI) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Request, len(f.requests))
	copy(out, f.requests)
	return out
}

// Calls returns how many requests matched "METHOD /path".
func (f *FakeAPI) Calls(key string) int {
	n := 0
	for _, r := range f.Requests() {
		if r.Key() == key {
			n++
		}
	}
	return n
}

func (f *FakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api")

	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	defer f.mu.Unlock()

	req := Request{Method: r.Method, Path: path, Header: r.Header.Clone(), Body: body}
	f.requests = append(f.requests, req)

	if code, ok := f.Status[req.Key()]; ok {
		writeJSON(w, code, map[string]any{"error": "injected failure"})
		return
	}

	switch {
	case r.Method == http.MethodPost && path == "/users/signin":
		f.signIn(w, body)
	case r.Method == http.MethodPost && path == "/users/signup":
		f.signUp(w, body)
	case r.Method == http.MethodPost:
		f.create(w, r, path, body)
	case r.Method == http.MethodGet:
		f.list(w, r, path)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
	}
}

func (f *FakeAPI) signIn(w http.ResponseWriter, body map[string]any) {
	email, _ := body["email"].(string)
	password, _ := body["password"].(string)
	if want, ok := f.accounts[email]; !ok || want != password {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Invalid email or password"})
		return
	}
	resp := map[string]any{
		"success": true,
		"user":    map[string]any{"_id": "user-" + email, "email": email},
	}
	if !f.OmitToken {
		token := uuid.NewString()
		f.tokens[token] = email
		resp["token"] = token
	}
	writeJSON(w, http.StatusOK, resp)
}

func (f *FakeAPI) signUp(w http.ResponseWriter, body map[string]any) {
	email, _ := body["email"].(string)
	password, _ := body["password"].(string)
	if email == "" || password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Email and password are required"})
		return
	}
	if _, exists := f.accounts[email]; exists {
		writeJSON(w, http.StatusConflict, map[string]any{"success": false, "message": "User already exists"})
		return
	}
	f.accounts[email] = password
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"data":    map[string]any{"id": "user-" + email, "email": email, "name": body["name"]},
	})
}

// authorized checks the bearer token. Caller holds f.mu.
func (f *FakeAPI) authorized(r *http.Request) bool {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	_, ok = f.tokens[token]
	return ok
}

func (f *FakeAPI) create(w http.ResponseWriter, r *http.Request, path string, body map[string]any) {
	if !f.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "unauthorized"})
		return
	}
	rec := make(map[string]any, len(body)+2)
	for k, v := range body {
		rec[k] = v
	}
	rec["_id"] = uuid.NewString()
	rec["userId"] = r.Header.Get("X-User-ID")
	f.records[path] = append(f.records[path], rec)

	if f.Envelope[path] {
		writeJSON(w, http.StatusCreated, map[string]any{"success": true, "data": rec})
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (f *FakeAPI) list(w http.ResponseWriter, r *http.Request, path string) {
	if !f.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "unauthorized"})
		return
	}
	recs := f.records[path]
	if recs == nil {
		recs = []map[string]any{}
	}
	if f.Envelope[path] {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": recs})
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
