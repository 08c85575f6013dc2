package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/bioguard/internal/config"
	"github.com/kozaktomas/bioguard/internal/oracle"
	"github.com/kozaktomas/bioguard/internal/profile"
	"github.com/kozaktomas/bioguard/internal/workflow"
)

// testConfig creates a minimal config for testing
func testConfig() *config.Config {
	return &config.Config{
		Gate: config.GateConfig{
			Codes: []string{"SYSTEM_CORE", "0000"},
		},
		Defaults: config.DefaultsConfig{
			Departments: []string{"Engineering", "Operations", "Security", "Executive"},
		},
	}
}

// testStore creates an empty profile store backed by a temp file
func testStore(t *testing.T) *profile.Store {
	t.Helper()
	store, err := profile.Open(filepath.Join(t.TempDir(), "profiles.json"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	return store
}

// testProfile builds a stored profile with fixed biometric descriptors
func testProfile(id, name string) profile.Profile {
	return profile.Profile{
		ID:              id,
		FullName:        name,
		Department:      "Engineering",
		AccessLevel:     profile.AccessStandard,
		FaceDescription: "oval face",
		IrisPattern:     "hazel iris",
		EarStructure:    "attached lobes",
		EyeSpacing:      "wide set",
		Photo:           []byte{0xFF, 0xD8, 0xFF, 0xE0},
		EnrolledAt:      1700000000000,
	}
}

// stubOracle satisfies the controller's oracle dependency with scripted
// responses.
type stubOracle struct {
	analysis *oracle.FeatureAnalysis
	decision *oracle.MatchDecision
	err      error
}

func (s *stubOracle) RequestFeatureAnalysis(ctx context.Context, imageData []byte) (*oracle.FeatureAnalysis, error) {
	return s.analysis, s.err
}

func (s *stubOracle) RequestIdentityMatch(ctx context.Context, imageData []byte, candidates []oracle.Candidate) (*oracle.MatchDecision, error) {
	return s.decision, s.err
}

// testController wires a controller to a store and a stub oracle
func testController(store *profile.Store, stub *stubOracle) *workflow.Controller {
	return workflow.New(store, stub, "Engineering")
}

// stubProvider satisfies oracle.Provider for handlers that take a full
// oracle client.
type stubProvider struct{}

func (stubProvider) Name() string { return "stub" }

func (stubProvider) AnalyzeFeatures(ctx context.Context, imageData []byte) (*oracle.FeatureAnalysis, error) {
	return nil, oracle.ErrUnavailable
}

func (stubProvider) MatchIdentity(ctx context.Context, imageData []byte, candidates []oracle.Candidate) (*oracle.MatchDecision, error) {
	return nil, oracle.ErrUnavailable
}

func (stubProvider) GetUsage() *oracle.Usage { return &oracle.Usage{} }
func (stubProvider) ResetUsage()             {}

func testOracleClient() *oracle.Client {
	return oracle.NewClient(stubProvider{}, time.Second)
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
