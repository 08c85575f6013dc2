package workflow

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/kozaktomas/bioguard/internal/oracle"
	"github.com/kozaktomas/bioguard/internal/profile"
)

// fakeOracle answers with scripted values. When block is set, calls park
// until release is closed, which lets tests interleave a mode switch with
// an in-flight request.
type fakeOracle struct {
	analysis *oracle.FeatureAnalysis
	decision *oracle.MatchDecision
	err      error

	block   bool
	release chan struct{}

	analyzeCalls  int
	matchCalls    int
	lastCandidate []oracle.Candidate
}

func (f *fakeOracle) RequestFeatureAnalysis(ctx context.Context, imageData []byte) (*oracle.FeatureAnalysis, error) {
	f.analyzeCalls++
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.analysis, f.err
}

func (f *fakeOracle) RequestIdentityMatch(ctx context.Context, imageData []byte, candidates []oracle.Candidate) (*oracle.MatchDecision, error) {
	f.matchCalls++
	f.lastCandidate = candidates
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.decision, f.err
}

func (f *fakeOracle) wait(ctx context.Context) error {
	if !f.block {
		return nil
	}
	select {
	case <-f.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func emptyStore(t *testing.T) *profile.Store {
	t.Helper()
	store, err := profile.Open(filepath.Join(t.TempDir(), "profiles.json"))
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func storeWith(t *testing.T, profiles ...profile.Profile) *profile.Store {
	t.Helper()
	store := emptyStore(t)
	for _, p := range profiles {
		if err := store.Append(p); err != nil {
			t.Fatal(err)
		}
	}
	return store
}

func sampleProfile(id, name string) profile.Profile {
	return profile.Profile{
		ID:              id,
		FullName:        name,
		Department:      "Engineering",
		AccessLevel:     profile.AccessStandard,
		FaceDescription: "oval face",
		IrisPattern:     "hazel iris",
		EarStructure:    "attached lobes",
		EyeSpacing:      "wide set",
		EnrolledAt:      time.Now().UnixMilli(),
	}
}

func scriptedAnalysis() *oracle.FeatureAnalysis {
	return &oracle.FeatureAnalysis{
		Face: "square jaw",
		Iris: "dark brown",
		Ears: "detached lobes",
		Eyes: "narrow set",
	}
}

func TestController_StartsInIdentificationIdle(t *testing.T) {
	c := New(emptyStore(t), &fakeOracle{}, "Engineering")

	if c.Mode() != ModeIdentification {
		t.Errorf("expected identification mode, got %s", c.Mode())
	}
	if c.State() != StateIdle {
		t.Errorf("expected idle state, got %s", c.State())
	}
}

func TestRegistrationCapture_ProducesDraft(t *testing.T) {
	fake := &fakeOracle{analysis: scriptedAnalysis()}
	c := New(emptyStore(t), fake, "Engineering")

	if err := c.SetMode(ModeRegistration); err != nil {
		t.Fatal(err)
	}
	if err := c.HandleCapture(context.Background(), []byte("img")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c.State() != StateEnrollmentDraft {
		t.Fatalf("expected enrollment draft state, got %s", c.State())
	}

	draft := c.Draft()
	if draft == nil {
		t.Fatal("expected a draft")
	}
	if draft.Analysis.Face != "square jaw" {
		t.Errorf("unexpected analysis in draft: %+v", draft.Analysis)
	}
	if draft.Form.Department != "Engineering" {
		t.Errorf("expected default department, got '%s'", draft.Form.Department)
	}
	if draft.Form.AccessLevel != profile.AccessStandard {
		t.Errorf("expected standard access, got '%s'", draft.Form.AccessLevel)
	}
	if string(draft.Image) != "img" {
		t.Error("draft does not carry the captured image")
	}
}

func TestRegistrationCapture_OracleFailureRevertsToIdle(t *testing.T) {
	fake := &fakeOracle{err: oracle.ErrUnavailable}
	c := New(emptyStore(t), fake, "Engineering")

	if err := c.SetMode(ModeRegistration); err != nil {
		t.Fatal(err)
	}
	err := c.HandleCapture(context.Background(), []byte("img"))
	if !errors.Is(err, oracle.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}

	if c.State() != StateIdle {
		t.Errorf("expected idle after failure, got %s", c.State())
	}
	if c.Draft() != nil {
		t.Error("failed capture must not leave a draft")
	}
}

func TestCommitDraft_AppendsProfile(t *testing.T) {
	store := emptyStore(t)
	fake := &fakeOracle{analysis: scriptedAnalysis()}
	c := New(store, fake, "Engineering")

	c.SetMode(ModeRegistration)
	if err := c.HandleCapture(context.Background(), []byte("img")); err != nil {
		t.Fatal(err)
	}
	if err := c.UpdateDraft(Form{
		FullName:    "Marcus Cole",
		Department:  "Security",
		AccessLevel: profile.AccessRestricted,
	}); err != nil {
		t.Fatal(err)
	}

	p, err := c.CommitDraft()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.ID == "" {
		t.Error("committed profile has no id")
	}
	if p.FullName != "Marcus Cole" || p.Department != "Security" {
		t.Errorf("unexpected profile fields: %+v", p)
	}
	if p.FaceDescription != "square jaw" || p.EyeSpacing != "narrow set" {
		t.Errorf("descriptors not taken from the analysis: %+v", p)
	}
	if p.EnrolledAt == 0 {
		t.Error("expected a non-zero enrollment timestamp")
	}

	if store.Len() != 1 {
		t.Errorf("expected 1 stored profile, got %d", store.Len())
	}
	if c.Mode() != ModeRecords {
		t.Errorf("expected records mode after commit, got %s", c.Mode())
	}
	if c.State() != StateIdle {
		t.Errorf("expected idle after commit, got %s", c.State())
	}
	if c.Draft() != nil {
		t.Error("draft must be cleared after commit")
	}
}

func TestCommitDraft_EmptyNameRejected(t *testing.T) {
	store := emptyStore(t)
	fake := &fakeOracle{analysis: scriptedAnalysis()}
	c := New(store, fake, "Engineering")

	c.SetMode(ModeRegistration)
	if err := c.HandleCapture(context.Background(), []byte("img")); err != nil {
		t.Fatal(err)
	}
	if err := c.UpdateDraft(Form{FullName: "   "}); err != nil {
		t.Fatal(err)
	}

	_, err := c.CommitDraft()
	if !errors.Is(err, ErrNameRequired) {
		t.Errorf("expected ErrNameRequired, got %v", err)
	}

	// The rejection must leave both the draft and the store untouched.
	if store.Len() != 0 {
		t.Errorf("store must stay empty, has %d profiles", store.Len())
	}
	if c.State() != StateEnrollmentDraft {
		t.Errorf("expected draft state preserved, got %s", c.State())
	}
	if c.Draft() == nil {
		t.Error("draft must survive a rejected commit")
	}
}

func TestDiscardDraft(t *testing.T) {
	fake := &fakeOracle{analysis: scriptedAnalysis()}
	c := New(emptyStore(t), fake, "Engineering")

	c.SetMode(ModeRegistration)
	if err := c.HandleCapture(context.Background(), []byte("img")); err != nil {
		t.Fatal(err)
	}
	if err := c.DiscardDraft(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c.Draft() != nil {
		t.Error("draft must be gone after discard")
	}
	if c.State() != StateIdle {
		t.Errorf("expected idle after discard, got %s", c.State())
	}
	if c.Mode() != ModeRegistration {
		t.Errorf("discard must not change the mode, got %s", c.Mode())
	}
}

func TestIdentificationCapture_MatchResolvesProfile(t *testing.T) {
	store := storeWith(t, sampleProfile("id-1", "Alice"), sampleProfile("id-2", "Bob"))
	fake := &fakeOracle{decision: &oracle.MatchDecision{
		ProfileID:  "id-2",
		Confidence: 91,
		Reason:     "iris pattern and ear structure align",
	}}
	c := New(store, fake, "Engineering")

	if err := c.HandleCapture(context.Background(), []byte("img")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c.State() != StateResultReady {
		t.Fatalf("expected result ready, got %s", c.State())
	}

	result := c.Result()
	if result == nil {
		t.Fatal("expected a result")
	}
	if result.Profile == nil || result.Profile.FullName != "Bob" {
		t.Errorf("expected Bob, got %+v", result.Profile)
	}
	if result.Confidence != 91 {
		t.Errorf("expected confidence 91, got %f", result.Confidence)
	}

	// Every stored profile must have been offered as a candidate.
	if len(fake.lastCandidate) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(fake.lastCandidate))
	}
	if fake.lastCandidate[0].ID != "id-1" || fake.lastCandidate[1].ID != "id-2" {
		t.Errorf("candidates out of order: %+v", fake.lastCandidate)
	}
	if fake.lastCandidate[0].Biometrics == "" {
		t.Error("candidates must carry biometric summaries")
	}
}

func TestIdentificationCapture_UnresolvableIDIsNoMatch(t *testing.T) {
	store := storeWith(t, sampleProfile("id-1", "Alice"))
	fake := &fakeOracle{decision: &oracle.MatchDecision{
		ProfileID:  "id-gone",
		Confidence: 90,
		Reason:     "strong overlap",
	}}
	c := New(store, fake, "Engineering")

	if err := c.HandleCapture(context.Background(), []byte("img")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result := c.Result()
	if result == nil {
		t.Fatal("expected a result")
	}
	if result.Profile != nil {
		t.Errorf("an id missing from the store must resolve to no match, got %+v", result.Profile)
	}
	if result.Confidence != 90 {
		t.Errorf("oracle confidence must be preserved, got %f", result.Confidence)
	}
}

func TestIdentificationCapture_NoMatch(t *testing.T) {
	store := storeWith(t, sampleProfile("id-1", "Alice"))
	fake := &fakeOracle{decision: &oracle.MatchDecision{
		Confidence: 15,
		Reason:     "no structural overlap with stored descriptors",
	}}
	c := New(store, fake, "Engineering")

	if err := c.HandleCapture(context.Background(), []byte("img")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result := c.Result()
	if result.Profile != nil {
		t.Errorf("expected no match, got %+v", result.Profile)
	}
	if result.Reason == "" {
		t.Error("expected the oracle's reasoning to be preserved")
	}
}

func TestHandleCapture_BusyRejectsSecondCapture(t *testing.T) {
	fake := &fakeOracle{
		decision: &oracle.MatchDecision{Confidence: 0, Reason: "r"},
		block:    true,
		release:  make(chan struct{}),
	}
	c := New(storeWith(t, sampleProfile("id-1", "Alice")), fake, "Engineering")

	done := make(chan error, 1)
	go func() {
		done <- c.HandleCapture(context.Background(), []byte("img"))
	}()

	// Wait for the first capture to reach the oracle.
	deadline := time.After(time.Second)
	for c.State() != StateProcessing {
		select {
		case <-deadline:
			t.Fatal("first capture never reached processing")
		case <-time.After(time.Millisecond):
		}
	}

	err := c.HandleCapture(context.Background(), []byte("img2"))
	if !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}

	close(fake.release)
	if err := <-done; err != nil {
		t.Fatalf("first capture failed: %v", err)
	}
	if fake.matchCalls != 1 {
		t.Errorf("expected exactly 1 oracle call, got %d", fake.matchCalls)
	}
}

func TestHandleCapture_ModeSwitchDiscardsInFlightResult(t *testing.T) {
	fake := &fakeOracle{
		decision: &oracle.MatchDecision{ProfileID: "id-1", Confidence: 95, Reason: "r"},
		block:    true,
		release:  make(chan struct{}),
	}
	c := New(storeWith(t, sampleProfile("id-1", "Alice")), fake, "Engineering")

	done := make(chan error, 1)
	go func() {
		done <- c.HandleCapture(context.Background(), []byte("img"))
	}()

	deadline := time.After(time.Second)
	for c.State() != StateProcessing {
		select {
		case <-deadline:
			t.Fatal("capture never reached processing")
		case <-time.After(time.Millisecond):
		}
	}

	if err := c.SetMode(ModeRecords); err != nil {
		t.Fatal(err)
	}
	close(fake.release)

	if err := <-done; !errors.Is(err, ErrStale) {
		t.Errorf("expected ErrStale, got %v", err)
	}
	if c.Result() != nil {
		t.Error("a stale oracle response must never surface as a result")
	}
	if c.State() != StateIdle {
		t.Errorf("expected idle, got %s", c.State())
	}
}

func TestHandleCapture_WrongMode(t *testing.T) {
	c := New(emptyStore(t), &fakeOracle{}, "Engineering")

	for _, mode := range []Mode{ModeRecords, ModeAnalytics} {
		if err := c.SetMode(mode); err != nil {
			t.Fatal(err)
		}
		err := c.HandleCapture(context.Background(), []byte("img"))
		if !errors.Is(err, ErrWrongMode) {
			t.Errorf("mode %s: expected ErrWrongMode, got %v", mode, err)
		}
	}
}

func TestHandleCapture_EmptyImage(t *testing.T) {
	c := New(emptyStore(t), &fakeOracle{}, "Engineering")

	if err := c.HandleCapture(context.Background(), nil); err == nil {
		t.Error("expected an error for an empty capture")
	}
}

func TestSetMode_DiscardsDraft(t *testing.T) {
	fake := &fakeOracle{analysis: scriptedAnalysis()}
	c := New(emptyStore(t), fake, "Engineering")

	c.SetMode(ModeRegistration)
	if err := c.HandleCapture(context.Background(), []byte("img")); err != nil {
		t.Fatal(err)
	}
	if err := c.SetMode(ModeIdentification); err != nil {
		t.Fatal(err)
	}

	if c.Draft() != nil {
		t.Error("mode switch must discard the draft")
	}
	if c.State() != StateIdle {
		t.Errorf("expected idle, got %s", c.State())
	}
}

func TestSetMode_Invalid(t *testing.T) {
	c := New(emptyStore(t), &fakeOracle{}, "Engineering")

	if err := c.SetMode("turbo"); err == nil {
		t.Error("expected an error for an unknown mode")
	}
	if c.Mode() != ModeIdentification {
		t.Errorf("failed switch must not change the mode, got %s", c.Mode())
	}
}

func TestReset_ReturnsToIdentification(t *testing.T) {
	fake := &fakeOracle{analysis: scriptedAnalysis()}
	c := New(emptyStore(t), fake, "Engineering")

	c.SetMode(ModeRegistration)
	if err := c.HandleCapture(context.Background(), []byte("img")); err != nil {
		t.Fatal(err)
	}

	c.Reset()

	if c.Mode() != ModeIdentification {
		t.Errorf("expected identification after reset, got %s", c.Mode())
	}
	if c.State() != StateIdle {
		t.Errorf("expected idle after reset, got %s", c.State())
	}
	if c.Draft() != nil {
		t.Error("reset must discard the draft")
	}
}

func TestUpdateDraft_WithoutDraft(t *testing.T) {
	c := New(emptyStore(t), &fakeOracle{}, "Engineering")

	if err := c.UpdateDraft(Form{FullName: "x"}); !errors.Is(err, ErrNoDraft) {
		t.Errorf("expected ErrNoDraft, got %v", err)
	}
	if _, err := c.CommitDraft(); !errors.Is(err, ErrNoDraft) {
		t.Errorf("expected ErrNoDraft, got %v", err)
	}
	if err := c.DiscardDraft(); !errors.Is(err, ErrNoDraft) {
		t.Errorf("expected ErrNoDraft, got %v", err)
	}
}

func TestUpdateDraft_InvalidAccessLevel(t *testing.T) {
	fake := &fakeOracle{analysis: scriptedAnalysis()}
	c := New(emptyStore(t), fake, "Engineering")

	c.SetMode(ModeRegistration)
	if err := c.HandleCapture(context.Background(), []byte("img")); err != nil {
		t.Fatal(err)
	}

	if err := c.UpdateDraft(Form{FullName: "x", AccessLevel: "root"}); err == nil {
		t.Error("expected an error for an unknown access level")
	}
}
