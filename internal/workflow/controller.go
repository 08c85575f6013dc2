// Package workflow implements the state machine that sequences capture,
// oracle invocation and persistence for one operator session.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kozaktomas/bioguard/internal/oracle"
	"github.com/kozaktomas/bioguard/internal/profile"
)

// Mode selects what the terminal is doing. Modes are orthogonal to states.
type Mode string

const (
	ModeIdentification Mode = "identification"
	ModeRegistration   Mode = "registration"
	ModeRecords        Mode = "records"
	ModeAnalytics      Mode = "analytics"
)

func (m Mode) Valid() bool {
	switch m {
	case ModeIdentification, ModeRegistration, ModeRecords, ModeAnalytics:
		return true
	}
	return false
}

// AcceptsCapture reports whether a capture makes sense in this mode.
func (m Mode) AcceptsCapture() bool {
	return m == ModeIdentification || m == ModeRegistration
}

// State is the controller's position in the capture workflow.
type State string

const (
	StateIdle            State = "idle"
	StateProcessing      State = "processing"
	StateResultReady     State = "result_ready"
	StateEnrollmentDraft State = "enrollment_draft"
)

var (
	// ErrBusy means a capture arrived while a previous oracle call for this
	// session was still outstanding. Only one call may be in flight.
	ErrBusy = errors.New("a capture is already being processed")

	// ErrWrongMode means a capture arrived in a mode that does not take one.
	ErrWrongMode = errors.New("current mode does not accept captures")

	// ErrStale means the session moved on (mode switch or logout) while the
	// oracle call was in flight; the late result was discarded, not applied.
	ErrStale = errors.New("result discarded: session state changed during processing")

	// ErrNameRequired rejects an enrollment commit with an empty name.
	ErrNameRequired = errors.New("full name is required")

	// ErrNoDraft means a draft operation arrived without an active draft.
	ErrNoDraft = errors.New("no enrollment draft in progress")
)

// Oracle is the slice of the oracle client the controller depends on. Tests
// substitute a fake returning scripted responses.
type Oracle interface {
	RequestFeatureAnalysis(ctx context.Context, imageData []byte) (*oracle.FeatureAnalysis, error)
	RequestIdentityMatch(ctx context.Context, imageData []byte, candidates []oracle.Candidate) (*oracle.MatchDecision, error)
}

// Form is the operator-editable part of an enrollment draft.
type Form struct {
	FullName    string              `json:"full_name"`
	Department  string              `json:"department"`
	AccessLevel profile.AccessLevel `json:"access_level"`
}

// Draft holds everything gathered for an enrollment that is not yet
// committed. It lives outside the store; only CommitDraft produces a
// durable profile.
type Draft struct {
	Analysis oracle.FeatureAnalysis
	Image    []byte
	Form     Form
}

// IdentificationResult is the resolved outcome of an identification run.
// Profile is nil when the oracle reported no match, or when the id it
// returned no longer resolves against the store.
type IdentificationResult struct {
	Profile    *profile.Profile
	Confidence float64
	Reason     string
}

// Controller drives select mode -> capture -> oracle -> result/persistence
// for a single operator session. All ephemeral state (pending image, draft,
// result) is discarded on mode switch and logout; only CommitDraft writes
// to the store.
type Controller struct {
	store      *profile.Store
	oracle     Oracle
	defaultDep string

	mu         sync.Mutex
	mode       Mode
	state      State
	processing bool
	generation uint64
	draft      *Draft
	result     *IdentificationResult
}

// New creates a controller starting in identification mode.
func New(store *profile.Store, o Oracle, defaultDepartment string) *Controller {
	return &Controller{
		store:      store,
		oracle:     o,
		defaultDep: defaultDepartment,
		mode:       ModeIdentification,
		state:      StateIdle,
	}
}

// Mode returns the current mode.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// State returns the current workflow state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Draft returns a copy of the active enrollment draft, or nil.
func (c *Controller) Draft() *Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.draft == nil {
		return nil
	}
	d := *c.draft
	return &d
}

// Result returns the last identification result, or nil.
func (c *Controller) Result() *IdentificationResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result == nil {
		return nil
	}
	r := *c.result
	return &r
}

// SetMode switches modes. Any ephemeral result, draft or in-flight oracle
// response is discarded; results never leak across mode switches.
func (c *Controller) SetMode(mode Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("unknown mode %q", mode)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = mode
	c.resetEphemeralLocked()
	return nil
}

// Reset discards all ephemeral session state, as on logout, and returns the
// controller to identification mode.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = ModeIdentification
	c.resetEphemeralLocked()
}

// resetEphemeralLocked bumps the generation so any in-flight oracle response
// resolves as stale. Callers hold c.mu.
func (c *Controller) resetEphemeralLocked() {
	c.generation++
	c.processing = false
	c.state = StateIdle
	c.draft = nil
	c.result = nil
}

// HandleCapture runs the mode-specific pipeline for one capture. The call
// suspends until the oracle answers, the configured timeout fires, or ctx
// is cancelled. A second capture while one is outstanding fails with
// ErrBusy. On any oracle failure the controller reverts to Idle and the
// pending image is discarded.
func (c *Controller) HandleCapture(ctx context.Context, imageData []byte) error {
	if len(imageData) == 0 {
		return errors.New("capture is empty")
	}

	c.mu.Lock()
	if c.processing {
		c.mu.Unlock()
		return ErrBusy
	}
	if !c.mode.AcceptsCapture() {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrWrongMode, c.mode)
	}
	mode := c.mode
	gen := c.generation
	c.processing = true
	c.state = StateProcessing
	c.draft = nil
	c.result = nil
	c.mu.Unlock()

	if mode == ModeRegistration {
		return c.processRegistration(ctx, gen, imageData)
	}
	return c.processIdentification(ctx, gen, imageData)
}

func (c *Controller) processRegistration(ctx context.Context, gen uint64, imageData []byte) error {
	analysis, err := c.oracle.RequestFeatureAnalysis(ctx, imageData)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		return ErrStale
	}
	c.processing = false

	if err != nil {
		c.state = StateIdle
		return err
	}

	c.draft = &Draft{
		Analysis: *analysis,
		Image:    imageData,
		Form: Form{
			Department:  c.defaultDep,
			AccessLevel: profile.AccessStandard,
		},
	}
	c.state = StateEnrollmentDraft
	return nil
}

func (c *Controller) processIdentification(ctx context.Context, gen uint64, imageData []byte) error {
	// Candidates are a snapshot; the oracle's answer is re-resolved against
	// the live store because a profile may be deleted mid-flight.
	snapshot := c.store.List()
	candidates := make([]oracle.Candidate, len(snapshot))
	for i := range snapshot {
		candidates[i] = oracle.Candidate{
			ID:         snapshot[i].ID,
			Name:       snapshot[i].FullName,
			Biometrics: snapshot[i].BiometricSummary(),
		}
	}

	decision, err := c.oracle.RequestIdentityMatch(ctx, imageData, candidates)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		return ErrStale
	}
	c.processing = false

	if err != nil {
		c.state = StateIdle
		return err
	}

	result := &IdentificationResult{
		Confidence: decision.Confidence,
		Reason:     decision.Reason,
	}
	if decision.ProfileID != "" {
		// An id that no longer resolves is a no-match, whatever the score.
		if p, err := c.store.Get(decision.ProfileID); err == nil {
			result.Profile = p
		}
	}

	c.result = result
	c.state = StateResultReady
	return nil
}

// UpdateDraft replaces the draft form fields. Pure local mutation, no state
// transition.
func (c *Controller) UpdateDraft(form Form) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateEnrollmentDraft || c.draft == nil {
		return ErrNoDraft
	}
	if form.AccessLevel != "" && !form.AccessLevel.Valid() {
		return fmt.Errorf("unknown access level %q", form.AccessLevel)
	}

	c.draft.Form = form
	return nil
}

// CommitDraft validates the draft and appends a new profile to the store.
// An empty name rejects the commit without any state change. On success all
// enrollment ephemera are cleared and the session lands in records mode.
func (c *Controller) CommitDraft() (*profile.Profile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateEnrollmentDraft || c.draft == nil {
		return nil, ErrNoDraft
	}

	form := c.draft.Form
	if strings.TrimSpace(form.FullName) == "" {
		return nil, ErrNameRequired
	}

	level := form.AccessLevel
	if level == "" {
		level = profile.AccessStandard
	}
	if !level.Valid() {
		return nil, fmt.Errorf("unknown access level %q", level)
	}

	p := profile.Profile{
		ID:              profile.NewID(),
		FullName:        form.FullName,
		Department:      form.Department,
		AccessLevel:     level,
		FaceDescription: c.draft.Analysis.Face,
		IrisPattern:     c.draft.Analysis.Iris,
		EarStructure:    c.draft.Analysis.Ears,
		EyeSpacing:      c.draft.Analysis.Eyes,
		Photo:           c.draft.Image,
		EnrolledAt:      time.Now().UnixMilli(),
	}

	if err := c.store.Append(p); err != nil {
		// Persistence failed; keep the draft so the operator can retry.
		return nil, err
	}

	c.draft = nil
	c.mode = ModeRecords
	c.state = StateIdle
	return &p, nil
}

// DiscardDraft drops the enrollment draft and pending image.
func (c *Controller) DiscardDraft() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateEnrollmentDraft || c.draft == nil {
		return ErrNoDraft
	}

	c.draft = nil
	c.state = StateIdle
	return nil
}
