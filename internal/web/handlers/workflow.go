package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/kozaktomas/bioguard/internal/oracle"
	"github.com/kozaktomas/bioguard/internal/profile"
	"github.com/kozaktomas/bioguard/internal/workflow"
)

// maxCaptureBytes bounds a single uploaded capture (16 MB).
const maxCaptureBytes = 16 << 20

// WorkflowHandler exposes the capture workflow over HTTP. All endpoints act
// on the single terminal session.
type WorkflowHandler struct {
	controller *workflow.Controller
}

// NewWorkflowHandler creates a new workflow handler
func NewWorkflowHandler(ctrl *workflow.Controller) *WorkflowHandler {
	return &WorkflowHandler{controller: ctrl}
}

// draftView is the wire form of an enrollment draft. The captured image is
// fetched separately, it does not ride along with every state poll.
type draftView struct {
	Analysis oracle.FeatureAnalysis `json:"analysis"`
	Form     workflow.Form          `json:"form"`
}

// resultView is the wire form of an identification result.
type resultView struct {
	Matched    bool             `json:"matched"`
	Profile    *profile.Profile `json:"profile,omitempty"`
	Confidence float64          `json:"confidence"`
	Reason     string           `json:"reason"`
}

// stateResponse is the full workflow snapshot the frontend polls.
type stateResponse struct {
	Mode   workflow.Mode  `json:"mode"`
	State  workflow.State `json:"state"`
	Draft  *draftView     `json:"draft,omitempty"`
	Result *resultView    `json:"result,omitempty"`
}

func (h *WorkflowHandler) snapshot() stateResponse {
	resp := stateResponse{
		Mode:  h.controller.Mode(),
		State: h.controller.State(),
	}

	if draft := h.controller.Draft(); draft != nil {
		resp.Draft = &draftView{Analysis: draft.Analysis, Form: draft.Form}
	}
	if result := h.controller.Result(); result != nil {
		resp.Result = &resultView{
			Matched:    result.Profile != nil,
			Profile:    result.Profile,
			Confidence: result.Confidence,
			Reason:     result.Reason,
		}
	}
	return resp
}

// Get returns the current workflow state.
func (h *WorkflowHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.snapshot())
}

type modeRequest struct {
	Mode workflow.Mode `json:"mode"`
}

// SetMode switches the workflow mode, discarding any ephemeral state.
func (h *WorkflowHandler) SetMode(w http.ResponseWriter, r *http.Request) {
	var req modeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	if err := h.controller.SetMode(req.Mode); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, h.snapshot())
}

// Capture accepts one image (multipart field "image" or a raw request body)
// and runs the mode-specific pipeline. The request blocks until the oracle
// answers or the configured timeout fires.
func (h *WorkflowHandler) Capture(w http.ResponseWriter, r *http.Request) {
	imageData, err := readCapture(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.controller.HandleCapture(r.Context(), imageData); err != nil {
		status, message := captureErrorStatus(err)
		respondError(w, status, message)
		return
	}

	respondJSON(w, http.StatusOK, h.snapshot())
}

// readCapture extracts the image bytes from a capture request.
func readCapture(r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxCaptureBytes)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxCaptureBytes); err != nil {
			return nil, errors.New("could not parse multipart request")
		}
		file, _, err := r.FormFile("image")
		if err != nil {
			return nil, errors.New("multipart request is missing the image field")
		}
		defer file.Close()
		return io.ReadAll(file)
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, errors.New("could not read request body")
	}
	if len(data) == 0 {
		return nil, errors.New("capture is empty")
	}
	return data, nil
}

// captureErrorStatus maps workflow and oracle failures to HTTP statuses.
func captureErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, workflow.ErrBusy):
		return http.StatusConflict, err.Error()
	case errors.Is(err, workflow.ErrWrongMode):
		return http.StatusConflict, err.Error()
	case errors.Is(err, workflow.ErrStale):
		return http.StatusConflict, err.Error()
	case errors.Is(err, oracle.ErrTimeout):
		return http.StatusGatewayTimeout, "the analysis service did not answer in time"
	case errors.Is(err, oracle.ErrInvalidResponse):
		return http.StatusBadGateway, "the analysis service returned an unusable response"
	case errors.Is(err, oracle.ErrUnavailable):
		return http.StatusBadGateway, "the analysis service is unavailable"
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

// UpdateDraft replaces the enrollment form fields.
func (h *WorkflowHandler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	var form workflow.Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	if err := h.controller.UpdateDraft(form); err != nil {
		if errors.Is(err, workflow.ErrNoDraft) {
			respondError(w, http.StatusConflict, err.Error())
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, h.snapshot())
}

// CommitDraft persists the draft as a new profile.
func (h *WorkflowHandler) CommitDraft(w http.ResponseWriter, r *http.Request) {
	p, err := h.controller.CommitDraft()
	if err != nil {
		switch {
		case errors.Is(err, workflow.ErrNoDraft):
			respondError(w, http.StatusConflict, err.Error())
		case errors.Is(err, workflow.ErrNameRequired):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"profile": p,
		"state":   h.snapshot(),
	})
}

// DiscardDraft abandons the enrollment draft.
func (h *WorkflowHandler) DiscardDraft(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.DiscardDraft(); err != nil {
		respondError(w, http.StatusConflict, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, h.snapshot())
}
