package oracle

import "context"

// FeatureAnalysis is the oracle's description of the biometric features in
// one capture. All four fields are required and non-empty; the text is
// opaque to this system and is never parsed or compared locally.
type FeatureAnalysis struct {
	Face string `json:"face"`
	Iris string `json:"iris"`
	Ears string `json:"ears"`
	Eyes string `json:"eyes"`
}

// Candidate is the reduced view of an enrolled profile sent as
// identification context. Photo bytes are never resent.
type Candidate struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Biometrics string `json:"biometrics"`
}

// MatchDecision is the oracle's verdict on an identification request.
// ProfileID is empty when no profile matched. Confidence is an opaque
// oracle-assigned score in [0,100]; this client applies no thresholding of
// its own - the match-confidence framing in the prompt is the threshold.
type MatchDecision struct {
	ProfileID  string  `json:"profileId"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// Provider defines the interface for inference backends. Implementations do
// one request per call and report transport or parse failures as errors;
// they never retry and never return partially-populated results silently.
type Provider interface {
	Name() string
	AnalyzeFeatures(ctx context.Context, imageData []byte) (*FeatureAnalysis, error)
	MatchIdentity(ctx context.Context, imageData []byte, candidates []Candidate) (*MatchDecision, error)

	// Usage tracking.
	GetUsage() *Usage
	ResetUsage()
}

// Usage tracks token usage across requests.
type Usage struct {
	InputTokens  int
	OutputTokens int
}
