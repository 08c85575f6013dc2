package profile

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AccessLevel is the clearance assigned to an enrolled identity.
type AccessLevel string

const (
	AccessStandard      AccessLevel = "Standard"
	AccessRestricted    AccessLevel = "Restricted"
	AccessAdministrator AccessLevel = "Administrator"
)

// Valid reports whether the access level is one of the known values.
func (l AccessLevel) Valid() bool {
	switch l {
	case AccessStandard, AccessRestricted, AccessAdministrator:
		return true
	}
	return false
}

// ParseAccessLevel maps operator input to an access level, ignoring case
// and surrounding whitespace.
func ParseAccessLevel(s string) (AccessLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "standard":
		return AccessStandard, nil
	case "restricted":
		return AccessRestricted, nil
	case "administrator":
		return AccessAdministrator, nil
	}
	return "", fmt.Errorf("unknown access level %q", s)
}

// Profile is one enrolled identity. All fields are immutable after creation;
// the only lifecycle operations are enrollment and deletion.
//
// The JSON field names are the persisted wire format and are frozen - there
// is no migration logic, so renaming a field is a breaking change.
type Profile struct {
	ID          string      `json:"id"`
	FullName    string      `json:"fullName"`
	Department  string      `json:"department"`
	AccessLevel AccessLevel `json:"accessLevel"`

	// Descriptors are free-text produced by the oracle at enrollment time.
	// They are opaque to this system: never parsed, never compared locally.
	FaceDescription string `json:"facialDescription"`
	IrisPattern     string `json:"irisPattern"`
	EarStructure    string `json:"earStructure"`
	EyeSpacing      string `json:"eyeSpacing"`

	// Photo is the enrollment JPEG. It is kept for display and as the
	// artifact the oracle re-examines at identification time.
	// encoding/json serializes it as base64.
	Photo []byte `json:"photoBase64"`

	// EnrolledAt is unix milliseconds, set once at creation.
	EnrolledAt int64 `json:"timestamp"`
}

// NewID generates a fresh profile identifier.
func NewID() string {
	return uuid.NewString()
}

// EnrolledTime returns the enrollment timestamp as time.Time.
func (p *Profile) EnrolledTime() time.Time {
	return time.UnixMilli(p.EnrolledAt).UTC()
}

// BiometricSummary concatenates the four descriptors into the single text
// block sent to the oracle as identification context.
func (p *Profile) BiometricSummary() string {
	return "Face: " + p.FaceDescription +
		", Iris: " + p.IrisPattern +
		", Ears: " + p.EarStructure +
		", Eyes: " + p.EyeSpacing
}
