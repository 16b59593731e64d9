package artifacts

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes program inputs from engine transcripts.
type Kind string

const (
	KindInput  Kind = "in"
	KindOutput Kind = "out"
)

const timestampLayout = "20060102T150405"

// ErrInvalidName is returned for names not produced by NewName.
var ErrInvalidName = errors.New("artifacts: invalid artifact name")

var namePattern = regexp.MustCompile(`^[a-z0-9]+_[0-9]{8}T[0-9]{6}_[0-9a-f]{8}\.(in|out)$`)

// RunID identifies one engine run; its input and output share it.
type RunID string

// NewRunID returns a fresh run identifier.
func NewRunID() RunID {
	return RunID(uuid.NewString())
}

// Suffix is the short form used in filenames.
func (r RunID) Suffix() string {
	s := strings.ReplaceAll(string(r), "-", "")
	if len(s) > 8 {
		s = s[:8]
	}
	return s
}

// NewName builds <engine>_<utc timestamp>_<run suffix>.<kind>.
func NewName(engine string, kind Kind, at time.Time, run RunID) string {
	return fmt.Sprintf("%s_%s_%s.%s", strings.ToLower(engine), at.UTC().Format(timestampLayout), run.Suffix(), kind)
}

// ValidateName rejects anything that is not a generated artifact name.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
