package binary

import (
	"errors"
	"fmt"
)

// Errors identifying the pipeline phase that failed. Test with errors.Is.
var (
	ErrDestinationUnwritable   = errors.New("destination directory is not writable")
	ErrStagingFailed           = errors.New("cannot create working directory")
	ErrUnsupportedArchitecture = errors.New("unsupported architecture")
	ErrDownloadFailed          = errors.New("download failed")
	ErrChecksumMismatch        = errors.New("checksum mismatch")
	ErrExtractionFailed        = errors.New("extraction failed")
	ErrPermissionChangeFailed  = errors.New("permission change failed")
	ErrInstallMoveFailed       = errors.New("install move failed")
)

// Phase names a step of the install pipeline.
type Phase string

const (
	PhaseValidate Phase = "validate"
	PhaseStage    Phase = "stage"
	PhaseResolve  Phase = "resolve"
	PhaseDownload Phase = "download"
	PhaseVerify   Phase = "verify"
	PhaseExtract  Phase = "extract"
	PhaseChmod    Phase = "chmod"
	PhaseMove     Phase = "move"
)

var phaseErrors = map[Phase]error{
	PhaseValidate: ErrDestinationUnwritable,
	PhaseStage:    ErrStagingFailed,
	PhaseResolve:  ErrUnsupportedArchitecture,
	PhaseDownload: ErrDownloadFailed,
	PhaseVerify:   ErrChecksumMismatch,
	PhaseExtract:  ErrExtractionFailed,
	PhaseChmod:    ErrPermissionChangeFailed,
	PhaseMove:     ErrInstallMoveFailed,
}

// InstallError reports the phase in which an installation failed along with
// the underlying cause.
type InstallError struct {
	Phase Phase
	Err   error
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("install shellcheck: %s: %v", e.Phase, e.Err)
}

// Unwrap exposes both the phase sentinel and the cause, so callers can match
// either with errors.Is.
func (e *InstallError) Unwrap() []error {
	if sentinel, ok := phaseErrors[e.Phase]; ok {
		return []error{sentinel, e.Err}
	}
	return []error{e.Err}
}

func phaseError(phase Phase, err error) error {
	return &InstallError{Phase: phase, Err: err}
}
