package bizerror

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")

	ErrNotFound               = errors.New("work item not found")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrActorNotEligible       = errors.New("actor not eligible")
	ErrActorNotAssigned       = errors.New("actor not assigned")
	ErrPrivilegeDenied        = errors.New("privilege denied")
	ErrVersionConflict        = errors.New("version conflict")
	ErrAlreadyClaimed         = errors.New("work item already claimed")
)

type BizError interface {
	Respond() *BizErrorDetail
}

type BizErrorDetail struct {
	Status  int
	Code    string
	Message string

	Data  interface{}
	Cause error
}

type ErrBadParam struct {
	Cause error
}

func (e *ErrBadParam) Unwrap() error {
	return e.Cause
}
func (e *ErrBadParam) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "common.bad_param"
}
func (e *ErrBadParam) Respond() *BizErrorDetail {
	message := "common.bad_param"
	if e.Cause != nil {
		message = e.Cause.Error()
	}
	return &BizErrorDetail{Status: http.StatusBadRequest, Code: "common.bad_param", Message: message, Data: nil}
}

// ErrEligibilityCheckFailed wraps a failure of the external eligibility oracle.
// The underlying cause is kept for logging; callers may retry.
type ErrEligibilityCheckFailed struct {
	Cause error
}

func (e *ErrEligibilityCheckFailed) Unwrap() error {
	return e.Cause
}
func (e *ErrEligibilityCheckFailed) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("eligibility check failed: %s", e.Cause.Error())
	}
	return "eligibility check failed"
}
func (e *ErrEligibilityCheckFailed) Respond() *BizErrorDetail {
	return &BizErrorDetail{Status: http.StatusServiceUnavailable, Code: "workitem.eligibility_check_failed",
		Message: e.Error(), Data: nil}
}
