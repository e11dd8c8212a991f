package progression

import (
	"errors"
	"fmt"
)

// Kind classifies a progression failure so transports can map it without
// knowing every individual error.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindSequence
	KindStateConflict
	KindNotEligible
	KindGeneration
	KindIncompleteSteps
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindSequence:
		return "sequence"
	case KindStateConflict:
		return "state_conflict"
	case KindNotEligible:
		return "not_eligible"
	case KindGeneration:
		return "generation"
	case KindIncompleteSteps:
		return "incomplete_steps"
	default:
		return "unknown"
	}
}

// Error is a classified progression failure. Two Errors match under errors.Is
// when their codes are equal, so wrapped causes keep sentinel identity.
// Every generation-kind error also matches ErrGeneration.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code == "generation_failed" && e.Kind == KindGeneration {
		return true
	}
	return e.Code == t.Code
}

// Retryable reports whether repeating the same call may succeed.
func (e *Error) Retryable() bool {
	return e.Kind == KindGeneration
}

var (
	ErrSequence = &Error{Kind: KindSequence, Code: "sequence", Message: "previous steps must be completed first"}

	ErrAlreadyStarted   = &Error{Kind: KindStateConflict, Code: "already_started", Message: "step already started"}
	ErrNotStarted       = &Error{Kind: KindStateConflict, Code: "not_started", Message: "step has not been started"}
	ErrAlreadyCompleted = &Error{Kind: KindStateConflict, Code: "already_completed", Message: "already completed"}
	ErrNotCompleted     = &Error{Kind: KindStateConflict, Code: "not_completed", Message: "step must be completed before reflecting"}
	ErrAlreadyConfirmed = &Error{Kind: KindStateConflict, Code: "already_confirmed", Message: "quest plan already confirmed"}
	ErrNotConfirmed     = &Error{Kind: KindStateConflict, Code: "not_confirmed", Message: "quest plan has not been confirmed"}
	ErrNoDraft          = &Error{Kind: KindStateConflict, Code: "no_draft", Message: "no generated plan to confirm"}
	ErrQuestCompleted   = &Error{Kind: KindStateConflict, Code: "quest_completed", Message: "quest is already completed"}

	ErrNotEligible = &Error{Kind: KindNotEligible, Code: "not_eligible", Message: "step does not take a reflection"}

	ErrEmptyReflection = &Error{Kind: KindValidation, Code: "empty_reflection", Message: "reflection text is required"}
	ErrTitleRequired   = &Error{Kind: KindValidation, Code: "title_required", Message: "title is required"}

	ErrIncompleteSteps = &Error{Kind: KindIncompleteSteps, Code: "incomplete_steps", Message: "all steps must be completed first"}

	ErrGeneration  = &Error{Kind: KindGeneration, Code: "generation_failed", Message: "plan generation failed"}
	ErrInvalidPlan = &Error{Kind: KindGeneration, Code: "invalid_plan", Message: "generated plan is invalid"}
)

// NewGenerationError wraps a collaborator failure so it matches ErrGeneration.
func NewGenerationError(err error) error {
	return &Error{Kind: KindGeneration, Code: ErrGeneration.Code, Message: ErrGeneration.Message, Err: err}
}

func invalidPlan(format string, args ...any) error {
	return &Error{Kind: KindGeneration, Code: ErrInvalidPlan.Code, Message: ErrInvalidPlan.Message, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the Kind of the first progression Error in err's chain.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}
