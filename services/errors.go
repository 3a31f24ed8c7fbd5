package services

import (
	"errors"
	"fmt"
)

var (
	ErrNotPaidMember        = errors.New("paid members only")
	ErrInvalidRequest       = errors.New("to_user_id, proposed_dates, message and introduction are required")
	ErrSelfRequest          = errors.New("cannot send a matching request to yourself")
	ErrRecipientNotEligible = errors.New("recipient is not a paid member")
	ErrDuplicatePending     = errors.New("a pending request to this member already exists")
	ErrRequestNotFound      = errors.New("matching request not found")
	ErrRequestExpired       = errors.New("request expired")
	ErrMissingSelectedDate  = errors.New("selected_date is required")
)

// QuotaExceededError carries the computed limit so the handler can render
// a precise message.
type QuotaExceededError struct {
	Limit int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("monthly request limit (%d) reached", e.Limit)
}
