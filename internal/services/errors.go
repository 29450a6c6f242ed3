package services

import (
	"errors"
	"strings"
)

var (
	ErrNotFound         = errors.New("not_found")
	ErrNotEligible      = errors.New("not_eligible")
	ErrRenderInProgress = errors.New("render_in_progress")
	ErrRenderFailed     = errors.New("render_failed")
	ErrDuplicateNumber  = errors.New("duplicate_number")
)

// NotEligibleError lists what a quotation lacks before it can be rendered.
type NotEligibleError struct {
	Missing []string
}

func (e *NotEligibleError) Error() string {
	return "not_eligible: missing " + strings.Join(e.Missing, ", ")
}

func (e *NotEligibleError) Is(target error) bool { return target == ErrNotEligible }
