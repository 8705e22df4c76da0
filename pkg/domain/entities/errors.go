package entities

import (
	"errors"
	"fmt"
)

// Sentinel errors, for use with errors.Is
var (
	// ErrNoSelection is returned when the requisition, the source warehouse
	// or the destination is missing or inconsistent
	ErrNoSelection = errors.New("selection incomplete")

	// ErrNoRemainingQuantity is returned when a requisition has nothing left
	// to deliver
	ErrNoRemainingQuantity = errors.New("no remaining quantity")

	// ErrLineShortage marks a line whose available stock is below its demand.
	// It never blocks submission of other lines.
	ErrLineShortage = errors.New("line shortage")

	// ErrNothingToTransfer is returned when a submission resolves to no
	// instructions at all
	ErrNothingToTransfer = errors.New("nothing to transfer")

	// ErrDuplicateSubmission is returned by a transfer store when a transfer
	// with the same idempotency key already exists
	ErrDuplicateSubmission = errors.New("duplicate transfer submission")

	// ErrNotFound is returned when a requisition or transfer does not exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidStockRecord is returned for stock rows that cannot be used
	ErrInvalidStockRecord = errors.New("invalid stock record")
)

// RejectionCode names why an action was rejected
type RejectionCode string

const (
	CodeNoSelection         RejectionCode = "no_selection"
	CodeNoRemainingQuantity RejectionCode = "no_remaining_quantity"
	CodeLineShortage        RejectionCode = "line_shortage"
	CodeNothingToTransfer   RejectionCode = "nothing_to_transfer"
)

// Rejection is a structured, user-presentable reason for refusing an action.
// It unwraps to the matching sentinel error.
type Rejection struct {
	Code    RejectionCode `json:"code"`
	Field   string        `json:"field,omitempty"`
	Message string        `json:"message"`
}

// Reject creates a Rejection
func Reject(code RejectionCode, field, message string) *Rejection {
	return &Rejection{Code: code, Field: field, Message: message}
}

func (r *Rejection) Error() string {
	if r.Field != "" {
		return fmt.Sprintf("%s (%s): %s", r.Code, r.Field, r.Message)
	}
	return fmt.Sprintf("%s: %s", r.Code, r.Message)
}

func (r *Rejection) Unwrap() error {
	switch r.Code {
	case CodeNoSelection:
		return ErrNoSelection
	case CodeNoRemainingQuantity:
		return ErrNoRemainingQuantity
	case CodeLineShortage:
		return ErrLineShortage
	case CodeNothingToTransfer:
		return ErrNothingToTransfer
	default:
		return nil
	}
}

// AsRejection extracts a Rejection from an error chain
func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}

// IsRejection reports whether err carries a Rejection
func IsRejection(err error) bool {
	_, ok := AsRejection(err)
	return ok
}

// IsNotFound reports whether err means a missing requisition or transfer
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
