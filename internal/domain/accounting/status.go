package accounting

import "fmt"

// DocumentStatus represents a document or order lifecycle status.
// Financial documents move DRAFT -> POSTED -> CANCELLED; orders move
// DRAFT -> CONFIRMED -> DONE with CANCELLED reachable before DONE.
type DocumentStatus string

const (
	StatusDraft     DocumentStatus = "DRAFT"
	StatusPosted    DocumentStatus = "POSTED"
	StatusConfirmed DocumentStatus = "CONFIRMED"
	StatusDone      DocumentStatus = "DONE"
	StatusCancelled DocumentStatus = "CANCELLED"
)

// String returns the string representation of DocumentStatus
func (s DocumentStatus) String() string {
	return string(s)
}

// documentTransitions is the lifecycle machine for financial documents.
// CANCELLED is terminal.
var documentTransitions = map[DocumentStatus][]DocumentStatus{
	StatusDraft:     {StatusPosted, StatusCancelled},
	StatusPosted:    {StatusCancelled},
	StatusCancelled: {},
}

// orderTransitions is the lifecycle machine for purchase and sales orders.
// CANCELLED and DONE are terminal.
var orderTransitions = map[DocumentStatus][]DocumentStatus{
	StatusDraft:     {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusDone, StatusCancelled},
	StatusCancelled: {},
	StatusDone:      {},
}

// InvalidTransitionError is returned when a lifecycle move is not permitted.
// It carries the machine and both statuses so callers can build a useful message.
type InvalidTransitionError struct {
	DocType DocType
	From    DocumentStatus
	To      DocumentStatus
}

// Error implements the error interface
func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition %s from %s to %s", e.DocType, e.From, e.To)
}

// Code returns the stable error code for HTTP mapping
func (e *InvalidTransitionError) Code() string {
	return "INVALID_TRANSITION"
}

// MachineFor returns the transition table governing the given doc type.
func MachineFor(docType DocType) map[DocumentStatus][]DocumentStatus {
	if docType.IsOrder() {
		return orderTransitions
	}
	return documentTransitions
}

// ValidStatus reports whether the status belongs to the machine for docType.
func ValidStatus(docType DocType, status DocumentStatus) bool {
	_, ok := MachineFor(docType)[status]
	return ok
}

// AssertTransition validates a lifecycle move for the given doc type.
// Re-saving the current status is a no-op; any move not listed in the
// machine's transition table fails with InvalidTransitionError.
// It has no side effects: callers persist the new status only after
// this returns nil.
func AssertTransition(docType DocType, current, next DocumentStatus) error {
	if current == next {
		return nil
	}
	for _, allowed := range MachineFor(docType)[current] {
		if allowed == next {
			return nil
		}
	}
	return &InvalidTransitionError{DocType: docType, From: current, To: next}
}
