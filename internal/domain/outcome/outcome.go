// Package outcome defines the typed results every ship command returns.
// A command never panics or throws: it is accepted, clamped, rejected with a
// reason, or it reports a terminal transition.
package outcome

import (
	"errors"
	"fmt"
)

// Status classifies how a command resolved.
type Status string

const (
	StatusAccepted Status = "accepted"
	StatusClamped  Status = "clamped"  // succeeded, but a bound altered the naive result
	StatusRejected Status = "rejected" // precondition failed, state unchanged
	StatusTerminal Status = "terminal" // succeeded and ended the ship
)

// Reason is the closed set of rejection causes.
type Reason string

const (
	ReasonNone                  Reason = ""
	ReasonInsufficientResources Reason = "insufficient_resources"
	ReasonCapacityFull          Reason = "capacity_full"
	ReasonAlreadyInProgress     Reason = "already_in_progress"
	ReasonInvalidTarget         Reason = "invalid_target"
	ReasonInvalidAmount         Reason = "invalid_amount"
	ReasonUnknownKind           Reason = "unknown_kind"
	ReasonAlreadyUnlocked       Reason = "already_unlocked"
	ReasonPrerequisitesMissing  Reason = "prerequisites_missing"
	ReasonUnknownNode           Reason = "unknown_node"
	ReasonNotInCombat           Reason = "not_in_combat"
	ReasonInCombat              Reason = "in_combat"
	ReasonWarpActive            Reason = "warp_active"
	ReasonNotWarping            Reason = "not_warping"
	ReasonAreaDisabled          Reason = "area_disabled"
	ReasonDestroyed             Reason = "destroyed"
	ReasonCaptured              Reason = "captured"
	ReasonWarpJammed            Reason = "warp_jammed"
	ReasonNoCraft               Reason = "no_craft_deployed"
	ReasonUnknownShip           Reason = "unknown_ship"
	ReasonUnknownCommand        Reason = "unknown_command"
	ReasonInvalidRequest        Reason = "invalid_request"
	ReasonRateLimited           Reason = "rate_limited"
)

// Result is returned by every command on the simulation surface.
type Result struct {
	Status Status `json:"status"`
	Reason Reason `json:"reason,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// Accept reports a plain success.
func Accept() Result {
	return Result{Status: StatusAccepted}
}

// Acceptf reports a success with a detail message.
func Acceptf(format string, args ...interface{}) Result {
	return Result{Status: StatusAccepted, Detail: fmt.Sprintf(format, args...)}
}

// Clampf reports a success whose value was bounded.
func Clampf(format string, args ...interface{}) Result {
	return Result{Status: StatusClamped, Detail: fmt.Sprintf(format, args...)}
}

// Rejectf reports a failed precondition.
func Rejectf(reason Reason, format string, args ...interface{}) Result {
	return Result{Status: StatusRejected, Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// Terminalf reports a success that destroyed the ship.
func Terminalf(format string, args ...interface{}) Result {
	return Result{Status: StatusTerminal, Detail: fmt.Sprintf(format, args...)}
}

// OK is true for every status except Rejected.
func (r Result) OK() bool {
	return r.Status != StatusRejected
}

// Terminal reports whether the command ended the ship.
func (r Result) Terminal() bool {
	return r.Status == StatusTerminal
}

// Err converts a rejection into an *Error. Successful results yield nil.
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	return &Error{Reason: r.Reason, Message: r.Detail}
}

// Error carries a rejection across APIs that speak Go errors.
type Error struct {
	Reason  Reason
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Reason, e.Message, e.Err)
	}
	if e.Message == "" {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf builds a rejection error.
func Errorf(reason Reason, format string, args ...interface{}) *Error {
	return &Error{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// ReasonOf extracts the rejection reason from err, or ReasonNone.
func ReasonOf(err error) Reason {
	var oe *Error
	if errors.As(err, &oe) {
		return oe.Reason
	}
	return ReasonNone
}

// FromError turns an error back into a rejection result.
func FromError(err error) Result {
	if err == nil {
		return Accept()
	}
	var oe *Error
	if errors.As(err, &oe) {
		return Result{Status: StatusRejected, Reason: oe.Reason, Detail: oe.Message}
	}
	return Result{Status: StatusRejected, Reason: ReasonInvalidRequest, Detail: err.Error()}
}
