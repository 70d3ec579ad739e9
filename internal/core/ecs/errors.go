package ecs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error mirrors the teacher's ECSError shape: a stable code plus
// whatever context (entity, component name) was available when the
// error was raised, so callers can branch on Code without parsing
// Error() strings.
type Error struct {
	Code      string
	Message   string
	Entity    EntityID
	Component string
}

func (e *Error) Error() string {
	switch {
	case e.Entity != 0 && e.Component != "":
		return fmt.Sprintf("[%s] %s (entity=%d component=%s)", e.Code, e.Message, e.Entity, e.Component)
	case e.Entity != 0:
		return fmt.Sprintf("[%s] %s (entity=%d)", e.Code, e.Message, e.Entity)
	case e.Component != "":
		return fmt.Sprintf("[%s] %s (component=%s)", e.Code, e.Message, e.Component)
	default:
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
}

// Recoverable error codes: user-error conditions the caller is expected
// to handle, not abort the program over (spec §7).
const (
	CodeComponentExists   = "COMPONENT_EXISTS"
	CodeComponentNotFound = "COMPONENT_NOT_FOUND"
	CodeEntityUnknown     = "ENTITY_UNKNOWN"
)

// Fatal error codes: misconfiguration or exhaustion. The caller should
// abort the operation that triggered them (sealing the registry,
// allocating a new entity) rather than attempt to continue.
const (
	CodeDuplicateComponentID = "DUPLICATE_COMPONENT_ID"
	CodeRegistrySealed       = "REGISTRY_SEALED"
	CodeEntitiesExhausted    = "ENTITIES_EXHAUSTED"
)

func newError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func newEntityError(code, message string, entity EntityID) *Error {
	return &Error{Code: code, Message: message, Entity: entity}
}

func newComponentError(code, message, component string, entity EntityID) *Error {
	return &Error{Code: code, Message: message, Entity: entity, Component: component}
}

// wrapFatal attaches a stack trace via pkg/errors; used only for the
// registration failures (sealed registry, duplicate name, colliding id)
// where a trace is worth the allocation. Entity-number exhaustion
// panics with an unwrapped *Error instead.
func wrapFatal(err error, context string) error {
	return errors.Wrap(err, context)
}
