package entity

import "errors"

// Sentinel errors raised by the attribute/effect engine. Callers match
// with errors.Is; messages are wrapped with the offending name or id.
var (
	// ErrAttributeNotFound — an unknown attribute name was requested.
	ErrAttributeNotFound = errors.New("attribute not found")

	// ErrPropertyNotFound — an unknown entity property was requested.
	ErrPropertyNotFound = errors.New("property not found")

	// ErrInvalidAttribute — malformed attribute hydration data, or an
	// attribute name rejected by the attribute-definition registry.
	ErrInvalidAttribute = errors.New("invalid attribute")

	// ErrEffectAttached — an Effect instance was offered to a second
	// target. Effects are single-owner for their entire lifetime.
	ErrEffectAttached = errors.New("effect already attached to a target")

	// ErrEffectNotMember — Remove was called for an effect that is not a
	// member of the list. Guards against double-removal.
	ErrEffectNotMember = errors.New("effect is not a member of this list")

	// ErrFormulaCycle — attribute formula dependencies form a cycle.
	ErrFormulaCycle = errors.New("attribute formula dependency cycle")
)
