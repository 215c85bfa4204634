// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package pointer holds the generic helpers behind optional (patch) fields.

A nil pointer means "absent" throughout the catalog: PATCH bodies decode into
pointer fields and the service resolves each one against the stored value.
*/
package pointer

// To returns the address of a copy of v, e.g. pointer.To(2009) for a patch literal.
func To[T any](v T) *T {
	return &v
}

// Val returns *p, or the zero value of T when p is nil.
func Val[T any](p *T) T {
	var zero T
	return Fallback(p, zero)
}

// Fallback returns *p when the field was supplied and current otherwise.
func Fallback[T any](p *T, current T) T {
	if p != nil {
		return *p
	}
	return current
}
