// Copyright (c) 2026 Libris. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package slice complements the standard [slices] package with the two generic
transforms the catalog leans on: projecting authors to names or ids ([Map])
and dropping blank input ([Filter]).
*/
package slice

// Map applies transform to every element. A nil input stays nil.
func Map[T any, U any](input []T, transform func(T) U) []U {
	if input == nil {
		return nil
	}

	result := make([]U, 0, len(input))
	for _, item := range input {
		result = append(result, transform(item))
	}
	return result
}

// Filter keeps the elements for which keep returns true, in order.
// The result is nil when nothing is kept.
func Filter[T any](input []T, keep func(T) bool) []T {
	var result []T
	for _, item := range input {
		if keep(item) {
			result = append(result, item)
		}
	}
	return result
}
