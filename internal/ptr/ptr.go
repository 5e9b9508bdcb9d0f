// Package ptr helps with optional values.
package ptr

import "database/sql"

// Ref returns a pointer to the value passed as argument.
//
// Might be replaced by new(T, v) in the future
// https://github.com/golang/go/issues/45624#issuecomment-2671497947
func Ref[T any](v T) *T {
	return &v
}

// FromNull converts a nullable column value into an optional value. NULL becomes nil.
func FromNull[T any](n sql.Null[T]) *T {
	if !n.Valid {
		return nil
	}
	return Ref(n.V)
}
