// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package pointer provides generic pointer helpers.

Partial updates (comic and page patches) use nil to mean "leave unchanged",
so building them needs pointers to literals.

Key Functions:
  - To: Creates a pointer from a value literal.
*/
package pointer

// To returns a pointer to the provided value.
func To[T any](v T) *T {
	return &v
}
