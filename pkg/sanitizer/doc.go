// Package sanitizer provides input normalization for user-supplied values.
//
// All functions are idempotent - applying them multiple times produces the
// same result. Invalid input is handled gracefully by returning empty strings
// rather than errors. Normalization happens before validation so that a value
// differing only in surrounding whitespace is treated as the same value.
package sanitizer
