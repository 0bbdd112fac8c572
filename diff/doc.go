// Package diff reports how the types of two repositories differ.
//
// Types are matched by name. A matched pair that is not structurally equal
// is reported with the first concrete mismatch found by types.Diff, for
// example "foo.two: offset 4 != 8".
package diff
