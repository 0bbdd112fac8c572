// Package layout computes Canonical ABI sizes, alignments and offsets for
// WIT types.
//
// # Layout Rules
//
//   - Primitives: size equals alignment (u8=1, u32=4, u64=8, etc.)
//   - Records and tuples: elements laid out in order with alignment padding
//   - Variants, options, results: discriminant followed by the largest payload
//   - Strings and lists: (pointer, length) pair
//   - Handles (own, borrow): a 4-byte table index
//
// This package is internal to witimport.
package layout
