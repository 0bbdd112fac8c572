// Package witimport builds type graphs from WebAssembly Interface Types.
//
// Every WIT type definition becomes a node laid out by the Canonical ABI:
//
//   - primitives become Basic nodes sized by their ABI width
//   - records and tuples become user-defined types with fields at ABI offsets
//   - variants, options and results become a tag field at offset 0 plus one
//     field per payload case, all sharing the payload offset
//   - enums become Basic nodes sized as their discriminant
//   - flags become user-defined types of one-bit Bitfields
//   - strings and lists become a (ptr, len) pair
//   - resources become field-less user-defined types, and own/borrow handles
//     4-byte pointers to them (borrow is const)
//
// Aliases resolve to their target, so an alias adds no node.
//
// # Usage
//
//	repo, err := witimport.Load("world.json", witimport.DefaultOptions())
//
// The JSON input is the output of "wasm-tools component wit -j".
package witimport
