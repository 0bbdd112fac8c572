// Package typegraph models reconstructed program types as a graph and
// compares them by structure.
//
// A type graph is built once per analysis pass and then queried: deduplicated
// by structural identity, diffed against another pass, or browsed.
//
// # Architecture Overview
//
// The module is organized into packages with distinct responsibilities:
//
//	typegraph/
//	├── types/           Type nodes, the owning Repository, Hash, Equal and Diff
//	├── dedup/           Index collapsing structurally identical types
//	├── diff/            Name-matched comparison of two repositories
//	├── witimport/       Builds repositories from WIT type definitions
//	├── errors/          Structured error types for debugging
//	└── cmd/typegraph/   CLI: list, dedup, diff and an interactive browser
//
// # Quick Start
//
//	repo := types.NewRepository()
//	i32, _ := repo.AddBasic("int", 4)
//	pair, _ := repo.AddUserDefined("pair", 8, []types.Field{
//	    {Name: "a", Offset: 0, Type: i32},
//	    {Name: "b", Offset: 4, Type: i32},
//	})
//	_ = repo.Freeze()
//
//	fmt.Printf("%s %016x\n", pair, types.Hash(pair))
//
// # Structural Identity
//
// Two types are equal when they have the same kind, name, size and
// kind-specific attributes and their referenced types are pairwise equal.
// Node identity, insertion order and the owning repository never matter.
// Equal types always hash alike, also when the graph is cyclic.
//
// # Thread Safety
//
// A Repository is built by a single goroutine. After Freeze it is read-only,
// and hashing, comparison and lookups are safe for concurrent use.
package typegraph
