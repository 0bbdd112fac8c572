// Package types implements a type graph for reconstructed program types and
// the structural hash and equality used to deduplicate and diff such graphs.
//
// # Kinds
//
// A node is one of four kinds:
//
//   - Basic: a leaf such as a primitive integer type.
//   - Bitfield: a run of bits inside a storage unit.
//   - UserDefined: an aggregate with ordered, offset-positioned fields.
//   - Pointer: a qualified pointer to another node.
//
// Every node has a name and a size. Kind-specific data is reached by
// narrowing the Type handle with CastTo or the As* methods; a failed
// narrowing just returns false.
//
// # Ownership
//
// A Repository owns all nodes of one analysis pass. References between nodes
// (a pointer's pointee, a field's type) are TypeIDs into the same Repository,
// so the graph may contain cycles:
//
//	repo := types.NewRepository()
//	list, _ := repo.DeclareUserDefined("list", 8)
//	next, _ := repo.AddPointer("list*", 4, types.FlagNone, list)
//	i32, _ := repo.AddBasic("int", 4)
//	_ = repo.CompleteUserDefined(list, []types.Field{
//		{Name: "value", Offset: 0, Type: i32},
//		{Name: "next", Offset: 4, Type: next},
//	})
//	_ = repo.Freeze()
//
// Construction validates eagerly: an out-of-range bitfield, an unknown or
// foreign reference, or an insertion after Freeze fails with an
// *errors.Error and no node is created.
//
// # Comparison
//
// Hash and Equal compare structure, never identity, and work across
// repositories. Both carry per-call cycle guards and are safe for concurrent
// use once the repositories are frozen. Hasher and Comparer add cross-call
// memoization for frozen repositories.
package types
