// Package dedup collapses structurally identical types onto canonical
// representatives.
//
// An Index buckets types by types.Hash and confirms membership with
// types.Equal, so hash collisions never merge distinct structures:
//
//	idx := dedup.NewWithDefaults()
//	for t := range repo.All() {
//		idx.Insert(t)
//	}
//	for _, g := range idx.Groups() {
//		fmt.Println(g.Canonical, len(g.Members))
//	}
package dedup
