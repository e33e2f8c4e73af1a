// Package types holds the vocabulary shared by the vtree engine and its
// hosts: item handles, child-load policies, widget kinds, drop location
// bitsets, selection change kinds, the item graph adapter contract and
// typed errors.
//
// Design goals:
//   - Closed enumerations with String() so logs and configs stay readable.
//   - Bitsets with explicit union/intersection instead of implicit casts.
//   - Typed errors with stable categories (contract/callback/state/...).
//
// This package has no dependencies beyond the standard library.
package types
