// Package category implements the user's category taxonomy and the resolver
// that maps supplier category paths onto it.
//
// # Tree
//
// A [Tree] is built once from a list of [Spec] roots, usually decoded from
// categories.yaml with [ParseYAML]:
//
//	Electronics:
//	  _structural: true
//	  _parameters: [Package]
//	  Capacitors:
//	    _aliases: [Ceramic Capacitors, MLCC]
//	    _parameters: [Capacitance, Voltage Rating]
//
// Nodes live in a flat arena and refer to each other by [ID]. Every name
// and alias in the tree is unique after case folding and NFKC
// normalization, so [Tree.Find] is a single map lookup. [Build] rejects
// collisions, invalid names and references to parameters missing from the
// [parameter.Schema].
//
// The tree is immutable once built. Reloading the taxonomy builds a new
// tree which callers swap in atomically; readers never need a lock.
//
// # Inheritance
//
// A parameter declared on a node is available on every descendant.
// [Tree.EffectiveParameters] returns the union from the root down to the
// node, precomputed at build time.
//
// # Resolution
//
// [Resolver.Resolve] walks a supplier path from the last segment toward the
// first and stops at the first segment that names a node. Structural nodes
// can only be targets through one of their children; ignored subtrees are
// never returned. Unresolved paths carry a [Reason] so callers can tell
// "ask the user" from "skip the part".
//
// [Resolver.Suggest] ranks categories by fuzzy similarity for manual
// categorization.
package category
