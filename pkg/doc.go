// Package pkg provides the libraries behind partimport, which places
// electronic parts found at suppliers into a user-defined category taxonomy
// and maps their parameters onto a fixed schema.
//
// # Overview
//
// A part flows through the packages like this:
//
//	supplier search (supplier, cache)
//	         ↓
//	    part.Raw
//	         ↓
//	category resolution (category)  →  unresolved: suggestions, manual pick
//	         ↓
//	parameter mapping (parameter, units)
//	         ↓
//	transformation hooks (hook)
//	         ↓
//	    part.Resolved  →  sink (JSON lines, MongoDB, dry run)
//
// [pipeline] ties the steps together: a Snapshot holds one loaded taxonomy,
// the Engine resolves single parts against the current snapshot and the
// Runner imports batches concurrently.
//
// # Main Packages
//
// [category] - The taxonomy tree, its YAML format and leaf-to-root path
// resolution with alias matching and fuzzy suggestions.
//
// [parameter] - The parameter schema and the mapping of raw supplier
// parameter names and values onto it.
//
// [units] - Parsing of SI values such as "100nF" or "4.7 kΩ" into decimal
// magnitudes.
//
// [hook] - Ordered, isolated transformations applied to resolved parts.
//
// [supplier] - Supplier identifiers, the registry and file-backed suppliers,
// with search results cached through [cache].
//
// [sink] - Destinations for resolved parts.
//
// [server] - The HTTP API over an Engine.
//
// [config] - The TOML configuration, environment overrides and the file
// watcher used for live reloads.
//
// [io] - Batch files: request CSVs and raw part exports in, JSON reports out.
//
// [observability] - Metric hooks with no-op defaults and a Prometheus
// implementation.
//
// [errors] - Coded errors shared by every package.
//
// # Testing
//
//	go test ./pkg/...
//	go test -run Example ./pkg/...
package pkg
