// Package lineage models the supply-chain genealogy of food lots and answers
// forward ("who received material from this lot") and backward ("where did this
// sale originate") provenance queries.
//
// The package is split along the flow of a single query:
//
//   - Graph is an in-memory, edge-typed multigraph of lots, packages and sales.
//   - Loader materializes the part of the graph a query needs by walking a Source
//     breadth-first from a seed node.
//   - Walk and Chain traverse a loaded Graph and annotate every reached node with
//     its hop level and route.
//   - Validate reports data-quality findings over a loaded Graph.
//
// Nothing in this package writes to the backing store, and no state survives a
// call: every query builds its own Graph.
package lineage
