// Package cycles finds circular dependency edges across a parsed report.
//
// # Overview
//
// All title blocks of every chunk are merged into one global directed graph:
// an identifier that appears under two titles (or two configurations) is the
// same node. [Detect] then runs an iterative depth-first search from every
// unvisited node in insertion order and flags each edge that lies on a cycle
// it discovers.
//
// When the search reaches a node that is already on the current path, the
// sub-path from that node to the top of the path is a cycle. Every
// consecutive pair of that sub-path is flagged, plus the closing edge back to
// the start:
//
//	path:  app -> a -> b -> c      edge c -> a closes the cycle
//	flags: a->b, b->c, c->a
//
// A map from identifier to path position makes the cycle start lookup
// constant time. Children are visited in stored order and children without
// an adjacency entry of their own are leaves.
//
// The resulting [EdgeSet] is immutable and safe for concurrent readers.
package cycles
