// Package report parses indentation-structured dependency reports into
// title-keyed adjacency maps.
//
// # Overview
//
// Build tools print resolved dependency trees as indented text:
//
//	compileClasspath - Compile classpath for source set 'main'.
//	+--- com.acme:core:1.2
//	|    \--- com.acme:util:1.0 -> 1.1
//	\--- org.slf4j:slf4j-api:2.0.9
//
// [Parse] reads such a report line by line and produces a [Report]: an ordered
// sequence of [Chunk] values, each holding [TitleBlock] values keyed by the
// header line, plus a [Coordinate] for every identifier seen.
//
// # Line Classification
//
// [Classify] maps one raw line to a tagged [Line]. The decision order is
// fixed: noise, configuration change, title header, blank, root dependency,
// nested dependency. The matchers themselves are data ([Rules]) so callers
// can extend the noise prefixes or configuration keywords without touching
// the parser.
//
// # Tree Reconstruction
//
// A [State] consumes classified lines through [State.Apply]. It keeps an
// explicit depth stack of open ancestors: a nested line at depth D pops every
// entry at depth D or deeper, then attaches to the new top. A nested line that
// finds the stack empty is orphaned and dropped.
//
// Identifiers are compared verbatim. The same identifier reached through two
// parents under one title is one node whose children are the union of both
// occurrences. This mirrors the "already listed above" compaction of the
// source format.
//
// # Chunking
//
// Large reports are split into chunks that bound the work of a single
// rendering pass. [FlushByLines] flushes whenever the per-chunk line counter
// reaches the chunk size, even mid-title; the open title keeps mutating the
// block registered in the earlier chunk. [FlushOnTitleBoundary] only flushes
// when a new title starts.
//
// # Coordinates
//
// [ParseCoordinate] decomposes an identifier like "g:n:1.0 -> 2.0 (*)" into
// group, name, requested and resolved versions and the trailing marker.
// Malformed identifiers degrade to empty fields and never fail.
package report
