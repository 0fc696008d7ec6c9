// Package io provides JSON and YAML import and export for parsed reports.
//
// # Overview
//
// A parse result is held in memory as chunks of title blocks plus a
// coordinate cache and a circular edge set. This package serializes that
// result so it can be:
//
//   - Cached on disk to skip reparsing an unchanged report
//   - Stored by a session backend (file, redis, mongo)
//   - Handed to external tools that consume adjacency data
//
// # Document Format
//
//	{
//	  "source": "deps.txt",
//	  "stats": {"lines": 12, "dependency_lines": 7, ...},
//	  "chunks": [
//	    {
//	      "titles": [
//	        {
//	          "name": "compileClasspath - Compile classpath for source set 'main'.",
//	          "roots": ["com.acme:core:1.2"],
//	          "nodes": [
//	            {"id": "com.acme:core:1.2", "children": ["com.acme:util:1.1"]},
//	            {"id": "com.acme:util:1.1"}
//	          ]
//	        }
//	      ]
//	    }
//	  ],
//	  "coordinates": {"com.acme:core:1.2": {"group": "com.acme", ...}},
//	  "circular": [{"from": "a", "to": "b"}]
//	}
//
// Nodes are listed in insertion order so a round trip preserves the
// deterministic iteration order of every title block.
//
// # Import
//
// Use [ImportJSON] to read a document from a file path, or [ReadJSON] to read
// from any io.Reader. Both rebuild independent title blocks that can be used
// freely after import.
//
// # Export
//
// Use [ExportJSON] or [WriteJSON] for JSON, and [ExportYAML] or [WriteYAML]
// for YAML. [Marshal] and [Unmarshal] are byte-slice shortcuts used by the
// session stores and the parse cache.
package io
