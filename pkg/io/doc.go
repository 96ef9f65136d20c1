// Package io provides JSON export for import graphs.
//
// # JSON Format
//
//	{
//	  "root": "/home/me/proj",
//	  "entry": "app.py",
//	  "nodes": [
//	    {"id": "app.py", "path": "/home/me/proj/app.py", "meta": {"rel": "app.py"}},
//	    {"id": "utils.py", "path": "/home/me/proj/utils.py", "meta": {"rel": "utils.py"}}
//	  ],
//	  "edges": [
//	    {"from": "app.py", "to": "utils.py"}
//	  ],
//	  "order": ["utils.py", "app.py"]
//	}
//
// Node IDs are root-relative with forward slashes, matching the bundle
// delimiters. Edges point from importer to imported file; an edge reported
// as a cycle back edge carries "cycle": true and is repeated in "cycles".
//
// # Node Metadata
//
//   - rel: root-relative path
//   - parse_error: syntax error text for files that yielded no imports
//
// # Concurrency
//
// WriteJSON only reads the graph; it is safe to call concurrently with
// other readers but not with modifications.
package io
