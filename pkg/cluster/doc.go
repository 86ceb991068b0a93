// Package cluster defines the analytics payload returned by the conversation
// analysis service and the Cluster records it carries.
//
// A payload is the unit of replacement for everything downstream: the level
// map, the tree expansion state and the shared cursor are all rebuilt from a
// freshly decoded payload and never patched incrementally. For that reason
// [Decode] validates the whole payload before returning it; a payload that
// fails validation is rejected as a whole so callers can keep displaying the
// previous one.
//
// Validation covers the record schema only (ids, counts, coordinates).
// Structural problems in the hierarchy such as dangling or cyclic parent
// references are not errors here; they are absorbed by the level-map builder
// in package hierarchy, which excludes the affected clusters and reports a
// diagnostic count.
//
// # JSON Format
//
//	{
//	  "cumulative_words": [{"x": "2024-01-01", "y": 120}],
//	  "messages_per_chat": [],
//	  "messages_per_week": [],
//	  "new_chats_per_week": [],
//	  "clusters": [
//	    {"id": "a", "name": "Coding", "description": "...", "chat_ids": ["c1"],
//	     "parent_id": null, "count": 1, "x_coord": 0.4, "y_coord": -1.2, "level": 0}
//	  ]
//	}
package cluster
