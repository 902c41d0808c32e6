// Package snapshot persists stored trees so an application can resume
// reconciliation after a restart.
//
// Trees are encoded with msgpack. Handler references are persisted by name
// and bound back to functions through a HandlerResolver on load, so only
// named handlers (vdom.OnNamed) survive a round trip with behavior intact.
//
// Three backends implement Store: MemoryStore, BoltStore (a local bbolt
// file, bucket "trees") and S3Store (one object per application).
package snapshot
