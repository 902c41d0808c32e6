// Package protocol implements the binary encoding of patch batches sent to
// remote mirrors of a live tree.
//
// A mirror holds its own live tree shaped like the sender's previous tree.
// Decoding a PatchesFrame and applying its patches in order with a
// reconcile.Applier brings the mirror to the sender's next tree.
//
// # Encoding
//
//   - Varint: compact encoding for counts, route components and sequence numbers
//   - Length-prefixed: strings prefixed with a varint length
//   - Big-endian: fixed-width integers and IEEE 754 numbers
//
// # Patches
//
//	[Seq: varint][Count: varint][Patch]...
//
//	Patch: [Action: byte][Route: count + varints][Old: shallow node][Next: node][Attrs]
//	Node:  [Kind: byte][ID: string] then
//	       Tag:           [Tag: string][Void: bool][Attrs][Count: varint][Node]...
//	       Text, Comment: [Text: string]
//	       0xFF marks a nil node
//	Attrs: [Count: varint]([Name: string][Value])...   sorted by name
//	Value: [Kind: byte] then string, float64, bool, or handler name
//
// Handlers cross the wire by name only. A mirror that needs to run them
// binds names to functions itself.
//
// # Frames
//
// Websocket messages carry one Frame each: a type byte, a 4-byte payload
// length and the payload. FramePatches carries an encoded PatchesFrame and
// FrameError carries diagnostic text.
//
// # Limits
//
// Decoding enforces MaxStringLen for strings, MaxCollectionCount
// for collections and MaxNodeDepth for nesting.
package protocol
