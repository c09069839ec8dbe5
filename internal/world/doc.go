// Package world implements the explicit context store shared by every stage.
//
// A World owns three things:
//
//   - Singleton records, one per Key. Keys are type tokens: Key[T] carries
//     the record type at compile time, so lookups never need reflection and a
//     record can only be stored or read as the type its key declares.
//   - Readiness flags. A flag has presence and an enabled bit. Stages gate
//     on Active (present and enabled). Flags are the only cross-stage
//     signaling mechanism; stages never call each other.
//   - An entity store with tags, used by scene loading and the built-in
//     consumer stages.
//
// The World is not safe for concurrent use. All mutation happens inside the
// tick pipeline, which runs stages one at a time in a fixed order.
package world
