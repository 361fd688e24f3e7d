// Package session provides the client-agnostic session [Record], its canonical
// binary encoding, and a Redis-backed hand-off [Store] for encoded sessions.
//
// # Binary encoding
//
// [Serialize] writes the single canonical layout: nine little-endian 32-bit words
// (six fixed tags, dc id, IPv4 address, port), a 1- or 4-byte auth key length
// prefix, the key itself, and zero padding to a 4-byte boundary. [Parse] reverses
// it and rejects anything that deviates from the fixed tags.
//
// # Architecture boundaries
//
// This package owns the [Record] model and the canonical bytes. It does NOT know
// how Telethon, Pyrogram or Telegram Desktop lay out their sessions; extractors
// build records and hand them here.
//
// # What this package must NOT do
//
//   - Import tgsession, extract, schema or structcodec (no upward imports).
//   - Mutate a Record after it was handed to [Serialize].
//   - Log or otherwise expose auth key bytes.
package session
