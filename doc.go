// Package tgsession converts Telegram client sessions into one canonical
// binary session layout.
//
// Three source families are understood: Telethon (SQLite file or string
// session), Pyrogram (SQLite file or string session) and Telegram Desktop tdata
// directories. A [Converter] detects which one an input is, extracts a
// [session.Record] from it and serializes the record with [session.Serialize].
//
// Converter methods are safe to call from multiple goroutines after
// initialization through [Builder.Build].
//
// # Detection
//
// An input that names an existing path is probed as a tdata container, then
// validated against the Pyrogram schema, then against the Telethon schema. Any
// other input is treated as a string session and fully converted as Telethon,
// then as Pyrogram. The first attempt that matches decides the [Format].
// [Converter.Detect] never returns an error; [Converter.Inspect] exposes every
// attempt and its outcome.
//
// # Architecture boundaries
//
// tgsession is the public surface. Schema checks live in schema, string
// layouts in structcodec, row and container reads in extract and tdata, the
// endpoint table in dc and the canonical bytes in session.
//
// # What this package must NOT do
//
//   - Log, audit or otherwise expose auth key bytes or raw string sessions.
//   - Write to a source store or container.
//   - Build Telethon, Pyrogram or tdata sources from canonical bytes.
package tgsession
