// Package structcodec decodes and encodes the fixed-width session structs that
// Telethon and Pyrogram embed in URL-safe base64 strings.
//
// Every string maps to exactly one [Variant]. The variant is chosen by a pure
// classifier ([ClassifyTelethon], [ClassifyPyrogram]) from the string length
// before any bytes are decoded, and the decoded length must then match the
// variant's layout exactly.
//
// # What this package must NOT do
//
//   - Guess a layout by trying several decoders in turn.
//   - Resolve datacenter endpoints or build session records.
package structcodec
