// Package extract turns one session source into a [session.Record].
//
// Two families are supported. File sources are SQLite stores written by
// Telethon or Pyrogram and are checked against their schema before any row is
// read. String sources are the base64 exports both clients offer and are
// decoded through structcodec. Telegram Desktop containers are read through a
// [tdata.Probe].
//
// Extractors never keep a store handle open past the call that opened it and
// never log key material. Pyrogram sources carry no address, so their
// endpoint always comes from a [dc.Resolver].
package extract
