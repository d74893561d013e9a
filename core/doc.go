// Package asar builds ASAR archives from named in-memory payloads.
//
// An archive consists of three consecutive regions:
//   - Size header: four little-endian uint32 values (16 bytes) describing
//     the nested length-prefixed header records
//   - Header: UTF-8 JSON mapping each payload name to its offset and size
//   - Data: payload bytes concatenated in insertion order
//
// The archive layout is flat; payload names are single path elements.
// Integrity fields are emitted with placeholder values.
package asar
