// Package schema implements the declarative field-table bridge over
// pkg/dcfcodec's STRUCT grammar (spec §4.5), grounded on the teacher's
// internal/protocol/semantic.go: a Schema names the fields a STRUCT of a
// given type ID is expected to carry, and Encode/Decode drive a Writer or
// Reader against that table instead of requiring hand-written field loops
// for every message shape.
//
// Coverage: the C reference this spec was distilled from only supports
// STRING fields on the write side of its schema bridge, leaving the read
// side to fall back to a generic skip for any STRING field it encounters.
// This package closes that gap — STRING and BYTES are first-class on both
// Encode and Decode — per the Open Question decision recorded in
// DESIGN.md.
package schema
