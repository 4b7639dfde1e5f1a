// Package ir provides the value types shared by the result store.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal. This keeps ir the foundational
// layer with no circular dependencies.
//
// Key design constraints:
//   - Descriptor fields use the empty string as the "match anything" sentinel
//   - Descriptor strings are NFC normalised at the storage and query boundary
//   - Reader-side sample values stay typed (Value) until the blob codec
//     stringifies them; decoded samples are always float64
//   - FileRecord and VariableRecord are snapshots, never live handles
package ir
