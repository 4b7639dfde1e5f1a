// Package blob converts variable time series to and from the delimited text
// blobs stored in the variables table.
//
// Encoding joins every sample's canonical text with a separator (a tab by
// default), preserving column order. Decoding splits blobs back into tokens,
// checks that every variable decoded together has the same sample count,
// transposes, and parses each token as float64.
//
// The codec is pure: no I/O, no state. Decode never coerces; a non-numeric
// token or a sample-count disagreement is returned as an error.
package blob
