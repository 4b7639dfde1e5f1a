// Package resultfile reads and writes result-file documents.
//
// A document is the on-disk form of one simulation run accepted by the
// store: its metadata plus one table of variables per sampling interval.
// Documents may be written as YAML, JSON, or CUE:
//
//	name: run1
//	timestamp: 2024-01-01T00:00:00Z
//	complete: true
//	intervals:
//	  - interval: hourly
//	    variables:
//	      - {id: 1, key: ZONE1, variable: Zone Mean Air Temperature, units: C, values: [20.1, 20.5, 21.0]}
//
// Every document is checked against an embedded CUE schema before it is
// decoded. Samples keep their literal kind: integers become ir.Int, floats
// ir.Float, and quoted strings ir.Text, so a sample that is not a number is
// stored verbatim and only fails when it is decoded.
//
// *Document implements ir.ResultFile.
package resultfile
