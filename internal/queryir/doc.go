// Package queryir provides the abstract query representation used to
// resolve partial variable descriptors.
//
// The store never writes SQL for descriptor lookups by hand. It builds a
// Query from descriptors and hands it to a backend compiler
// (internal/querysql), which keeps filter construction deterministic and
// every value parameterised.
//
// # Fragment
//
// The fragment is deliberately small:
//   - Select(from, filter, bindings) - table access with an ordered column list
//   - Join(left, right, on) - inner join of two selects
//   - Union(queries, all) - concatenation of branches; All keeps duplicates
//   - Predicates: Equals (field = literal), FieldEquals (field = field), And
//
// There is no OR, no pattern matching, and no NULL comparison. A wildcard
// descriptor field is expressed by omitting its Equals, never by comparing
// against a special value.
//
// # Sealed interfaces
//
// Query and Predicate use the marker method pattern so backends can switch
// exhaustively:
//
//	switch q := query.(type) {
//	case Select:
//	case Join:
//	case Union:
//	}
package queryir
