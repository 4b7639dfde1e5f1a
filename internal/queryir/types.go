package queryir

// Query represents an abstract query.
//
// This is a sealed interface - only types in this package implement it.
type Query interface {
	queryNode() // Marker method - seals interface to this package
}

// Predicate represents a filter condition.
//
// This is a sealed interface - only types in this package implement it.
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// Binding selects one source field under an output name.
// Fields may be table-qualified ("variables.units").
type Binding struct {
	Field string
	As    string
}

// Name returns the output column name: As, or Field when As is empty.
func (b Binding) Name() string {
	if b.As != "" {
		return b.As
	}
	return b.Field
}

// Select represents table access with filtering.
//
// Semantics:
//
//	SELECT <bindings> FROM <from> WHERE <filter> ORDER BY <order>
//
// Bindings are ordered; result columns follow slice order. OrderBy names the
// field used as the deterministic sort key; empty means the first binding.
type Select struct {
	From     string    // Table name
	Filter   Predicate // WHERE conditions (nil = no filter)
	Bindings []Binding // Explicit column list, in output order
	OrderBy  string    // Sort field (empty = first binding's field)
}

func (Select) queryNode() {}

// Join represents an inner join of two selects.
//
// Semantics:
//
//	SELECT <left bindings>, <right bindings>
//	FROM <left> INNER JOIN <right> ON <on>
//	WHERE <left filter> AND <right filter>
//	ORDER BY <left order>
type Join struct {
	Left  Query     // Select
	Right Query     // Select
	On    Predicate // Join condition (required)
}

func (Join) queryNode() {}

// Union concatenates the results of its branches in branch order.
//
// With All set duplicates are kept: a row matched by two branches appears
// twice. Every branch must produce the same output column names.
type Union struct {
	Queries []Query
	All     bool
}

func (Union) queryNode() {}

// Equals represents a field-equals-literal predicate.
//
// Semantics:
//
//	<field> = <value>
//
// Value must be a string, int, int64, or bool. Comparison is exact.
type Equals struct {
	Field string
	Value any
}

func (Equals) predicateNode() {}

// FieldEquals compares two fields; used for join conditions.
type FieldEquals struct {
	Left  string
	Right string
}

func (FieldEquals) predicateNode() {}

// And represents a conjunction of predicates (all must be true).
// An empty And is always true.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// AllOf builds an And, dropping nil predicates.
// Returns nil for no predicates and the predicate itself for one.
func AllOf(preds ...Predicate) Predicate {
	var kept []Predicate
	for _, p := range preds {
		if p != nil {
			kept = append(kept, p)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	default:
		return And{Predicates: kept}
	}
}
