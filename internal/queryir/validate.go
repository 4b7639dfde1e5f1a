package queryir

import (
	"fmt"
	"slices"
)

// ValidationResult contains the problems found in a query.
type ValidationResult struct {
	// Valid is true when Problems is empty.
	Valid bool

	// Problems lists every rule the query breaks.
	Problems []string
}

// Err returns the problems as a single error, or nil when valid.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return fmt.Errorf("invalid query: %v", r.Problems)
}

// Validate checks that a query stays inside the supported fragment.
//
// Rules:
//  1. Selects name a table and bind at least one column (no SELECT *)
//  2. Joins combine two Selects and carry an ON predicate
//  3. Unions have at least one branch, no nested unions, and every branch
//     produces the same column names
//  4. Equals compares against a string, int, int64, or bool (no NULLs)
//
// Validate is a pure function with no side effects.
func Validate(query Query) ValidationResult {
	v := &validator{problems: []string{}}
	v.validateQuery(query, true)

	return ValidationResult{
		Valid:    len(v.problems) == 0,
		Problems: v.problems,
	}
}

// Columns returns the output column names of a query in order.
// For a Union the first branch decides.
func Columns(q Query) []string {
	switch query := q.(type) {
	case Select:
		names := make([]string, len(query.Bindings))
		for i, b := range query.Bindings {
			names[i] = b.Name()
		}
		return names
	case Join:
		return append(Columns(query.Left), Columns(query.Right)...)
	case Union:
		if len(query.Queries) == 0 {
			return nil
		}
		return Columns(query.Queries[0])
	default:
		return nil
	}
}

// validator accumulates problems during traversal.
type validator struct {
	problems []string
}

func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) validateQuery(q Query, top bool) {
	if q == nil {
		v.addProblem("nil query")
		return
	}

	switch query := q.(type) {
	case Select:
		v.validateSelect(query)
	case Join:
		v.validateJoin(query)
	case Union:
		if !top {
			v.addProblem("nested union")
			return
		}
		v.validateUnion(query)
	default:
		v.addProblem("unknown query type: %T", q)
	}
}

func (v *validator) validateSelect(sel Select) {
	if sel.From == "" {
		v.addProblem("select without table")
	}
	if len(sel.Bindings) == 0 {
		v.addProblem("select from %q binds no columns", sel.From)
	}

	seen := make(map[string]bool, len(sel.Bindings))
	for _, b := range sel.Bindings {
		if b.Field == "" {
			v.addProblem("empty binding field in select from %q", sel.From)
			continue
		}
		if seen[b.Name()] {
			v.addProblem("duplicate column %q in select from %q", b.Name(), sel.From)
		}
		seen[b.Name()] = true
	}

	v.validatePredicate(sel.Filter)
}

func (v *validator) validateJoin(join Join) {
	for _, side := range []Query{join.Left, join.Right} {
		if _, ok := side.(Select); !ok {
			v.addProblem("join side must be a select, got %T", side)
			continue
		}
		v.validateQuery(side, false)
	}

	if join.On == nil {
		v.addProblem("join without ON predicate")
		return
	}
	v.validatePredicate(join.On)
}

func (v *validator) validateUnion(u Union) {
	if len(u.Queries) == 0 {
		v.addProblem("union without branches")
		return
	}

	want := Columns(u.Queries[0])
	for i, branch := range u.Queries {
		v.validateQuery(branch, false)
		if got := Columns(branch); !slices.Equal(got, want) {
			v.addProblem("union branch %d columns %v, want %v", i, got, want)
		}
	}
}

func (v *validator) validatePredicate(p Predicate) {
	if p == nil {
		return // no filter
	}

	switch pred := p.(type) {
	case Equals:
		v.validateEquals(pred)
	case FieldEquals:
		if pred.Left == "" || pred.Right == "" {
			v.addProblem("field comparison with empty field")
		}
	case And:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub)
		}
	default:
		v.addProblem("unknown predicate type: %T", p)
	}
}

func (v *validator) validateEquals(eq Equals) {
	if eq.Field == "" {
		v.addProblem("equality with empty field")
	}
	switch eq.Value.(type) {
	case string, int, int64, bool:
	case nil:
		v.addProblem("field %q compared to NULL", eq.Field)
	default:
		v.addProblem("field %q compared to unsupported %T", eq.Field, eq.Value)
	}
}
