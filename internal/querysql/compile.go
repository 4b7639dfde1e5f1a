package querysql

import (
	"fmt"
	"strings"

	"github.com/voightp/esofile-storage/internal/queryir"
)

// unionOrdinal is the synthetic column carrying a union branch's position.
const unionOrdinal = "branch_ord"

// SQLCompiler compiles QueryIR to parameterized SQL for SQLite.
//
// All queries include ORDER BY for deterministic results.
// All values are parameterized, never interpolated.
// Identifiers are double-quoted so column names such as "key" never clash
// with SQL keywords.
type SQLCompiler struct{}

// NewSQLCompiler creates a new SQLCompiler.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{}
}

// Compile converts a QueryIR query to parameterized SQL.
// Returns (sql, params, error). The query is validated first.
func (c *SQLCompiler) Compile(q queryir.Query) (string, []any, error) {
	if q == nil {
		return "", nil, fmt.Errorf("cannot compile nil query")
	}
	if err := queryir.Validate(q).Err(); err != nil {
		return "", nil, err
	}

	switch query := q.(type) {
	case queryir.Select:
		return c.compileSelect(query, -1)
	case queryir.Join:
		return c.compileJoin(query, -1)
	case queryir.Union:
		return c.compileUnion(query)
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}
}

// compileSelect compiles a Select. A non-negative branch adds the union
// ordinal column and drops ORDER BY (the union orders instead).
func (c *SQLCompiler) compileSelect(q queryir.Select, branch int) (string, []any, error) {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(c.compileBindings(q.Bindings, branch))
	b.WriteString(" FROM ")
	b.WriteString(quoteIdent(q.From))

	var params []any
	if q.Filter != nil {
		filterSQL, filterParams, err := c.compilePredicate(q.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		b.WriteString(" WHERE ")
		b.WriteString(filterSQL)
		params = filterParams
	}

	if branch < 0 {
		b.WriteString(" ORDER BY ")
		b.WriteString(c.stableOrderKey(q))
	}

	return b.String(), params, nil
}

// compileJoin compiles a Join to an INNER JOIN. Parameters follow textual
// order: ON first, then the left and right filters.
func (c *SQLCompiler) compileJoin(j queryir.Join, branch int) (string, []any, error) {
	left := j.Left.(queryir.Select)
	right := j.Right.(queryir.Select)

	bindings := append(append([]queryir.Binding{}, left.Bindings...), right.Bindings...)

	onSQL, params, err := c.compilePredicate(j.On)
	if err != nil {
		return "", nil, fmt.Errorf("compile join ON: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s INNER JOIN %s ON %s",
		c.compileBindings(bindings, branch),
		quoteIdent(left.From),
		quoteIdent(right.From),
		onSQL)

	filter := queryir.AllOf(left.Filter, right.Filter)
	if filter != nil {
		filterSQL, filterParams, err := c.compilePredicate(filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile join filter: %w", err)
		}
		b.WriteString(" WHERE ")
		b.WriteString(filterSQL)
		params = append(params, filterParams...)
	}

	if branch < 0 {
		b.WriteString(" ORDER BY ")
		b.WriteString(c.stableOrderKey(left))
	}

	return b.String(), params, nil
}

// compileUnion wraps the branches in a subquery ordered by branch position,
// then by the first output column.
//
//	SELECT "a", "b" FROM (
//	  SELECT ..., 0 AS "branch_ord" ... UNION ALL SELECT ..., 1 AS "branch_ord" ...
//	) ORDER BY "branch_ord" ASC, "a" ASC
func (c *SQLCompiler) compileUnion(u queryir.Union) (string, []any, error) {
	op := " UNION "
	if u.All {
		op = " UNION ALL "
	}

	parts := make([]string, len(u.Queries))
	var params []any
	for i, branch := range u.Queries {
		var (
			sql string
			p   []any
			err error
		)
		switch q := branch.(type) {
		case queryir.Select:
			sql, p, err = c.compileSelect(q, i)
		case queryir.Join:
			sql, p, err = c.compileJoin(q, i)
		default:
			err = fmt.Errorf("unsupported union branch type: %T", branch)
		}
		if err != nil {
			return "", nil, fmt.Errorf("compile union branch %d: %w", i, err)
		}
		parts[i] = sql
		params = append(params, p...)
	}

	cols := queryir.Columns(u)
	quoted := make([]string, len(cols))
	for i, col := range cols {
		quoted[i] = quoteIdent(col)
	}

	sql := fmt.Sprintf("SELECT %s FROM (%s) ORDER BY %s ASC, %s ASC",
		strings.Join(quoted, ", "),
		strings.Join(parts, op),
		quoteIdent(unionOrdinal),
		quoted[0])

	return sql, params, nil
}

// compileBindings converts bindings to a SELECT column list, keeping order.
// Example: {variables.id id} → "variables"."id" AS "id"
func (c *SQLCompiler) compileBindings(bindings []queryir.Binding, branch int) string {
	parts := make([]string, 0, len(bindings)+1)
	for _, b := range bindings {
		if b.As == "" || b.As == b.Field {
			parts = append(parts, quoteIdent(b.Field))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s AS %s", quoteIdent(b.Field), quoteIdent(b.As)))
	}
	if branch >= 0 {
		parts = append(parts, fmt.Sprintf("%d AS %s", branch, quoteIdent(unionOrdinal)))
	}
	return strings.Join(parts, ", ")
}

// stableOrderKey returns the ORDER BY clause for a select.
func (c *SQLCompiler) stableOrderKey(q queryir.Select) string {
	key := q.OrderBy
	if key == "" {
		key = q.Bindings[0].Field
	}
	return quoteIdent(key) + " ASC"
}

// compilePredicate compiles a predicate to a WHERE clause fragment.
func (c *SQLCompiler) compilePredicate(p queryir.Predicate) (string, []any, error) {
	if p == nil {
		return "1 = 1", nil, nil // Always true
	}

	switch pred := p.(type) {
	case queryir.Equals:
		return quoteIdent(pred.Field) + " = ?", []any{pred.Value}, nil
	case queryir.FieldEquals:
		return quoteIdent(pred.Left) + " = " + quoteIdent(pred.Right), nil, nil
	case queryir.And:
		return c.compileAnd(pred)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

// compileAnd compiles an And predicate to a conjunction.
func (c *SQLCompiler) compileAnd(and queryir.And) (string, []any, error) {
	if len(and.Predicates) == 0 {
		return "1 = 1", nil, nil // Vacuous truth
	}

	sqlParts := make([]string, 0, len(and.Predicates))
	var allParams []any
	for _, pred := range and.Predicates {
		sql, params, err := c.compilePredicate(pred)
		if err != nil {
			return "", nil, err
		}
		if _, nested := pred.(queryir.And); nested {
			sql = "(" + sql + ")"
		}
		sqlParts = append(sqlParts, sql)
		allParams = append(allParams, params...)
	}

	return strings.Join(sqlParts, " AND "), allParams, nil
}

// quoteIdent double-quotes each dot-separated part of an identifier.
func quoteIdent(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = `"` + strings.ReplaceAll(p, `"`, `""`) + `"`
	}
	return strings.Join(parts, ".")
}
