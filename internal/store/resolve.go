package store

import (
	"github.com/voightp/esofile-storage/internal/ir"
	"github.com/voightp/esofile-storage/internal/queryir"
)

// variableBindings is the column list of every variable lookup; the joined
// file contributes file_name last. scanVariable reads columns in this order.
var variableBindings = []queryir.Binding{
	{Field: "variables.id", As: "id"},
	{Field: "variables.var_id", As: "var_id"},
	{Field: "variables.file_id", As: "file_id"},
	{Field: "variables.interval", As: "interval"},
	{Field: "variables.key", As: "key"},
	{Field: "variables.variable", As: "variable"},
	{Field: "variables.units", As: "units"},
	{Field: "variables.vals", As: "vals"},
}

// descriptorFilter builds one equality per non-wildcard descriptor field.
// A fully wildcarded descriptor yields nil (no constraint).
func descriptorFilter(d ir.Descriptor) queryir.Predicate {
	var preds []queryir.Predicate
	for _, c := range d.Constraints() {
		preds = append(preds, queryir.Equals{
			Field: "variables." + string(c.Field),
			Value: c.Value,
		})
	}
	return queryir.AllOf(preds...)
}

// descriptorQuery selects the variables of fileName matching d.
func descriptorQuery(fileName string, d ir.Descriptor) queryir.Join {
	return queryir.Join{
		Left: queryir.Select{
			From:     "variables",
			Filter:   descriptorFilter(d),
			Bindings: variableBindings,
		},
		Right: queryir.Select{
			From:     "files",
			Filter:   queryir.Equals{Field: "files.name", Value: fileName},
			Bindings: []queryir.Binding{{Field: "files.name", As: "file_name"}},
		},
		On: queryir.FieldEquals{Left: "variables.file_id", Right: "files.id"},
	}
}

// resolveDescriptors builds the lookup for a list of partial descriptors.
//
// Each descriptor becomes one branch restricted to fileName; branches are
// concatenated with UNION ALL in descriptor order, so a record matched by
// two descriptors is returned twice. No descriptors means every variable.
func resolveDescriptors(fileName string, descriptors []ir.Descriptor) queryir.Query {
	if len(descriptors) == 0 {
		descriptors = []ir.Descriptor{ir.Wildcard}
	}
	if len(descriptors) == 1 {
		return descriptorQuery(fileName, descriptors[0])
	}

	branches := make([]queryir.Query, len(descriptors))
	for i, d := range descriptors {
		branches[i] = descriptorQuery(fileName, d)
	}
	return queryir.Union{Queries: branches, All: true}
}
