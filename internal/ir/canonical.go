package ir

import (
	"golang.org/x/text/unicode/norm"
)

// Canonical returns the NFC normalised form of a descriptor field.
//
// Descriptor fields are normalised when records are written and again when
// query descriptors are resolved, so a composed and a decomposed spelling
// of the same zone name compare equal in SQL. Comparison stays exact and
// case-sensitive after normalisation.
func Canonical(s string) string {
	if norm.NFC.IsNormalString(s) {
		return s
	}
	return norm.NFC.String(s)
}

// Normalize returns d with every field NFC normalised.
func (d Descriptor) Normalize() Descriptor {
	return Descriptor{
		Interval: Canonical(d.Interval),
		Key:      Canonical(d.Key),
		Variable: Canonical(d.Variable),
		Units:    Canonical(d.Units),
	}
}
