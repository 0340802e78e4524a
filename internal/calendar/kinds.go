package calendar

import "strings"

// KindMapper maps leave type names of the attendance system to LeaveKind.
// Names match by case-insensitive prefix so "Urlaub 2024" is still vacation.
type KindMapper struct {
	Vacation []string
	Sick     []string
	Special  []string
}

// DefaultKindMapper uses the German leave type names of a stock Odoo setup.
func DefaultKindMapper() KindMapper {
	return KindMapper{
		Vacation: []string{"Urlaub"},
		Sick:     []string{"Krankheit", "Kinderkrankentag", "Elternzeit"},
		Special:  []string{"Sonderurlaub", "Bildungsurlaub"},
	}
}

// Map returns the kind for a type name; ok is false for unknown types.
func (m KindMapper) Map(typeName string) (LeaveKind, bool) {
	name := strings.ToLower(strings.TrimSpace(typeName))
	if name == "" {
		return "", false
	}
	// special is checked first: "Sonderurlaub" must not fall into vacation
	for _, group := range []struct {
		kind  LeaveKind
		names []string
	}{
		{LeaveSpecial, m.Special},
		{LeaveSick, m.Sick},
		{LeaveVacation, m.Vacation},
	} {
		for _, n := range group.names {
			if n != "" && strings.HasPrefix(name, strings.ToLower(n)) {
				return group.kind, true
			}
		}
	}
	return "", false
}
