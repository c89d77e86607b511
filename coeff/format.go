package coeff

import (
	"maps"
	"slices"
	"sort"
)

var (
	knownJoinTypes = []string{JoinIFromS, JoinIFromQ, JoinQFromI}
	functionGroups = []FunctionType{FunctionPower, FunctionPoly, FunctionExp}
)

// Format lists every record of the table for reporting. Records are ordered by join type
// (iFromS, iFromQ, qFromI, then any other alphabetically), by function group (power,
// poly, exp, other) and by ascending id. A record id is listed once. Records without
// provenance are always listed.
func Format(table Table) []Record {
	joinTypes := slices.Clone(knownJoinTypes)
	for _, jt := range slices.Sorted(maps.Keys(table)) {
		if !slices.Contains(knownJoinTypes, jt) {
			joinTypes = append(joinTypes, jt)
		}
	}

	seen := make(map[int64]bool)
	var out []Record
	for _, jt := range joinTypes {
		groups := make(map[FunctionType][]Record)
		var other []Record

		versions := table[jt]
		for _, v := range slices.Sorted(maps.Keys(versions)) {
			profiles := versions[v]
			for _, code := range slices.Sorted(maps.Keys(profiles)) {
				functions := profiles[code]
				for _, ft := range slices.Sorted(maps.Keys(functions)) {
					rec := functions[ft]
					if id, ok := rec.ID(); ok {
						if seen[id] {
							continue
						}
						seen[id] = true
					}
					if slices.Contains(functionGroups, ft) {
						groups[ft] = append(groups[ft], rec)
					} else {
						other = append(other, rec)
					}
				}
			}
		}

		for _, ft := range functionGroups {
			out = append(out, sortByID(groups[ft])...)
		}
		out = append(out, sortByID(other)...)
	}
	return out
}

func sortByID(records []Record) []Record {
	sort.SliceStable(records, func(i, j int) bool {
		a, _ := records[i].ID()
		b, _ := records[j].ID()
		return a < b
	})
	return records
}
