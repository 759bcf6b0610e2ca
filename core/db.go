package core

import "strings"

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// OrderingClause joins orderings whose field is in allowed, skipping the others.
func OrderingClause(ordering []DBOrdering, allowed ...string) string {
	parts := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		if contains(allowed, ord.Field) {
			parts = append(parts, ord.String())
		}
	}
	return strings.Join(parts, ", ")
}
