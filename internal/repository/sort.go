package repository

import "fmt"

// SortOrder is the direction applied to a list operation's ordering key.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

func (s SortOrder) direction() (string, error) {
	switch s {
	case SortAsc, "":
		return "ASC", nil
	case SortDesc:
		return "DESC", nil
	default:
		return "", fmt.Errorf("unknown sort order: %s", s)
	}
}

// orderByColumn resolves an ordering key against a column whitelist. An empty
// key falls back to the given default column.
func orderByColumn(columns map[string]string, key, defaultColumn string) (string, error) {
	if key == "" {
		return defaultColumn, nil
	}
	column, ok := columns[key]
	if !ok {
		return "", fmt.Errorf("unknown order by key: %s", key)
	}
	return column, nil
}
