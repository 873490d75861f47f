package dialect

import (
	"fmt"
	"strings"
)

// GeneratePlaceholders joins count placeholders produced by placeholderFunc.
func GeneratePlaceholders(count int, placeholderFunc func(int) string) string {
	placeholders := make([]string, count)
	for i := 0; i < count; i++ {
		placeholders[i] = placeholderFunc(i)
	}
	return strings.Join(placeholders, ", ")
}

// DefaultNormalizeType lowercases the type name.
func DefaultNormalizeType(sqlType string) string {
	return strings.ToLower(sqlType)
}

func defaultDeleteQuery(table string) string {
	return fmt.Sprintf("DELETE FROM %s", table)
}

func defaultCountQuery(table string) string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
}
