package utils

import "strings"

// SplitAndTrim separa uma lista por vírgulas, removendo espaços e itens vazios
func SplitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
