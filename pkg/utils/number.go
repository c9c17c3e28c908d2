package utils

// SafeDivide retorna 0 quando o divisor é 0
func SafeDivide(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}

	return numerator / denominator
}
