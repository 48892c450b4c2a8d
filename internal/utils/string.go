package utils

import "fmt"

// FormatWithCommas formats an integer with comma separators
func FormatWithCommas(n int64) string {
	str := fmt.Sprintf("%d", n)
	neg := n < 0
	if neg {
		str = str[1:]
	}
	if len(str) <= 3 {
		if neg {
			return "-" + str
		}
		return str
	}

	result := make([]byte, 0, len(str)+len(str)/3)
	for i := 0; i < len(str); i++ {
		if i > 0 && (len(str)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, str[i])
	}
	if neg {
		return "-" + string(result)
	}
	return string(result)
}
