package util

// ClipString returns the first n characters (runes) of the string, or the whole string if it's not longer than n
func ClipString(str string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(str) <= n {
		return str
	}
	count := 0
	for i := range str {
		if count == n {
			return str[:i]
		}
		count++
	}
	return str
}
