package common

// IsStatusPath reports whether path belongs under the Status dropdown.
func IsStatusPath(path string) bool {
	for _, l := range StatusLinks {
		if l.Path == path {
			return true
		}
	}
	return false
}
