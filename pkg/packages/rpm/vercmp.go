package rpm

// Vercmp compares two version (or release) strings the way
// rpmvercmp does and returns -1, 0 or 1.
//
// Strings are split into runs of digits and runs of ASCII letters,
// everything else is a separator. A tilde sorts before anything,
// including the end of the string, and a caret sorts after the end
// of the string but before any other segment.
func Vercmp(a, b string) int {
	if a == b {
		return 0
	}

	one, two := a, b
	for one != "" || two != "" {
		one = trimSeparators(one)
		two = trimSeparators(two)

		// tilde sorts before everything else
		if hasPrefix(one, '~') || hasPrefix(two, '~') {
			if !hasPrefix(one, '~') {
				return 1
			}
			if !hasPrefix(two, '~') {
				return -1
			}
			one, two = one[1:], two[1:]
			continue
		}

		// caret sorts after the end of a string, but before
		// any other segment
		if hasPrefix(one, '^') || hasPrefix(two, '^') {
			if one == "" {
				return -1
			}
			if two == "" {
				return 1
			}
			if !hasPrefix(one, '^') {
				return 1
			}
			if !hasPrefix(two, '^') {
				return -1
			}
			one, two = one[1:], two[1:]
			continue
		}

		if one == "" || two == "" {
			break
		}

		var segOne, segTwo string
		isNum := isDigit(one[0])
		if isNum {
			segOne, one = span(one, isDigit)
			segTwo, two = span(two, isDigit)
		} else {
			segOne, one = span(one, isAlpha)
			segTwo, two = span(two, isAlpha)
		}

		// segments of different types, numeric is always newer
		if segTwo == "" {
			if isNum {
				return 1
			}
			return -1
		}

		if isNum {
			segOne = trimZeros(segOne)
			segTwo = trimZeros(segTwo)
			// whichever number has more digits wins
			if len(segOne) > len(segTwo) {
				return 1
			}
			if len(segTwo) > len(segOne) {
				return -1
			}
		}

		if segOne < segTwo {
			return -1
		}
		if segOne > segTwo {
			return 1
		}
	}

	if one == "" && two == "" {
		return 0
	}
	// whichever version still has characters left over wins
	if one != "" {
		return 1
	}
	return -1
}

func trimSeparators(s string) string {
	i := 0
	for i < len(s) && !isAlnum(s[i]) && s[i] != '~' && s[i] != '^' {
		i++
	}
	return s[i:]
}

func trimZeros(s string) string {
	i := 0
	for i < len(s) && s[i] == '0' {
		i++
	}
	return s[i:]
}

func span(s string, fn func(byte) bool) (string, string) {
	i := 0
	for i < len(s) && fn(s[i]) {
		i++
	}
	return s[:i], s[i:]
}

func hasPrefix(s string, c byte) bool {
	return s != "" && s[0] == c
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isAlnum(c byte) bool {
	return isDigit(c) || isAlpha(c)
}
