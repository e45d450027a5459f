package genieacs

import "strings"

const countryCode = "62"

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// national drops a leading trunk 0 or the country code, so 0812.. and
// 62812.. compare equal.
func national(d string) string {
	switch {
	case strings.HasPrefix(d, countryCode):
		return d[len(countryCode):]
	case strings.HasPrefix(d, "0"):
		return d[1:]
	}
	return d
}

func suffixMatch(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return a == b || strings.HasSuffix(a, b) || strings.HasSuffix(b, a)
}

// PhoneMatches compares a customer number against a device tag on digits
// only, tolerating country-code and trunk-prefix differences.
func PhoneMatches(number, tag string) bool {
	n, t := digitsOnly(number), digitsOnly(tag)
	if suffixMatch(n, t) {
		return true
	}
	return suffixMatch(national(n), national(t))
}

// CanonicalPhone reduces a number to digits in international form, so
// 0812.. becomes 62812... Empty input yields "".
func CanonicalPhone(number string) string {
	d := digitsOnly(number)
	if strings.HasPrefix(d, "0") {
		return countryCode + d[1:]
	}
	return d
}
