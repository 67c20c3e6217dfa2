// Package natsort implements natural (numeric-aware) string ordering,
// so "page2.jpg" sorts before "page10.jpg".
package natsort

import "sort"

// Compare returns -1, 0, or 1 comparing a and b with digit runs
// compared by numeric value instead of code point.
func Compare(a, b string) int {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		ca, cb := a[i], b[j]
		if isDigit(ca) && isDigit(cb) {
			// Compare the full digit runs numerically. Leading zeros
			// are skipped so "002" and "2" compare equal in value.
			si, sj := i, j
			for i < len(a) && isDigit(a[i]) {
				i++
			}
			for j < len(b) && isDigit(b[j]) {
				j++
			}
			na := trimZeros(a[si:i])
			nb := trimZeros(b[sj:j])
			if len(na) != len(nb) {
				if len(na) < len(nb) {
					return -1
				}
				return 1
			}
			if na != nb {
				if na < nb {
					return -1
				}
				return 1
			}
			continue
		}
		if ca != cb {
			if ca < cb {
				return -1
			}
			return 1
		}
		i++
		j++
	}
	switch {
	case i < len(a):
		return 1
	case j < len(b):
		return -1
	}
	return 0
}

// Less reports whether a orders before b.
func Less(a, b string) bool {
	return Compare(a, b) < 0
}

// Sort sorts names in natural order in place.
func Sort(names []string) {
	sort.Slice(names, func(i, j int) bool {
		return Less(names[i], names[j])
	})
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func trimZeros(s string) string {
	for len(s) > 1 && s[0] == '0' {
		s = s[1:]
	}
	return s
}
