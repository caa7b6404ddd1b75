package db

import "strings"

// namedParameters returns the distinct :name parameters of query in order
// of first appearance. Quoted strings, quoted identifiers and comments are
// skipped, so a colon inside 'Intro: Live' is not a parameter.
func namedParameters(query string) []string {
	names := []string{}
	seen := map[string]bool{}

	for i := 0; i < len(query); i++ {
		switch c := query[i]; c {
		case '\'', '"', '`':
			i = skipQuoted(query, i, c)
		case '[':
			if end := strings.IndexByte(query[i:], ']'); end >= 0 {
				i += end
			} else {
				i = len(query)
			}
		case '-':
			if strings.HasPrefix(query[i:], "--") {
				if end := strings.IndexByte(query[i:], '\n'); end >= 0 {
					i += end
				} else {
					i = len(query)
				}
			}
		case '/':
			if strings.HasPrefix(query[i:], "/*") {
				if end := strings.Index(query[i+2:], "*/"); end >= 0 {
					i += end + 3
				} else {
					i = len(query)
				}
			}
		case ':':
			j := i + 1
			for j < len(query) && isNameByte(query[j]) {
				j++
			}
			if j == i+1 {
				continue
			}
			name := query[i+1 : j]
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
			i = j - 1
		}
	}

	return names
}

// skipQuoted returns the index of the quote closing the literal opened at
// start. A doubled quote is an escaped quote.
func skipQuoted(query string, start int, quote byte) int {
	for i := start + 1; i < len(query); i++ {
		if query[i] != quote {
			continue
		}
		if i+1 < len(query) && query[i+1] == quote {
			i++
			continue
		}
		return i
	}
	return len(query)
}

func isNameByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}
