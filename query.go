package forman

import "strings"

// withTailQuery suffixes a reference URL with the parameters a remote
// endpoint needs: one name={{name}} pair per ancestor, in tail order. The
// separator respects an existing query in the URL.
func withTailQuery(url string, tail []TailEntry) string {
	if url == "" || len(tail) == 0 {
		return url
	}
	var b strings.Builder
	b.WriteString(url)
	sep := byte('?')
	if strings.ContainsRune(url, '?') {
		sep = '&'
	}
	for i, t := range tail {
		if i == 0 {
			b.WriteByte(sep)
		} else {
			b.WriteByte('&')
		}
		b.WriteString(t.Name)
		b.WriteString("={{")
		b.WriteString(t.Name)
		b.WriteString("}}")
	}
	return b.String()
}
