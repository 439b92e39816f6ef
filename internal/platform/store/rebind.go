package store

import "strings"

// Rebind rewrites $n placeholders for d
// sqlite needs each $n to appear exactly once and in ascending order
func (d Dialect) Rebind(sql string) string {
	if d != DialectSQLite {
		return sql
	}
	var b strings.Builder
	b.Grow(len(sql))
	inQuote := false
	for i := 0; i < len(sql); i++ {
		c := sql[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '$' && !inQuote && i+1 < len(sql) && isDigit(sql[i+1]):
			b.WriteByte('?')
			for i+1 < len(sql) && isDigit(sql[i+1]) {
				i++
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
