package parser

import "strings"

// SplitStatements splits a script into statements on semicolons that are
// outside quotes and comments. Comments are dropped from the returned
// statements, which are trimmed; empty statements are skipped.
func SplitStatements(script string) []string {
	var (
		stmts          []string
		buf            strings.Builder
		quote          byte
		inLineComment  bool
		inBlockComment bool
	)
	flush := func() {
		if s := strings.TrimSpace(buf.String()); s != "" {
			stmts = append(stmts, s)
		}
		buf.Reset()
	}

	for i := 0; i < len(script); i++ {
		ch := script[i]
		var next byte
		if i+1 < len(script) {
			next = script[i+1]
		}

		switch {
		case inLineComment:
			if ch == '\n' {
				inLineComment = false
				buf.WriteByte(ch)
			}
		case inBlockComment:
			if ch == '*' && next == '/' {
				inBlockComment = false
				buf.WriteByte(' ')
				i++
			}
		case quote != 0:
			buf.WriteByte(ch)
			if ch == quote {
				// A doubled quote is an escaped quote character.
				if next == quote {
					buf.WriteByte(next)
					i++
				} else {
					quote = 0
				}
			}
		case ch == '-' && next == '-':
			inLineComment = true
			i++
		case ch == '/' && next == '*':
			inBlockComment = true
			i++
		case ch == '\'' || ch == '"' || ch == '`':
			quote = ch
			buf.WriteByte(ch)
		case ch == ';':
			flush()
		default:
			buf.WriteByte(ch)
		}
	}
	flush()
	return stmts
}
