package policy

// Tokenize splits policy config text (Boost INFO format) into lexical tokens.
// The format has four token kinds: the structural characters '{', '}' and '=',
// quoted strings, and bare words. Whitespace separates tokens and ';' starts a
// comment running to the end of the line. Quoted strings keep escaped
// characters as-is (the backslash only shields the next byte from closing the
// string); an unterminated quote consumes the rest of the input rather than
// failing.
func Tokenize(text string) []string {
	var tokens []string
	i := 0
	for i < len(text) {
		c := text[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == ';':
			for i < len(text) && text[i] != '\n' {
				i++
			}
		case c == '{' || c == '}' || c == '=':
			tokens = append(tokens, string(c))
			i++
		case c == '"':
			i++
			start := i
			for i < len(text) && text[i] != '"' {
				if text[i] == '\\' && i+1 < len(text) {
					i += 2
				} else {
					i++
				}
			}
			tokens = append(tokens, text[start:i])
			if i < len(text) {
				i++
			}
		default:
			start := i
			for i < len(text) && !isDelimiter(text[i]) {
				i++
			}
			if start < i {
				tokens = append(tokens, text[start:i])
			}
		}
	}
	return tokens
}

func isDelimiter(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '{', '}', '=', ';', '"':
		return true
	}
	return false
}
