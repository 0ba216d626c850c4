package nlq

// indexExtractor finds "索引 users", "index users" or "用户表" and removes
// the consumed tokens so later parsers never see them.
type indexExtractor struct{}

// Extract returns the remaining tokens and the index hint, if any. The
// first indicator wins; later indicators are left alone.
func (indexExtractor) Extract(tokens []Token) ([]Token, string) {
	for i, tok := range tokens {
		if !isWord(tok) || !indexIndicators.has(tok.Text) {
			continue
		}

		// Chinese indicators usually follow the name ("用户表").
		if !isASCII(tok.Text) && i > 0 && isIndexName(tokens[i-1]) {
			return remove(tokens, i-1, i+1), tokens[i-1].Text
		}

		j := i + 1
		if j < len(tokens) && isWord(tokens[j]) && demonstratives.has(tokens[j].Text) {
			j++
		}
		// The next term is captured even if it is itself an indicator word
		// ("index 索引").
		if j < len(tokens) && tokens[j].IsTerm() && (!isReserved(tokens[j]) || indexIndicators.has(tokens[j].Text)) {
			return remove(tokens, i, j+1), tokens[j].Text
		}
		if i > 0 && isIndexName(tokens[i-1]) {
			return remove(tokens, i-1, i+1), tokens[i-1].Text
		}
		return remove(tokens, i, i+1), ""
	}
	return tokens, ""
}

func isIndexName(t Token) bool {
	return t.IsTerm() && !isReserved(t) && !indexIndicators.has(t.Text)
}

// remove returns tokens without [from, to), leaving the input untouched.
func remove(tokens []Token, from, to int) []Token {
	out := make([]Token, 0, len(tokens)-(to-from))
	out = append(out, tokens[:from]...)
	return append(out, tokens[to:]...)
}
