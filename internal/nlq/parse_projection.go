package nlq

import "github.com/matthewbaird/nlquery/internal/keyword"

// projectionParser reads the requested fields: "显示姓名和年龄字段",
// "select name, age".
type projectionParser struct{}

func (projectionParser) Parse(tokens []Token) []string {
	var fields []string
	seen := map[string]bool{}

	for i, tok := range tokens {
		if tok.Type != TokenUnknown || !projectionMarkers.has(tok.Text) {
			continue
		}
		for j := i + 1; j < len(tokens); j++ {
			t := tokens[j]
			if t.Type == TokenUnknown && projectionSuffixes.has(t.Text) {
				break
			}
			if !isFieldToken(t) {
				break
			}
			// "显示年龄大于18的": the term is a condition field.
			if j+1 < len(tokens) && tokens[j+1].Type == TokenOperator {
				break
			}
			if !seen[t.Text] {
				seen[t.Text] = true
				fields = append(fields, t.Text)
			}
			if j+1 >= len(tokens) || !isFieldSeparator(tokens[j+1]) {
				break
			}
			j++
		}
	}
	return fields
}

func isFieldSeparator(t Token) bool {
	return t.Type == TokenDelimiter || (t.Type == TokenLogic && t.Logic == keyword.LogicAnd)
}
