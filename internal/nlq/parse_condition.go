package nlq

import (
	"strings"
	"time"

	"github.com/matthewbaird/nlquery/internal/intent"
	"github.com/matthewbaird/nlquery/internal/keyword"
)

// conditionParser builds the filter tree. Every operator anchors a leaf:
// the field is the term right before it and the value(s) follow. Leaves
// are joined by the logic words between them, AND binding tighter than OR.
type conditionParser struct {
	suggester *Suggester
}

type leafSpan struct {
	cond       *intent.Condition
	start, end int
}

func (p conditionParser) Parse(tokens []Token) (*intent.Condition, error) {
	consumed := make([]bool, len(tokens))

	var leaves []leafSpan
	for i, tok := range tokens {
		if tok.Type != TokenOperator || consumed[i] {
			continue
		}
		// Closing "之间" of "介于18和30之间".
		if tok.Operator == keyword.OpBetween && i > 0 && consumed[i-1] &&
			(i+1 >= len(tokens) || !isValueToken(tokens[i+1])) {
			consumed[i] = true
			continue
		}
		span, err := p.leaf(tokens, i, consumed)
		if err != nil {
			return nil, err
		}
		leaves = append(leaves, span)
	}

	if err := p.checkStrays(tokens, consumed); err != nil {
		return nil, err
	}
	return combine(tokens, leaves, consumed), nil
}

func (p conditionParser) leaf(tokens []Token, i int, consumed []bool) (leafSpan, error) {
	op := tokens[i]
	if op.Operator == keyword.OpBetween && (i+1 >= len(tokens) || !isValueToken(tokens[i+1])) {
		return p.postfixBetween(tokens, i, consumed)
	}

	fi := i - 1
	if fi < 0 {
		return leafSpan{}, newSyntaxError(op, "operator %q has no field", op.Text)
	}
	if prev := tokens[fi]; prev.Type == TokenOperator {
		return leafSpan{}, newSyntaxError(op, "consecutive operators %q %q", prev.Text, op.Text)
	}
	if !isFieldToken(tokens[fi]) || consumed[fi] {
		return leafSpan{}, newSyntaxError(op, "operator %q has no field", op.Text)
	}
	field := tokens[fi].Text

	if op.Operator.IsUnary() {
		mark(consumed, fi, i+1)
		return leafSpan{cond: intent.Leaf(field, op.Operator, nil), start: fi, end: i + 1}, nil
	}

	k := i + 1
	if k >= len(tokens) || !isValueToken(tokens[k]) {
		if k < len(tokens) && tokens[k].Type == TokenOperator {
			return leafSpan{}, newSyntaxError(tokens[k], "consecutive operators %q %q", op.Text, tokens[k].Text)
		}
		return leafSpan{}, newMissingValue(op, field)
	}

	if op.Operator == keyword.OpBetween {
		lo, hi, next, err := betweenValues(tokens, k, op, field)
		if err != nil {
			return leafSpan{}, err
		}
		mark(consumed, fi, next)
		return leafSpan{cond: intent.LeafValues(field, keyword.OpBetween, lo, hi), start: fi, end: next}, nil
	}

	values := []Token{tokens[k]}
	next := k + 1
	if listable(op.Operator) {
		for next+1 < len(tokens) && isListSeparator(tokens[next]) && isValueToken(tokens[next+1]) &&
			!startsClause(tokens, next+2) {
			values = append(values, tokens[next+1])
			next += 2
		}
	}

	operator := op.Operator
	if len(values) > 1 {
		switch operator {
		case keyword.OpEQ:
			operator = keyword.OpIn
		case keyword.OpNE:
			operator = keyword.OpNotIn
		}
	}

	if operator.IsRange() {
		for _, v := range values {
			if !isOrdered(v) {
				return leafSpan{}, newTypeMismatch(v, string(operator), "a number or a date")
			}
		}
	}

	mark(consumed, fi, next)
	var cond *intent.Condition
	if operator.IsMulti() {
		vs := make([]any, len(values))
		for j, v := range values {
			vs[j] = tokenValue(v)
		}
		cond = intent.LeafValues(field, operator, vs...)
	} else {
		cond = intent.Leaf(field, operator, tokenValue(values[0]))
	}
	return leafSpan{cond: cond, start: fi, end: next}, nil
}

// postfixBetween handles "年龄18到30之间" where the operator closes the leaf.
func (p conditionParser) postfixBetween(tokens []Token, i int, consumed []bool) (leafSpan, error) {
	op := tokens[i]
	j := i - 1
	if j >= 1 && !consumed[j] {
		if lo, hi, ok := splitRange(tokens[j]); ok && isFieldToken(tokens[j-1]) && !consumed[j-1] {
			mark(consumed, j-1, i+1)
			return leafSpan{cond: intent.LeafValues(tokens[j-1].Text, keyword.OpBetween, lo, hi), start: j - 1, end: i + 1}, nil
		}
	}
	if j >= 3 && isValueToken(tokens[j]) && isRangeConnector(tokens[j-1]) && isValueToken(tokens[j-2]) &&
		isFieldToken(tokens[j-3]) && !consumed[j-3] {
		lo, hi := tokens[j-2], tokens[j]
		for _, v := range []Token{lo, hi} {
			if !isOrdered(v) {
				return leafSpan{}, newTypeMismatch(v, string(keyword.OpBetween), "a number or a date")
			}
		}
		mark(consumed, j-3, i+1)
		cond := intent.LeafValues(tokens[j-3].Text, keyword.OpBetween, tokenValue(lo), tokenValue(hi))
		return leafSpan{cond: cond, start: j - 3, end: i + 1}, nil
	}
	return leafSpan{}, newSyntaxError(op, "%q needs a field and two values, e.g. 年龄18到30之间", op.Text)
}

// betweenValues reads "18 到 30", "18 and 30" or "18-30" starting at k and
// returns the bounds and the index after them.
func betweenValues(tokens []Token, k int, op Token, field string) (any, any, int, error) {
	if lo, hi, ok := splitRange(tokens[k]); ok {
		return lo, hi, k + 1, nil
	}
	if k+2 >= len(tokens) || !isRangeConnector(tokens[k+1]) || !isValueToken(tokens[k+2]) {
		return nil, nil, 0, newMissingValue(op, field)
	}
	lo, hi := tokens[k], tokens[k+2]
	for _, v := range []Token{lo, hi} {
		if !isOrdered(v) {
			return nil, nil, 0, newTypeMismatch(v, string(keyword.OpBetween), "a number or a date")
		}
	}
	return tokenValue(lo), tokenValue(hi), k + 3, nil
}

// splitRange reads a single word holding both bounds ("18-30", "18~30").
func splitRange(t Token) (any, any, bool) {
	if t.Type != TokenUnknown {
		return nil, nil, false
	}
	for _, sep := range []string{"~", "-"} {
		parts := strings.Split(t.Text, sep)
		if len(parts) != 2 {
			continue
		}
		lo, ok1 := parseNumber(parts[0], t.Pos)
		hi, ok2 := parseNumber(parts[1], t.Pos)
		if ok1 && ok2 {
			return lo.Number, hi.Number, true
		}
	}
	return nil, nil, false
}

// checkStrays reports leftovers that look like a broken comparison: a
// field followed by a number with no operator in between, or a term joined
// to a finished condition that no clause can take.
func (p conditionParser) checkStrays(tokens []Token, consumed []bool) error {
	free := func(j int) bool { return j < len(tokens) && !consumed[j] }

	for i, t := range tokens {
		if consumed[i] || !isFieldToken(t) {
			continue
		}
		// "年龄 大雨 18": the middle word is a misspelt operator.
		if free(i+1) && free(i+2) && isFieldToken(tokens[i+1]) && tokens[i+2].Type == TokenNumber {
			if hits, ok := p.suggester.plausibleTypo(tokens[i+1].Text); ok {
				return newUnrecognizedOperator(tokens[i+1].Text, tokens[i+1].Pos, hits)
			}
		}
		if free(i+1) && tokens[i+1].Type == TokenNumber {
			// "年龄大雨 18": the operator was glued to the field.
			if word, pos, hits, ok := p.suffixTypo(t); ok {
				return newUnrecognizedOperator(word, pos, hits)
			}
			return newMissingOperator(t, tokens[i+1])
		}
	}

	for j, t := range tokens {
		if consumed[j] || t.Type != TokenNumber {
			continue
		}
		if err := p.splitOperator(tokens, consumed, j); err != nil {
			return err
		}
	}

	// "年龄大于18或20": the trailing term belongs to no condition.
	for i, t := range tokens {
		if consumed[i] || t.Type != TokenLogic || i == 0 || !consumed[i-1] {
			continue
		}
		if free(i+1) && isValueToken(tokens[i+1]) && !startsClause(tokens, i+2) {
			return newSyntaxError(tokens[i+1], "%q after %q is not part of any condition", tokens[i+1].Text, t.Text)
		}
	}
	return nil
}

// maxFragments bounds how many words a split operator may span.
const maxFragments = 3

// splitOperator looks behind the free number at j for an operator the
// segmenter broke apart around a logic word ("年龄等与18" reads as
// 年龄 等 与 18). The fragments are rejoined and checked as a typo; a
// field left without any operator is reported as such.
func (p conditionParser) splitOperator(tokens []Token, consumed []bool, j int) error {
	var field *Token
	hasLogic := false
	for m := j - 1; m >= 1 && j-m <= maxFragments && !consumed[m]; m-- {
		switch frag := tokens[m]; {
		case frag.Type == TokenLogic:
			hasLogic = true
		case !isFieldToken(frag):
			return nil
		}
		prev := tokens[m-1]
		if !hasLogic || consumed[m-1] || !isFieldToken(prev) {
			continue
		}

		var b strings.Builder
		for k := m; k < j; k++ {
			b.WriteString(tokens[k].Text)
		}
		joined := b.String()
		if hits, ok := p.suggester.plausibleTypo(joined); ok {
			return newUnrecognizedOperator(joined, tokens[m].Pos, hits)
		}
		// "年龄等" + "与": part of the operator stuck to the field.
		glued := Token{Type: prev.Type, Text: prev.Text + joined, Pos: prev.Pos}
		if word, pos, hits, ok := p.suffixTypo(glued); ok {
			return newUnrecognizedOperator(word, pos, hits)
		}
		if field == nil {
			field = &tokens[m-1]
		}
	}
	if field != nil {
		return newMissingOperator(*field, tokens[j])
	}
	return nil
}

// suffixTypo finds the suffix of a term (leaving a non-empty field) that
// is nearest to an operator keyword. Ties prefer the shorter suffix.
func (p conditionParser) suffixTypo(t Token) (string, int, []string, bool) {
	runes := []rune(t.Text)
	best, bestDist := -1, similarityThreshold+1
	var bestHits []string
	for n := 2; n < len(runes); n++ {
		suffix := string(runes[len(runes)-n:])
		hits, ok := p.suggester.plausibleTypo(suffix)
		if !ok {
			continue
		}
		if d := Levenshtein(suffix, hits[0]); d < bestDist {
			best, bestDist, bestHits = n, d, hits
		}
	}
	if best < 0 {
		return "", 0, nil, false
	}
	at := len(runes) - best
	return string(runes[at:]), t.Pos + at, bestHits, true
}

// combine joins the leaves. Adjacent leaves without a logic word are ANDed.
func combine(tokens []Token, leaves []leafSpan, consumed []bool) *intent.Condition {
	if len(leaves) == 0 {
		return nil
	}
	groups := [][]*intent.Condition{{leaves[0].cond}}
	for k := 1; k < len(leaves); k++ {
		or := false
		for t := leaves[k-1].end; t < leaves[k].start; t++ {
			if !consumed[t] && tokens[t].Type == TokenLogic && tokens[t].Logic == keyword.LogicOr {
				or = true
			}
		}
		if or {
			groups = append(groups, []*intent.Condition{leaves[k].cond})
		} else {
			groups[len(groups)-1] = append(groups[len(groups)-1], leaves[k].cond)
		}
	}

	ors := make([]*intent.Condition, len(groups))
	for i, g := range groups {
		ors[i] = intent.And(g...)
	}
	return intent.Or(ors...)
}

func mark(consumed []bool, from, to int) {
	for i := from; i < to; i++ {
		consumed[i] = true
	}
}

func isFieldToken(t Token) bool {
	return (t.Type == TokenUnknown || t.Type == TokenFieldCandidate) && !isReserved(t)
}

func isValueToken(t Token) bool {
	switch t.Type {
	case TokenNumber, TokenValue, TokenFieldCandidate:
		return true
	case TokenUnknown:
		return !isReserved(t)
	}
	return false
}

// startsClause reports whether tokens[j] makes the term before it the
// subject of another clause ("北京，创建时间降序").
func startsClause(tokens []Token, j int) bool {
	if j >= len(tokens) {
		return false
	}
	switch tokens[j].Type {
	case TokenOperator, TokenSort, TokenAggregation:
		return true
	}
	return isSortMarker(tokens[j])
}

func isRangeConnector(t Token) bool {
	switch t.Type {
	case TokenUnknown:
		return rangeConnectors.has(t.Text)
	case TokenLogic:
		return t.Logic == keyword.LogicAnd
	}
	return false
}

// listable operators accept "北京、上海".
func listable(op keyword.Operator) bool {
	return op.IsMulti() || op == keyword.OpEQ || op == keyword.OpNE
}

// isListSeparator accepts delimiters and logic words ("属于北京或上海").
// An equality over several values reads as a list, "城市等于北京或上海"
// being 城市 IN (北京, 上海).
func isListSeparator(t Token) bool {
	return t.Type == TokenDelimiter || t.Type == TokenLogic
}

func tokenValue(t Token) any {
	if t.Type == TokenNumber {
		return t.Number
	}
	return t.Text
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"20060102",
}

// isOrdered reports whether t can be compared by a range operator.
func isOrdered(t Token) bool {
	if t.Type == TokenNumber {
		return true
	}
	return isDate(t.Text)
}

func isDate(s string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}
