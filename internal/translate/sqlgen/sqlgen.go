// Package sqlgen translates intents into SQL statements with the ent
// dialect/sql builder.
package sqlgen

import (
	"fmt"
	"sort"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql"
	"github.com/pkg/errors"
	"github.com/spf13/cast"

	"github.com/matthewbaird/nlquery/internal/intent"
	"github.com/matthewbaird/nlquery/internal/keyword"
	"github.com/matthewbaird/nlquery/internal/translate"
)

// Statement is a parameterized SQL statement.
type Statement struct {
	SQL  string `json:"sql"`
	Args []any  `json:"args,omitempty"`
}

// Translator builds statements for one SQL dialect (dialect.SQLite when
// empty).
type Translator struct {
	Dialect string
}

var _ translate.Translator[Statement] = Translator{}

// Translate implements translate.Translator.
func (t Translator) Translate(in intent.Intent, ctx translate.Context) (Statement, error) {
	ctx = ctx.Defaults()
	tgt, err := ctx.Index(in.IndexHint())
	if err != nil {
		return Statement{}, err
	}

	g := gen{dialect: t.Dialect, tgt: tgt, ctx: ctx}
	if g.dialect == "" {
		g.dialect = dialect.SQLite
	}

	switch v := in.(type) {
	case *intent.Query:
		return g.query(v)
	case *intent.Analytics:
		return g.analytics(v)
	case *intent.Insert:
		return g.insert(v)
	case *intent.Update:
		return g.update(v)
	case *intent.Delete:
		return g.delete(v)
	}
	return Statement{}, errors.Wrapf(translate.ErrUnsupportedIntent, "sql cannot express %s", in.Kind())
}

type gen struct {
	dialect string
	tgt     translate.Target
	ctx     translate.Context
}

func (g gen) query(q *intent.Query) (Statement, error) {
	cols := make([]string, len(q.FieldHints))
	for i, h := range q.FieldHints {
		cols[i] = g.tgt.Field(h)
	}
	sel := sql.Dialect(g.dialect).Select(cols...).From(sql.Dialect(g.dialect).Table(g.tgt.Table))

	p, err := g.where(q.Condition, q.DateRange)
	if err != nil {
		return Statement{}, err
	}

	w := translate.PageWindow(q.Pagination, g.ctx)
	sorts := q.Sorts
	if len(w.SearchAfter) > 0 {
		if len(sorts) == 0 {
			sorts = []intent.Sort{{Order: keyword.SortDesc}}
		}
		// Keyset pagination on the first sort key.
		col := g.tgt.TimeField(sorts[0].FieldHint, g.ctx)
		after := translate.Coerce(w.SearchAfter[0], g.tgt.FieldType(sorts[0].FieldHint))
		if sorts[0].Order == keyword.SortAsc {
			p = and(p, sql.GT(col, after))
		} else {
			p = and(p, sql.LT(col, after))
		}
	}
	if p != nil {
		sel.Where(p)
	}

	for _, s := range sorts {
		col := g.tgt.TimeField(s.FieldHint, g.ctx)
		if s.Order == keyword.SortAsc {
			sel.OrderBy(sql.Asc(col))
		} else {
			sel.OrderBy(sql.Desc(col))
		}
	}
	sel.Limit(w.Size)
	if w.From > 0 && len(w.SearchAfter) == 0 {
		sel.Offset(w.From)
	}
	return statement(sel.Query()), nil
}

func (g gen) analytics(a *intent.Analytics) (Statement, error) {
	var cols, groups []string
	var buckets []*intent.Aggregation
	for _, agg := range flatten(a.Aggregations) {
		if !agg.IsBucket() {
			continue
		}
		expr, err := g.bucketExpr(agg)
		if err != nil {
			return Statement{}, err
		}
		cols = append(cols, sql.As(expr, agg.Name))
		groups = append(groups, agg.Name)
		buckets = append(buckets, agg)
	}
	for _, agg := range flatten(a.Aggregations) {
		if agg.IsBucket() {
			continue
		}
		exprs, err := g.metricExprs(agg)
		if err != nil {
			return Statement{}, err
		}
		cols = append(cols, exprs...)
	}
	if len(cols) == 0 {
		cols = []string{sql.As(sql.Count("*"), "count")}
	}

	sel := sql.Dialect(g.dialect).Select(cols...).From(sql.Dialect(g.dialect).Table(g.tgt.Table))
	p, err := g.where(a.Condition, a.DateRange)
	if err != nil {
		return Statement{}, err
	}
	if p != nil {
		sel.Where(p)
	}
	if len(groups) > 0 {
		sel.GroupBy(groups...)
		sel.OrderBy(groups...)
	}
	if len(buckets) == 1 && buckets[0].Type == keyword.AggTerms && buckets[0].Size > 0 {
		sel.Limit(buckets[0].Size)
	}
	return statement(sel.Query()), nil
}

// flatten lists aggregations depth first; SQL groups by every bucket at once.
func flatten(aggs []*intent.Aggregation) []*intent.Aggregation {
	var out []*intent.Aggregation
	for _, a := range aggs {
		out = append(out, a)
		if a.IsBucket() {
			out = append(out, flatten(a.Children)...)
		}
	}
	return out
}

func (g gen) bucketExpr(a *intent.Aggregation) (string, error) {
	b := sql.Builder{}
	b.SetDialect(g.dialect)

	switch a.Type {
	case keyword.AggTerms:
		if a.Field() == "" {
			return "", errors.Errorf("aggregation %s has no group-by field", a.Name)
		}
		return b.Quote(g.tgt.Field(a.Field())), nil
	case keyword.AggDateHistogram:
		col := b.Quote(g.tgt.TimeField(a.FieldHint, g.ctx))
		return g.truncate(col, a.Interval)
	case keyword.AggHistogram:
		if a.Field() == "" {
			return "", errors.Errorf("aggregation %s has no field", a.Name)
		}
		step := a.Interval
		if step == "" {
			step = "10"
		}
		if _, err := cast.ToFloat64E(step); err != nil {
			return "", errors.Errorf("aggregation %s has a non-numeric interval %q", a.Name, a.Interval)
		}
		return fmt.Sprintf("CAST(%s / %s AS INTEGER) * %s", b.Quote(g.tgt.Field(a.Field())), step, step), nil
	}
	return "", errors.Wrapf(translate.ErrUnsupportedIntent, "sql aggregation %s", a.Type)
}

// Date bucket formats per calendar interval.
var truncFormats = map[string]map[string]string{
	dialect.SQLite: {
		"1m": "%Y-%m-%d %H:%M", "1h": "%Y-%m-%d %H:00", "1d": "%Y-%m-%d",
		"1w": "%Y-%W", "1M": "%Y-%m", "1y": "%Y",
	},
	dialect.MySQL: {
		"1m": "%Y-%m-%d %H:%i", "1h": "%Y-%m-%d %H:00", "1d": "%Y-%m-%d",
		"1w": "%x-%v", "1M": "%Y-%m", "1y": "%Y",
	},
	dialect.Postgres: {
		"1m": "YYYY-MM-DD HH24:MI", "1h": "YYYY-MM-DD HH24:00", "1d": "YYYY-MM-DD",
		"1w": "IYYY-IW", "1M": "YYYY-MM", "1y": "YYYY",
	},
}

func (g gen) truncate(col, interval string) (string, error) {
	if interval == "" {
		interval = "1d"
	}
	format, ok := truncFormats[g.dialect][interval]
	if !ok {
		return "", errors.Wrapf(translate.ErrUnsupportedIntent, "date interval %q on %s", interval, g.dialect)
	}
	switch g.dialect {
	case dialect.MySQL:
		return fmt.Sprintf("DATE_FORMAT(%s, '%s')", col, format), nil
	case dialect.Postgres:
		return fmt.Sprintf("to_char(%s, '%s')", col, format), nil
	}
	return fmt.Sprintf("strftime('%s', %s)", format, col), nil
}

func (g gen) metricExprs(a *intent.Aggregation) ([]string, error) {
	col := g.tgt.Field(a.FieldHint)
	if col == "" {
		if a.Type == keyword.AggCount {
			return []string{sql.As(sql.Count("*"), a.Name)}, nil
		}
		return nil, errors.Errorf("aggregation %s has no field", a.Name)
	}
	switch a.Type {
	case keyword.AggAvg:
		return []string{sql.As(sql.Avg(col), a.Name)}, nil
	case keyword.AggSum:
		return []string{sql.As(sql.Sum(col), a.Name)}, nil
	case keyword.AggMin:
		return []string{sql.As(sql.Min(col), a.Name)}, nil
	case keyword.AggMax:
		return []string{sql.As(sql.Max(col), a.Name)}, nil
	case keyword.AggCount:
		return []string{sql.As(sql.Count(col), a.Name)}, nil
	case keyword.AggCardinality:
		return []string{sql.As(sql.Count(sql.Distinct(col)), a.Name)}, nil
	case keyword.AggStats:
		return []string{
			sql.As(sql.Count(col), a.Name+"_count"),
			sql.As(sql.Min(col), a.Name+"_min"),
			sql.As(sql.Max(col), a.Name+"_max"),
			sql.As(sql.Avg(col), a.Name+"_avg"),
			sql.As(sql.Sum(col), a.Name+"_sum"),
		}, nil
	}
	return nil, errors.Wrapf(translate.ErrUnsupportedIntent, "sql aggregation %s", a.Type)
}

func (g gen) insert(in *intent.Insert) (Statement, error) {
	if len(in.Data) == 0 {
		return Statement{}, errors.New("insert without values")
	}
	keys := sortedKeys(in.Data)
	cols := make([]string, len(keys))
	vals := make([]any, len(keys))
	for i, k := range keys {
		cols[i] = g.tgt.Field(k)
		vals[i] = translate.Coerce(in.Data[k], g.tgt.FieldType(k))
	}
	return statement(sql.Dialect(g.dialect).Insert(g.tgt.Table).Columns(cols...).Values(vals...).Query()), nil
}

func (g gen) update(u *intent.Update) (Statement, error) {
	if len(u.Updates) == 0 {
		return Statement{}, errors.New("update without values")
	}
	p, err := g.where(u.Condition, nil)
	if err != nil {
		return Statement{}, err
	}
	if p == nil {
		return Statement{}, errors.Errorf("refusing to update every row of %s", g.tgt.Table)
	}
	up := sql.Dialect(g.dialect).Update(g.tgt.Table)
	for _, k := range sortedKeys(u.Updates) {
		up.Set(g.tgt.Field(k), translate.Coerce(u.Updates[k], g.tgt.FieldType(k)))
	}
	return statement(up.Where(p).Query()), nil
}

func (g gen) delete(d *intent.Delete) (Statement, error) {
	p, err := g.where(d.Condition, nil)
	if err != nil {
		return Statement{}, err
	}
	if p == nil {
		return Statement{}, errors.Errorf("refusing to delete every row of %s", g.tgt.Table)
	}
	return statement(sql.Dialect(g.dialect).Delete(g.tgt.Table).Where(p).Query()), nil
}

func (g gen) where(c *intent.Condition, dr *intent.DateRange) (*sql.Predicate, error) {
	var p *sql.Predicate
	if c != nil {
		var err error
		if p, err = g.condition(c); err != nil {
			return nil, err
		}
	}
	if dr.IsValid() {
		col := g.tgt.TimeField(dr.FieldHint, g.ctx)
		if dr.From != "" {
			if dr.IncludeFrom {
				p = and(p, sql.GTE(col, dr.From))
			} else {
				p = and(p, sql.GT(col, dr.From))
			}
		}
		if dr.To != "" {
			if dr.IncludeTo {
				p = and(p, sql.LTE(col, dr.To))
			} else {
				p = and(p, sql.LT(col, dr.To))
			}
		}
	}
	return p, nil
}

func (g gen) condition(c *intent.Condition) (*sql.Predicate, error) {
	if c.IsLogic() {
		ps := make([]*sql.Predicate, 0, len(c.Children))
		for _, child := range c.Children {
			p, err := g.condition(child)
			if err != nil {
				return nil, err
			}
			ps = append(ps, p)
		}
		if c.Logic == keyword.LogicOr {
			return sql.Or(ps...), nil
		}
		return sql.And(ps...), nil
	}

	col := g.tgt.Field(c.FieldHint)
	ft := g.tgt.FieldType(c.FieldHint)
	v := translate.Coerce(c.Value, ft)
	vs := translate.Values(c.Values, ft)

	switch c.Operator {
	case keyword.OpEQ:
		return sql.EQ(col, v), nil
	case keyword.OpNE:
		return sql.NEQ(col, v), nil
	case keyword.OpGT:
		return sql.GT(col, v), nil
	case keyword.OpGTE:
		return sql.GTE(col, v), nil
	case keyword.OpLT:
		return sql.LT(col, v), nil
	case keyword.OpLTE:
		return sql.LTE(col, v), nil
	case keyword.OpLike:
		return sql.Like(col, translate.LikePattern(v, "%")), nil
	case keyword.OpNotLike:
		return sql.Not(sql.Like(col, translate.LikePattern(v, "%"))), nil
	case keyword.OpIn:
		return sql.In(col, vs...), nil
	case keyword.OpNotIn:
		return sql.NotIn(col, vs...), nil
	case keyword.OpBetween:
		if len(vs) != 2 {
			return nil, errors.Errorf("between on %s needs two values, got %d", col, len(vs))
		}
		return sql.And(sql.GTE(col, vs[0]), sql.LTE(col, vs[1])), nil
	case keyword.OpIsNull:
		return sql.IsNull(col), nil
	case keyword.OpIsNotNull:
		return sql.NotNull(col), nil
	}
	return nil, errors.Wrapf(translate.ErrUnsupportedIntent, "operator %s", c.Operator)
}

func and(p, q *sql.Predicate) *sql.Predicate {
	if p == nil {
		return q
	}
	return sql.And(p, q)
}

func statement(query string, args []any) Statement {
	return Statement{SQL: query, Args: args}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
