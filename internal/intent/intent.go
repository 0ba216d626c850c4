// Package intent defines the data-source agnostic result of parsing a
// natural-language query.
package intent

import "github.com/matthewbaird/nlquery/internal/keyword"

// Kind discriminates the Intent variants.
type Kind string

const (
	KindQuery     Kind = "query"
	KindAnalytics Kind = "analytics"
	KindInsert    Kind = "insert"
	KindUpdate    Kind = "update"
	KindDelete    Kind = "delete"
)

// Intent is implemented only by the variants in this package.
type Intent interface {
	Kind() Kind
	// IndexHint names the target index or table; empty when none was given.
	IndexHint() string
	intent()
}

// Query selects documents.
type Query struct {
	Index      string      `json:"index_hint,omitempty"`
	Condition  *Condition  `json:"condition,omitempty"`
	Sorts      []Sort      `json:"sorts,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	DateRange  *DateRange  `json:"date_range,omitempty"`
	FieldHints []string    `json:"field_hints,omitempty"`
}

// Analytics aggregates documents.
type Analytics struct {
	Index        string         `json:"index_hint,omitempty"`
	Condition    *Condition     `json:"condition,omitempty"`
	Aggregations []*Aggregation `json:"aggregations"`
	DateRange    *DateRange     `json:"date_range,omitempty"`
}

// Insert adds one document.
type Insert struct {
	Index string         `json:"index_hint,omitempty"`
	Data  map[string]any `json:"data"`
}

// Update modifies the documents matching Condition.
type Update struct {
	Index     string         `json:"index_hint,omitempty"`
	Condition *Condition     `json:"condition,omitempty"`
	Updates   map[string]any `json:"updates"`
}

// Delete removes the documents matching Condition.
type Delete struct {
	Index     string     `json:"index_hint,omitempty"`
	Condition *Condition `json:"condition,omitempty"`
}

func (*Query) Kind() Kind     { return KindQuery }
func (*Analytics) Kind() Kind { return KindAnalytics }
func (*Insert) Kind() Kind    { return KindInsert }
func (*Update) Kind() Kind    { return KindUpdate }
func (*Delete) Kind() Kind    { return KindDelete }

func (q *Query) IndexHint() string     { return q.Index }
func (a *Analytics) IndexHint() string { return a.Index }
func (i *Insert) IndexHint() string    { return i.Index }
func (u *Update) IndexHint() string    { return u.Index }
func (d *Delete) IndexHint() string    { return d.Index }

func (*Query) intent()     {}
func (*Analytics) intent() {}
func (*Insert) intent()    {}
func (*Update) intent()    {}
func (*Delete) intent()    {}

// ConditionOf returns the filter carried by in, or nil.
func ConditionOf(in Intent) *Condition {
	switch v := in.(type) {
	case *Query:
		return v.Condition
	case *Analytics:
		return v.Condition
	case *Update:
		return v.Condition
	case *Delete:
		return v.Condition
	}
	return nil
}

// ── Condition ────────────────────────────────────────────────────────────────

// Condition is either a leaf comparison or a logic node. A node is a logic
// node iff Children is non-empty; leaves never carry Logic.
type Condition struct {
	FieldHint string           `json:"field_hint,omitempty"`
	Operator  keyword.Operator `json:"operator,omitempty"`
	Value     any              `json:"value,omitempty"`
	Values    []any            `json:"values,omitempty"`
	Logic     keyword.Logic    `json:"logic,omitempty"`
	Children  []*Condition     `json:"children,omitempty"`
}

// Leaf builds a single-value comparison.
func Leaf(field string, op keyword.Operator, value any) *Condition {
	return &Condition{FieldHint: field, Operator: op, Value: value}
}

// LeafValues builds a comparison over a value list (IN, BETWEEN).
func LeafValues(field string, op keyword.Operator, values ...any) *Condition {
	return &Condition{FieldHint: field, Operator: op, Values: values}
}

// Node joins children with logic. A single child is returned as is.
func Node(logic keyword.Logic, children ...*Condition) *Condition {
	if len(children) == 1 {
		return children[0]
	}
	return &Condition{Logic: logic, Children: children}
}

// And joins children with AND.
func And(children ...*Condition) *Condition { return Node(keyword.LogicAnd, children...) }

// Or joins children with OR.
func Or(children ...*Condition) *Condition { return Node(keyword.LogicOr, children...) }

// IsLogic reports whether c is a logic node.
func (c *Condition) IsLogic() bool { return len(c.Children) > 0 }

// Leaves returns the leaf comparisons under c in order.
func (c *Condition) Leaves() []*Condition {
	if c == nil {
		return nil
	}
	if !c.IsLogic() {
		return []*Condition{c}
	}
	var out []*Condition
	for _, ch := range c.Children {
		out = append(out, ch.Leaves()...)
	}
	return out
}

// AllValues returns Values, or Value as a single-element list.
func (c *Condition) AllValues() []any {
	if len(c.Values) > 0 {
		return c.Values
	}
	if c.Value != nil {
		return []any{c.Value}
	}
	return nil
}

// ── Aggregation ──────────────────────────────────────────────────────────────

// Aggregation is a metric or bucket aggregation. Bucket aggregations may own
// children; children of a metric are ignored downstream.
type Aggregation struct {
	Name             string         `json:"name"`
	Type             keyword.Agg    `json:"type"`
	FieldHint        string         `json:"field_hint,omitempty"`
	GroupByFieldHint string         `json:"group_by_field_hint,omitempty"`
	Interval         string         `json:"interval,omitempty"`
	Size             int            `json:"size,omitempty"`
	Children         []*Aggregation `json:"children,omitempty"`
}

func (a *Aggregation) IsBucket() bool { return a.Type.IsBucket() }
func (a *Aggregation) IsMetric() bool { return a.Type.IsMetric() }

// Field is the group-by field for buckets that have one, else FieldHint.
func (a *Aggregation) Field() string {
	if a.GroupByFieldHint != "" {
		return a.GroupByFieldHint
	}
	return a.FieldHint
}

// ── Sort / Pagination / DateRange ────────────────────────────────────────────

// Sort orders results. An empty FieldHint means the index's time field.
type Sort struct {
	FieldHint string            `json:"field_hint,omitempty"`
	Order     keyword.SortOrder `json:"order"`
}

// PaginationMode is the populated pagination style.
type PaginationMode int

const (
	PageNone PaginationMode = iota
	PageSearchAfter
	PagePageSize
	PageOffsetLimit
)

// Pagination carries exactly one populated mode: Page+Size, Offset+Limit
// or SearchAfter+ContinueSearch.
type Pagination struct {
	Page           int   `json:"page,omitempty"`
	Size           int   `json:"size,omitempty"`
	Offset         int   `json:"offset,omitempty"`
	Limit          int   `json:"limit,omitempty"`
	SearchAfter    []any `json:"search_after,omitempty"`
	ContinueSearch bool  `json:"continue_search,omitempty"`
}

// Mode resolves the populated mode in priority order
// search_after > page/size > offset/limit.
func (p *Pagination) Mode() PaginationMode {
	switch {
	case p == nil:
		return PageNone
	case len(p.SearchAfter) > 0 || p.ContinueSearch:
		return PageSearchAfter
	case p.Page > 0 || p.Size > 0:
		return PagePageSize
	case p.Offset > 0 || p.Limit > 0:
		return PageOffsetLimit
	}
	return PageNone
}

// DateRange bounds a time field. From and To are RFC3339.
type DateRange struct {
	FieldHint   string `json:"field_hint,omitempty"`
	From        string `json:"from,omitempty"`
	To          string `json:"to,omitempty"`
	IncludeFrom bool   `json:"include_from"`
	IncludeTo   bool   `json:"include_to"`
}

// IsValid reports whether at least one bound is set.
func (d *DateRange) IsValid() bool {
	return d != nil && (d.From != "" || d.To != "")
}
