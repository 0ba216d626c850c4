package keyword

import "go.uber.org/zap"

// Overrides are user-supplied {surface: EnumName} maps, one per dictionary.
type Overrides struct {
	Operator    map[string]string `json:"operator,omitempty" mapstructure:"operator"`
	Logic       map[string]string `json:"logic,omitempty" mapstructure:"logic"`
	Aggregation map[string]string `json:"aggregation,omitempty" mapstructure:"aggregation"`
	Sort        map[string]string `json:"sort,omitempty" mapstructure:"sort"`
	TimeRange   map[string]string `json:"time_range,omitempty" mapstructure:"time_range"`
}

// Merge returns o with other's entries layered on top.
func (o Overrides) Merge(other Overrides) Overrides {
	return Overrides{
		Operator:    mergeMaps(o.Operator, other.Operator),
		Logic:       mergeMaps(o.Logic, other.Logic),
		Aggregation: mergeMaps(o.Aggregation, other.Aggregation),
		Sort:        mergeMaps(o.Sort, other.Sort),
		TimeRange:   mergeMaps(o.TimeRange, other.TimeRange),
	}
}

func mergeMaps(base, top map[string]string) map[string]string {
	if len(base) == 0 && len(top) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(top))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range top {
		out[k] = v
	}
	return out
}

// Set bundles the five dictionaries the tokenizer consults.
type Set struct {
	Operators  *Dict[Operator]
	Logic      *Dict[Logic]
	Aggs       *Dict[Agg]
	Sorts      *Dict[SortOrder]
	TimeRanges *Dict[TimeRange]
}

type options struct {
	log *zap.Logger
}

// Option configures NewSet.
type Option func(*options)

// WithLogger sets the logger that reports dropped overrides.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// NewSet builds all dictionaries from the defaults with ov merged on top.
func NewSet(ov Overrides, opts ...Option) *Set {
	o := options{log: zap.NewNop()}
	for _, fn := range opts {
		fn(&o)
	}
	log := o.log.Named("keyword")
	return &Set{
		Operators:  newDict("operator", defaultOperators, Operators, ov.Operator, log),
		Logic:      newDict("logic", defaultLogic, Logics, ov.Logic, log),
		Aggs:       newDict("aggregation", defaultAggs, Aggs, ov.Aggregation, log),
		Sorts:      newDict("sort", defaultSorts, SortOrders, ov.Sort, log),
		TimeRanges: newDict("time_range", defaultTimeRanges, TimeRanges, ov.TimeRange, log),
	}
}

// Defaults builds a Set with no overrides.
func Defaults() *Set {
	return NewSet(Overrides{})
}

// IsKeyword reports whether s is an operator, logic, aggregation or sort
// keyword. Time-range surfaces are handled by the date extractor and are
// not part of token recognition.
func (s *Set) IsKeyword(w string) bool {
	return s.Operators.IsKeyword(w) || s.Logic.IsKeyword(w) ||
		s.Aggs.IsKeyword(w) || s.Sorts.IsKeyword(w)
}

// Surfaces returns every keyword from all five dictionaries.
func (s *Set) Surfaces() []string {
	var out []string
	out = append(out, s.Operators.Keywords()...)
	out = append(out, s.Logic.Keywords()...)
	out = append(out, s.Aggs.Keywords()...)
	out = append(out, s.Sorts.Keywords()...)
	out = append(out, s.TimeRanges.Keywords()...)
	return out
}
