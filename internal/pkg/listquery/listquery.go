// Package listquery normalizes the query strings of filterable listings.
// The query string is the single source of truth for filter, sort and page state:
// Parse cleans it, Encode renders it canonically and Apply derives the next one.
package listquery

import (
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Common parameter names
const (
	PageNumber   = "pageNumber"
	PageSize     = "pageSize"
	IsDescending = "isDescending"
	Keyword      = "keyword"
)

// Kind is the value type of a parameter
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	KindEnum
)

// Field describes one accepted parameter
type Field struct {
	Name    string
	Kind    Kind
	Default string
	Min     *float64
	Max     *float64
	Values  []string // accepted values of an enum, compared case-insensitively
}

// Schema is the set of parameters a listing accepts
type Schema struct {
	fields map[string]Field
	ranges [][2]string
}

// NewSchema builds a schema. Unknown parameters are dropped by Parse.
func NewSchema(fields ...Field) *Schema {
	s := &Schema{fields: make(map[string]Field, len(fields))}
	for _, f := range fields {
		s.fields[f.Name] = f
	}
	return s
}

// WithRange declares that low must not exceed high; an inverted pair is swapped
func (s *Schema) WithRange(low, high string) *Schema {
	s.ranges = append(s.ranges, [2]string{low, high})
	return s
}

// Bound returns a pointer to v for Field.Min and Field.Max
func Bound(v float64) *float64 {
	return &v
}

// Paging returns the page, size and direction fields shared by every listing
func Paging(defaultSize int) []Field {
	return []Field{
		{Name: PageNumber, Kind: KindInt, Default: "1", Min: Bound(1)},
		{Name: PageSize, Kind: KindInt, Default: strconv.Itoa(defaultSize), Min: Bound(1), Max: Bound(100)},
		{Name: IsDescending, Kind: KindBool, Default: "false"},
	}
}

// Query is a normalized set of listing parameters. It is immutable.
type Query struct {
	schema *Schema
	values map[string]string
}

// Parse normalizes raw query values against the schema
func (s *Schema) Parse(raw url.Values) Query {
	values := make(map[string]string)
	for name, field := range s.fields {
		v, ok := normalize(field, raw.Get(name))
		if ok && v != field.Default {
			values[name] = v
		}
	}
	q := Query{schema: s, values: values}
	q.fixRanges()
	return q
}

// ParseString parses a raw query string; a malformed string yields the default query
func (s *Schema) ParseString(raw string) Query {
	values, err := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	if err != nil {
		values = url.Values{}
	}
	return s.Parse(values)
}

func normalize(f Field, raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	switch f.Kind {
	case KindInt:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) {
			return "", false
		}
		n = clamp(f, n)
		// outside the int64 range the conversion is undefined
		if n >= math.MaxInt64 || n < math.MinInt64 {
			return "", false
		}
		return strconv.FormatInt(int64(n), 10), true
	case KindFloat:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return "", false
		}
		return strconv.FormatFloat(clamp(f, n), 'f', -1, 64), true
	case KindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return "", false
		}
		return strconv.FormatBool(b), true
	case KindEnum:
		for _, v := range f.Values {
			if strings.EqualFold(v, raw) {
				return v, true
			}
		}
		return "", false
	default:
		return raw, true
	}
}

func clamp(f Field, n float64) float64 {
	if f.Min != nil && n < *f.Min {
		n = *f.Min
	}
	if f.Max != nil && n > *f.Max {
		n = *f.Max
	}
	return n
}

func (q *Query) fixRanges() {
	for _, r := range q.schema.ranges {
		low, okLow := q.Float(r[0])
		high, okHigh := q.Float(r[1])
		if okLow && okHigh && low > high {
			q.values[r[0]], q.values[r[1]] = q.values[r[1]], q.values[r[0]]
		}
	}
}

// Get returns the effective value of name, falling back to the schema default
func (q Query) Get(name string) string {
	if v, ok := q.values[name]; ok {
		return v
	}
	return q.schema.fields[name].Default
}

// Has reports whether name is set to a non-default value
func (q Query) Has(name string) bool {
	_, ok := q.values[name]
	return ok
}

// Int returns the effective integer value of name
func (q Query) Int(name string) int {
	n, _ := strconv.Atoi(q.Get(name))
	return n
}

// Float returns the effective float value of name and whether one is set
func (q Query) Float(name string) (float64, bool) {
	v := q.Get(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(v, 64)
	return n, err == nil
}

// Bool returns the effective boolean value of name
func (q Query) Bool(name string) bool {
	b, _ := strconv.ParseBool(q.Get(name))
	return b
}

// Page returns the current page number
func (q Query) Page() int {
	if n := q.Int(PageNumber); n > 0 {
		return n
	}
	return 1
}

// Size returns the page size
func (q Query) Size() int {
	return q.Int(PageSize)
}

// Encode renders the canonical query string: keys sorted, defaults omitted
func (q Query) Encode() string {
	keys := make([]string, 0, len(q.values))
	for k := range q.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(q.values[k]))
	}
	return b.String()
}

// Values returns every effective parameter including defaults, for upstream calls
func (q Query) Values() url.Values {
	out := url.Values{}
	for name := range q.schema.fields {
		if v := q.Get(name); v != "" {
			out.Set(name, v)
		}
	}
	return out
}

// Apply returns a new query with changes applied. An empty value clears a parameter.
// Changing anything other than pageNumber sends the listing back to page 1.
func (q Query) Apply(changes map[string]string) Query {
	raw := url.Values{}
	for k, v := range q.values {
		raw.Set(k, v)
	}
	for k, v := range changes {
		if v == "" {
			raw.Del(k)
			continue
		}
		raw.Set(k, v)
	}

	next := q.schema.Parse(raw)
	if !sameFilters(q, next) {
		delete(next.values, PageNumber)
	}
	return next
}

// WithPage returns the query for page n
func (q Query) WithPage(n int) Query {
	return q.Apply(map[string]string{PageNumber: strconv.Itoa(n)})
}

func sameFilters(a, b Query) bool {
	count := func(q Query) int {
		n := len(q.values)
		if q.Has(PageNumber) {
			n--
		}
		return n
	}
	if count(a) != count(b) {
		return false
	}
	for k, v := range a.values {
		if k == PageNumber {
			continue
		}
		if b.values[k] != v {
			return false
		}
	}
	return true
}
