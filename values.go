package typebind

import "time"

// Option is the runtime value of an Optional type. The zero value is None:
// the member is absent from the JSON object.
type Option struct {
	Value any
	Set   bool
}

// None is the absent Option.
var None = Option{}

// Some wraps a present value; v may be nil for a present JSON null.
func Some(v any) Option { return Option{Value: v, Set: true} }

// Get returns the value and whether it is present.
func (o Option) Get() (any, bool) { return o.Value, o.Set }

// Batch is one page of a paginated collection.
type Batch struct {
	Next       string
	TotalCount *int32
	Data       []any
}

// Pair is the runtime value of a Pair object.
type Pair struct {
	First  any
	Second any
}

// Triple is the runtime value of a Triple object.
type Triple struct {
	First  any
	Second any
	Third  any
}

// Mod records a change of a value; either side may be nil.
type Mod struct {
	Old any
	New any
}

// MapEntry is a single key/value of a Map.
type MapEntry struct {
	Key   any
	Value any
}

// Object is the runtime value of an entity. Class is the declared name of the
// concrete variant. Fields holds the materialized members by name; members not
// selected by a partial selection are left out, Optional members hold an Option.
type Object struct {
	Class  string
	Fields map[string]any
}

// NewObject builds an Object of the given class.
func NewObject(class string, fields map[string]any) *Object {
	if fields == nil {
		fields = map[string]any{}
	}
	return &Object{Class: class, Fields: fields}
}

// Get returns a member and whether it was materialized.
func (o *Object) Get(name string) (any, bool) {
	v, ok := o.Fields[name]
	return v, ok
}

// Date is the wire form of a calendar date, `{"iso":"2006-01-02"}`.
type Date struct {
	ISO string
}

// DateOf formats t as a Date.
func DateOf(t time.Time) Date { return Date{ISO: t.Format(time.DateOnly)} }

// Time parses the date in UTC.
func (d Date) Time() (time.Time, error) { return time.Parse(time.DateOnly, d.ISO) }

// DateTime is the wire form of an instant, `{"timestamp":<epoch millis>}`.
type DateTime struct {
	Timestamp int64
}

// DateTimeOf converts t to epoch milliseconds.
func DateTimeOf(t time.Time) DateTime { return DateTime{Timestamp: t.UnixMilli()} }

// Time returns the instant in UTC.
func (d DateTime) Time() time.Time { return time.UnixMilli(d.Timestamp).UTC() }
