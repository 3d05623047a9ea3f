package value

// Object is a string-keyed map that remembers insertion order. Key order
// matters to the engine: query documents dictate evaluation order of
// implicit $and branches, and rendering must be deterministic.
type Object struct {
	keys   []string
	fields map[string]Value
}

// NewObject creates an empty object.
func NewObject() *Object {
	return &Object{fields: make(map[string]Value)}
}

// Set stores v under k, appending k to the key order on first insert.
func (o *Object) Set(k string, v Value) {
	if _, ok := o.fields[k]; !ok {
		o.keys = append(o.keys, k)
	}
	o.fields[k] = v
}

// Get returns the value stored under k.
func (o *Object) Get(k string) (Value, bool) {
	v, ok := o.fields[k]
	return v, ok
}

// Keys returns the keys in insertion order. The slice is shared; callers
// must not mutate it.
func (o *Object) Keys() []string { return o.keys }

// Len returns the number of fields.
func (o *Object) Len() int { return len(o.keys) }
