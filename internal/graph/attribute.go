package graph

// AttributeType mirrors onnx.AttributeProto.AttributeType.
type AttributeType int32

// Attribute types.
const (
	AttrUndefined AttributeType = 0
	AttrFloat     AttributeType = 1
	AttrInt       AttributeType = 2
	AttrString    AttributeType = 3
	AttrFloats    AttributeType = 6
	AttrInts      AttributeType = 7
	AttrStrings   AttributeType = 8
)

// Attribute represents a node attribute.
type Attribute struct {
	Name    string        // Attribute name
	Type    AttributeType // Attribute type
	F       float32       // FLOAT value
	I       int64         // INT value
	S       []byte        // STRING value
	Floats  []float32     // FLOATS array
	Ints    []int64       // INTS array
	Strings [][]byte      // STRINGS array
}

// Attributes is the attribute list of a node.
type Attributes []Attribute

// Lookup returns the named attribute.
func (a Attributes) Lookup(name string) (*Attribute, bool) {
	for i := range a {
		if a[i].Name == name {
			return &a[i], true
		}
	}
	return nil, false
}

// Int returns an integer attribute or default value.
func (a Attributes) Int(name string, defaultVal int64) int64 {
	if attr, ok := a.Lookup(name); ok {
		return attr.I
	}
	return defaultVal
}

// Ints returns an integer array attribute.
func (a Attributes) Ints(name string) []int64 {
	if attr, ok := a.Lookup(name); ok {
		return attr.Ints
	}
	return nil
}

// Float returns a float attribute or default value.
func (a Attributes) Float(name string, defaultVal float32) float32 {
	if attr, ok := a.Lookup(name); ok {
		return attr.F
	}
	return defaultVal
}

// String returns a string attribute or default value.
func (a Attributes) String(name, defaultVal string) string {
	if attr, ok := a.Lookup(name); ok {
		return string(attr.S)
	}
	return defaultVal
}
