package event

// Convenience constructors mirroring the value kinds. These are what call
// sites and the framework adapters are expected to use.

func BoolField(name string, v bool) Field       { return Field{Name: name, Value: BoolValue(v)} }
func Int8Field(name string, v int8) Field       { return Field{Name: name, Value: Int8Value(v)} }
func Int16Field(name string, v int16) Field     { return Field{Name: name, Value: Int16Value(v)} }
func Int32Field(name string, v int32) Field     { return Field{Name: name, Value: Int32Value(v)} }
func Int64Field(name string, v int64) Field     { return Field{Name: name, Value: Int64Value(v)} }
func Uint8Field(name string, v uint8) Field     { return Field{Name: name, Value: Uint8Value(v)} }
func Uint16Field(name string, v uint16) Field   { return Field{Name: name, Value: Uint16Value(v)} }
func Uint32Field(name string, v uint32) Field   { return Field{Name: name, Value: Uint32Value(v)} }
func Uint64Field(name string, v uint64) Field   { return Field{Name: name, Value: Uint64Value(v)} }
func Float32Field(name string, v float32) Field { return Field{Name: name, Value: Float32Value(v)} }
func Float64Field(name string, v float64) Field { return Field{Name: name, Value: Float64Value(v)} }
func StringField(name string, v string) Field   { return Field{Name: name, Value: StringValue(v)} }
func BytesField(name string, v []byte) Field    { return Field{Name: name, Value: BytesValue(v)} }

// Group nests fields under name.
func Group(name string, fields ...Field) Field {
	return Field{Name: name, Value: GroupValue(fields...)}
}

// SmartField converts v with [SmartValue].
func SmartField(name string, v any) Field {
	return Field{Name: name, Value: SmartValue(v)}
}
