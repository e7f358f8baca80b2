package log

// Field is a single structured logging attribute.
type Field struct {
	Key   string
	Value interface{}
}

// F builds a Field from a key and an arbitrary value.
func F(key string, value interface{}) Field { return Field{Key: key, Value: value} }

// Str builds a string Field.
func Str(key, value string) Field { return Field{Key: key, Value: value} }

// Int builds an int Field.
func Int(key string, value int) Field { return Field{Key: key, Value: value} }

// Uint64 builds a uint64 Field.
func Uint64(key string, value uint64) Field { return Field{Key: key, Value: value} }

// Err builds the conventional error Field.
func Err(err error) Field { return Field{Key: "error", Value: err} }

// Component tags entries with a component name.
func Component(name string) Field { return Field{Key: ComponentKey, Value: name} }

// Operation tags entries with an operation name.
func Operation(name string) Field { return Field{Key: OperationKey, Value: name} }
