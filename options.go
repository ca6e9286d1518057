package flatcsv

// NumberMode dictates how numbers are rendered as text.
type NumberMode int

const (
	// NumberCanonical renders the shortest decimal that round-trips through a
	// float64, switching to exponent form below 1e-6 and from 1e21 upwards.
	NumberCanonical NumberMode = iota
	// NumberLiteral keeps the literal text from the input.
	NumberLiteral
)

// ArrayPolicy decides how an object holding several array-valued keys is
// expanded into rows.
type ArrayPolicy int

const (
	// ArrayFirst expands only the first array-valued key in document order;
	// every other array-valued key is dropped.
	ArrayFirst ArrayPolicy = iota
	// ArrayCrossProduct emits one row per combination of elements of all
	// array-valued keys.
	ArrayCrossProduct
)

// NonObjectPolicy decides what happens to array elements that are not
// objects.
type NonObjectPolicy int

const (
	// NonObjectWrap turns the element into a single-key row {ValueKey: element}.
	NonObjectWrap NonObjectPolicy = iota
	// NonObjectSkip drops the element.
	NonObjectSkip
)

// Severity expresses the severity level for issues.
type Severity int

const (
	Ignore Severity = iota
	Error
)

// Strictness configures enforcement for duplicate keys.
type Strictness struct {
	// OnDuplicateKey set to Error rejects documents with repeated object
	// keys. With Ignore the last occurrence wins.
	OnDuplicateKey Severity
}

// Defaults used when the matching Options field is left at its zero value.
const (
	DefaultDelimiter = ';'
	DefaultSeparator = "_"
	DefaultValueKey  = "value"
)

// Options bundles conversion options. The zero value selects the defaults.
type Options struct {
	// Delimiter separates CSV fields. Quote, CR and LF are not allowed and
	// fall back to DefaultDelimiter.
	Delimiter rune
	// Separator joins parent and child keys while flattening.
	Separator string
	// ValueKey names the column used for wrapped non-object elements.
	ValueKey string

	NumberMode NumberMode
	Arrays     ArrayPolicy
	NonObject  NonObjectPolicy
	// KeepEnvelope disables envelope unwrapping: by default an object whose
	// only content is one array of objects yields those objects as rows.
	KeepEnvelope bool

	Strictness Strictness
	MaxDepth   int
	MaxBytes   int64

	// Lang selects the message language ("en", "pt"). Empty uses the global
	// translator.
	Lang string
	// Driver overrides the global JSON driver for this call.
	Driver JSONDriver
}

// resolveOptions picks the last Options value and fills in defaults.
func resolveOptions(opts []Options) Options {
	var opt Options
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	if !ValidDelimiter(opt.Delimiter) {
		opt.Delimiter = DefaultDelimiter
	}
	if opt.Separator == "" {
		opt.Separator = DefaultSeparator
	}
	if opt.ValueKey == "" {
		opt.ValueKey = DefaultValueKey
	}
	if opt.Driver == nil {
		opt.Driver = CurrentJSONDriver()
	}
	return opt
}

// ValidDelimiter reports whether r can delimit CSV fields.
func ValidDelimiter(r rune) bool {
	switch r {
	case 0, '"', '\n', '\r':
		return false
	}
	return r > 0 && r != 0xFFFD
}
