package ml

// LabelEncoder maps a categorical value onto the integer code fitted during
// training. Category order mirrors the training-side class list.
type LabelEncoder struct {
	Classes []string `json:"classes"`

	index map[string]int
}

// NewLabelEncoder builds an encoder over an explicit class list.
func NewLabelEncoder(classes []string) *LabelEncoder {
	e := &LabelEncoder{Classes: classes}
	e.buildIndex()
	return e
}

// buildIndex materializes the lookup map once after unmarshalling. The
// registry calls this before publishing the encoder; after that the encoder
// is read-only and safe for concurrent use.
func (e *LabelEncoder) buildIndex() {
	e.index = make(map[string]int, len(e.Classes))
	for i, class := range e.Classes {
		e.index[class] = i
	}
}

// Encode returns the fitted code for value. ok is false for categories never
// seen during training; the caller decides the substitute code.
func (e *LabelEncoder) Encode(value string) (float64, bool) {
	if e.index == nil {
		// Encoder was built by direct struct literal; fall back to a scan
		// rather than mutating shared state.
		for i, class := range e.Classes {
			if class == value {
				return float64(i), true
			}
		}
		return 0, false
	}
	code, ok := e.index[value]
	if !ok {
		return 0, false
	}
	return float64(code), true
}
