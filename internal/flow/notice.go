package flow

// Variant selects how a notice is styled
type Variant int

const (
	VariantSuccess Variant = iota
	VariantError
)

// Notice is a short user-visible message raised by an action
type Notice struct {
	Title   string
	Body    string
	Variant Variant
	Err     error // underlying failure for VariantError, kept for logging
}

// IsError reports whether the notice describes a failure
func (n Notice) IsError() bool {
	return n.Variant == VariantError
}

func (n Notice) String() string {
	if n.Title == "" {
		return n.Body
	}
	return n.Title + ": " + n.Body
}
