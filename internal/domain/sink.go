package domain

// Sink receives rendered report artifacts. Emit is fire-and-forget: it never
// blocks the caller and never surfaces an error — implementations log their
// own failures. Artifacts are identified by report name plus wall-clock time.
type Sink interface {
	Emit(name, body string)
}
