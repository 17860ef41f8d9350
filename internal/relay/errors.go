package relay

// Kind classifies a forwarding failure so the HTTP boundary can map it to
// a status code and message in one place.
type Kind int

const (
	// KindConfig: the upstream secret is not configured. No call was made.
	KindConfig Kind = iota + 1
	// KindUpstream: the upstream was unreachable or answered non-2xx.
	KindUpstream
	// KindInternal: any other local failure.
	KindInternal
)

type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e == nil || e.Err == nil {
		return "relay error"
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
