package domain

// Pagination tracks the page shown by the list screen. Both values are at
// least 1.
type Pagination struct {
	CurrentPage int
	TotalPages  int
}

// StatusKind enumerates the states a screen can display.
type StatusKind int

const (
	StatusIdle StatusKind = iota
	StatusLoading
	StatusReady
	StatusError
)

func (k StatusKind) String() string {
	switch k {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Status is the single display state of a screen. Reason is only set for
// StatusError and is safe to show to the user.
type Status struct {
	Kind   StatusKind
	Reason string
}

func Idle() Status                { return Status{Kind: StatusIdle} }
func Loading() Status             { return Status{Kind: StatusLoading} }
func Ready() Status               { return Status{Kind: StatusReady} }
func Failed(reason string) Status { return Status{Kind: StatusError, Reason: reason} }

// Phase is the lifecycle step of a list screen engine.
type Phase int

const (
	PhaseInit Phase = iota
	PhaseHydrating
	PhaseFetching
	PhaseReady
	PhaseUnauthenticated
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "init"
	case PhaseHydrating:
		return "hydrating"
	case PhaseFetching:
		return "fetching"
	case PhaseReady:
		return "ready"
	case PhaseUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}
