// Package gate decides what happens to a navigation given the session state.
package gate

const (
	LoginPath   = "/login"
	DefaultPath = "/dashboard"
)

// Status is the part of the session the gate depends on
type Status struct {
	IsAuthenticated bool
	IsLoading       bool
}

// Route is a requested screen
type Route struct {
	Path      string
	Protected bool
}

// Outcome is one of the three gate results
type Outcome int

const (
	// Loading shows the placeholder; no decision has been made yet
	Loading Outcome = iota
	// Redirect sends the caller to Decision.Location
	Redirect
	// Render shows the requested screen
	Render
)

func (o Outcome) String() string {
	switch o {
	case Loading:
		return "loading"
	case Redirect:
		return "redirect"
	case Render:
		return "render"
	default:
		return "unknown"
	}
}

// Decision is the gate's answer for one navigation
type Decision struct {
	Outcome  Outcome
	Location string
}

// Decide is a pure function of the session status and the requested route
func Decide(status Status, route Route) Decision {
	if status.IsLoading {
		return Decision{Outcome: Loading}
	}

	if route.Path == LoginPath {
		if status.IsAuthenticated {
			return Decision{Outcome: Redirect, Location: DefaultPath}
		}
		return Decision{Outcome: Render}
	}

	if route.Protected && !status.IsAuthenticated {
		return Decision{Outcome: Redirect, Location: LoginPath}
	}

	return Decision{Outcome: Render}
}
