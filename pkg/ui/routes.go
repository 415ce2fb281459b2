package ui

// Route is one of the application's views.
type Route int

const (
	RouteHome Route = iota
	RouteTodo
	RouteSchedule
	RouteHistory
	RouteLogin
	RouteSignup
	routeCount
)

var routePaths = [routeCount]string{"/", "/todo", "/schedule", "/history", "/login", "/signup"}

func (r Route) String() string {
	if r < 0 || r >= routeCount {
		return "?"
	}
	return routePaths[r]
}

// ParseRoute maps a path such as "/todo" to its route.
func ParseRoute(path string) (Route, bool) {
	for i, p := range routePaths {
		if p == path {
			return Route(i), true
		}
	}
	return RouteHome, false
}

// Protected reports whether r needs a session.
func (r Route) Protected() bool {
	return r != RouteLogin && r != RouteSignup
}

// Guard returns the route actually shown when r is requested.
func Guard(r Route, authenticated bool) Route {
	if r.Protected() && !authenticated {
		return RouteLogin
	}
	return r
}
