// Package navigation decides which console routes a staff member may open.
package navigation

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/otcheredev/clinic-desk/pkg/logger"
)

// Access is the authentication requirement of a route
type Access int

const (
	Public Access = iota
	RequiresAuth
	GuestOnly
)

// Route is a named console page
type Route struct {
	Name   string
	Path   string
	Access Access
	// Resources are the API prefixes the page works with
	Resources []string
}

var (
	Login        = Route{Name: "login", Path: "/login", Access: GuestOnly}
	Appointments = Route{Name: "appointments", Path: "/", Access: RequiresAuth, Resources: []string{"/appointments", "/doctors"}}
	Patients     = Route{Name: "patients", Path: "/patients", Access: RequiresAuth}
	Dashboard    = Route{Name: "dashboard", Path: "/dashboard", Access: RequiresAuth}
)

// Landing is where authenticated users go by default
var Landing = Appointments

// Routes lists every known page
func Routes() []Route {
	return []Route{Login, Appointments, Patients, Dashboard}
}

// Lookup finds the route serving path. Sub-paths and resources belong to
// their page, so /patients/4 resolves to patients and /appointments/9 to
// appointments.
func Lookup(path string) (Route, bool) {
	if path == "" {
		path = "/"
	}
	for _, r := range Routes() {
		if path == r.Path {
			return r, true
		}
		if r.Path != "/" && strings.HasPrefix(path, r.Path+"/") {
			return r, true
		}
		for _, prefix := range r.Resources {
			if path == prefix || strings.HasPrefix(path, prefix+"/") {
				return r, true
			}
		}
	}
	return Route{}, false
}

// Decision is the outcome of a navigation attempt
type Decision struct {
	Allow bool
	// Redirect is the path to go to instead when Allow is false
	Redirect string
	// ResetSession asks the caller to drop the in-memory session
	ResetSession bool
}

// Decide applies the navigation rules in order:
//  1. auth required and nothing persisted: reset the session and go to login
//  2. auth required and not authenticated: go to login
//  3. guest-only and authenticated: go to the landing page
//  4. otherwise allow
func Decide(target Route, persisted, authenticated bool) Decision {
	switch {
	case target.Access == RequiresAuth && !persisted:
		return Decision{Redirect: Login.Path, ResetSession: true}
	case target.Access == RequiresAuth && !authenticated:
		return Decision{Redirect: Login.Path}
	case target.Access == GuestOnly && authenticated:
		return Decision{Redirect: Landing.Path}
	default:
		return Decision{Allow: true}
	}
}

// SessionState is what the guard needs from the session store
type SessionState interface {
	HasPersistedSession(ctx context.Context) bool
	IsAuthenticated() bool
	ClearAuth(ctx context.Context) error
}

// Guard evaluates navigation against the live session
type Guard struct {
	session SessionState
	log     zerolog.Logger
}

// NewGuard creates a guard over session
func NewGuard(session SessionState) *Guard {
	return &Guard{
		session: session,
		log:     logger.Component("navigation"),
	}
}

// Check decides whether target may be opened and performs the session
// reset when the decision asks for one.
func (g *Guard) Check(ctx context.Context, target Route) Decision {
	d := Decide(target, g.session.HasPersistedSession(ctx), g.session.IsAuthenticated())
	if d.ResetSession {
		if err := g.session.ClearAuth(ctx); err != nil {
			g.log.Error().Err(err).Msg("Failed to reset session")
		}
	}
	if !d.Allow {
		g.log.Debug().Str("route", target.Name).Str("redirect", d.Redirect).Msg("Navigation redirected")
	}
	return d
}
