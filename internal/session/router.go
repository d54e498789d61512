package session

import (
	"sync"

	"github.com/expensedesk/expensectl/internal/domain/entity"
	"go.uber.org/zap"
)

// Route names one of the client's views.
type Route string

const (
	RouteLogin    Route = "/login"
	RouteEmployee Route = "/dashboard"
	RouteManager  Route = "/manager"
	RouteFinance  Route = "/finance"
	RouteAdmin    Route = "/admin"
	RouteExpenses Route = "/expenses"
	RouteSettings Route = "/settings"
)

// dashboardRoutes maps an identity's primary role to its dashboard.
var dashboardRoutes = map[string]Route{
	entity.RoleEmployee: RouteEmployee,
	entity.RoleManager:  RouteManager,
	entity.RoleFinance:  RouteFinance,
	entity.RoleAdmin:    RouteAdmin,
}

// requiredRoles maps each gated route to the role it demands. Routes not
// listed only require authentication.
var requiredRoles = map[Route]string{
	RouteManager: entity.RoleManager,
	RouteFinance: entity.RoleFinance,
	RouteAdmin:   entity.RoleAdmin,
}

// Router decides which view an identity lands on. Unauthenticated access
// to a gated view goes to login with the original destination stored for a
// post-login return; an authenticated identity with the wrong role goes to
// the generic employee dashboard, never to an error view.
type Router struct {
	store  *Store
	logger *zap.Logger

	mu   sync.Mutex
	from Route
}

// NewRouter creates a router over the given session store.
func NewRouter(store *Store, logger *zap.Logger) *Router {
	return &Router{store: store, logger: logger}
}

// Home returns the dashboard route for the current identity.
func (r *Router) Home() Route {
	if !r.store.IsAuthenticated() {
		return RouteLogin
	}
	identity := r.store.Identity()
	if route, ok := dashboardRoutes[identity.PrimaryRole()]; ok {
		return route
	}
	return RouteEmployee
}

// Resolve gates access to the requested route and returns where the
// client actually lands.
func (r *Router) Resolve(requested Route) Route {
	if !r.store.IsAuthenticated() {
		r.mu.Lock()
		r.from = requested
		r.mu.Unlock()
		r.logger.Debug("Unauthenticated access, redirecting to login",
			zap.String("requested", string(requested)))
		return RouteLogin
	}

	required, gated := requiredRoles[requested]
	if !gated {
		return requested
	}

	identity := r.store.Identity()
	if identity.HasRole(required) {
		return requested
	}

	r.logger.Debug("Role mismatch, redirecting to employee dashboard",
		zap.String("requested", string(requested)),
		zap.String("required", required))
	return RouteEmployee
}

// ReturnTo returns the destination stored before a login redirect, and
// clears it. Empty when no redirect happened.
func (r *Router) ReturnTo() Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	from := r.from
	r.from = ""
	return from
}
