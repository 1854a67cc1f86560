package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/dockgate/dockgate/internal/auth"
	"github.com/dockgate/dockgate/internal/dockerapi"
	"github.com/dockgate/dockgate/internal/registry"
)

// defaultBootstrapPassword is the factory default the panel ships with.
// Logins by the bootstrap account probe against it so responses can carry a
// "change this" flag.
const defaultBootstrapPassword = "admin"

// Engine is the container runtime the panel fronts. Calls block on external
// I/O and take the request's context; they are never made while holding
// registry state.
type Engine interface {
	ListAll(ctx context.Context) ([]dockerapi.Container, error)
	Start(ctx context.Context, id string) error
	Stop(ctx context.Context, id string) error
	Restart(ctx context.Context, id string) error
}

type App struct {
	reg        *registry.Store
	engine     Engine
	secret     []byte
	cookieName string
}

func NewApp(reg *registry.Store, engine Engine) *App {
	return &App{
		reg:        reg,
		engine:     engine,
		secret:     reg.SessionSecret(),
		cookieName: auth.DefaultCookieName,
	}
}

func (a *App) Routes() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/login", a.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/api/logout", a.requireAuth(a.handleLogout)).Methods(http.MethodPost)
	r.HandleFunc("/api/me", a.handleMe).Methods(http.MethodGet)

	r.HandleFunc("/api/containers", a.requireAuth(a.handleContainers)).Methods(http.MethodGet)
	r.HandleFunc("/api/containers/{name}/{action}", a.requireAuth(a.handleContainerAction)).Methods(http.MethodPost)
	// Compatibility aliases kept from the panel's server-manager days.
	r.HandleFunc("/api/servers", a.requireAuth(a.handleContainers)).Methods(http.MethodGet)
	r.HandleFunc("/api/servers/{name}/{action}", a.requireAuth(a.handleContainerAction)).Methods(http.MethodPost)

	r.HandleFunc("/api/groups", a.requireAuth(a.handleGroups)).Methods(http.MethodGet)

	r.HandleFunc("/api/settings", a.handleSettings).Methods(http.MethodGet)
	r.HandleFunc("/api/admin/settings", a.requireAdmin(a.handleAdminSettings)).Methods(http.MethodPut)

	r.HandleFunc("/api/admin/containers", a.requireAdmin(a.handleAdminContainers)).Methods(http.MethodGet)

	r.HandleFunc("/api/admin/groups", a.requireAdmin(a.handleAdminGroupsList)).Methods(http.MethodGet)
	r.HandleFunc("/api/admin/groups", a.requireAdmin(a.handleAdminGroupsCreate)).Methods(http.MethodPost)
	r.HandleFunc("/api/admin/groups/{name}", a.requireAdmin(a.handleAdminGroupUpdate)).Methods(http.MethodPut)
	r.HandleFunc("/api/admin/groups/{name}", a.requireAdmin(a.handleAdminGroupDelete)).Methods(http.MethodDelete)

	r.HandleFunc("/api/admin/users", a.requireAdmin(a.handleAdminUsersList)).Methods(http.MethodGet)
	r.HandleFunc("/api/admin/users", a.requireAdmin(a.handleAdminUsersCreate)).Methods(http.MethodPost)
	r.HandleFunc("/api/admin/users/{username}", a.requireAdmin(a.handleAdminUserUpdate)).Methods(http.MethodPut)
	r.HandleFunc("/api/admin/users/{username}", a.requireAdmin(a.handleAdminUserDelete)).Methods(http.MethodDelete)

	r.HandleFunc("/api/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("{\"ok\":true}\n"))
	}).Methods(http.MethodGet)

	return a.withAuthContext(r)
}

func (a *App) issueCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   false,
		MaxAge:   int(auth.SessionTTL / time.Second),
	})
}

func (a *App) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   false,
		MaxAge:   -1,
	})
}
