package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dockgate/dockgate/internal/auth"
	"github.com/dockgate/dockgate/internal/logger"
	"github.com/dockgate/dockgate/internal/policy"
	"github.com/dockgate/dockgate/internal/registry"
)

func decodeJSON(r *http.Request, v any) error {
	defer func() { _ = r.Body.Close() }()
	return json.NewDecoder(r.Body).Decode(v)
}

// scopeFor resolves the request identity's effective scope. An identity
// whose account has been deleted since the token was issued keeps an empty
// restricted scope: still authenticated, nothing visible.
func (a *App) scopeFor(username string) policy.Scope {
	acct, ok := a.reg.Account(username)
	if !ok {
		return policy.AllowList(nil)
	}
	return policy.ScopeFor(acct)
}

// ==================== auth ====================

func (a *App) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	acct, err := a.reg.Authenticate(req.Username, req.Password)
	if errors.Is(err, registry.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		logger.Error("authenticate %q: %v", req.Username, err)
		writeError(w, http.StatusInternalServerError, "Authentication unavailable")
		return
	}

	token, err := auth.SignHS256(a.secret, acct.Username, acct.IsAdmin, auth.SessionTTL)
	if err != nil {
		logger.Error("sign session token for %q: %v", acct.Username, err)
		writeError(w, http.StatusInternalServerError, "Authentication unavailable")
		return
	}
	a.issueCookie(w, token)

	usingDefault := acct.Username == registry.BootstrapUser &&
		a.reg.BootstrapUsesDefaultPassword(defaultBootstrapPassword)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"username":        acct.Username,
		"isAdmin":         acct.IsAdmin,
		"defaultPassword": usingDefault,
	})
}

func (a *App) handleLogout(w http.ResponseWriter, _ *http.Request) {
	a.clearCookie(w)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (a *App) handleMe(w http.ResponseWriter, r *http.Request) {
	username := usernameFrom(r)
	if username == "" {
		writeError(w, http.StatusUnauthorized, "Not logged in")
		return
	}
	acct, ok := a.reg.Account(username)
	usingDefault := username == registry.BootstrapUser &&
		a.reg.BootstrapUsesDefaultPassword(defaultBootstrapPassword)
	writeJSON(w, http.StatusOK, map[string]any{
		"username":        username,
		"isAdmin":         ok && acct.IsAdmin,
		"defaultPassword": usingDefault,
	})
}

// ==================== containers ====================

func (a *App) handleContainers(w http.ResponseWriter, r *http.Request) {
	scope := a.scopeFor(usernameFrom(r))

	live, err := a.engine.ListAll(r.Context())
	if err != nil {
		logger.Error("list containers: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to list containers")
		return
	}
	writeJSON(w, http.StatusOK, policy.VisibleContainers(scope, live))
}

func (a *App) handleContainerAction(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	name, action := vars["name"], vars["action"]

	// Permission is checked before the action name is validated, so an
	// unauthorized caller sees 403 even for a bogus action.
	if !a.scopeFor(usernameFrom(r)).Allows(name) {
		writeError(w, http.StatusForbidden, "Access denied")
		return
	}
	if !policy.ValidAction(action) {
		writeError(w, http.StatusBadRequest, "Invalid action")
		return
	}

	live, err := a.engine.ListAll(r.Context())
	if err != nil {
		logger.Error("list containers for %s %q: %v", action, name, err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to %s: %v", action, err))
		return
	}
	var id string
	for _, c := range live {
		if c.DisplayName() == name {
			id = c.ID
			break
		}
	}
	if id == "" {
		writeError(w, http.StatusNotFound, "Container not found")
		return
	}

	switch policy.Action(action) {
	case policy.ActionStart:
		err = a.engine.Start(r.Context(), id)
	case policy.ActionStop:
		err = a.engine.Stop(r.Context(), id)
	case policy.ActionRestart:
		err = a.engine.Restart(r.Context(), id)
	}
	if err != nil {
		logger.Error("%s container %q: %v", action, name, err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to %s: %v", action, err))
		return
	}

	logger.Info("%s container %q by %q", action, name, usernameFrom(r))
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"action":    action,
		"container": name,
	})
}

func (a *App) handleAdminContainers(w http.ResponseWriter, r *http.Request) {
	live, err := a.engine.ListAll(r.Context())
	if err != nil {
		logger.Error("admin list containers: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to list containers")
		return
	}
	writeJSON(w, http.StatusOK, policy.AdminListing(live, r.URL.Query().Get("filter")))
}

// ==================== settings ====================

func (a *App) handleSettings(w http.ResponseWriter, _ *http.Request) {
	msg := a.reg.AdminMessage()
	writeJSON(w, http.StatusOK, map[string]any{
		"adminMessage":     msg,
		"adminMessageHTML": RenderMarkdown(msg),
	})
}

func (a *App) handleAdminSettings(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AdminMessage *string `json:"adminMessage"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.AdminMessage != nil {
		if err := a.reg.SetAdminMessage(*req.AdminMessage); err != nil {
			logger.Error("save admin message: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to save settings")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"adminMessage": a.reg.AdminMessage(),
	})
}

// ==================== groups ====================

func (a *App) handleGroups(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.reg.Groups())
}

func (a *App) handleAdminGroupsList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.reg.Groups())
}

func (a *App) handleAdminGroupsCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string   `json:"name"`
		Containers []string `json:"containers"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	g, err := a.reg.CreateGroup(req.Name, req.Containers)
	if err != nil {
		writeError(w, registryStatus(err), err.Error())
		return
	}
	logger.Info("group %q created by %q", g.Name, usernameFrom(r))
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "name": g.Name})
}

func (a *App) handleAdminGroupUpdate(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	var req struct {
		Containers []string `json:"containers"`
		NewName    string   `json:"newName"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if _, err := a.reg.UpdateGroup(name, req.Containers, req.NewName); err != nil {
		writeError(w, registryStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (a *App) handleAdminGroupDelete(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if err := a.reg.DeleteGroup(name); err != nil {
		writeError(w, registryStatus(err), err.Error())
		return
	}
	logger.Info("group %q deleted by %q", name, usernameFrom(r))
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// ==================== users ====================

func (a *App) handleAdminUsersList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.reg.Users())
}

func (a *App) handleAdminUsersCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username   string   `json:"username"`
		Password   string   `json:"password"`
		IsAdmin    bool     `json:"isAdmin"`
		Containers []string `json:"containers"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	acct, err := a.reg.CreateUser(req.Username, req.Password, req.IsAdmin, req.Containers)
	if err != nil {
		writeError(w, registryStatus(err), err.Error())
		return
	}
	logger.Info("user %q created by %q (admin=%v)", acct.Username, usernameFrom(r), acct.IsAdmin)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "username": acct.Username})
}

func (a *App) handleAdminUserUpdate(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	var req struct {
		Password   *string  `json:"password"`
		IsAdmin    *bool    `json:"isAdmin"`
		Containers []string `json:"containers"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	upd := registry.UserUpdate{
		Password:   req.Password,
		IsAdmin:    req.IsAdmin,
		Containers: req.Containers,
	}
	if _, err := a.reg.UpdateUser(username, upd); err != nil {
		writeError(w, registryStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "username": username})
}

func (a *App) handleAdminUserDelete(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	if err := a.reg.DeleteUser(username); err != nil {
		writeError(w, registryStatus(err), err.Error())
		return
	}
	logger.Info("user %q deleted by %q", username, usernameFrom(r))
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
