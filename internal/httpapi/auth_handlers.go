package httpapi

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"shopauth.org/internal/audit"
	"shopauth.org/internal/auth"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone,omitempty"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type validateRequest struct {
	Token string `json:"token"`
}

// authResponse mirrors the session shape handed to clients after login,
// registration and refresh.
type authResponse struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	TokenType    string   `json:"tokenType"`
	ExpiresIn    int64    `json:"expiresIn"`
	UserID       string   `json:"userId"`
	Email        string   `json:"email"`
	FirstName    string   `json:"firstName"`
	LastName     string   `json:"lastName"`
	Roles        []string `json:"roles"`
}

func sessionResponse(s auth.Session) authResponse {
	return authResponse{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    s.TokenType,
		ExpiresIn:    s.ExpiresIn,
		UserID:       s.User.ID,
		Email:        s.User.Email,
		FirstName:    s.User.FirstName,
		LastName:     s.User.LastName,
		Roles:        s.User.Roles,
	}
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}
	session, err := a.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password", nil)
		case errors.Is(err, auth.ErrProviderUnavailable):
			writeError(w, http.StatusBadGateway, "provider_unavailable", "identity provider unavailable", nil)
		default:
			writeError(w, http.StatusInternalServerError, "internal", "login failed", nil)
		}
		return
	}
	_ = audit.LogEvent(r.Context(), "auth.login", map[string]any{"email": session.User.Email})
	writeJSON(w, http.StatusOK, sessionResponse(session))
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}
	if fields := validateRegistration(req); len(fields) > 0 {
		writeError(w, http.StatusBadRequest, "validation_failed", "registration request is invalid", fields)
		return
	}
	session, err := a.auth.Register(r.Context(), auth.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailTaken):
			writeError(w, http.StatusConflict, "email_taken", "email is already registered", nil)
		case errors.Is(err, auth.ErrInvalidCredentials):
			writeError(w, http.StatusBadRequest, "bad_request", "email and password are required", nil)
		case errors.Is(err, auth.ErrProviderUnavailable):
			writeError(w, http.StatusBadGateway, "provider_unavailable", "identity provider unavailable", nil)
		default:
			writeError(w, http.StatusInternalServerError, "internal", "registration failed", nil)
		}
		return
	}
	_ = audit.LogEvent(r.Context(), "auth.register", map[string]any{
		"email":   session.User.Email,
		"user_id": session.User.ID,
	})
	writeJSON(w, http.StatusCreated, sessionResponse(session))
}

func validateRegistration(req registerRequest) map[string]string {
	fields := make(map[string]string)
	email := strings.TrimSpace(req.Email)
	if email == "" {
		fields["email"] = "email is required"
	} else if _, err := mail.ParseAddress(email); err != nil {
		fields["email"] = "email is malformed"
	}
	if len(req.Password) < 8 {
		fields["password"] = "password must be at least 8 characters"
	}
	if strings.TrimSpace(req.FirstName) == "" {
		fields["firstName"] = "first name is required"
	}
	if strings.TrimSpace(req.LastName) == "" {
		fields["lastName"] = "last name is required"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func (a *API) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}
	session, err := a.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidRefreshToken):
			writeError(w, http.StatusUnauthorized, "invalid_refresh_token", "refresh token is invalid or expired", nil)
		case errors.Is(err, auth.ErrProviderUnavailable):
			writeError(w, http.StatusBadGateway, "provider_unavailable", "identity provider unavailable", nil)
		default:
			writeError(w, http.StatusInternalServerError, "internal", "refresh failed", nil)
		}
		return
	}
	_ = audit.LogEvent(r.Context(), "auth.refresh", map[string]any{"email": session.User.Email})
	writeJSON(w, http.StatusOK, sessionResponse(session))
}

// handleValidate always answers 200; invalid and expired tokens are a
// boolean false, not an error.
func (a *API) handleValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	var req validateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusOK, map[string]bool{"valid": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": a.auth.Validate(req.Token)})
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"userId": principal.UserID,
		"email":  principal.Email,
		"roles":  principal.Roles,
	})
}

// handleLogout is stateless: tokens cannot be revoked server-side, so the
// endpoint only acknowledges and audits the intent.
func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	if principal, ok := auth.PrincipalFromContext(r.Context()); ok {
		_ = audit.LogEvent(r.Context(), "auth.logout", map[string]any{"email": principal.Email})
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}
