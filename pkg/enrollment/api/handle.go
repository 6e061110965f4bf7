package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/capsulehq/portal-auth/pkg/albauth"
	"github.com/capsulehq/portal-auth/pkg/enrollment"
)

// Handle serves the TOTP self-service setup endpoints. All routes require an
// authenticated identity from the albauth middleware.
type Handle struct {
	enrollmentService *enrollment.Service
}

// NewHandle creates a new Handle.
func NewHandle(enrollmentService *enrollment.Service) *Handle {
	return &Handle{enrollmentService: enrollmentService}
}

// Routes returns a http.Handler for the MFA setup API.
func Routes(h *Handle) http.Handler {
	r := chi.NewRouter()
	r.Use(albauth.Middleware)

	r.Get("/init", h.GetInit)
	r.Post("/verify", h.PostVerify)
	r.Get("/status", h.GetStatus)
	r.Post("/disable", h.PostDisable)

	return r
}

type InitResponse struct {
	Success         bool   `json:"success"`
	Secret          string `json:"secret"`
	QRCode          string `json:"qr_code"`
	ProvisioningURI string `json:"provisioning_uri"`
}

type VerifyRequest struct {
	Code string `json:"code"`
}

type VerifyResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

type StatusResponse struct {
	Email      string `json:"email"`
	MFAEnabled bool   `json:"mfa_enabled"`
}

// GetInit starts (or restarts) TOTP setup for the authenticated user.
// (GET /init)
func (h *Handle) GetInit(w http.ResponseWriter, r *http.Request) {
	email, _ := albauth.EmailFromContext(r.Context())

	result, err := h.enrollmentService.Init(r.Context(), email)
	if err != nil {
		slog.Error("Failed to initialize enrollment", "error", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, VerifyResponse{Success: false, Error: "failed to initialize MFA setup"})
		return
	}

	render.JSON(w, r, InitResponse{
		Success:         true,
		Secret:          result.Secret,
		QRCode:          result.QRCodePNG,
		ProvisioningURI: result.ProvisioningURI,
	})
}

// PostVerify confirms the setup with a code from the authenticator app.
// (POST /verify)
func (h *Handle) PostVerify(w http.ResponseWriter, r *http.Request) {
	email, _ := albauth.EmailFromContext(r.Context())

	var data VerifyRequest
	if err := render.DecodeJSON(r.Body, &data); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, VerifyResponse{Success: false, Error: "invalid request body"})
		return
	}

	code := strings.TrimSpace(data.Code)
	if len(code) != 6 {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, VerifyResponse{Success: false, Error: "please enter a 6-digit code"})
		return
	}

	err := h.enrollmentService.Confirm(r.Context(), email, code)
	switch {
	case err == nil:
		render.JSON(w, r, VerifyResponse{Success: true, Message: "MFA successfully configured!"})
	case errors.Is(err, enrollment.ErrEnrollmentNotFound):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, VerifyResponse{Success: false, Error: "MFA setup not initialized. Please refresh and try again."})
	case errors.Is(err, enrollment.ErrInvalidPasscode):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, VerifyResponse{Success: false, Error: "Invalid code. Please check your authenticator app and try again."})
	case errors.Is(err, enrollment.ErrAlreadyVerified):
		render.JSON(w, r, VerifyResponse{Success: true, Message: "MFA is already configured."})
	default:
		slog.Error("Failed to confirm enrollment", "error", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, VerifyResponse{Success: false, Error: "failed to verify code"})
	}
}

// GetStatus reports whether the authenticated user has MFA configured.
// (GET /status)
func (h *Handle) GetStatus(w http.ResponseWriter, r *http.Request) {
	email, _ := albauth.EmailFromContext(r.Context())

	enabled, err := h.enrollmentService.Status(r.Context(), email)
	if err != nil {
		slog.Error("Failed to get enrollment status", "error", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, VerifyResponse{Success: false, Error: "failed to get MFA status"})
		return
	}

	render.JSON(w, r, StatusResponse{Email: email, MFAEnabled: enabled})
}

// PostDisable removes the authenticated user's enrollment.
// (POST /disable)
func (h *Handle) PostDisable(w http.ResponseWriter, r *http.Request) {
	email, _ := albauth.EmailFromContext(r.Context())

	if err := h.enrollmentService.Disable(r.Context(), email); err != nil {
		slog.Error("Failed to disable enrollment", "error", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, VerifyResponse{Success: false, Error: "failed to disable MFA"})
		return
	}

	render.JSON(w, r, VerifyResponse{Success: true, Message: "MFA disabled."})
}
