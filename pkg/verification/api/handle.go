package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/simple-verify/pkg/login"
	"github.com/tendant/simple-verify/pkg/verification"
	"github.com/tendant/simple-verify/pkg/websession"
)

// Handle wires the login endpoints to the verification gate.
type Handle struct {
	loginService        *login.LoginService
	verificationService *verification.VerificationService
	sessionService      *websession.SessionService
}

func NewHandle(loginService *login.LoginService, verificationService *verification.VerificationService, sessionService *websession.SessionService) Handle {
	return Handle{
		loginService:        loginService,
		verificationService: verificationService,
		sessionService:      sessionService,
	}
}

// Routes mounts the login flow on the given router.
func Routes(r chi.Router, handle Handle) {
	r.Post("/login", handle.Login)
	r.Post("/login/verify", handle.VerifyCode)
}

// LoginRequest is the primary-credentials submission.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// VerifyRequest resumes a suspended login with the code the user received.
type VerifyRequest struct {
	Username  string `json:"username"`
	Code      string `json:"code"`
	RequestID string `json:"request_id"`
}

// LoginResponse reports a completed login.
type LoginResponse struct {
	Status string            `json:"status"`
	User   verification.User `json:"user"`
}

// ChallengeResponse reports a login suspended behind a verification code.
type ChallengeResponse struct {
	Status    string                      `json:"status"`
	Challenge *verification.ChallengeView `json:"challenge,omitempty"`
	Message   string                      `json:"message,omitempty"`
}

// Login handles primary authentication and runs the result through the
// verification gate.
// (POST /login)
func (h Handle) Login(w http.ResponseWriter, r *http.Request) {
	var data LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		slog.Error("Failed to decode request body", "err", err)
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "Invalid request body"})
		return
	}
	if data.Username == "" || data.Password == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "Username and password are required"})
		return
	}

	sessionID, err := h.sessionService.EnsureSession(w, r)
	if err != nil {
		slog.Error("Failed to establish session", "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]string{"error": "Internal error"})
		return
	}

	user, loginErr := h.loginService.Login(r.Context(), data.Username, data.Password)
	primary := verification.PrimaryResult{User: verification.User(user), Err: loginErr}

	decision := h.verificationService.GateLogin(r.Context(), sessionID, primary)
	h.renderDecision(w, r, decision)
}

// VerifyCode completes a suspended login with the submitted code.
// (POST /login/verify)
func (h Handle) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var data VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		slog.Error("Failed to decode request body", "err", err)
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "Invalid request body"})
		return
	}
	if data.Username == "" || data.Code == "" || data.RequestID == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "Username, code and request_id are required"})
		return
	}

	// No valid session cookie means no challenge can be bound to this
	// browser. Same vague message as a binding mismatch.
	sessionID, ok := h.sessionService.SessionID(r)
	if !ok {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, map[string]string{"error": "Invalid verification session."})
		return
	}

	user, err := h.loginService.FindUser(r.Context(), data.Username)
	if err != nil {
		slog.Warn("Code submitted for unknown username", "username", data.Username)
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, map[string]string{"error": "Invalid verification session."})
		return
	}

	decision := h.verificationService.CompleteChallenge(r.Context(), sessionID, verification.Submission{
		UserID:    user.ID,
		Username:  user.Username,
		RequestID: data.RequestID,
		Code:      data.Code,
	})
	h.renderDecision(w, r, decision)
}

func (h Handle) renderDecision(w http.ResponseWriter, r *http.Request, decision verification.Decision) {
	switch decision.Kind {
	case verification.DecisionAuthenticated:
		render.Status(r, http.StatusOK)
		render.JSON(w, r, LoginResponse{Status: "success", User: decision.User})

	case verification.DecisionPrimaryFailed:
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, map[string]string{"error": "Username/Password is wrong"})

	case verification.DecisionChallengeRequired:
		// 202 on issue, 401 on a failed code attempt: the view carries
		// the retry form either way.
		status := http.StatusAccepted
		if decision.View != nil && decision.View.Error != "" {
			status = http.StatusUnauthorized
		}
		render.Status(r, status)
		render.JSON(w, r, ChallengeResponse{Status: "2fa_required", Challenge: decision.View})

	case verification.DecisionChallengePending:
		render.Status(r, http.StatusAccepted)
		render.JSON(w, r, ChallengeResponse{Status: "2fa_pending", Message: decision.Message})

	default: // verification.DecisionRejected
		render.Status(r, statusForError(decision.Err))
		render.JSON(w, r, map[string]string{"error": decision.Err.Error()})
	}
}

// statusForError maps classified verification failures to HTTP statuses.
func statusForError(err error) int {
	switch {
	case verification.IsKind(err, verification.ErrorKindSessionMismatch):
		return http.StatusUnauthorized
	case verification.IsKind(err, verification.ErrorKindConfiguration):
		return http.StatusForbidden
	case verification.IsKind(err, verification.ErrorKindProviderRejected),
		verification.IsKind(err, verification.ErrorKindProviderTransport):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
