package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/capsulehq/portal-auth/pkg/challenge"
	"github.com/capsulehq/portal-auth/pkg/passcode"
)

const challengeTypeEmailMFA = "EMAIL_MFA"

// Handle wires the three custom-auth hooks to the sequencer and the
// passcode service.
type Handle struct {
	sequencer       *challenge.Sequencer
	passcodeService *passcode.Service
}

// NewHandle creates a new Handle.
func NewHandle(sequencer *challenge.Sequencer, passcodeService *passcode.Service) *Handle {
	return &Handle{
		sequencer:       sequencer,
		passcodeService: passcodeService,
	}
}

// Routes returns a http.Handler for the custom-auth hook endpoints.
func Routes(h *Handle) http.Handler {
	r := chi.NewRouter()

	r.Post("/define", h.PostDefine)
	r.Post("/create", h.PostCreate)
	r.Post("/verify", h.PostVerify)

	return r
}

// PostDefine decides the next step for the attempt described by the session
// history.
// (POST /define)
func (h *Handle) PostDefine(w http.ResponseWriter, r *http.Request) {
	var data DefineRequest
	if err := render.DecodeJSON(r.Body, &data); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "unable to parse body"})
		return
	}

	history := make([]challenge.Step, 0, len(data.Session))
	for _, entry := range data.Session {
		history = append(history, challenge.Step{
			Kind:   challenge.ParseKind(entry.ChallengeName),
			Passed: entry.ChallengeResult,
		})
	}

	decision := h.sequencer.Decide(history)

	// Defensive false defaults: a caller reading this response without any
	// further processing must see a safe outcome.
	resp := DefineResponse{
		IssueTokens:        false,
		FailAuthentication: false,
	}

	switch decision.Action {
	case challenge.ActionIssueChallenge:
		resp.ChallengeName = decision.Challenge.String()
	case challenge.ActionGrantTokens:
		resp.IssueTokens = true
	default:
		resp.FailAuthentication = true
	}

	slog.Info("Define decision", "depth", len(history), "action", decision.Action.String())
	render.JSON(w, r, resp)
}

// PostCreate issues a one-time code for the subject and dispatches it by
// email. The code itself never appears in the response.
// (POST /create)
func (h *Handle) PostCreate(w http.ResponseWriter, r *http.Request) {
	var data CreateRequest
	if err := render.DecodeJSON(r.Body, &data); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "unable to parse body"})
		return
	}

	// Only the custom challenge is ours to create.
	if data.ChallengeName != "" && challenge.ParseKind(data.ChallengeName) != challenge.KindOneTimeCode {
		slog.Info("Skipping create, not a one-time-code challenge", "challengeName", data.ChallengeName)
		render.JSON(w, r, CreateResponse{PublicChallengeParameters: map[string]string{}})
		return
	}

	email := data.UserAttributes["email"]
	if email == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "missing email attribute"})
		return
	}

	if err := h.passcodeService.Issue(r.Context(), email); err != nil {
		// The orchestrator must not proceed as if a code exists.
		slog.Error("Failed to issue one-time code", "error", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]string{"error": "failed to dispatch challenge"})
		return
	}

	render.JSON(w, r, CreateResponse{
		PublicChallengeParameters: map[string]string{
			"email":          email,
			"challenge_type": challengeTypeEmailMFA,
		},
		ChallengeMetadata: "EMAIL_MFA_CODE",
	})
}

// PostVerify checks the submitted answer against the stored code.
// (POST /verify)
func (h *Handle) PostVerify(w http.ResponseWriter, r *http.Request) {
	var data VerifyRequest
	if err := render.DecodeJSON(r.Body, &data); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "unable to parse body"})
		return
	}

	email := data.UserAttributes["email"]

	correct := h.passcodeService.Verify(r.Context(), email, data.ChallengeAnswer)
	render.JSON(w, r, VerifyResponse{AnswerCorrect: correct})
}
