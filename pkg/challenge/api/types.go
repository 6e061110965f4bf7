package api

// SessionEntry is one completed step of the current attempt, as reported by
// the identity provider in its trigger payload.
type SessionEntry struct {
	ChallengeName     string `json:"challengeName"`
	ChallengeResult   bool   `json:"challengeResult"`
	ChallengeMetadata string `json:"challengeMetadata,omitempty"`
}

// DefineRequest is the payload of the define hook: the full step history for
// the attempt plus the authenticated user's attributes.
type DefineRequest struct {
	Session        []SessionEntry    `json:"session"`
	UserAttributes map[string]string `json:"userAttributes"`
}

// DefineResponse tells the provider what to do next. IssueTokens and
// FailAuthentication are always serialized so a caller inspecting the raw
// response observes explicit false defaults.
type DefineResponse struct {
	ChallengeName      string `json:"challengeName,omitempty"`
	IssueTokens        bool   `json:"issueTokens"`
	FailAuthentication bool   `json:"failAuthentication"`
}

// CreateRequest is the payload of the create hook, asking this service to
// dispatch the named challenge.
type CreateRequest struct {
	ChallengeName  string            `json:"challengeName"`
	Session        []SessionEntry    `json:"session"`
	UserAttributes map[string]string `json:"userAttributes"`
}

// CreateResponse acknowledges a dispatched challenge. The one-time code is
// never part of this payload: verification reads it from the shared store.
type CreateResponse struct {
	PublicChallengeParameters map[string]string `json:"publicChallengeParameters"`
	ChallengeMetadata         string            `json:"challengeMetadata,omitempty"`
}

// VerifyRequest is the payload of the verify hook: the caller-submitted
// answer for the subject's outstanding challenge.
type VerifyRequest struct {
	ChallengeAnswer string            `json:"challengeAnswer"`
	UserAttributes  map[string]string `json:"userAttributes"`
}

// VerifyResponse reports whether the submitted answer was correct.
type VerifyResponse struct {
	AnswerCorrect bool `json:"answerCorrect"`
}
