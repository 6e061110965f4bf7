// Package challenge decides the next step of a custom authentication attempt.
//
// The identity provider invokes the define hook once per completed step,
// handing over the ordered history of (challenge, result) pairs for the
// current attempt. The Sequencer is a pure function over that history: it
// either names the next challenge to issue, grants tokens, or fails the
// attempt. It holds no state of its own, so consecutive steps of the same
// attempt may be served by different process instances.
//
// # Basic Usage
//
//	seq := challenge.NewSequencer(
//		challenge.WithCodeRetries(1),
//	)
//
//	decision := seq.Decide(history)
//	switch decision.Action {
//	case challenge.ActionIssueChallenge:
//		// issue decision.Challenge
//	case challenge.ActionGrantTokens:
//		// complete authentication
//	case challenge.ActionFail:
//		// fail authentication
//	}
//
// By default the provider is assumed to have verified the password before
// entering custom auth, so the first decision issues the one-time-code
// challenge directly. Deployments that delegate the password check into the
// custom flow construct the Sequencer with WithPasswordFirstFactor. Both are
// fixed at construction time, never inferred per call.
package challenge
