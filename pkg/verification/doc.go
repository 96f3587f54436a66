// Package verification gates a login behind an SMS verification code.
//
// The gate sits between primary authentication and session issuance.
// After the host validates username and password, GateLogin decides
// whether the account requires a second factor; if so it asks the
// provider to send a code, binds the resulting challenge to the caller's
// session, and suspends the login. CompleteChallenge later validates the
// submitted code against that binding and either finishes the login or
// re-presents the challenge.
//
// # States
//
// A login attempt moves through these states:
//
//	AwaitingCredentials -> CredentialsVerified -> Authenticated          (2FA not enabled)
//	AwaitingCredentials -> CredentialsVerified -> ChallengeIssued
//	ChallengeIssued -> Authenticated | ChallengeIssued (retry) | Rejected
//
// A provider report of a verification already in progress is not a
// failure: when the existing request id is recoverable the flow resumes
// that challenge; when it is not, the attempt ends in ChallengePending
// and the user is told to wait and sign in again.
//
// # Flow
//
//	decision := service.GateLogin(ctx, sessionID, verification.PrimaryResult{User: user})
//	switch decision.Kind {
//	case verification.DecisionAuthenticated:
//		// complete the login
//	case verification.DecisionChallengeRequired:
//		// render decision.View, wait for code submission
//	}
//
//	decision = service.CompleteChallenge(ctx, sessionID, verification.Submission{
//		UserID:    user.ID,
//		Username:  user.Username,
//		RequestID: requestID,
//		Code:      code,
//	})
//
// The gate never overrides a primary-authentication failure and never
// partially authenticates: every fatal error terminates the attempt with
// a classified Error.
package verification
