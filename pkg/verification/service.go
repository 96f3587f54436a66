package verification

import (
	"context"
	"log/slog"

	"github.com/tendant/simple-verify/pkg/challenge"
	"github.com/tendant/simple-verify/pkg/phone"
	"github.com/tendant/simple-verify/pkg/profile"
	"github.com/tendant/simple-verify/pkg/vonage"
)

// ProviderClient is the slice of the verification provider the gate
// needs. *vonage.Client satisfies it.
type ProviderClient interface {
	StartVerification(ctx context.Context, number string) vonage.ChallengeOutcome
	CheckCode(ctx context.Context, requestID, code string) vonage.CodeCheckOutcome
}

// ProfileReader reads per-user second-factor settings.
// *profile.ProfileService satisfies it.
type ProfileReader interface {
	GetProfile(ctx context.Context, userID string) (profile.Profile, error)
}

// VerificationService is the state machine gating logins behind SMS
// verification.
type VerificationService struct {
	provider   ProviderClient
	challenges challenge.Repository
	profiles   ProfileReader
}

// NewVerificationService creates a verification gate.
func NewVerificationService(provider ProviderClient, challenges challenge.Repository, profiles ProfileReader) *VerificationService {
	return &VerificationService{
		provider:   provider,
		challenges: challenges,
		profiles:   profiles,
	}
}

// GateLogin inspects a primary-authentication result and decides whether
// the login completes, suspends behind a verification challenge, or
// terminates.
//
// A binding is only ever written after the provider demonstrably
// returned a request id, so a timed-out or failed call leaves the
// challenge store untouched.
func (s *VerificationService) GateLogin(ctx context.Context, sessionID string, primary PrimaryResult) Decision {
	// Never override a primary-authentication failure.
	if primary.Err != nil {
		return Decision{
			Kind:  DecisionPrimaryFailed,
			State: StateAwaitingCredentials,
			Err:   primary.Err,
		}
	}

	user := primary.User

	prof, err := s.profiles.GetProfile(ctx, user.ID)
	if err != nil {
		slog.Error("Failed to read second-factor profile", "userId", user.ID, "error", err)
		return Decision{
			Kind:  DecisionRejected,
			State: StateRejected,
			Err:   newError(ErrorKindInternal, "Unable to check two-factor settings. Please try again."),
		}
	}

	if !prof.Enabled {
		// 2FA not required: the primary outcome passes through unchanged.
		return Decision{
			Kind:  DecisionAuthenticated,
			State: StateAuthenticated,
			User:  user,
		}
	}

	// Stored state is not trusted: re-validate before any provider call.
	number := phone.Normalize(prof.Phone)
	if number == "" || !phone.IsValid(number) {
		slog.Warn("2FA enabled without a usable phone number", "userId", user.ID)
		return Decision{
			Kind:  DecisionRejected,
			State: StateRejected,
			Err:   newError(ErrorKindConfiguration, "Two-factor authentication is enabled but your phone number is missing or invalid. Please configure your phone number in your profile before logging in."),
		}
	}

	outcome := s.provider.StartVerification(ctx, number)
	switch outcome.Kind {
	case vonage.ChallengeStarted:
		return s.issueChallenge(ctx, sessionID, user, number, outcome.RequestID, "")

	case vonage.ChallengeAlreadyInProgress:
		if outcome.RequestID != "" {
			// The provider exposed the outstanding request id: resume
			// that challenge instead of failing.
			slog.Info("Resuming verification already in progress", "userId", user.ID, "requestId", outcome.RequestID)
			return s.issueChallenge(ctx, sessionID, user, number, outcome.RequestID, msgResumed)
		}
		// Nothing to bind. Dead end: wait for the provider's window to
		// pass and retry login from scratch.
		slog.Info("Verification in progress with no recoverable request id", "userId", user.ID)
		return Decision{
			Kind:    DecisionChallengePending,
			State:   StateChallengePending,
			Message: msgWaitAndRetry,
		}

	case vonage.ChallengeRejected:
		return Decision{
			Kind:  DecisionRejected,
			State: StateRejected,
			Err:   newError(ErrorKindProviderRejected, "Failed to send verification code: "+outcome.Reason),
		}

	default: // vonage.ChallengeProviderError
		return Decision{
			Kind:  DecisionRejected,
			State: StateRejected,
			Err:   newError(ErrorKindProviderTransport, "Failed to send verification code. Please try again."),
		}
	}
}

// CompleteChallenge resumes a suspended login with a submitted code. The
// session's binding must match the presented user and request token
// exactly; a mismatch is a hard failure, not a retry. An incorrect code
// does not consume the challenge: the same token is re-bound and the
// screen re-presented.
func (s *VerificationService) CompleteChallenge(ctx context.Context, sessionID string, sub Submission) Decision {
	ok, err := s.challenges.ValidateAndClear(ctx, sessionID, sub.UserID, sub.RequestID)
	if err != nil {
		slog.Error("Failed to validate challenge binding", "error", err)
		return Decision{
			Kind:  DecisionRejected,
			State: StateRejected,
			Err:   newError(ErrorKindInternal, "Unable to verify code. Please try again."),
		}
	}
	if !ok {
		// Deliberately vague: do not reveal whether the user or the
		// token mismatched.
		slog.Warn("Challenge binding mismatch", "userId", sub.UserID)
		return Decision{
			Kind:  DecisionRejected,
			State: StateRejected,
			Err:   newError(ErrorKindSessionMismatch, "Invalid verification session."),
		}
	}

	outcome := s.provider.CheckCode(ctx, sub.RequestID, sub.Code)
	switch outcome.Kind {
	case vonage.CodeConfirmed:
		// Binding already cleared by ValidateAndClear; the login now
		// completes as if it had never paused.
		slog.Info("Verification successful", "userId", sub.UserID)
		return Decision{
			Kind:  DecisionAuthenticated,
			State: StateAuthenticated,
			User:  User{ID: sub.UserID, Username: sub.Username},
		}

	case vonage.CodeIncorrect:
		return s.representChallenge(ctx, sessionID, sub, outcome.Reason)

	default: // vonage.CodeProviderError
		return s.representChallenge(ctx, sessionID, sub, "Failed to verify code. Please try again.")
	}
}

// issueChallenge binds the request token to the session and builds the
// challenge screen. A fresh bind always supersedes a stale one, so a
// session holds at most one pending challenge.
func (s *VerificationService) issueChallenge(ctx context.Context, sessionID string, user User, number, requestID, message string) Decision {
	if err := s.challenges.Bind(ctx, sessionID, user.ID, requestID); err != nil {
		slog.Error("Failed to bind challenge", "userId", user.ID, "error", err)
		return Decision{
			Kind:  DecisionRejected,
			State: StateRejected,
			Err:   newError(ErrorKindInternal, "Failed to start verification. Please try again."),
		}
	}

	view, err := BuildChallengeView(number, user.Username, requestID, message, "")
	if err != nil {
		return Decision{Kind: DecisionRejected, State: StateRejected, Err: err}
	}

	slog.Info("Verification challenge issued", "userId", user.ID, "requestId", requestID, "phone", phone.Mask(number))
	return Decision{
		Kind:  DecisionChallengeRequired,
		State: StateChallengeIssued,
		View:  view,
	}
}

// representChallenge restores the binding consumed by ValidateAndClear
// and rebuilds the challenge screen with the failure text. The request
// token is unchanged: a failed attempt does not consume the challenge.
func (s *VerificationService) representChallenge(ctx context.Context, sessionID string, sub Submission, errText string) Decision {
	if err := s.challenges.Bind(ctx, sessionID, sub.UserID, sub.RequestID); err != nil {
		slog.Error("Failed to re-bind challenge", "userId", sub.UserID, "error", err)
		return Decision{
			Kind:  DecisionRejected,
			State: StateRejected,
			Err:   newError(ErrorKindInternal, "Unable to verify code. Please try again."),
		}
	}

	// Best effort phone lookup for the masked display; the screen still
	// renders without it.
	var number string
	if prof, err := s.profiles.GetProfile(ctx, sub.UserID); err == nil {
		number = prof.Phone
	}

	view, err := BuildChallengeView(number, sub.Username, sub.RequestID, "", errText)
	if err != nil {
		return Decision{Kind: DecisionRejected, State: StateRejected, Err: err}
	}

	return Decision{
		Kind:  DecisionChallengeRequired,
		State: StateChallengeIssued,
		View:  view,
	}
}
