package verification

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-verify/pkg/challenge"
	"github.com/tendant/simple-verify/pkg/profile"
	"github.com/tendant/simple-verify/pkg/vonage"
)

// fakeProvider scripts provider responses and records calls.
type fakeProvider struct {
	startOutcome vonage.ChallengeOutcome
	checkOutcome vonage.CodeCheckOutcome
	startCalls   int
	checkCalls   int
	lastNumber   string
	lastCode     string
}

func (f *fakeProvider) StartVerification(ctx context.Context, number string) vonage.ChallengeOutcome {
	f.startCalls++
	f.lastNumber = number
	return f.startOutcome
}

func (f *fakeProvider) CheckCode(ctx context.Context, requestID, code string) vonage.CodeCheckOutcome {
	f.checkCalls++
	f.lastCode = code
	return f.checkOutcome
}

// fakeProfiles serves canned profiles.
type fakeProfiles struct {
	profiles map[string]profile.Profile
	err      error
}

func (f *fakeProfiles) GetProfile(ctx context.Context, userID string) (profile.Profile, error) {
	if f.err != nil {
		return profile.Profile{}, f.err
	}
	return f.profiles[userID], nil
}

type testEnv struct {
	service    *VerificationService
	provider   *fakeProvider
	challenges *challenge.InMemChallengeRepository
}

func setupGate(t *testing.T, profiles map[string]profile.Profile) *testEnv {
	t.Helper()
	provider := &fakeProvider{}
	challenges := challenge.NewInMemChallengeRepository()
	service := NewVerificationService(provider, challenges, &fakeProfiles{profiles: profiles})
	return &testEnv{service: service, provider: provider, challenges: challenges}
}

var alice = User{ID: "user-alice", Username: "alice"}

func enabledProfile(userID, number string) map[string]profile.Profile {
	return map[string]profile.Profile{
		userID: {UserID: userID, Phone: number, Enabled: true},
	}
}

func TestGateLogin_PrimaryFailurePassesThrough(t *testing.T) {
	env := setupGate(t, enabledProfile(alice.ID, "16193278653"))
	primaryErr := errors.New("Username/Password is wrong")

	decision := env.service.GateLogin(context.Background(), "s1", PrimaryResult{Err: primaryErr})

	assert.Equal(t, DecisionPrimaryFailed, decision.Kind)
	assert.Equal(t, primaryErr, decision.Err)
	assert.Zero(t, env.provider.startCalls)
}

func TestGateLogin_DisabledProfilePassesThrough(t *testing.T) {
	env := setupGate(t, map[string]profile.Profile{
		alice.ID: {UserID: alice.ID, Phone: "16193278653", Enabled: false},
	})

	decision := env.service.GateLogin(context.Background(), "s1", PrimaryResult{User: alice})

	assert.Equal(t, DecisionAuthenticated, decision.Kind)
	assert.Equal(t, alice, decision.User)
	assert.Zero(t, env.provider.startCalls)
}

func TestGateLogin_UnknownProfilePassesThrough(t *testing.T) {
	env := setupGate(t, map[string]profile.Profile{})

	decision := env.service.GateLogin(context.Background(), "s1", PrimaryResult{User: alice})

	assert.Equal(t, DecisionAuthenticated, decision.Kind)
	assert.Zero(t, env.provider.startCalls)
}

func TestGateLogin_EnabledWithoutPhoneIsFatal(t *testing.T) {
	for name, number := range map[string]string{
		"Empty":    "",
		"TooShort": "123",
		"NonDigit": "abc", // normalizes to empty
	} {
		t.Run(name, func(t *testing.T) {
			env := setupGate(t, enabledProfile(alice.ID, number))

			decision := env.service.GateLogin(context.Background(), "s1", PrimaryResult{User: alice})

			assert.Equal(t, DecisionRejected, decision.Kind)
			assert.True(t, IsKind(decision.Err, ErrorKindConfiguration))
			// Rejected before any provider call.
			assert.Zero(t, env.provider.startCalls)
		})
	}
}

func TestGateLogin_StartedIssuesChallenge(t *testing.T) {
	env := setupGate(t, enabledProfile(alice.ID, "16193278653"))
	env.provider.startOutcome = vonage.ChallengeOutcome{Kind: vonage.ChallengeStarted, RequestID: "R1"}

	decision := env.service.GateLogin(context.Background(), "s1", PrimaryResult{User: alice})

	require.Equal(t, DecisionChallengeRequired, decision.Kind)
	assert.Equal(t, StateChallengeIssued, decision.State)
	require.NotNil(t, decision.View)
	assert.Equal(t, "1619327****", decision.View.MaskedPhone)
	assert.Equal(t, "R1", decision.View.RequestID)
	assert.Equal(t, "alice", decision.View.Username)
	assert.Contains(t, decision.View.Message, "1619327****")
	assert.Empty(t, decision.View.Error)
	assert.Equal(t, "16193278653", env.provider.lastNumber)

	pending, exists, err := env.challenges.Lookup(context.Background(), "s1")
	require.NoError(t, err)
	require.True(t, exists)
	assert.Equal(t, challenge.PendingChallenge{UserID: alice.ID, RequestID: "R1"}, pending)
}

func TestGateLogin_SecondStartSupersedesBinding(t *testing.T) {
	env := setupGate(t, enabledProfile(alice.ID, "16193278653"))

	env.provider.startOutcome = vonage.ChallengeOutcome{Kind: vonage.ChallengeStarted, RequestID: "R1"}
	env.service.GateLogin(context.Background(), "s1", PrimaryResult{User: alice})

	env.provider.startOutcome = vonage.ChallengeOutcome{Kind: vonage.ChallengeStarted, RequestID: "R2"}
	env.service.GateLogin(context.Background(), "s1", PrimaryResult{User: alice})

	pending, exists, err := env.challenges.Lookup(context.Background(), "s1")
	require.NoError(t, err)
	require.True(t, exists)
	assert.Equal(t, "R2", pending.RequestID)

	// The superseded token no longer validates.
	ok, err := env.challenges.ValidateAndClear(context.Background(), "s1", alice.ID, "R1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGateLogin_ConcurrentWithTokenResumes(t *testing.T) {
	env := setupGate(t, enabledProfile(alice.ID, "16193278653"))
	env.provider.startOutcome = vonage.ChallengeOutcome{
		Kind:      vonage.ChallengeAlreadyInProgress,
		RequestID: "R2",
		Reason:    "Concurrent verifications to the same number are not allowed",
	}

	decision := env.service.GateLogin(context.Background(), "s1", PrimaryResult{User: alice})

	require.Equal(t, DecisionChallengeRequired, decision.Kind)
	require.NotNil(t, decision.View)
	assert.Equal(t, "R2", decision.View.RequestID)
	assert.Contains(t, decision.View.Message, "already sent")

	pending, exists, err := env.challenges.Lookup(context.Background(), "s1")
	require.NoError(t, err)
	require.True(t, exists)
	assert.Equal(t, challenge.PendingChallenge{UserID: alice.ID, RequestID: "R2"}, pending)
}

func TestGateLogin_ConcurrentWithoutTokenIsDeadEnd(t *testing.T) {
	env := setupGate(t, enabledProfile(alice.ID, "16193278653"))
	env.provider.startOutcome = vonage.ChallengeOutcome{
		Kind:   vonage.ChallengeAlreadyInProgress,
		Reason: "Concurrent verifications to the same number are not allowed",
	}

	decision := env.service.GateLogin(context.Background(), "s1", PrimaryResult{User: alice})

	assert.Equal(t, DecisionChallengePending, decision.Kind)
	assert.Equal(t, StateChallengePending, decision.State)
	assert.Contains(t, decision.Message, "wait")
	// There is no code form in this state, so the message must not ask
	// the user to enter anything.
	assert.NotContains(t, decision.Message, "enter")
	assert.Nil(t, decision.View)

	// No binding: there was nothing to bind.
	_, exists, err := env.challenges.Lookup(context.Background(), "s1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGateLogin_ProviderRejectedIsFatal(t *testing.T) {
	env := setupGate(t, enabledProfile(alice.ID, "16193278653"))
	env.provider.startOutcome = vonage.ChallengeOutcome{Kind: vonage.ChallengeRejected, Reason: "Quota exceeded"}

	decision := env.service.GateLogin(context.Background(), "s1", PrimaryResult{User: alice})

	assert.Equal(t, DecisionRejected, decision.Kind)
	assert.True(t, IsKind(decision.Err, ErrorKindProviderRejected))
	assert.Contains(t, decision.Err.Error(), "Quota exceeded")

	_, exists, _ := env.challenges.Lookup(context.Background(), "s1")
	assert.False(t, exists)
}

func TestGateLogin_ProviderTransportErrorIsFatal(t *testing.T) {
	env := setupGate(t, enabledProfile(alice.ID, "16193278653"))
	env.provider.startOutcome = vonage.ChallengeOutcome{Kind: vonage.ChallengeProviderError, Reason: "connection refused"}

	decision := env.service.GateLogin(context.Background(), "s1", PrimaryResult{User: alice})

	assert.Equal(t, DecisionRejected, decision.Kind)
	assert.True(t, IsKind(decision.Err, ErrorKindProviderTransport))
	// Provider detail is not leaked to the user.
	assert.NotContains(t, decision.Err.Error(), "connection refused")

	_, exists, _ := env.challenges.Lookup(context.Background(), "s1")
	assert.False(t, exists)
}

func TestGateLogin_ProfileStoreFailureIsFatal(t *testing.T) {
	provider := &fakeProvider{}
	service := NewVerificationService(provider, challenge.NewInMemChallengeRepository(), &fakeProfiles{err: errors.New("boom")})

	decision := service.GateLogin(context.Background(), "s1", PrimaryResult{User: alice})

	assert.Equal(t, DecisionRejected, decision.Kind)
	assert.True(t, IsKind(decision.Err, ErrorKindInternal))
}

func submission(requestID, code string) Submission {
	return Submission{UserID: alice.ID, Username: alice.Username, RequestID: requestID, Code: code}
}

func issueChallengeForTest(t *testing.T, env *testEnv, sessionID string) {
	t.Helper()
	env.provider.startOutcome = vonage.ChallengeOutcome{Kind: vonage.ChallengeStarted, RequestID: "R1"}
	decision := env.service.GateLogin(context.Background(), sessionID, PrimaryResult{User: alice})
	require.Equal(t, DecisionChallengeRequired, decision.Kind)
}

func TestCompleteChallenge_ConfirmedAuthenticates(t *testing.T) {
	env := setupGate(t, enabledProfile(alice.ID, "16193278653"))
	issueChallengeForTest(t, env, "s1")
	env.provider.checkOutcome = vonage.CodeCheckOutcome{Kind: vonage.CodeConfirmed}

	decision := env.service.CompleteChallenge(context.Background(), "s1", submission("R1", "123456"))

	assert.Equal(t, DecisionAuthenticated, decision.Kind)
	assert.Equal(t, alice, decision.User)

	// Binding is consumed: replaying the same token is a hard failure.
	replay := env.service.CompleteChallenge(context.Background(), "s1", submission("R1", "123456"))
	assert.Equal(t, DecisionRejected, replay.Kind)
	assert.True(t, IsKind(replay.Err, ErrorKindSessionMismatch))
}

func TestCompleteChallenge_MismatchIsFatalAndLeavesBinding(t *testing.T) {
	env := setupGate(t, enabledProfile(alice.ID, "16193278653"))
	issueChallengeForTest(t, env, "s1")

	t.Run("WrongToken", func(t *testing.T) {
		decision := env.service.CompleteChallenge(context.Background(), "s1", submission("R-forged", "123456"))
		assert.Equal(t, DecisionRejected, decision.Kind)
		assert.True(t, IsKind(decision.Err, ErrorKindSessionMismatch))
		assert.Equal(t, "Invalid verification session.", decision.Err.Error())
		assert.Zero(t, env.provider.checkCalls)
	})

	t.Run("WrongUser", func(t *testing.T) {
		decision := env.service.CompleteChallenge(context.Background(), "s1", Submission{
			UserID: "user-mallory", Username: "mallory", RequestID: "R1", Code: "123456",
		})
		assert.Equal(t, DecisionRejected, decision.Kind)
		assert.True(t, IsKind(decision.Err, ErrorKindSessionMismatch))
	})

	// The probes above left the binding intact for the real user.
	pending, exists, err := env.challenges.Lookup(context.Background(), "s1")
	require.NoError(t, err)
	require.True(t, exists)
	assert.Equal(t, "R1", pending.RequestID)
}

func TestCompleteChallenge_IncorrectCodeKeepsChallengeAlive(t *testing.T) {
	env := setupGate(t, enabledProfile(alice.ID, "16193278653"))
	issueChallengeForTest(t, env, "s1")
	env.provider.checkOutcome = vonage.CodeCheckOutcome{Kind: vonage.CodeIncorrect, Reason: "The code provided does not match the expected value"}

	decision := env.service.CompleteChallenge(context.Background(), "s1", submission("R1", "000000"))

	require.Equal(t, DecisionChallengeRequired, decision.Kind)
	require.NotNil(t, decision.View)
	assert.Equal(t, "R1", decision.View.RequestID)
	assert.Contains(t, decision.View.Error, "does not match")
	assert.Equal(t, "1619327****", decision.View.MaskedPhone)

	// Same token still valid: a correct retry now succeeds.
	env.provider.checkOutcome = vonage.CodeCheckOutcome{Kind: vonage.CodeConfirmed}
	retry := env.service.CompleteChallenge(context.Background(), "s1", submission("R1", "123456"))
	assert.Equal(t, DecisionAuthenticated, retry.Kind)
}

func TestCompleteChallenge_CheckTransportErrorKeepsChallengeAlive(t *testing.T) {
	env := setupGate(t, enabledProfile(alice.ID, "16193278653"))
	issueChallengeForTest(t, env, "s1")
	env.provider.checkOutcome = vonage.CodeCheckOutcome{Kind: vonage.CodeProviderError, Reason: "timeout"}

	decision := env.service.CompleteChallenge(context.Background(), "s1", submission("R1", "123456"))

	require.Equal(t, DecisionChallengeRequired, decision.Kind)
	require.NotNil(t, decision.View)
	assert.Equal(t, "R1", decision.View.RequestID)

	pending, exists, err := env.challenges.Lookup(context.Background(), "s1")
	require.NoError(t, err)
	require.True(t, exists)
	assert.Equal(t, "R1", pending.RequestID)
}

func TestCompleteChallenge_SessionsAreIndependent(t *testing.T) {
	// Two concurrent logins by the same user hold separate bindings.
	env := setupGate(t, enabledProfile(alice.ID, "16193278653"))

	env.provider.startOutcome = vonage.ChallengeOutcome{Kind: vonage.ChallengeStarted, RequestID: "R1"}
	env.service.GateLogin(context.Background(), "s1", PrimaryResult{User: alice})
	env.provider.startOutcome = vonage.ChallengeOutcome{Kind: vonage.ChallengeStarted, RequestID: "R2"}
	env.service.GateLogin(context.Background(), "s2", PrimaryResult{User: alice})

	// Session 1 cannot check in with session 2's token.
	decision := env.service.CompleteChallenge(context.Background(), "s1", submission("R2", "123456"))
	assert.Equal(t, DecisionRejected, decision.Kind)

	env.provider.checkOutcome = vonage.CodeCheckOutcome{Kind: vonage.CodeConfirmed}
	decision = env.service.CompleteChallenge(context.Background(), "s2", submission("R2", "123456"))
	assert.Equal(t, DecisionAuthenticated, decision.Kind)
}
