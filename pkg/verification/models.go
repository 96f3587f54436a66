package verification

// State identifies where a login attempt sits in the verification flow.
type State string

const (
	StateAwaitingCredentials State = "awaiting_credentials"
	StateCredentialsVerified State = "credentials_verified"
	StateChallengeIssued     State = "challenge_issued"
	// StateChallengePending is the dead end reached when the provider
	// reports a verification already in progress but the existing
	// request id is not recoverable: nothing to bind, the user must
	// wait and retry login from scratch.
	StateChallengePending State = "challenge_pending"
	StateAuthenticated    State = "authenticated"
	StateRejected         State = "rejected"
)

// User is the authenticated identity owned by the host system.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// PrimaryResult is the outcome of primary (username/password)
// authentication, handed to the gate by the host. Err set means primary
// authentication failed; the gate passes such failures through unchanged.
type PrimaryResult struct {
	User User
	Err  error
}

// Submission carries a verification code entered by the user together
// with the identity and request token being claimed.
type Submission struct {
	UserID    string
	Username  string
	RequestID string
	Code      string
}

// DecisionKind classifies the gate's answer to the host.
type DecisionKind string

const (
	// DecisionPrimaryFailed passes the host's own failure through.
	DecisionPrimaryFailed DecisionKind = "primary_failed"
	// DecisionAuthenticated completes the login; Decision.User is set.
	DecisionAuthenticated DecisionKind = "authenticated"
	// DecisionChallengeRequired suspends the login; Decision.View
	// describes the challenge screen.
	DecisionChallengeRequired DecisionKind = "challenge_required"
	// DecisionChallengePending is the token-less concurrent case:
	// no binding exists and the user must wait before retrying.
	DecisionChallengePending DecisionKind = "challenge_pending"
	// DecisionRejected terminates the attempt; Decision.Err is a
	// classified *Error.
	DecisionRejected DecisionKind = "rejected"
)

// Decision is the gate's output for one request of the login flow.
type Decision struct {
	Kind  DecisionKind
	State State
	User  User
	View  *ChallengeView
	// Message carries user-facing guidance for DecisionChallengePending.
	Message string
	Err     error
}
