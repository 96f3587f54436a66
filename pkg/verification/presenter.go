package verification

import (
	"fmt"

	"github.com/tendant/simple-verify/pkg/phone"
)

// User-facing challenge screen text.
const (
	msgCodeSent = "A verification code has been sent to your phone ending in %s"
	msgResumed  = "A verification code was already sent to your phone. Please enter the code you received."
	// Shown for the dead end where a verification is outstanding but its
	// request token is unrecoverable: there is no form to enter a code
	// into, so the only way forward is a fresh login after the provider's
	// window passes.
	msgWaitAndRetry = "A verification is already in progress for your phone. Please wait 2 minutes, then log in again to request a new code."
)

// ChallengeView is everything a rendering layer needs to show the
// challenge screen. It never carries more than the last four digits of
// the phone number, and the error text is exactly what the flow passed
// in - nothing is invented here.
type ChallengeView struct {
	MaskedPhone string `json:"masked_phone"`
	// Message is informational text shown when there is no error.
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	// RequestID is the opaque resume token the form must submit back.
	RequestID string `json:"request_id"`
	Username  string `json:"username"`
}

// BuildChallengeView produces the view model for the challenge screen.
// An empty requestID is a precondition failure: no view is rendered
// without a live challenge reference. An empty message falls back to the
// "code sent" text; errText, when set, replaces the message entirely.
func BuildChallengeView(phoneNumber, username, requestID, message, errText string) (*ChallengeView, error) {
	if requestID == "" {
		return nil, newError(ErrorKindInternal, "no active verification challenge")
	}

	masked := phone.Mask(phoneNumber)
	view := &ChallengeView{
		MaskedPhone: masked,
		RequestID:   requestID,
		Username:    username,
	}

	if errText != "" {
		view.Error = errText
		return view, nil
	}

	if message == "" {
		message = fmt.Sprintf(msgCodeSent, masked)
	}
	view.Message = message
	return view, nil
}
