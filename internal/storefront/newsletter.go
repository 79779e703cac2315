package storefront

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// NewsletterStatus is the state of one subscription attempt.
type NewsletterStatus string

const (
	NewsletterIdle       NewsletterStatus = "idle"
	NewsletterSubmitting NewsletterStatus = "submitting"
	NewsletterSuccess    NewsletterStatus = "success"
	NewsletterError      NewsletterStatus = "error"
)

// InvalidEmailMessage is shown next to the field when the address is malformed.
const InvalidEmailMessage = "Please enter a valid email address."

var (
	ErrInvalidEmail  = errors.New("invalid email address")
	ErrNotSubmitting = errors.New("newsletter attempt is not submitting")
	emailValidator   = validator.New()
)

// NewsletterAttempt tracks a single email subscription:
//
//	idle --Submit(valid)--> submitting --Succeed--> success
//	                        submitting --Fail-----> error --Submit(valid)--> submitting
//
// Submit with a malformed address leaves the state alone and records a
// validation error. Submit while submitting, or after success, does nothing.
type NewsletterAttempt struct {
	Email           string           `json:"email"`
	Status          NewsletterStatus `json:"status"`
	Error           string           `json:"error,omitempty"`
	ValidationError string           `json:"validation_error,omitempty"`
}

func NewNewsletterAttempt() *NewsletterAttempt {
	return &NewsletterAttempt{Status: NewsletterIdle}
}

// SetEmail updates the address while the form is editable.
func (a *NewsletterAttempt) SetEmail(email string) {
	if !a.Editable() {
		return
	}
	a.Email = email
	a.ValidationError = ""
}

// Editable reports whether the input accepts changes.
func (a *NewsletterAttempt) Editable() bool {
	return a.Status == NewsletterIdle || a.Status == NewsletterError
}

// CanSubmit reports whether the submit control is offered and enabled.
func (a *NewsletterAttempt) CanSubmit() bool {
	return a.Editable()
}

// Submit moves the attempt to submitting. It returns true when the caller
// should now issue the subscription request.
func (a *NewsletterAttempt) Submit() (bool, error) {
	if !a.CanSubmit() {
		return false, nil
	}
	if !ValidEmail(a.Email) {
		a.ValidationError = InvalidEmailMessage
		return false, ErrInvalidEmail
	}

	a.Email = strings.TrimSpace(a.Email)
	a.ValidationError = ""
	a.Error = ""
	a.Status = NewsletterSubmitting
	return true, nil
}

// Succeed completes a submitting attempt. Success is terminal.
func (a *NewsletterAttempt) Succeed() error {
	if a.Status != NewsletterSubmitting {
		return ErrNotSubmitting
	}
	a.Status = NewsletterSuccess
	return nil
}

// Fail records a failed request with a user-facing reason. The attempt can
// be retried.
func (a *NewsletterAttempt) Fail(reason string) error {
	if a.Status != NewsletterSubmitting {
		return ErrNotSubmitting
	}
	a.Status = NewsletterError
	a.Error = reason
	return nil
}

// ValidEmail performs the basic shape check applied before submission.
func ValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	return emailValidator.Var(email, "email") == nil
}
