package auth

import (
	"net/http"

	"github.com/delordemm1/dealer-dashboard/internal/apperr"
)

// GenericRequestMessage answers every non-dev code request, whether or not the
// account exists and whether or not delivery worked.
const GenericRequestMessage = "Request processed. If the email exists, you will receive an OTP."

var (
	ErrInvalidCode = apperr.New("ErrInvalidCode", http.StatusUnauthorized,
		"invalid or expired code", "urn:problem:auth/err-invalid-code")

	ErrInvalidLink = apperr.New("ErrInvalidLink", http.StatusUnauthorized,
		"invalid or expired link", "urn:problem:auth/err-invalid-link")

	ErrFullNameRequired = apperr.New("ErrFullNameRequired", http.StatusBadRequest,
		"full name required for signup", "urn:problem:auth/err-full-name-required")

	ErrSignupRequired = apperr.New("ErrSignupRequired", http.StatusNotFound,
		"account not found, please sign up first", "urn:problem:auth/err-signup-required")

	ErrResendTooSoon = apperr.New("ErrResendTooSoon", http.StatusTooManyRequests,
		"please wait before requesting another code", "urn:problem:auth/err-resend-too-soon")

	ErrInternal = apperr.New("ErrInternal", http.StatusInternalServerError,
		"internal server error", "urn:problem:auth/err-internal")
)
