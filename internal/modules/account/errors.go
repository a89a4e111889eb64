package account

import (
	"net/http"

	"github.com/delordemm1/dealer-dashboard/internal/apperr"
)

var (
	ErrNotFound    = apperr.New("ErrAccountNotFound", http.StatusNotFound, "account not found", "urn:problem:account/err-account-not-found")
	ErrEmailExists = apperr.New("ErrEmailExists", http.StatusConflict, "an account with this email already exists", "urn:problem:account/err-email-exists")
	ErrInvalidRole = apperr.New("ErrInvalidRole", http.StatusBadRequest, "unknown role", "urn:problem:account/err-invalid-role")
	ErrInternal    = apperr.New("ErrInternal", http.StatusInternalServerError, "internal server error", "urn:problem:account/err-internal")
)
