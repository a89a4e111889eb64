package dealer

import (
	"net/http"

	"github.com/delordemm1/dealer-dashboard/internal/apperr"
)

var (
	ErrNotFound      = apperr.New("ErrDealerNotFound", http.StatusNotFound, "dealer not found", "urn:problem:dealer/err-dealer-not-found")
	ErrExists        = apperr.New("ErrDealerExists", http.StatusConflict, "dealer already exists", "urn:problem:dealer/err-dealer-exists")
	ErrUpstream      = apperr.New("ErrUpstream", http.StatusBadGateway, "dealer lookup failed", "urn:problem:dealer/err-upstream")
	ErrInvalidRegion = apperr.New("ErrInvalidRegion", http.StatusBadRequest, "region must be usa or uk", "urn:problem:dealer/err-invalid-region")
	ErrInternal      = apperr.New("ErrInternal", http.StatusInternalServerError, "internal server error", "urn:problem:dealer/err-internal")
)
