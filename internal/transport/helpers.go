package transport

import (
	"errors"
	"net/http"

	"corralon-jr/internal/middleware"

	"github.com/google/uuid"
)

var errNoIdentity = errors.New("no authenticated identity in request context")

func currentUserID(r *http.Request) (uuid.UUID, error) {
	raw, ok := middleware.GetUserID(r.Context())
	if !ok {
		return uuid.Nil, errNoIdentity
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errNoIdentity
	}
	return id, nil
}

func currentUserRole(r *http.Request) string {
	role, _ := middleware.GetUserRole(r.Context())
	return role
}
