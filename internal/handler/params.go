package handler

import (
	"net/http"

	"github.com/dukerupert/mercato/internal/domain"
	"github.com/google/uuid"
)

// PathUUID parses the named path value as a UUID.
func PathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := r.PathValue(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.Errorf(domain.EINVALID, "handler.path", "%s is not a valid id", name)
	}
	return id, nil
}
