// Package did contiene los controllers de /did/*.
package did

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	dto "github.com/idryos/idryos-auth/internal/http/dto/did"
	httperrors "github.com/idryos/idryos-auth/internal/http/errors"
	"github.com/idryos/idryos-auth/internal/http/helpers"
	svc "github.com/idryos/idryos-auth/internal/http/services/did"
)

type DIDController struct {
	service svc.DIDService
}

func NewDIDController(service svc.DIDService) *DIDController {
	return &DIDController{service: service}
}

// Create maneja POST /did/create
func (c *DIDController) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, r, err)
		return
	}

	resp, err := c.service.Create(r.Context(), req)
	if err != nil {
		httperrors.WriteError(w, r, mapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, resp)
}

// Resolve maneja GET /did/resolve/{did}
func (c *DIDController) Resolve(w http.ResponseWriter, r *http.Request) {
	// chi entrega el segmento crudo si el path traía escapes. did:web lleva
	// el %3A del puerto como parte del identificador, así que no se decodifica.
	id := chi.URLParam(r, "did")
	if !strings.HasPrefix(id, "did:web:") {
		if dec, err := url.PathUnescape(id); err == nil {
			id = dec
		}
	}

	doc, err := c.service.Resolve(r.Context(), id)
	if err != nil {
		httperrors.WriteError(w, r, mapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, doc)
}

func mapError(err error) error {
	switch {
	case errors.Is(err, svc.ErrUserNotFound):
		return httperrors.NotFound("User not found")
	case errors.Is(err, svc.ErrUnsupportedMethod):
		return httperrors.Validation("Unsupported DID method")
	case errors.Is(err, svc.ErrNotFound):
		return httperrors.NotFound("DID not found or unsupported method")
	default:
		return httperrors.Unexpected(err)
	}
}
