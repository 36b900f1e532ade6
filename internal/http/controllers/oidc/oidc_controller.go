// Package oidc contiene los controllers de discovery, jwks y userinfo.
package oidc

import (
	"errors"
	"net/http"

	httperrors "github.com/idryos/idryos-auth/internal/http/errors"
	"github.com/idryos/idryos-auth/internal/http/helpers"
	svc "github.com/idryos/idryos-auth/internal/http/services/oidc"
)

type OIDCController struct {
	discovery svc.DiscoveryService
	userInfo  svc.UserInfoService
}

func NewOIDCController(s svc.Services) *OIDCController {
	return &OIDCController{discovery: s.Discovery, userInfo: s.UserInfo}
}

// Discovery maneja GET /.well-known/openid_configuration
func (c *OIDCController) Discovery(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=3600")
	helpers.WriteJSON(w, http.StatusOK, c.discovery.Metadata())
}

// JWKS maneja GET /.well-known/jwks.json
func (c *OIDCController) JWKS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=3600")
	helpers.WriteJSON(w, http.StatusOK, c.discovery.JWKS())
}

// UserInfo maneja GET /oauth/userinfo
func (c *OIDCController) UserInfo(w http.ResponseWriter, r *http.Request) {
	bearer, ok := helpers.BearerToken(r)
	if !ok {
		w.Header().Set("WWW-Authenticate", `Bearer`)
		httperrors.WriteError(w, r, httperrors.ErrTokenMissing)
		return
	}

	info, err := c.userInfo.GetUserInfo(r.Context(), bearer)
	if err != nil {
		switch {
		case errors.Is(err, svc.ErrMissingToken):
			w.Header().Set("WWW-Authenticate", `Bearer`)
			httperrors.WriteError(w, r, httperrors.ErrTokenMissing)
		case errors.Is(err, svc.ErrInvalidToken):
			w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
			httperrors.WriteError(w, r, httperrors.Authentication("Invalid or expired token"))
		default:
			httperrors.WriteError(w, r, httperrors.Unexpected(err))
		}
		return
	}
	helpers.NoStore(w)
	helpers.WriteJSON(w, http.StatusOK, info)
}
