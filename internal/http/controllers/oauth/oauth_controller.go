// Package oauth contiene los controllers de /oauth/authorize y /oauth/token.
package oauth

import (
	"errors"
	"net/http"

	dto "github.com/idryos/idryos-auth/internal/http/dto/oauth"
	httperrors "github.com/idryos/idryos-auth/internal/http/errors"
	"github.com/idryos/idryos-auth/internal/http/helpers"
	svc "github.com/idryos/idryos-auth/internal/http/services/oauth"
)

// OAuthController maneja authorize y token.
type OAuthController struct {
	service svc.OAuthService
}

func NewOAuthController(service svc.OAuthService) *OAuthController {
	return &OAuthController{service: service}
}

// Authorize maneja GET /oauth/authorize. El usuario se autentica con Bearer.
func (c *OAuthController) Authorize(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := dto.AuthorizeRequest{
		ClientID:     q.Get("client_id"),
		RedirectURI:  q.Get("redirect_uri"),
		ResponseType: q.Get("response_type"),
		Scope:        q.Get("scope"),
		State:        q.Get("state"),
	}

	bearer, ok := helpers.BearerToken(r)
	if !ok {
		httperrors.WriteError(w, r, httperrors.ErrTokenMissing)
		return
	}

	resp, err := c.service.Authorize(r.Context(), bearer, req)
	if err != nil {
		httperrors.WriteError(w, r, mapError(err))
		return
	}
	helpers.NoStore(w)
	helpers.WriteJSON(w, http.StatusOK, resp)
}

// Token maneja POST /oauth/token (JSON o form-urlencoded).
func (c *OAuthController) Token(w http.ResponseWriter, r *http.Request) {
	req, err := readTokenRequest(w, r)
	if err != nil {
		httperrors.WriteError(w, r, err)
		return
	}

	resp, err := c.service.Token(r.Context(), req)
	if err != nil {
		httperrors.WriteError(w, r, mapError(err))
		return
	}
	helpers.NoStore(w)
	helpers.WriteJSON(w, http.StatusOK, resp)
}

func readTokenRequest(w http.ResponseWriter, r *http.Request) (dto.TokenRequest, error) {
	var req dto.TokenRequest
	if !helpers.IsForm(r) {
		err := helpers.ReadJSON(w, r, &req)
		return req, err
	}

	r.Body = http.MaxBytesReader(w, r.Body, helpers.MaxBodyBytes)
	if err := r.ParseForm(); err != nil {
		return req, httperrors.Validation("Invalid form body").WithCause(err)
	}
	req.GrantType = r.PostForm.Get("grant_type")
	req.ClientID = r.PostForm.Get("client_id")
	req.ClientSecret = r.PostForm.Get("client_secret")
	req.Code = r.PostForm.Get("code")
	req.RedirectURI = r.PostForm.Get("redirect_uri")
	req.RefreshToken = r.PostForm.Get("refresh_token")
	return req, nil
}

// ─── Helpers ───

var messages = []struct {
	err  error
	kind httperrors.Kind
	msg  string
}{
	{svc.ErrInvalidClient, httperrors.KindAuthentication, "Invalid client"},
	{svc.ErrClientDisabled, httperrors.KindAuthentication, "Client is disabled"},
	{svc.ErrInvalidRedirectURI, httperrors.KindAuthentication, "Invalid redirect URI"},
	{svc.ErrUnsupportedResponse, httperrors.KindValidation, "Unsupported response type"},
	{svc.ErrInvalidScope, httperrors.KindValidation, "Invalid scope"},
	{svc.ErrInvalidToken, httperrors.KindAuthentication, "Invalid or expired token"},
	{svc.ErrCodeRequired, httperrors.KindAuthentication, "Authorization code required"},
	{svc.ErrInvalidCode, httperrors.KindAuthentication, "Invalid authorization code"},
	{svc.ErrCodeExpired, httperrors.KindAuthentication, "Authorization code expired"},
	{svc.ErrRefreshRequired, httperrors.KindAuthentication, "Refresh token required"},
	{svc.ErrInvalidRefresh, httperrors.KindAuthentication, "Invalid refresh token"},
	{svc.ErrRefreshExpired, httperrors.KindAuthentication, "Refresh token expired"},
	{svc.ErrUnsupportedGrantType, httperrors.KindAuthentication, "Unsupported grant type"},
}

func mapError(err error) error {
	for _, m := range messages {
		if errors.Is(err, m.err) {
			return httperrors.New(m.kind, m.msg)
		}
	}
	return httperrors.Unexpected(err)
}
