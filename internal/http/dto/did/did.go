// Package did contiene DTOs para /did/*.
package did

import diddoc "github.com/idryos/idryos-auth/internal/did"

type CreateRequest struct {
	Method string `json:"method"`
	UserID string `json:"user_id"`
}

type CreateResponse struct {
	DID      string          `json:"did"`
	Document diddoc.Document `json:"document"`
}
