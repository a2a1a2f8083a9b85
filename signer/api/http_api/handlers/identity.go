package handlers

import (
	"encoding/hex"
	"net/http"

	"github.com/labstack/echo/v4"

	cs "github.com/lidofinance/frostsig/signer/api/http_api/context_service"
	"github.com/lidofinance/frostsig/signer/api/http_api/responses"
)

func (a *HTTPApp) GetIdentity(c echo.Context) error {
	stx := c.(*cs.ContextService)

	identity := a.participant.Identity()

	return stx.Json(
		http.StatusOK,
		&responses.IdentityResponse{
			ParticipantID:  identity.ParticipantID,
			VerifyingShare: hex.EncodeToString(identity.VerifyingShare),
			VerifyingKey:   hex.EncodeToString(identity.VerifyingKey),
			PendingNonces:  a.participant.PendingNonces(),
		},
	)
}
