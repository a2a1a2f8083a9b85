package handlers

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lidofinance/frostsig/signer"
	. "github.com/lidofinance/frostsig/signer/api/dto"
	cs "github.com/lidofinance/frostsig/signer/api/http_api/context_service"
	req "github.com/lidofinance/frostsig/signer/api/http_api/requests"
	"github.com/lidofinance/frostsig/signer/api/http_api/responses"
)

func (a *HTTPApp) RequestNonce(c echo.Context) error {
	stx := c.(*cs.ContextService)

	formDTO := &NonceDTO{}
	if err := stx.BindToDTO(&req.NonceForm{}, formDTO); err != nil {
		return err
	}

	message, err := hex.DecodeString(formDTO.Message)
	if err != nil {
		return stx.JsonError(
			http.StatusBadRequest,
			fmt.Errorf("invalid message hex: %v", err),
		)
	}

	commitment, err := a.participant.RequestCommitment(message)
	switch {
	case errors.Is(err, signer.ErrEmptyMessage):
		return stx.JsonError(http.StatusBadRequest, err)
	case err != nil:
		return stx.JsonError(
			http.StatusInternalServerError,
			fmt.Errorf("failed to commit: %v", err),
		)
	}

	return stx.Json(
		http.StatusOK,
		&responses.NonceResponse{
			ParticipantID: commitment.ParticipantID,
			Commitments:   commitment.Commitments,
		},
	)
}
