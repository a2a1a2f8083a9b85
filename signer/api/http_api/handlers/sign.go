package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lidofinance/frostsig/frost"
	"github.com/lidofinance/frostsig/signer"
	. "github.com/lidofinance/frostsig/signer/api/dto"
	cs "github.com/lidofinance/frostsig/signer/api/http_api/context_service"
	req "github.com/lidofinance/frostsig/signer/api/http_api/requests"
	"github.com/lidofinance/frostsig/signer/api/http_api/responses"
)

func (a *HTTPApp) Sign(c echo.Context) error {
	stx := c.(*cs.ContextService)

	formDTO := &SignDTO{}
	if err := stx.BindToDTO(&req.SignForm{}, formDTO); err != nil {
		return err
	}

	if len(formDTO.Package) == 0 {
		return stx.JsonError(
			http.StatusBadRequest,
			fmt.Errorf("package is required"),
		)
	}

	var pkg frost.SigningPackage
	if err := json.Unmarshal(formDTO.Package, &pkg); err != nil {
		return stx.JsonError(
			http.StatusBadRequest,
			fmt.Errorf("invalid signing package: %v", err),
		)
	}

	share, err := a.participant.RequestSignatureShare(&pkg)
	switch {
	case errors.Is(err, signer.ErrNonceNotFound):
		return stx.JsonError(http.StatusBadRequest, err)
	case err != nil:
		a.logger.Log("signing failed: %v", err)
		return stx.JsonError(http.StatusInternalServerError, err)
	}

	return stx.Json(
		http.StatusOK,
		&responses.SignResponse{Share: share},
	)
}
