package router

import (
	"github.com/labstack/echo/v4"

	"github.com/lidofinance/frostsig/common"
	"github.com/lidofinance/frostsig/signer"
	"github.com/lidofinance/frostsig/signer/api/http_api/handlers"
)

func SetRouter(e *echo.Echo, participant signer.Service, logger common.Logger) {
	h := handlers.NewHTTPApp(participant, logger)

	e.POST("/nonce", h.RequestNonce)
	e.POST("/sign", h.Sign)
	e.GET("/identity", h.GetIdentity)
}
