package http_api

import (
	"fmt"
	"net/http"

	. "github.com/labstack/echo/v4"

	cs "github.com/lidofinance/frostsig/signer/api/http_api/context_service"
)

func contextServiceMiddleware(next HandlerFunc) HandlerFunc {
	return func(ctx Context) error {
		return next(cs.New(ctx))
	}
}

// Custom error handler
func (p *RESTApiProvider) customHTTPErrorHandler(err error, c Context) {
	csError, ok := err.(*cs.CSErrorResp)
	if !ok {
		if he, ok := err.(*HTTPError); ok {
			csError = cs.NewErrorResp(he.Code, fmt.Sprintf("%v", he.Message))
		} else {
			csError = cs.NewErrorResp(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		}
	}

	// Send response
	if !c.Response().Committed {
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(csError.Code())
		} else {
			err = c.JSON(csError.Code(), csError)
		}
		if err != nil {
			p.logger.Log("failed to send error response: %v", err)
		}
	}
}
