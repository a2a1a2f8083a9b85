package http_api

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	echo_middleware "github.com/labstack/echo/v4/middleware"

	"github.com/lidofinance/frostsig/common"
	"github.com/lidofinance/frostsig/signer"
	"github.com/lidofinance/frostsig/signer/api/http_api/router"
	"github.com/lidofinance/frostsig/signer/config"
)

type RESTApiProvider struct {
	config       *config.HttpApiConfig
	echoInstance *echo.Echo
	logger       common.Logger
}

func NewRESTApiProvider(cfg *config.Config, participant signer.Service, logger common.Logger) *RESTApiProvider {
	p := &RESTApiProvider{logger: logger}
	p.NewServer(cfg, participant)
	return p
}

func (p *RESTApiProvider) NewServer(cfg *config.Config, participant signer.Service) {
	p.config = cfg.HttpApiConfig

	p.echoInstance = echo.New()

	p.echoInstance.HideBanner = true
	p.echoInstance.HidePort = true
	p.echoInstance.Debug = p.config.Debug

	p.echoInstance.Server.ReadTimeout = p.config.ReadTimeout
	p.echoInstance.Server.WriteTimeout = p.config.WriteTimeout

	p.echoInstance.HTTPErrorHandler = p.customHTTPErrorHandler

	// Middlewares

	p.echoInstance.Use(echo_middleware.Logger())
	p.echoInstance.Use(echo_middleware.Recover())

	p.echoInstance.Use(contextServiceMiddleware)

	router.SetRouter(p.echoInstance, participant, p.logger)
}

// Handler exposes the routes without starting a listener.
func (p *RESTApiProvider) Handler() http.Handler {
	return p.echoInstance
}

func (p *RESTApiProvider) Start() error {
	p.logger.Log("listening on %s", p.config.ListenAddr)
	err := p.echoInstance.Start(p.config.ListenAddr)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (p *RESTApiProvider) Stop(ctx context.Context) error {
	return p.echoInstance.Shutdown(ctx)
}
