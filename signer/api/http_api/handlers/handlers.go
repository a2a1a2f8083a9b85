package handlers

import (
	"github.com/lidofinance/frostsig/common"
	"github.com/lidofinance/frostsig/signer"
)

type HTTPApp struct {
	participant signer.Service
	logger      common.Logger
}

func NewHTTPApp(participant signer.Service, logger common.Logger) *HTTPApp {
	return &HTTPApp{
		participant: participant,
		logger:      logger,
	}
}
