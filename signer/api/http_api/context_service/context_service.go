package context_service

import (
	"fmt"
	"net/http"

	"github.com/censync/go-dto"
	"github.com/censync/go-validator"
	"github.com/labstack/echo/v4"
)

type ContextService struct {
	echo.Context
}

func New(c echo.Context) *ContextService {
	return &ContextService{
		c,
	}
}

type CSJsonResp struct {
	Result interface{} `json:"result"`
}

// Custom error
type CSErrorResp struct {
	Result       interface{} `json:"result"`
	ErrorMessage string      `json:"error_message,omitempty"`

	code int
}

func (e *CSErrorResp) Error() string {
	if e == nil {
		return ""
	}
	return e.ErrorMessage
}

// Code returns the HTTP status the error should be reported with.
func (e *CSErrorResp) Code() int {
	if e.code == 0 {
		return http.StatusInternalServerError
	}
	return e.code
}

func NewErrorResp(code int, message string) *CSErrorResp {
	return &CSErrorResp{
		Result:       struct{}{},
		ErrorMessage: message,
		code:         code,
	}
}

// BindToRequest populates the request fields based on the context path and query parameters and body
// and validates the result. A rejected request is returned as a *CSErrorResp with status 400.
func (cs *ContextService) BindToRequest(request interface{}) error {
	if err := cs.Bind(request); err != nil {
		return NewErrorResp(http.StatusBadRequest, fmt.Sprintf("failed to read request body: %v", err))
	}
	if err := validator.Validate(request); !err.IsEmpty() {
		return NewErrorResp(http.StatusBadRequest, err.Error().Error())
	}
	return nil
}

// BindToDTO builds a request of the given form based on the context and converts it to a DTO.
func (cs *ContextService) BindToDTO(requestForm, dtoForm interface{}) error {
	if err := cs.BindToRequest(requestForm); err != nil {
		return err
	}
	if err := dto.RequestToDTO(dtoForm, requestForm); err != nil {
		return NewErrorResp(http.StatusBadRequest, err.Error())
	}
	return nil
}

func (cs *ContextService) Json(code int, data interface{}) error {
	if data != nil {
		return cs.JSON(code, &CSJsonResp{
			Result: data,
		})
	} else {
		return cs.JSON(code, &CSJsonResp{
			Result: struct{}{},
		})
	}
}

func (cs *ContextService) JsonError(code int, err error) error {
	if err == nil {
		return cs.JSON(code, NewErrorResp(code, "undefined error"))
	}
	return cs.JSON(code, NewErrorResp(code, err.Error()))
}
