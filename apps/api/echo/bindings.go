package echoapi

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/vitor518/Mangues/core/fact"
)

var limitParam = "limite"

type rankingParams struct {
	Limit int
}

// Bind reads `limite`. Anything but a positive integer leaves the default to the service.
func (p *rankingParams) Bind(ctx echo.Context) {
	val := ctx.QueryParam(limitParam)
	if val == "" {
		return
	}
	if limit, err := strconv.Atoi(val); err == nil && limit > 0 {
		p.Limit = limit
	}
}

// userID accepts a JSON number or a string holding one.
type userID int

func (id *userID) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	n, err := strconv.Atoi(string(data))
	if err != nil {
		return err
	}
	*id = userID(n)
	return nil
}

// actionRequest is the body of POST /auth/registro-acao.
type actionRequest struct {
	UserID userID          `json:"usuarioId" validate:"required,gte=1"`
	Kind   string          `json:"tipo" validate:"required"`
	Data   json.RawMessage `json:"dados"`
}

func (r *actionRequest) Fact(validate *validator.Validate) (fact.Fact, error) {
	if err := validate.Struct(r); err != nil {
		return nil, err
	}
	return fact.Parse(validate, fact.Kind(r.Kind), r.Data)
}
