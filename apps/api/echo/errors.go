package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/vitor518/Mangues/core"
	"github.com/vitor518/Mangues/core/user"
)

const (
	msgInternalError  = "Algo deu errado no servidor!"
	msgRouteNotFound  = "Endpoint não encontrado"
	msgInvalidRequest = "Dados inválidos"
)

var (
	errInvalidCredentials = echo.NewHTTPError(http.StatusUnauthorized, user.ErrInvalidCredentials.Error())
	errUserNotFound       = echo.NewHTTPError(http.StatusNotFound, user.ErrNotFound.Error())
)

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"campos,omitempty"`
	Path   string            `json:"path,omitempty"`
	Method string            `json:"method,omitempty"`
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var body errorResponse

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr == echo.ErrNotFound {
				code = http.StatusNotFound
				body = errorResponse{Error: msgRouteNotFound, Path: ctx.Request().URL.Path, Method: ctx.Request().Method}
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			switch msg, ok := origErr.Message.(string); {
			case code == http.StatusBadRequest && origErr.Internal != nil: // binding errors
				body.Error = msgInvalidRequest
			case ok:
				body.Error = msg
			default:
				body.Error = http.StatusText(code)
			}
		case validator.ValidationErrors:
			code = http.StatusBadRequest
			body.Fields = make(map[string]string, len(origErr))
			for i, vErr := range origErr {
				msg := vErr.Translate(translator)
				if i == 0 {
					body.Error = msg
				}
				body.Fields[vErr.Field()] = msg
			}
		case *core.ValidationError:
			code = http.StatusBadRequest
			body.Error = origErr.Error()
			if len(origErr.Fields) > 0 {
				body.Fields = make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					body.Fields[fErr.Field] = fErr.Error
				}
			}
		case *core.NotFoundError:
			code = http.StatusNotFound
			body.Error = origErr.Error()
		case *core.ConflictError:
			code = http.StatusBadRequest
			body.Error = origErr.Error()
		default: // any other error is a server error
			code = http.StatusInternalServerError
			body.Error = msgInternalError

			fields := map[string]interface{}{
				"method":     ctx.Request().Method,
				"path":       ctx.Request().URL.Path,
				"request_id": ctx.Response().Header().Get(echo.HeaderXRequestID),
			}
			logger.Error(msgInternalError, errors.Wrap(err, "handling request"), fields)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if body.Error == "" {
			body.Error = msgInvalidRequest
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, body)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
