package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/vitor518/Mangues/core/user"
)

const paramUserKey = "object"

var errUsrNotFoundInCtx = errors.New("user object not found in echo.Context")

// userParamMiddleware loads the user named by the `:id` path param. Unknown or non-numeric ids are 404s.
func userParamMiddleware(svc *user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			id, err := strconv.Atoi(ctx.Param("id"))
			if err != nil || id < 1 {
				return errUserNotFound
			}
			usr, err := svc.GetByID(ctx.Request().Context(), id)
			if err != nil {
				if errors.Cause(err) == user.ErrNotFound {
					return errUserNotFound
				}
				return errors.Wrap(err, "finding user by ID")
			}
			ctx.Set(paramUserKey, usr)
			return next(ctx)
		}
	}
}

func getParamUser(ctx echo.Context) (user.User, error) {
	usr, ok := ctx.Get(paramUserKey).(user.User)
	if !ok {
		return user.User{}, errors.Wrap(errUsrNotFoundInCtx, "retrieving object from context")
	}
	return usr, nil
}
