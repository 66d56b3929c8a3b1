package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/vitor518/Mangues/core/achievement"
	"github.com/vitor518/Mangues/core/fact"
	"github.com/vitor518/Mangues/core/progress"
	"github.com/vitor518/Mangues/core/user"
)

const (
	msgRegistered     = "Conta criada com sucesso! Bem-vindo ao Mundo dos Mangues! 🌿"
	msgLoggedIn       = "Bem-vindo de volta! 🎉"
	msgProfileUpdated = "Perfil atualizado com sucesso! ✨"
)

var actionMessages = map[fact.Kind]string{
	fact.KindSpeciesViewed:         "Espécie adicionada ao seu diário! 📖",
	fact.KindThreatViewed:          "Você aprendeu sobre uma nova ameaça! 🛡️",
	fact.KindGameCompleted:         "Jogo registrado! Continue assim! 🎮",
	fact.KindThreatActionCompleted: "Ação heroica completa! Você está ajudando os mangues! 💚",
}

type (
	authApi struct {
		usrSvc   *user.Service
		achSvc   *achievement.Service
		progSvc  *progress.Service
		validate *validator.Validate
	}

	registerResponse struct {
		Message string    `json:"message"`
		User    user.User `json:"usuario"`
	}

	profileResponse struct {
		Message string           `json:"message"`
		Profile progress.Profile `json:"usuario"`
	}

	progressResponse struct {
		Message string                    `json:"message"`
		Profile progress.Profile          `json:"usuario"`
		Awarded []achievement.Achievement `json:"novas_conquistas"`
	}
)

func registerAuthAPI(g *echo.Group, deps ServerDeps) {
	api := authApi{
		usrSvc:   deps.UserSvc,
		achSvc:   deps.AchievementSvc,
		progSvc:  deps.ProgressSvc,
		validate: deps.Validate,
	}

	ag := g.Group("/auth")
	ag.POST("/cadastro", api.register)
	ag.POST("/login", api.login)
	ag.POST("/registro-acao", api.recordAction)
	ag.GET("/conquistas", api.achievements)
	ag.GET("/ranking", api.ranking)
	ag.GET("/avatars", api.avatars)

	// detail endpoints
	dg := ag.Group("/perfil/:id", userParamMiddleware(api.usrSvc))
	dg.GET("", api.profile)
	dg.PUT("", api.updateProfile)
}

// Handlers

func (api *authApi) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.usrSvc.Register(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "registering user")
	}
	return ctx.JSON(http.StatusCreated, registerResponse{Message: msgRegistered, User: usr})
}

func (api *authApi) login(ctx echo.Context) error {
	var data user.Credentials
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Credentials")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.usrSvc.Login(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == user.ErrInvalidCredentials {
			return errInvalidCredentials
		}
		return errors.Wrap(err, "logging in")
	}
	res, err := api.progSvc.HandleVisit(ctx.Request().Context(), usr)
	if err != nil {
		return errors.Wrap(err, "handling visit")
	}
	return ctx.JSON(http.StatusOK, progressResponse{Message: msgLoggedIn, Profile: res.Profile, Awarded: res.Awarded})
}

func (api *authApi) recordAction(ctx echo.Context) error {
	var data actionRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to actionRequest")
	}
	f, err := data.Fact(api.validate)
	if err != nil {
		return err
	}

	res, err := api.progSvc.Handle(ctx.Request().Context(), int(data.UserID), f)
	if err != nil {
		return errors.Wrap(err, "handling action")
	}
	return ctx.JSON(http.StatusOK, progressResponse{
		Message: actionMessages[f.Kind()],
		Profile: res.Profile,
		Awarded: res.Awarded,
	})
}

func (api *authApi) profile(ctx echo.Context) error {
	usr, err := getParamUser(ctx)
	if err != nil {
		return err
	}
	profile, err := api.progSvc.Profile(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "getting profile")
	}
	return ctx.JSON(http.StatusOK, profile)
}

func (api *authApi) updateProfile(ctx echo.Context) error {
	usr, err := getParamUser(ctx)
	if err != nil {
		return err
	}

	var data user.UpdateUser
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateUser")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	if _, err = api.usrSvc.Update(ctx.Request().Context(), usr.ID, data); err != nil {
		return errors.Wrap(err, "updating user")
	}
	profile, err := api.progSvc.Profile(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "getting profile")
	}
	return ctx.JSON(http.StatusOK, profileResponse{Message: msgProfileUpdated, Profile: profile})
}

func (api *authApi) achievements(ctx echo.Context) error {
	achs, err := api.achSvc.List(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing achievements")
	}
	return ctx.JSON(http.StatusOK, achs)
}

func (api *authApi) ranking(ctx echo.Context) error {
	var params rankingParams
	params.Bind(ctx)

	entries, err := api.usrSvc.Ranking(ctx.Request().Context(), params.Limit)
	if err != nil {
		return errors.Wrap(err, "querying ranking")
	}
	return ctx.JSON(http.StatusOK, entries)
}

func (api *authApi) avatars(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, user.Avatars)
}
