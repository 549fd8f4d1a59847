package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/cddtech/lessonhub/core"
	"github.com/cddtech/lessonhub/core/user"
)

type userApi struct {
	conf *core.Config
	svc  *user.Service
}

func registerUserAPI(g *echo.Group, auth []echo.MiddlewareFunc, conf *core.Config, svc *user.Service) {
	api := userApi{conf: conf, svc: svc}

	ug := g.Group("/users")

	// un-authed endpoints
	ug.POST("/register", api.register)
	ug.POST("/login", api.login)

	// authed endpoints
	ag := ug.Group("", auth...)
	ag.POST("/token-refresh", api.refreshToken)
	ag.GET("/me", api.retrieve)
	ag.PUT("/me", api.update)
	ag.PUT("/me/password", api.changePassword)
}

type (
	LoginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	LoginResponse struct {
		Token string    `json:"token"`
		User  user.User `json:"user"`
	}

	TokenResponse struct {
		Token string `json:"token"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}
)

func (api *userApi) loginResponse(usr user.User) (LoginResponse, error) {
	token, err := GenerateToken(api.conf, NewClaims(api.conf, usr))
	if err != nil {
		return LoginResponse{}, errors.Wrap(err, "generating token")
	}
	return LoginResponse{Token: token, User: usr}, nil
}

func (api *userApi) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}

	usr, err := api.svc.Register(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	resp, err := api.loginResponse(usr)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, resp)
}

func (api *userApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}

	usr, err := api.svc.Authenticate(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		return err
	}
	resp, err := api.loginResponse(usr)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *userApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.conf)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, TokenResponse{Token: token})
}

func (api *userApi) retrieve(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) update(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data user.UpdateProfile
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProfile")
	}

	usr, err = api.svc.UpdateProfile(ctx.Request().Context(), usr, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) changePassword(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data user.ChangePassword
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ChangePassword")
	}

	if err = api.svc.ChangePassword(ctx.Request().Context(), usr, data); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Password has been changed."})
}
