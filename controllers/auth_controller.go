package controllers

import (
	"lablinc/dto"
	"lablinc/response"
	"lablinc/services"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

func (ctrl *AuthController) Register(c *gin.Context) {
	var input dto.RegisterInput
	if !bindJSON(c, &input) {
		return
	}
	res, err := ctrl.auth.Register(c.Request.Context(), input)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, res)
}

func (ctrl *AuthController) Login(c *gin.Context) {
	var input dto.LoginInput
	if !bindJSON(c, &input) {
		return
	}
	res, err := ctrl.auth.Login(c.Request.Context(), input)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, res)
}

func (ctrl *AuthController) GoogleLogin(c *gin.Context) {
	var input dto.GoogleLoginInput
	if !bindJSON(c, &input) {
		return
	}
	res, err := ctrl.auth.GoogleLogin(c.Request.Context(), input)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, res)
}

func (ctrl *AuthController) Profile(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	user, err := ctrl.auth.Profile(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, user)
}

func (ctrl *AuthController) UpdateProfile(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	var input dto.UpdateProfileInput
	if !bindJSON(c, &input) {
		return
	}
	user, err := ctrl.auth.UpdateProfile(c.Request.Context(), userID, input)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, user)
}

func (ctrl *AuthController) ChangePassword(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	var input dto.ChangePasswordInput
	if !bindJSON(c, &input) {
		return
	}
	if err := ctrl.auth.ChangePassword(c.Request.Context(), userID, input); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, nil)
}

func (ctrl *AuthController) UpdateSettings(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}
	var input dto.SettingsInput
	if !bindJSON(c, &input) {
		return
	}
	user, err := ctrl.auth.UpdateSettings(c.Request.Context(), userID, input)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, user)
}
