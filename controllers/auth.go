// controllers/auth.go
package controllers

import (
	"net/http"

	"salon-backend/services"
	"salon-backend/utils"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	Auth *services.AuthService
}

// RegisterInput defines the expected JSON structure for registration
type RegisterInput struct {
	FirstName string `json:"nombre"`
	LastName  string `json:"apellido"`
	Phone     string `json:"telefono"`
	Username  string `json:"nombreUsuario"`
	Password  string `json:"password"`
}

// LoginInput defines the expected JSON structure for login
type LoginInput struct {
	Username string `json:"nombreUsuario"`
	Password string `json:"password"`
}

type PhoneInput struct {
	Phone string `json:"telefono"`
}

type VerifyOTPInput struct {
	Phone string `json:"telefono"`
	Code  string `json:"otp"`
}

type ResetPasswordInput struct {
	Phone       string `json:"telefono"`
	Code        string `json:"otp"`
	NewPassword string `json:"nuevaPassword"`
}

// Register creates an account. The first account ever created is an administrator.
func (ac *AuthController) Register(c *gin.Context) {
	var input RegisterInput
	if !bindJSON(c, &input) {
		return
	}

	user, err := ac.Auth.Register(c.Request.Context(), services.RegisterInput{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Phone:     input.Phone,
		Username:  input.Username,
		Password:  input.Password,
	})
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusCreated, "Usuario registrado exitosamente", user)
}

// Login authenticates a user and returns a JWT
func (ac *AuthController) Login(c *gin.Context) {
	var input LoginInput
	if !bindJSON(c, &input) {
		return
	}
	res, err := ac.Auth.Login(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Inicio de sesión exitoso", res)
}

// Me returns the profile behind the bearer token.
func (ac *AuthController) Me(c *gin.Context) {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "Usuario no autenticado")
		return
	}
	profile, err := ac.Auth.Me(c.Request.Context(), userID)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Perfil", profile)
}

func (ac *AuthController) Roles(c *gin.Context) {
	roles, err := ac.Auth.Roles(c.Request.Context())
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Roles obtenidos", roles)
}

// RequestOTP sends a verification code. It also serves resend-otp: a new
// code always replaces the previous one.
func (ac *AuthController) RequestOTP(c *gin.Context) {
	var input PhoneInput
	if !bindJSON(c, &input) {
		return
	}
	delivery, err := ac.Auth.RequestOTP(c.Request.Context(), input.Phone)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Código enviado", delivery)
}

func (ac *AuthController) VerifyOTP(c *gin.Context) {
	var input VerifyOTPInput
	if !bindJSON(c, &input) {
		return
	}
	if err := ac.Auth.VerifyOTP(c.Request.Context(), input.Phone, input.Code); err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Código verificado", nil)
}

func (ac *AuthController) RequestPasswordReset(c *gin.Context) {
	var input PhoneInput
	if !bindJSON(c, &input) {
		return
	}
	delivery, err := ac.Auth.RequestPasswordReset(c.Request.Context(), input.Phone)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Código enviado", delivery)
}

func (ac *AuthController) ResetPassword(c *gin.Context) {
	var input ResetPasswordInput
	if !bindJSON(c, &input) {
		return
	}
	if err := ac.Auth.ResetPassword(c.Request.Context(), input.Phone, input.Code, input.NewPassword); err != nil {
		utils.RespondWithAppError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Contraseña actualizada", nil)
}
