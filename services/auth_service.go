package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"salon-backend/models"
	"salon-backend/utils"

	"gorm.io/gorm"
)

type AuthConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

type AuthService struct {
	db  *gorm.DB
	otp *OTPService
	cfg AuthConfig
}

func NewAuthService(db *gorm.DB, otp *OTPService, cfg AuthConfig) *AuthService {
	return &AuthService{db: db, otp: otp, cfg: cfg}
}

type RegisterInput struct {
	FirstName string
	LastName  string
	Phone     string
	Username  string
	Password  string
}

type RegisteredUser struct {
	ID       uint   `json:"idUsuario"`
	Username string `json:"usuario"`
	Role     string `json:"rol"`
}

type LoginResult struct {
	UserID uint   `json:"idUsuario"`
	Role   string `json:"rol"`
	Token  string `json:"token"`
}

// Register creates a user account. The very first account becomes an
// administrator; every later one is a client.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*RegisteredUser, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Username = strings.TrimSpace(in.Username)
	in.Phone = utils.CleanPhone(strings.TrimSpace(in.Phone))
	if in.FirstName == "" || in.LastName == "" || in.Username == "" || in.Password == "" {
		return nil, utils.Validation("Faltan datos obligatorios")
	}
	if in.Phone != "" && !utils.ValidatePhone(in.Phone) {
		return nil, utils.Validation("Número de teléfono inválido")
	}

	hash, err := utils.HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, utils.Internal("Error al procesar la contraseña", err)
	}

	user := models.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Phone:        in.Phone,
		Username:     in.Username,
		PasswordHash: hash,
	}
	var roleName string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var users int64
		if err := tx.Model(&models.User{}).Count(&users).Error; err != nil {
			return err
		}
		roleName = models.RoleClient
		if users == 0 {
			roleName = models.RoleAdmin
		}
		var role models.Role
		if err := tx.Where("name = ?", roleName).Take(&role).Error; err != nil {
			return err
		}
		user.RoleID = role.ID
		return tx.Create(&user).Error
	})
	if err != nil {
		if utils.IsUniqueViolation(err) {
			return nil, utils.Conflict("El nombre de usuario ya existe")
		}
		return nil, utils.Internal("Error al registrar el usuario", err)
	}
	return &RegisteredUser{ID: user.ID, Username: user.Username, Role: roleName}, nil
}

// Login checks the credentials and issues a signed token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, utils.Validation("Nombre de usuario y contraseña son obligatorios")
	}
	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.Preload("Role").Where("username = ?", username).Take(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.Unauthorized("Credenciales incorrectas")
		}
		return nil, utils.Internal("Error al iniciar sesión", err)
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, utils.Unauthorized("Credenciales incorrectas")
	}

	role := ""
	if user.Role != nil {
		role = user.Role.Name
	}
	token, err := utils.GenerateToken(s.cfg.JWTSecret, user.ID, role, s.cfg.TokenTTL)
	if err != nil {
		return nil, utils.Internal("Error al generar el token", err)
	}

	now := time.Now()
	if err := db.Model(&user).UpdateColumn("last_login", &now).Error; err != nil {
		log.Printf("[ERROR] failed to record login for user %d: %v", user.ID, err)
	}

	return &LoginResult{UserID: user.ID, Role: role, Token: token}, nil
}

type Profile struct {
	models.User
	RoleName string `json:"nombrerol"`
}

func (s *AuthService) Me(ctx context.Context, userID uint) (*Profile, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Preload("Role").Take(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("Usuario no encontrado")
		}
		return nil, utils.Internal("Error al obtener el usuario", err)
	}
	p := &Profile{User: user}
	if user.Role != nil {
		p.RoleName = user.Role.Name
	}
	return p, nil
}

func (s *AuthService) Roles(ctx context.Context) ([]models.Role, error) {
	roles := []models.Role{}
	if err := s.db.WithContext(ctx).Order("name").Find(&roles).Error; err != nil {
		return nil, utils.Internal("Error al obtener roles", err)
	}
	return roles, nil
}

func (s *AuthService) RequestOTP(ctx context.Context, phone string) (*OTPDelivery, error) {
	return s.otp.Issue(ctx, PurposeVerify, phone)
}

func (s *AuthService) VerifyOTP(ctx context.Context, phone, code string) error {
	return s.otp.Verify(ctx, PurposeVerify, phone, code)
}

// RequestPasswordReset sends a reset code to the phone of an existing account.
func (s *AuthService) RequestPasswordReset(ctx context.Context, phone string) (*OTPDelivery, error) {
	if _, err := s.userByPhone(ctx, phone); err != nil {
		return nil, err
	}
	return s.otp.Issue(ctx, PurposeReset, phone)
}

// ResetPassword replaces the password once the reset code checks out.
func (s *AuthService) ResetPassword(ctx context.Context, phone, code, newPassword string) error {
	if newPassword == "" {
		return utils.Validation("La nueva contraseña es obligatoria")
	}
	if err := s.otp.Verify(ctx, PurposeReset, phone, code); err != nil {
		return err
	}
	user, err := s.userByPhone(ctx, phone)
	if err != nil {
		return err
	}
	hash, err := utils.HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return utils.Internal("Error al procesar la contraseña", err)
	}
	if err := s.db.WithContext(ctx).Model(user).Update("password_hash", hash).Error; err != nil {
		return utils.Internal("Error al actualizar la contraseña", err)
	}
	return nil
}

func (s *AuthService) userByPhone(ctx context.Context, phone string) (*models.User, error) {
	phone = utils.CleanPhone(strings.TrimSpace(phone))
	if phone == "" {
		return nil, utils.Validation("El teléfono es obligatorio")
	}
	var user models.User
	if err := s.db.WithContext(ctx).Where("phone = ?", phone).Take(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("No existe un usuario con ese teléfono")
		}
		return nil, utils.Internal("Error al buscar el usuario", err)
	}
	return &user, nil
}
