package services

import (
	"context"
	stderrors "errors"
	"strings"

	"lablinc/constants"
	"lablinc/dto"
	"lablinc/errors"
	"lablinc/models"
	"lablinc/services/logger"

	"golang.org/x/crypto/bcrypt"
	"google.golang.org/api/idtoken"
	"gorm.io/gorm"
)

// GoogleIdentity is the verified subset of a Google ID token.
type GoogleIdentity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

type GoogleVerifier interface {
	Verify(ctx context.Context, token string) (*GoogleIdentity, error)
}

// IDTokenVerifier validates Google ID tokens against a client id.
type IDTokenVerifier struct {
	ClientID string
}

func (v IDTokenVerifier) Verify(ctx context.Context, token string) (*GoogleIdentity, error) {
	payload, err := idtoken.Validate(ctx, token, v.ClientID)
	if err != nil {
		return nil, err
	}
	id := &GoogleIdentity{Subject: payload.Subject}
	if email, ok := payload.Claims["email"].(string); ok {
		id.Email = email
	}
	if name, ok := payload.Claims["name"].(string); ok {
		id.Name = name
	}
	if picture, ok := payload.Claims["picture"].(string); ok {
		id.Picture = picture
	}
	return id, nil
}

type AuthService struct {
	db     *gorm.DB
	logger logger.Logger
	tokens *TokenService
	google GoogleVerifier
}

type AuthServiceOptions struct {
	DB     *gorm.DB
	Logger logger.Logger
	Tokens *TokenService
	Google GoogleVerifier
}

func NewAuthService(opts AuthServiceOptions) *AuthService {
	return &AuthService{
		db:     opts.DB,
		logger: opts.Logger,
		tokens: opts.Tokens,
		google: opts.Google,
	}
}

func HashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedPassword), nil
}

func (s *AuthService) issue(user *models.User) (*dto.AuthResponse, error) {
	token, err := s.tokens.Generate(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{AccessToken: token, User: user}, nil
}

func (s *AuthService) Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error) {
	if input.Role != constants.RoleMSME && input.Role != constants.RoleInstitute {
		return nil, errors.NewAppError(errors.ErrCodeInvalidRole, "Only MSME and institute accounts can register", nil)
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ? OR phone_number = ?", email, input.PhoneNumber).
		Count(&count).Error; err != nil {
		return nil, errors.DB(err)
	}
	if count > 0 {
		return nil, errors.NewAppError(errors.ErrCodeUserExists, "Email or phone number is already registered", nil)
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Name:               strings.TrimSpace(input.Name),
		Email:              email,
		Password:           hash,
		PhoneNumber:        input.PhoneNumber,
		Role:               input.Role,
		Status:             constants.UserStatusActive,
		Organization:       input.Organization,
		Address:            input.Address,
		City:               input.City,
		State:              input.State,
		GSTNumber:          input.GSTNumber,
		EmailNotifications: true,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, errors.DB(err)
	}
	s.logger.Info("registered %s user %d", constants.RoleName(user.Role), user.ID)
	return s.issue(user)
}

// Login accepts an email address or phone number as identifier.
func (s *AuthService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	identifier := strings.TrimSpace(input.Identifier)
	var user models.User
	err := s.db.WithContext(ctx).
		Where("email = ? OR phone_number = ?", strings.ToLower(identifier), identifier).
		First(&user).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.NewAppError(errors.ErrCodeInvalidLogin, "Invalid credentials", nil)
	}
	if err != nil {
		return nil, errors.DB(err)
	}
	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)) != nil {
		return nil, errors.NewAppError(errors.ErrCodeInvalidLogin, "Invalid credentials", nil)
	}
	if !user.Active() {
		return nil, errors.NewAppError(errors.ErrCodeUserInactive, "Account is deactivated", nil)
	}
	return s.issue(&user)
}

// GoogleLogin signs in with a Google ID token, creating the account on first use.
func (s *AuthService) GoogleLogin(ctx context.Context, input dto.GoogleLoginInput) (*dto.AuthResponse, error) {
	if s.google == nil {
		return nil, errors.NewAppError(errors.ErrCodeUnauthorized, "Google sign-in is not configured", nil)
	}
	identity, err := s.google.Verify(ctx, input.Token)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrCodeInvalidToken, "Invalid Google token", err)
	}
	if identity.Email == "" {
		return nil, errors.NewAppError(errors.ErrCodeInvalidToken, "Google token has no email", nil)
	}

	var user models.User
	err = s.db.WithContext(ctx).
		Where("google_id = ? OR email = ?", identity.Subject, strings.ToLower(identity.Email)).
		First(&user).Error
	switch {
	case stderrors.Is(err, gorm.ErrRecordNotFound):
		if input.Role != constants.RoleMSME && input.Role != constants.RoleInstitute {
			return nil, errors.NewAppError(errors.ErrCodeInvalidRole, "Only MSME and institute accounts can register", nil)
		}
		user = models.User{
			Name:               identity.Name,
			Email:              strings.ToLower(identity.Email),
			GoogleID:           identity.Subject,
			Avatar:             identity.Picture,
			Role:               input.Role,
			Status:             constants.UserStatusActive,
			EmailNotifications: true,
		}
		if user.Name == "" {
			user.Name = user.Email
		}
		if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
			return nil, errors.DB(err)
		}
	case err != nil:
		return nil, errors.DB(err)
	default:
		if !user.Active() {
			return nil, errors.NewAppError(errors.ErrCodeUserInactive, "Account is deactivated", nil)
		}
		if user.GoogleID == "" {
			if err := s.db.WithContext(ctx).Model(&user).Update("google_id", identity.Subject).Error; err != nil {
				return nil, errors.DB(err)
			}
		}
	}
	return s.issue(&user)
}

func (s *AuthService) Profile(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, userID).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.NewAppError(errors.ErrCodeUserNotFound, "User not found", nil)
	}
	if err != nil {
		return nil, errors.DB(err)
	}
	return &user, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID uint, input dto.UpdateProfileInput) (*models.User, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	set := func(column string, v *string) {
		if v != nil {
			updates[column] = strings.TrimSpace(*v)
		}
	}
	set("name", input.Name)
	set("phone_number", input.PhoneNumber)
	set("organization", input.Organization)
	set("address", input.Address)
	set("city", input.City)
	set("state", input.State)
	set("gst_number", input.GSTNumber)
	set("avatar", input.Avatar)
	if len(updates) == 0 {
		return user, nil
	}

	if phone, ok := updates["phone_number"]; ok {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.User{}).
			Where("phone_number = ? AND id <> ?", phone, userID).
			Count(&count).Error; err != nil {
			return nil, errors.DB(err)
		}
		if count > 0 {
			return nil, errors.NewAppError(errors.ErrCodeUserExists, "Phone number is already registered", nil)
		}
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, errors.DB(err)
	}
	return s.Profile(ctx, userID)
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uint, input dto.ChangePasswordInput) error {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return err
	}
	if user.Password != "" && bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.OldPassword)) != nil {
		return errors.NewAppError(errors.ErrCodeInvalidPassword, "Current password is incorrect", nil)
	}
	hash, err := HashPassword(input.NewPassword)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(user).Update("password", hash).Error; err != nil {
		return errors.DB(err)
	}
	return nil
}

func (s *AuthService) UpdateSettings(ctx context.Context, userID uint, input dto.SettingsInput) (*models.User, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if input.EmailNotifications != nil {
		updates["email_notifications"] = *input.EmailNotifications
	}
	if input.SMSNotifications != nil {
		updates["sms_notifications"] = *input.SMSNotifications
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
			return nil, errors.DB(err)
		}
	}
	return s.Profile(ctx, userID)
}
