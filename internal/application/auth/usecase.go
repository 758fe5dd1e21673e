package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/stock-api/internal/application/dto"
	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/domain/repository"
	"github.com/jhoicas/stock-api/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

// maxPasswordBytes límite de bcrypt; más allá GenerateFromPassword devuelve ErrPasswordTooLong.
const maxPasswordBytes = 72

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret         string
	AccessMinutes  int
	RefreshMinutes int
	Issuer         string
}

// AuthUseCase casos de uso de autenticación: registro, login, tokens y perfil.
type AuthUseCase struct {
	userRepo repository.UserRepository
	jwtCfg   JWTConfig
	cost     int
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, jwtCfg: jwtCfg, cost: bcrypt.DefaultCost}
}

// WithBcryptCost cambia el costo de bcrypt (tests usan bcrypt.MinCost).
func (uc *AuthUseCase) WithBcryptCost(cost int) *AuthUseCase {
	uc.cost = cost
	return uc
}

// Register crea un usuario: hashea password con bcrypt y persiste.
// Email o username repetidos devuelven un error de validación por campo; no se crea nada.
func (uc *AuthUseCase) Register(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	email := normalizeEmail(in.Email)
	username := strings.TrimSpace(in.Username)

	verr := &domain.ValidationError{Kind: domain.ErrInvalidInput}
	if email == "" {
		verr.Add("email", "el email es obligatorio")
	}
	if username == "" {
		verr.Add("username", "el username es obligatorio")
	}
	if in.Password == "" {
		verr.Add("password", "la contraseña es obligatoria")
	} else if len(in.Password) > maxPasswordBytes {
		verr.Add("password", "la contraseña no puede superar 72 bytes")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	if err := uc.ensureUnique(ctx, email, username, ""); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), uc.cost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		Username:     username,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: string(hash),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// Login verifica email/password y emite access + refresh.
// Email inexistente, contraseña errónea o usuario inactivo dan el mismo ErrInvalidCredentials.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	access, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, jwt.TypeAccess, user.IsStaff, uc.jwtCfg.Issuer, uc.jwtCfg.AccessMinutes)
	if err != nil {
		return nil, err
	}
	refresh, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, jwt.TypeRefresh, user.IsStaff, uc.jwtCfg.Issuer, uc.jwtCfg.RefreshMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Access:  access,
		Refresh: refresh,
		User:    *toUserResponse(user),
	}, nil
}

// Refresh canjea un refresh token por un access token nuevo. El usuario debe seguir activo.
func (uc *AuthUseCase) Refresh(ctx context.Context, in dto.RefreshRequest) (*dto.RefreshResponse, error) {
	claims, err := jwt.ParseType(uc.jwtCfg.Secret, in.Refresh, jwt.TypeRefresh)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	user, err := uc.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, domain.ErrUnauthorized
	}
	access, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, jwt.TypeAccess, user.IsStaff, uc.jwtCfg.Issuer, uc.jwtCfg.AccessMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.RefreshResponse{Access: access}, nil
}

// Verify valida firma y expiración de un token de cualquier tipo.
func (uc *AuthUseCase) Verify(in dto.VerifyRequest) error {
	if _, err := jwt.Parse(uc.jwtCfg.Secret, in.Token); err != nil {
		return domain.ErrUnauthorized
	}
	return nil
}

// Profile devuelve el usuario autenticado.
func (uc *AuthUseCase) Profile(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := uc.currentUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// UpdateProfile actualización parcial: los campos omitidos conservan su valor.
func (uc *AuthUseCase) UpdateProfile(ctx context.Context, userID string, in dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := uc.currentUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	email, username := "", ""
	if in.Email != nil {
		email = normalizeEmail(*in.Email)
		if email == "" {
			return nil, domain.NewValidationError("email", "el email es obligatorio")
		}
	}
	if in.Username != nil {
		username = strings.TrimSpace(*in.Username)
		if username == "" {
			return nil, domain.NewValidationError("username", "el username es obligatorio")
		}
	}
	if err := uc.ensureUnique(ctx, email, username, user.ID); err != nil {
		return nil, err
	}
	if email != "" {
		user.Email = email
	}
	if username != "" {
		user.Username = username
	}
	if in.FirstName != nil {
		user.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		user.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Phone != nil {
		user.Phone = strings.TrimSpace(*in.Phone)
	}
	user.UpdatedAt = time.Now()
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// ChangePassword exige la contraseña actual; si no coincide es un error de validación en old_password.
func (uc *AuthUseCase) ChangePassword(ctx context.Context, userID string, in dto.ChangePasswordRequest) error {
	user, err := uc.currentUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.OldPassword)); err != nil {
		return domain.NewValidationError("old_password", "la contraseña actual no es correcta")
	}
	if in.NewPassword == "" {
		return domain.NewValidationError("new_password", "la contraseña es obligatoria")
	}
	if len(in.NewPassword) > maxPasswordBytes {
		return domain.NewValidationError("new_password", "la contraseña no puede superar 72 bytes")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), uc.cost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	user.UpdatedAt = time.Now()
	return uc.userRepo.Update(ctx, user)
}

func (uc *AuthUseCase) currentUser(ctx context.Context, userID string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, domain.ErrUnauthorized
	}
	return user, nil
}

// ensureUnique verifica email y username (vacío = no se comprueba) excluyendo al propio usuario.
func (uc *AuthUseCase) ensureUnique(ctx context.Context, email, username, selfID string) error {
	verr := &domain.ValidationError{Kind: domain.ErrDuplicate}
	if email != "" {
		existing, err := uc.userRepo.GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		if existing != nil && existing.ID != selfID {
			verr.Add("email", "ya existe un usuario con este email")
		}
	}
	if username != "" {
		existing, err := uc.userRepo.GetByUsername(ctx, username)
		if err != nil {
			return err
		}
		if existing != nil && existing.ID != selfID {
			verr.Add("username", "ya existe un usuario con este username")
		}
	}
	return verr.OrNil()
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
		IsStaff:   u.IsStaff,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
