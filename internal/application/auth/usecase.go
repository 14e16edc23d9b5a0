package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/albaranes-api/internal/application/dto"
	"github.com/jhoicas/albaranes-api/internal/application/ports"
	"github.com/jhoicas/albaranes-api/internal/domain"
	"github.com/jhoicas/albaranes-api/internal/domain/entity"
	"github.com/jhoicas/albaranes-api/internal/domain/policy"
	"github.com/jhoicas/albaranes-api/internal/domain/repository"
	"github.com/jhoicas/albaranes-api/pkg/jwt"
	"github.com/jhoicas/albaranes-api/pkg/logger"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret             string
	ExpMinutes         int
	RecoveryExpMinutes int
	Issuer             string
}

// AuthUseCase casos de uso de autenticación: registro, verificación de email,
// login y recuperación de contraseña.
type AuthUseCase struct {
	userRepo    repository.UserRepository
	mailer      ports.Mailer
	jwtCfg      JWTConfig
	maxAttempts int
	log         *logger.Logger
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, mailer ports.Mailer, jwtCfg JWTConfig, maxAttempts int, log *logger.Logger) *AuthUseCase {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if log == nil {
		log = logger.Nop()
	}
	return &AuthUseCase{userRepo: userRepo, mailer: mailer, jwtCfg: jwtCfg, maxAttempts: maxAttempts, log: log.Named("auth")}
}

// HashPassword bcrypt con coste por defecto.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Register crea un usuario pendiente de verificación, envía el código y abre sesión.
func (uc *AuthUseCase) Register(ctx context.Context, in dto.RegisterRequest) (*dto.AuthResponse, error) {
	email := normalizeEmail(in.Email)
	existing, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("buscar usuario: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	code, err := NewVerificationCode()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	user := &entity.User{
		ID:               uuid.New().String(),
		Email:            email,
		PasswordHash:     hash,
		Status:           entity.StatusUnverified,
		Role:             entity.RoleUser,
		IsAutonomo:       in.Autonomo,
		VerificationCode: code,
		Attempts:         uc.maxAttempts,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	uc.notify(ctx, ports.Mail{
		To:      email,
		Subject: "Código de verificación",
		Text:    "Tu código de verificación es: " + code,
		HTML:    "<p>Tu código de verificación es: <b>" + code + "</b></p>",
	})
	return uc.session(user)
}

// VerifyEmail compara el código. El código correcto verifica aunque no queden
// intentos; cada fallo consume uno (mínimo 0) y al agotarse devuelve
// ErrMaxAttempts, antes *domain.VerificationError.
func (uc *AuthUseCase) VerifyEmail(ctx context.Context, principal policy.Principal, code string) error {
	user, err := uc.userRepo.GetByID(ctx, principal.ID)
	if err != nil {
		return fmt.Errorf("obtener usuario: %w", err)
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	if user.Status == entity.StatusVerified {
		return fmt.Errorf("el email ya está verificado: %w", domain.ErrConflict)
	}
	user.UpdatedAt = time.Now().UTC()
	if user.VerificationCode != "" && user.VerificationCode == code {
		user.Status = entity.StatusVerified
		user.VerificationCode = ""
		if err := uc.userRepo.Update(ctx, user); err != nil {
			return fmt.Errorf("guardar verificación: %w", err)
		}
		return nil
	}
	user.Attempts = max(user.Attempts-1, 0)
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("guardar intentos: %w", err)
	}
	if user.Attempts == 0 {
		return domain.ErrMaxAttempts
	}
	return &domain.VerificationError{Remaining: user.Attempts}
}

// Login verifica email/password, genera JWT y retorna token + usuario.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := uc.userRepo.GetByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		return nil, fmt.Errorf("buscar usuario: %w", err)
	}
	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return uc.session(user)
}

// RequestPasswordRecovery guarda un código de recuperación y devuelve un token recover=true.
func (uc *AuthUseCase) RequestPasswordRecovery(ctx context.Context, in dto.RecoveryRequest) (*dto.RecoveryResponse, error) {
	user, err := uc.userRepo.GetByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		return nil, fmt.Errorf("buscar usuario: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	code, err := NewVerificationCode()
	if err != nil {
		return nil, err
	}
	user.PasswordRecoveryCode = code
	user.UpdatedAt = time.Now().UTC()
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("guardar código de recuperación: %w", err)
	}
	token, err := jwt.GenerateRecovery(uc.jwtCfg.Secret, uc.jwtCfg.Issuer, identity(user), uc.jwtCfg.RecoveryExpMinutes)
	if err != nil {
		return nil, err
	}
	uc.notify(ctx, ports.Mail{
		To:      user.Email,
		Subject: "Recuperación de contraseña",
		Text:    "Tu código de recuperación es: " + code,
		HTML:    "<p>Tu código de recuperación es: <b>" + code + "</b></p>",
	})
	return &dto.RecoveryResponse{Message: "Código de recuperación enviado", RecoveryToken: token}, nil
}

// ResetPassword cambia la contraseña si el código coincide y lo invalida.
func (uc *AuthUseCase) ResetPassword(ctx context.Context, principal policy.Principal, in dto.ResetPasswordRequest) error {
	user, err := uc.userRepo.GetByID(ctx, principal.ID)
	if err != nil {
		return fmt.Errorf("obtener usuario: %w", err)
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	if user.PasswordRecoveryCode == "" || user.PasswordRecoveryCode != in.Code {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, domain.ErrInvalidCode)
	}
	hash, err := HashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.PasswordRecoveryCode = ""
	user.UpdatedAt = time.Now().UTC()
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("guardar contraseña: %w", err)
	}
	return nil
}

func (uc *AuthUseCase) session(user *entity.User) (*dto.AuthResponse, error) {
	token, err := jwt.Generate(uc.jwtCfg.Secret, uc.jwtCfg.Issuer, identity(user), uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{Token: token, User: dto.ToUserResponse(user, user.Company)}, nil
}

// notify el fallo del correo no invalida la operación; queda en el log.
func (uc *AuthUseCase) notify(ctx context.Context, m ports.Mail) {
	if uc.mailer == nil {
		return
	}
	if err := uc.mailer.Send(ctx, m); err != nil {
		uc.log.Warn().Err(err).Str("to", m.To).Str("subject", m.Subject).Msg("no se pudo enviar el correo")
	}
}

func identity(u *entity.User) jwt.Identity {
	return jwt.Identity{UserID: u.ID, Role: u.Role, InvitedBy: u.CompanyOwner}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
