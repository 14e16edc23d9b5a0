package auth_test

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/albaranes-api/internal/application/auth"
	"github.com/jhoicas/albaranes-api/internal/application/dto"
	"github.com/jhoicas/albaranes-api/internal/application/ports"
	"github.com/jhoicas/albaranes-api/internal/domain"
	"github.com/jhoicas/albaranes-api/internal/domain/entity"
	"github.com/jhoicas/albaranes-api/internal/domain/policy"
	"github.com/jhoicas/albaranes-api/internal/infrastructure/memory"
	pkgjwt "github.com/jhoicas/albaranes-api/pkg/jwt"
)

const secret = "auth-test-secret"

type fakeMailer struct {
	mu   sync.Mutex
	sent []ports.Mail
	err  error
}

func (m *fakeMailer) Send(_ context.Context, mail ports.Mail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, mail)
	return m.err
}

var codeRe = regexp.MustCompile(`\d{6}`)

func (m *fakeMailer) lastCode(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent)
	code := codeRe.FindString(m.sent[len(m.sent)-1].Text)
	require.NotEmpty(t, code)
	return code
}

func newAuth(mailer ports.Mailer) (*auth.AuthUseCase, *memory.UserRepo) {
	users := memory.NewUserRepository()
	uc := auth.NewAuthUseCase(users, mailer, auth.JWTConfig{
		Secret: secret, ExpMinutes: 60, RecoveryExpMinutes: 15, Issuer: "albaranes-test",
	}, 3, nil)
	return uc, users
}

func principalOf(t *testing.T, token string) policy.Principal {
	t.Helper()
	id, err := pkgjwt.Parse(secret, token)
	require.NoError(t, err)
	return policy.Principal{ID: id.UserID, Role: id.Role}
}

func TestRegister_CreaPendienteYEnviaCodigo(t *testing.T) {
	ctx := context.Background()
	mailer := &fakeMailer{}
	uc, users := newAuth(mailer)

	out, err := uc.Register(ctx, dto.RegisterRequest{Email: " Ana@Example.com", Password: "secreto123", Autonomo: true})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", out.User.Email)
	assert.Equal(t, entity.StatusUnverified, out.User.Status)
	assert.True(t, out.User.IsAutonomo)

	stored, err := users.GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, mailer.lastCode(t), stored.VerificationCode)
	assert.Equal(t, 3, stored.Attempts)
	assert.NotEqual(t, "secreto123", stored.PasswordHash)

	_, err = uc.Register(ctx, dto.RegisterRequest{Email: "ana@example.com", Password: "otra12345"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestRegister_FalloDeCorreoNoInvalida(t *testing.T) {
	uc, _ := newAuth(&fakeMailer{err: errors.New("smtp caído")})
	_, err := uc.Register(context.Background(), dto.RegisterRequest{Email: "ana@example.com", Password: "secreto123"})
	assert.NoError(t, err)
}

func TestVerifyEmail_AgotaIntentos(t *testing.T) {
	ctx := context.Background()
	mailer := &fakeMailer{}
	uc, users := newAuth(mailer)
	out, err := uc.Register(ctx, dto.RegisterRequest{Email: "ana@example.com", Password: "secreto123"})
	require.NoError(t, err)
	p := principalOf(t, out.Token)

	wrong := "000000"
	if mailer.lastCode(t) == wrong {
		wrong = "111111"
	}

	var verr *domain.VerificationError
	err = uc.VerifyEmail(ctx, p, wrong)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 2, verr.Remaining)
	assert.Equal(t, "Código inválido. Quedan 2 intentos", err.Error())

	err = uc.VerifyEmail(ctx, p, wrong)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 1, verr.Remaining)

	assert.ErrorIs(t, uc.VerifyEmail(ctx, p, wrong), domain.ErrMaxAttempts)
	assert.ErrorIs(t, uc.VerifyEmail(ctx, p, wrong), domain.ErrMaxAttempts, "los intentos no bajan de cero")

	stored, err := users.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Attempts)
}

func TestVerifyEmail_CodigoCorrectoSinIntentos(t *testing.T) {
	ctx := context.Background()
	mailer := &fakeMailer{}
	uc, users := newAuth(mailer)
	out, err := uc.Register(ctx, dto.RegisterRequest{Email: "ana@example.com", Password: "secreto123"})
	require.NoError(t, err)
	p := principalOf(t, out.Token)

	wrong := "000000"
	if mailer.lastCode(t) == wrong {
		wrong = "111111"
	}
	for i := 0; i < 3; i++ {
		_ = uc.VerifyEmail(ctx, p, wrong)
	}

	require.NoError(t, uc.VerifyEmail(ctx, p, mailer.lastCode(t)))
	stored, err := users.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusVerified, stored.Status)
}

func TestVerifyEmail_CodigoCorrecto(t *testing.T) {
	ctx := context.Background()
	mailer := &fakeMailer{}
	uc, users := newAuth(mailer)
	out, err := uc.Register(ctx, dto.RegisterRequest{Email: "ana@example.com", Password: "secreto123"})
	require.NoError(t, err)
	p := principalOf(t, out.Token)

	require.NoError(t, uc.VerifyEmail(ctx, p, mailer.lastCode(t)))
	stored, err := users.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusVerified, stored.Status)
	assert.Empty(t, stored.VerificationCode)

	assert.ErrorIs(t, uc.VerifyEmail(ctx, p, "123456"), domain.ErrConflict)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	uc, _ := newAuth(&fakeMailer{})
	reg, err := uc.Register(ctx, dto.RegisterRequest{Email: "ana@example.com", Password: "secreto123"})
	require.NoError(t, err)

	out, err := uc.Login(ctx, dto.LoginRequest{Email: "ANA@example.com", Password: "secreto123"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, principalOf(t, out.Token).ID)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "ana@example.com", Password: "incorrecta"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = uc.Login(ctx, dto.LoginRequest{Email: "nadie@example.com", Password: "secreto123"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestRecuperacionDeContraseña(t *testing.T) {
	ctx := context.Background()
	mailer := &fakeMailer{}
	uc, _ := newAuth(mailer)
	_, err := uc.Register(ctx, dto.RegisterRequest{Email: "ana@example.com", Password: "secreto123"})
	require.NoError(t, err)

	_, err = uc.RequestPasswordRecovery(ctx, dto.RecoveryRequest{Email: "nadie@example.com"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	rec, err := uc.RequestPasswordRecovery(ctx, dto.RecoveryRequest{Email: "ana@example.com"})
	require.NoError(t, err)
	id, err := pkgjwt.Parse(secret, rec.RecoveryToken)
	require.NoError(t, err)
	assert.True(t, id.Recover)
	p := policy.Principal{ID: id.UserID, Role: id.Role}
	code := mailer.lastCode(t)

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	err = uc.ResetPassword(ctx, p, dto.ResetPasswordRequest{Code: wrong, NewPassword: "nueva12345"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	require.NoError(t, uc.ResetPassword(ctx, p, dto.ResetPasswordRequest{Code: code, NewPassword: "nueva12345"}))
	_, err = uc.Login(ctx, dto.LoginRequest{Email: "ana@example.com", Password: "nueva12345"})
	assert.NoError(t, err)

	err = uc.ResetPassword(ctx, p, dto.ResetPasswordRequest{Code: code, NewPassword: "otra123456"})
	assert.ErrorIs(t, err, domain.ErrInvalidCode, "el código se invalida tras usarse")
}

func TestCodigos(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := auth.NewVerificationCode()
		require.NoError(t, err)
		assert.Regexp(t, `^[1-9]\d{5}$`, code)

		pw, err := auth.NewTempPassword()
		require.NoError(t, err)
		assert.Regexp(t, `^[a-z0-9]{8}$`, pw)
	}
}
