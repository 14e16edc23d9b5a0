package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/albaranes-api/internal/application/auth"
	"github.com/jhoicas/albaranes-api/internal/application/dto"
	"github.com/jhoicas/albaranes-api/internal/application/usecase"
)

// UserHandler cuenta de usuario: registro, sesión, perfil, invitaciones y recuperación.
type UserHandler struct {
	auth      *auth.AuthUseCase
	users     *usecase.UserUseCase
	maxUpload int64
}

// NewUserHandler construye el handler de usuarios.
func NewUserHandler(authUC *auth.AuthUseCase, users *usecase.UserUseCase, maxUpload int64) *UserHandler {
	return &UserHandler{auth: authUC, users: users, maxUpload: maxUpload}
}

// Register godoc
// @Summary      Registrar usuario
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterRequest  true  "email, password, autonomo"
// @Success      201   {object}  dto.AuthResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/users/register [post]
func (h *UserHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterRequest
	if err := bind(c, &in); err != nil {
		return err
	}
	out, err := h.auth.Register(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// VerifyEmail godoc
// @Summary      Validar email con el código de 6 dígitos
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.VerifyEmailRequest  true  "code"
// @Success      200   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/users/validation [put]
func (h *UserHandler) VerifyEmail(c *fiber.Ctx) error {
	var in dto.VerifyEmailRequest
	if err := bind(c, &in); err != nil {
		return err
	}
	if err := h.auth.VerifyEmail(c.UserContext(), GetPrincipal(c), in.Code); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "email verificado"})
}

// Login godoc
// @Summary      Iniciar sesión
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "email, password"
// @Success      200   {object}  dto.AuthResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/users/login [post]
func (h *UserHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := bind(c, &in); err != nil {
		return err
	}
	out, err := h.auth.Login(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Me godoc
// @Summary      Perfil del usuario autenticado
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.UserResponse
// @Router       /api/users/me [get]
func (h *UserHandler) Me(c *fiber.Ctx) error {
	out, err := h.users.GetProfile(c.UserContext(), GetPrincipal(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// UpdatePersonalData godoc
// @Summary      Onboarding: datos personales
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PersonalDataRequest  true  "name, surnames, nif, address"
// @Success      200   {object}  dto.UserResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/users/onboarding/personal [put]
func (h *UserHandler) UpdatePersonalData(c *fiber.Ctx) error {
	var in dto.PersonalDataRequest
	if err := bind(c, &in); err != nil {
		return err
	}
	out, err := h.users.UpdatePersonalData(c.UserContext(), GetPrincipal(c), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// UpdateCompanyData godoc
// @Summary      Onboarding: datos de la empresa
// @Description  Los autónomos copian sus datos personales; el resto debe enviar todos los campos.
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CompanyDataRequest  true  "datos de la empresa"
// @Success      200   {object}  dto.CompanyResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/users/onboarding/company [patch]
func (h *UserHandler) UpdateCompanyData(c *fiber.Ctx) error {
	var in dto.CompanyDataRequest
	if err := bind(c, &in); err != nil {
		return err
	}
	out, err := h.users.UpdateCompanyData(c.UserContext(), GetPrincipal(c), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// UpdateLogo godoc
// @Summary      Subir logo
// @Tags         users
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        image  formData  file  true  "imagen del logo"
// @Success      200    {object}  dto.LogoResponse
// @Failure      400    {object}  dto.ErrorResponse
// @Failure      413    {object}  dto.ErrorResponse
// @Router       /api/users/logo [patch]
func (h *UserHandler) UpdateLogo(c *fiber.Ctx) error {
	name, data, err := formImage(c, h.maxUpload)
	if err != nil {
		return err
	}
	out, err := h.users.UpdateLogo(c.UserContext(), GetPrincipal(c), name, data)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar la cuenta
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Param        soft  query  bool  false  "borrado lógico"  default(true)
// @Success      200   {object}  dto.MessageResponse
// @Router       /api/users [delete]
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	soft := c.QueryBool("soft", true)
	if err := h.users.Delete(c.UserContext(), GetPrincipal(c), soft); err != nil {
		return err
	}
	msg := "usuario eliminado"
	if soft {
		msg = "usuario desactivado"
	}
	return c.JSON(dto.MessageResponse{Message: msg})
}

// Invite godoc
// @Summary      Invitar a un compañero (usuario guest)
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.InviteRequest  true  "email"
// @Success      201   {object}  dto.InviteResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/users/invite [post]
func (h *UserHandler) Invite(c *fiber.Ctx) error {
	var in dto.InviteRequest
	if err := bind(c, &in); err != nil {
		return err
	}
	out, err := h.users.InviteGuest(c.UserContext(), GetPrincipal(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// RequestRecovery godoc
// @Summary      Solicitar recuperación de contraseña
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecoveryRequest  true  "email"
// @Success      200   {object}  dto.RecoveryResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/users/recover/request [post]
func (h *UserHandler) RequestRecovery(c *fiber.Ctx) error {
	var in dto.RecoveryRequest
	if err := bind(c, &in); err != nil {
		return err
	}
	out, err := h.auth.RequestPasswordRecovery(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// ResetPassword godoc
// @Summary      Restablecer contraseña con el código recibido
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ResetPasswordRequest  true  "code, new_password"
// @Success      200   {object}  dto.MessageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/users/recover/reset [put]
func (h *UserHandler) ResetPassword(c *fiber.Ctx) error {
	var in dto.ResetPasswordRequest
	if err := bind(c, &in); err != nil {
		return err
	}
	if err := h.auth.ResetPassword(c.UserContext(), GetPrincipal(c), in); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "contraseña actualizada"})
}
