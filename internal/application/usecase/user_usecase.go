package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/albaranes-api/internal/application/auth"
	"github.com/jhoicas/albaranes-api/internal/application/dto"
	"github.com/jhoicas/albaranes-api/internal/application/ports"
	"github.com/jhoicas/albaranes-api/internal/application/validation"
	"github.com/jhoicas/albaranes-api/internal/domain"
	"github.com/jhoicas/albaranes-api/internal/domain/entity"
	"github.com/jhoicas/albaranes-api/internal/domain/policy"
	"github.com/jhoicas/albaranes-api/internal/domain/repository"
)

// UserUseCase perfil, onboarding, logo, invitaciones y baja del usuario autenticado.
type UserUseCase struct {
	repo      repository.UserRepository
	artifacts ports.ArtifactStore
}

// NewUserUseCase construye el caso de uso.
func NewUserUseCase(repo repository.UserRepository, artifacts ports.ArtifactStore) *UserUseCase {
	return &UserUseCase{repo: repo, artifacts: artifacts}
}

// GetProfile devuelve el usuario. Los invitados ven la empresa de quien los
// invitó (siguiendo companyOwner hasta un usuario no invitado).
func (uc *UserUseCase) GetProfile(ctx context.Context, principal policy.Principal) (*dto.UserResponse, error) {
	user, err := uc.load(ctx, principal.ID)
	if err != nil {
		return nil, err
	}
	company, err := uc.effectiveCompany(ctx, user)
	if err != nil {
		return nil, err
	}
	out := dto.ToUserResponse(user, company)
	return &out, nil
}

func (uc *UserUseCase) effectiveCompany(ctx context.Context, user *entity.User) (entity.Company, error) {
	seen := map[string]bool{user.ID: true}
	current := user
	for current.IsGuest() && current.CompanyOwner != "" && !seen[current.CompanyOwner] {
		seen[current.CompanyOwner] = true
		owner, err := uc.repo.GetByID(ctx, current.CompanyOwner)
		if err != nil {
			return entity.Company{}, fmt.Errorf("obtener invitador: %w", err)
		}
		if owner == nil {
			break
		}
		current = owner
	}
	return current.Company, nil
}

// UpdatePersonalData nombre, apellidos, NIF y dirección (si viene).
func (uc *UserUseCase) UpdatePersonalData(ctx context.Context, principal policy.Principal, in dto.PersonalDataRequest) (*dto.UserResponse, error) {
	user, err := uc.load(ctx, principal.ID)
	if err != nil {
		return nil, err
	}
	user.Name = in.Name
	user.Surnames = in.Surnames
	user.NIF = in.NIF
	if in.Address != nil {
		user.Address = in.Address.ToEntity()
	}
	user.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("actualizar datos personales: %w", err)
	}
	out := dto.ToUserResponse(user, user.Company)
	return &out, nil
}

// UpdateCompanyData autónomo: la empresa se clona de los datos personales;
// resto: todos los campos son obligatorios. Los invitados no pueden modificarla.
func (uc *UserUseCase) UpdateCompanyData(ctx context.Context, principal policy.Principal, in dto.CompanyDataRequest) (*dto.CompanyResponse, error) {
	user, err := uc.load(ctx, principal.ID)
	if err != nil {
		return nil, err
	}
	if user.IsGuest() {
		return nil, domain.ErrGuestReadOnly
	}
	if user.IsAutonomo {
		user.Company = entity.Company{
			Name:     strings.TrimSpace(strings.Join([]string{user.Name, user.Surnames}, " ")),
			CIF:      user.NIF,
			Street:   user.Address.Street,
			Number:   user.Address.Number,
			Postal:   user.Address.Postal,
			City:     user.Address.City,
			Province: user.Address.Province,
		}
	} else {
		if err := validation.Struct(in.Rules()); err != nil {
			return nil, err
		}
		user.Company = entity.Company{
			Name:     in.Name,
			CIF:      in.CIF,
			Street:   in.Street,
			Number:   in.Number,
			Postal:   in.Postal,
			City:     in.City,
			Province: in.Province,
		}
	}
	user.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("actualizar empresa: %w", err)
	}
	return &dto.CompanyResponse{Message: "Datos de la compañía actualizados correctamente", Company: user.Company}, nil
}

// UpdateLogo sube la imagen al almacén de artefactos y guarda la URL.
func (uc *UserUseCase) UpdateLogo(ctx context.Context, principal policy.Principal, filename string, image []byte) (*dto.LogoResponse, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: no se ha proporcionado ninguna imagen", domain.ErrInvalidInput)
	}
	user, err := uc.load(ctx, principal.ID)
	if err != nil {
		return nil, err
	}
	name := "logo-" + user.ID + strings.ToLower(filepath.Ext(filename))
	hash, err := uc.artifacts.Upload(ctx, image, name)
	if err != nil {
		return nil, fmt.Errorf("subir logo: %w", err)
	}
	user.Logo = uc.artifacts.URL(hash)
	user.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("guardar logo: %w", err)
	}
	return &dto.LogoResponse{Message: "Logo actualizado correctamente", Logo: user.Logo}, nil
}

// InviteGuest crea un usuario invitado ligado al invitador. La contraseña
// temporal solo se devuelve en esta respuesta.
func (uc *UserUseCase) InviteGuest(ctx context.Context, principal policy.Principal, in dto.InviteRequest) (*dto.InviteResponse, error) {
	inviter, err := uc.load(ctx, principal.ID)
	if err != nil {
		return nil, err
	}
	if inviter.IsGuest() {
		return nil, domain.ErrGuestReadOnly
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	existing, err := uc.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("buscar usuario: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	temp, err := auth.NewTempPassword()
	if err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(temp)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	guest := &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		Status:       entity.StatusUnverified,
		Role:         entity.RoleGuest,
		CompanyOwner: inviter.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, guest); err != nil {
		return nil, err
	}
	return &dto.InviteResponse{
		Message:      "Usuario invitado correctamente",
		User:         dto.ToUserResponse(guest, inviter.Company),
		TempPassword: temp,
	}, nil
}

// Delete baja del usuario: lógica por defecto, física con soft=false.
func (uc *UserUseCase) Delete(ctx context.Context, principal policy.Principal, soft bool) error {
	user, err := uc.load(ctx, principal.ID)
	if err != nil {
		return err
	}
	if soft {
		if err := uc.repo.SoftDelete(ctx, user.ID, time.Now().UTC()); err != nil {
			return fmt.Errorf("baja lógica de usuario: %w", err)
		}
		return nil
	}
	if err := uc.repo.Delete(ctx, user.ID); err != nil {
		return fmt.Errorf("baja física de usuario: %w", err)
	}
	return nil
}

func (uc *UserUseCase) load(ctx context.Context, id string) (*entity.User, error) {
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener usuario: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}
