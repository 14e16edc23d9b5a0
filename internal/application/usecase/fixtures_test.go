package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jhoicas/albaranes-api/internal/application/access"
	"github.com/jhoicas/albaranes-api/internal/application/usecase"
	"github.com/jhoicas/albaranes-api/internal/domain/entity"
	"github.com/jhoicas/albaranes-api/internal/domain/policy"
	"github.com/jhoicas/albaranes-api/internal/infrastructure/artifact"
	"github.com/jhoicas/albaranes-api/internal/infrastructure/memory"
)

type fixture struct {
	users     *memory.UserRepo
	clients   *memory.ClientRepo
	projects  *memory.ProjectRepo
	artifacts *artifact.MemoryStore
	clientUC  *usecase.ClientUseCase
	projectUC *usecase.ProjectUseCase
	userUC    *usecase.UserUseCase
}

func newFixture() *fixture {
	f := &fixture{
		users:     memory.NewUserRepository(),
		clients:   memory.NewClientRepository(),
		projects:  memory.NewProjectRepository(),
		artifacts: artifact.NewMemoryStore("memory://artifacts"),
	}
	resolver := access.NewResolver(f.users)
	f.clientUC = usecase.NewClientUseCase(f.clients, f.users, resolver)
	f.projectUC = usecase.NewProjectUseCase(f.projects, f.clients, f.users, resolver)
	f.userUC = usecase.NewUserUseCase(f.users, f.artifacts)
	return f
}

// addUser crea un usuario con el CIF dado y devuelve su principal.
func (f *fixture) addUser(t *testing.T, id, cif string) policy.Principal {
	t.Helper()
	require.NoError(t, f.users.Create(context.Background(), &entity.User{
		ID: id, Email: id + "@example.com", Role: entity.RoleUser,
		Company: entity.Company{CIF: cif}, CreatedAt: time.Now().UTC(),
	}))
	return policy.Principal{ID: id, Role: entity.RoleUser}
}

func (f *fixture) addGuest(t *testing.T, id, owner string) policy.Principal {
	t.Helper()
	require.NoError(t, f.users.Create(context.Background(), &entity.User{
		ID: id, Email: id + "@example.com", Role: entity.RoleGuest,
		CompanyOwner: owner, CreatedAt: time.Now().UTC(),
	}))
	return policy.Principal{ID: id, Role: entity.RoleGuest, InvitedBy: owner}
}
