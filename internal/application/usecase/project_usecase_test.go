package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/albaranes-api/internal/application/dto"
	"github.com/jhoicas/albaranes-api/internal/domain"
	"github.com/jhoicas/albaranes-api/internal/domain/policy"
)

func (f *fixture) projectFor(t *testing.T, p policy.Principal, name, code string) *dto.ProjectResponse {
	t.Helper()
	ctx := context.Background()
	c, err := f.clientUC.Create(ctx, p, newClientRequest("Cliente "+name, "B100"))
	require.NoError(t, err)
	pr, err := f.projectUC.Create(ctx, p, dto.CreateProjectRequest{
		Name: name, ProjectCode: code, Email: "obra@example.com", ClientID: c.ID,
	})
	require.NoError(t, err)
	return pr
}

func TestProject_CIFDerivadoDelUsuario(t *testing.T) {
	f := newFixture()
	ana := f.addUser(t, "00000000-0000-4000-8000-00000000000a", " B100 ")

	pr := f.projectFor(t, ana, "Reforma", "P-1")
	require.NotNil(t, pr.CompanyCIF)
	assert.Equal(t, "B100", *pr.CompanyCIF)
	require.NotNil(t, pr.Client)
	assert.Equal(t, "Cliente Reforma", pr.Client.Name)
}

func TestProject_EscrituraCompartidaPorCIF(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	ana := f.addUser(t, "00000000-0000-4000-8000-00000000000a", "B100")
	bea := f.addUser(t, "00000000-0000-4000-8000-00000000000b", "B100")
	luis := f.addUser(t, "00000000-0000-4000-8000-00000000000c", "B200")

	pr := f.projectFor(t, ana, "Reforma", "P-1")

	code := "int-7"
	out, err := f.projectUC.Update(ctx, bea, pr.ID, dto.UpdateProjectRequest{Code: &code})
	require.NoError(t, err, "mismo CIF puede editar")
	assert.Equal(t, "int-7", out.Code)

	_, err = f.projectUC.Update(ctx, luis, pr.ID, dto.UpdateProjectRequest{Code: &code})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, f.projectUC.Archive(ctx, luis, pr.ID), domain.ErrNotFound)

	require.NoError(t, f.projectUC.Archive(ctx, bea, pr.ID))
	restored, err := f.projectUC.Restore(ctx, ana, pr.ID)
	require.NoError(t, err)
	assert.Nil(t, restored.DeletedAt)
}

func TestProject_NombreOCodigoUnicos(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	ana := f.addUser(t, "00000000-0000-4000-8000-00000000000a", "B100")
	bea := f.addUser(t, "00000000-0000-4000-8000-00000000000b", "B100")
	luis := f.addUser(t, "00000000-0000-4000-8000-00000000000c", "")

	first := f.projectFor(t, ana, "Reforma", "P-1")

	c, err := f.clientUC.Create(ctx, bea, newClientRequest("Otro", "B100"))
	require.NoError(t, err)
	_, err = f.projectUC.Create(ctx, bea, dto.CreateProjectRequest{
		Name: "Distinto", ProjectCode: "P-1", Email: "x@example.com", ClientID: c.ID,
	})
	assert.ErrorIs(t, err, domain.ErrConflict, "mismo código visible por CIF")

	// fuera del alcance de visibilidad no hay conflicto
	lc, err := f.clientUC.Create(ctx, luis, newClientRequest("Suyo", "Z"))
	require.NoError(t, err)
	_, err = f.projectUC.Create(ctx, luis, dto.CreateProjectRequest{
		Name: "Reforma", ProjectCode: "P-1", Email: "x@example.com", ClientID: lc.ID,
	})
	require.NoError(t, err)

	second := f.projectFor(t, ana, "Ampliación", "P-2")
	name := first.Name
	_, err = f.projectUC.Update(ctx, ana, second.ID, dto.UpdateProjectRequest{Name: &name})
	assert.ErrorIs(t, err, domain.ErrConflict)

	same := second.Name
	_, err = f.projectUC.Update(ctx, ana, second.ID, dto.UpdateProjectRequest{Name: &same})
	assert.NoError(t, err, "renombrar a su propio nombre")
}

func TestProject_ClienteDebeSerVisible(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	ana := f.addUser(t, "00000000-0000-4000-8000-00000000000a", "")
	luis := f.addUser(t, "00000000-0000-4000-8000-00000000000c", "")

	c, err := f.clientUC.Create(ctx, luis, newClientRequest("Ajeno", "Z1"))
	require.NoError(t, err)
	_, err = f.projectUC.Create(ctx, ana, dto.CreateProjectRequest{
		Name: "Reforma", ProjectCode: "P-1", Email: "x@example.com", ClientID: c.ID,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.projectUC.Create(ctx, ana, dto.CreateProjectRequest{
		Name: "Reforma", ProjectCode: "P-1", Email: "x@example.com", ClientID: "no-uuid",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestProject_ClienteEliminadoQuedaSinResumen(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	ana := f.addUser(t, "00000000-0000-4000-8000-00000000000a", "")

	pr := f.projectFor(t, ana, "Reforma", "P-1")
	list, err := f.clientUC.List(ctx, ana)
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	require.NoError(t, f.clientUC.Destroy(ctx, ana, list.Items[0].ID))

	got, err := f.projectUC.GetByID(ctx, ana, pr.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Client)
}

func TestProject_InvitadoNoCrea(t *testing.T) {
	f := newFixture()
	owner := f.addUser(t, "00000000-0000-4000-8000-00000000000a", "B1")
	guest := f.addGuest(t, "00000000-0000-4000-8000-00000000000d", owner.ID)

	_, err := f.projectUC.Create(context.Background(), guest, dto.CreateProjectRequest{
		Name: "x", ProjectCode: "y", Email: "x@example.com", ClientID: "00000000-0000-4000-8000-000000000001",
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestProject_InvitadoNoModificaNiVe404(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	owner := f.addUser(t, "00000000-0000-4000-8000-00000000000a", "B1")
	guest := f.addGuest(t, "00000000-0000-4000-8000-00000000000d", owner.ID)
	pr := f.projectFor(t, owner, "Reforma", "P-1")

	code := "int-7"
	_, err := f.projectUC.Update(ctx, guest, pr.ID, dto.UpdateProjectRequest{Code: &code})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotErrorIs(t, err, domain.ErrForbidden)
	assert.ErrorIs(t, f.projectUC.Archive(ctx, guest, pr.ID), domain.ErrNotFound)
	assert.ErrorIs(t, f.projectUC.Destroy(ctx, guest, pr.ID), domain.ErrNotFound)
}
