package deliverynote_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/albaranes-api/internal/application/access"
	"github.com/jhoicas/albaranes-api/internal/application/deliverynote"
	"github.com/jhoicas/albaranes-api/internal/application/dto"
	"github.com/jhoicas/albaranes-api/internal/application/ports"
	"github.com/jhoicas/albaranes-api/internal/domain"
	"github.com/jhoicas/albaranes-api/internal/domain/entity"
	"github.com/jhoicas/albaranes-api/internal/domain/policy"
	"github.com/jhoicas/albaranes-api/internal/infrastructure/artifact"
	"github.com/jhoicas/albaranes-api/internal/infrastructure/memory"
)

const (
	ownerID   = "00000000-0000-4000-8000-00000000000a"
	colleague = "00000000-0000-4000-8000-00000000000b"
	guestID   = "00000000-0000-4000-8000-00000000000d"
	otherID   = "00000000-0000-4000-8000-00000000000e"
)

// fakeGenerator registra los documentos recibidos.
type fakeGenerator struct {
	mu   sync.Mutex
	docs []ports.DeliveryNoteDocument
}

func (g *fakeGenerator) GenerateDeliveryNotePDF(_ context.Context, doc ports.DeliveryNoteDocument) ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.docs = append(g.docs, doc)
	return []byte("%PDF-fake " + doc.Note.ID + " " + doc.Note.Signature), nil
}

func (g *fakeGenerator) last() ports.DeliveryNoteDocument {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.docs[len(g.docs)-1]
}

// flakyNotes falla los primeros Update.
type flakyNotes struct {
	*memory.DeliveryNoteRepo
	failures int32
	calls    atomic.Int32
}

func (r *flakyNotes) Update(ctx context.Context, note *entity.DeliveryNote) error {
	if r.calls.Add(1) <= r.failures {
		return errors.New("conexión perdida")
	}
	return r.DeliveryNoteRepo.Update(ctx, note)
}

type env struct {
	uc        *deliverynote.UseCase
	notes     *flakyNotes
	gen       *fakeGenerator
	artifacts *artifact.MemoryStore
	projectID string
}

func principal(id, role string) policy.Principal {
	p := policy.Principal{ID: id, Role: role}
	if role == entity.RoleGuest {
		p.InvitedBy = ownerID
	}
	return p
}

func newEnv(t *testing.T, updateFailures int32) *env {
	t.Helper()
	ctx := context.Background()
	users := memory.NewUserRepository()
	clients := memory.NewClientRepository()
	projects := memory.NewProjectRepository()
	notes := &flakyNotes{DeliveryNoteRepo: memory.NewDeliveryNoteRepository(), failures: updateFailures}

	now := time.Now().UTC()
	for _, u := range []*entity.User{
		{ID: ownerID, Email: "ana@example.com", Name: "Ana", Role: entity.RoleUser, Company: entity.Company{CIF: "B100"}, CreatedAt: now},
		{ID: colleague, Email: "bea@example.com", Role: entity.RoleUser, Company: entity.Company{CIF: "B100"}, CreatedAt: now},
		{ID: guestID, Email: "guest@example.com", Role: entity.RoleGuest, CompanyOwner: ownerID, CreatedAt: now},
		{ID: otherID, Email: "luis@example.com", Role: entity.RoleUser, CreatedAt: now},
	} {
		require.NoError(t, users.Create(ctx, u))
	}
	client := &entity.Client{ID: "00000000-0000-4000-8000-0000000000c1", Name: "Sol", CIF: "B100", CreatedBy: ownerID, CreatedAt: now}
	require.NoError(t, clients.Create(ctx, client))
	project := &entity.Project{
		ID: "00000000-0000-4000-8000-0000000000f1", Name: "Reforma", ProjectCode: "P-1",
		ClientID: client.ID, CreatedBy: ownerID, CompanyCIF: "B100", CreatedAt: now,
	}
	require.NoError(t, projects.Create(ctx, project))

	gen := &fakeGenerator{}
	store := artifact.NewMemoryStore("memory://artifacts")
	uc := deliverynote.NewUseCase(deliverynote.Deps{
		Notes: notes, Projects: projects, Clients: clients, Users: users,
		Resolver: access.NewResolver(users), Generator: gen, Artifacts: store,
	})
	return &env{uc: uc, notes: notes, gen: gen, artifacts: store, projectID: project.ID}
}

func (e *env) create(t *testing.T, as policy.Principal) *dto.DeliveryNoteResponse {
	t.Helper()
	out, err := e.uc.Create(context.Background(), as, dto.CreateDeliveryNoteRequest{
		ProjectID:   e.projectID,
		Description: "Instalación",
		WorkEntries: []dto.WorkEntryRequest{{Person: "Ana", Hours: decimal.RequireFromString("7.5")}},
	})
	require.NoError(t, err)
	return out
}

func pngSignature(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 40, 20))))
	return buf.Bytes()
}

func TestCreate_ExpandeProyectoYCliente(t *testing.T) {
	e := newEnv(t, 0)
	out := e.create(t, principal(ownerID, entity.RoleUser))

	assert.False(t, out.Signed)
	require.Len(t, out.WorkEntries, 1)
	assert.True(t, out.WorkEntries[0].Hours.Equal(decimal.RequireFromString("7.5")))
	require.NotNil(t, out.Project)
	assert.Equal(t, "Reforma", out.Project.Name)
	require.NotNil(t, out.Project.Client)
	assert.Equal(t, "Sol", out.Project.Client.Name)
	require.NotNil(t, out.CreatedBy)
	assert.Equal(t, ownerID, out.CreatedBy.ID)
}

func TestCreate_ProyectoNoVisible(t *testing.T) {
	e := newEnv(t, 0)
	_, err := e.uc.Create(context.Background(), principal(otherID, entity.RoleUser), dto.CreateDeliveryNoteRequest{ProjectID: e.projectID})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = e.uc.Create(context.Background(), principal(guestID, entity.RoleGuest), dto.CreateDeliveryNoteRequest{ProjectID: e.projectID})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestVisibilidad_SoloCreador(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, 0)
	note := e.create(t, principal(ownerID, entity.RoleUser))

	// el compañero ve el proyecto por CIF pero no el albarán
	_, err := e.uc.GetByID(ctx, principal(colleague, entity.RoleUser), note.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	list, err := e.uc.List(ctx, principal(colleague, entity.RoleUser))
	require.NoError(t, err)
	assert.Empty(t, list.Items)

	list, err = e.uc.List(ctx, principal(ownerID, entity.RoleUser))
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Nil(t, list.Items[0].Project, "el listado no expande el proyecto")

	_, err = e.uc.GetByID(ctx, principal(ownerID, entity.RoleUser), "xyz")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestUpdate_ReemplazaListas(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, 0)
	owner := principal(ownerID, entity.RoleUser)
	note := e.create(t, owner)

	out, err := e.uc.Update(ctx, owner, note.ID, dto.UpdateDeliveryNoteRequest{
		MaterialEntries: []dto.MaterialEntryRequest{{Name: "Cable", Quantity: decimal.NewFromInt(3)}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Instalación", out.Description)
	assert.Len(t, out.WorkEntries, 1, "ausente no se toca")
	require.Len(t, out.MaterialEntries, 1)
	assert.Equal(t, "Cable", out.MaterialEntries[0].Name)
}

func TestPDF_CreadorEInvitado(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, 0)
	note := e.create(t, principal(ownerID, entity.RoleUser))

	file, err := e.uc.GetPDF(ctx, principal(ownerID, entity.RoleUser), note.ID)
	require.NoError(t, err)
	assert.Equal(t, "albaran-"+note.ID+".pdf", file.Filename)
	assert.Contains(t, file.URL, "memory://artifacts/")

	doc := e.gen.last()
	require.NotNil(t, doc.Project)
	require.NotNil(t, doc.Client)
	require.NotNil(t, doc.Creator)
	assert.Equal(t, "Ana", doc.Creator.Name)

	stored, err := e.uc.GetByID(ctx, principal(ownerID, entity.RoleUser), note.ID)
	require.NoError(t, err)
	assert.Equal(t, file.URL, stored.PDFURL)

	_, err = e.uc.GetPDF(ctx, principal(guestID, entity.RoleGuest), note.ID)
	assert.NoError(t, err, "invitado del creador")

	_, err = e.uc.GetPDF(ctx, principal(colleague, entity.RoleUser), note.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = e.uc.GetPDF(ctx, principal(ownerID, entity.RoleUser), "00000000-0000-4000-8000-000000000999")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSign_AlbaranFirmadoEsInmutable(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, 0)
	owner := principal(ownerID, entity.RoleUser)
	note := e.create(t, owner)

	_, err := e.uc.Sign(ctx, owner, note.ID, []byte("texto"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = e.uc.Sign(ctx, owner, note.ID, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = e.uc.Sign(ctx, principal(guestID, entity.RoleGuest), note.ID, pngSignature(t))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	sig := pngSignature(t)
	file, err := e.uc.Sign(ctx, owner, note.ID, sig)
	require.NoError(t, err)
	assert.Equal(t, "albaran-"+note.ID+"-firmado.pdf", file.Filename)
	assert.Equal(t, sig, e.gen.last().SignatureImage, "el PDF firmado usa los bytes recibidos")
	assert.Contains(t, e.artifacts.Filenames(), "firma-"+note.ID+".png")

	signed, err := e.uc.GetByID(ctx, owner, note.ID)
	require.NoError(t, err)
	assert.True(t, signed.Signed)
	assert.Equal(t, file.URL, signed.PDFURL)

	desc := "cambio"
	_, err = e.uc.Update(ctx, owner, note.ID, dto.UpdateDeliveryNoteRequest{Description: &desc})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.ErrorIs(t, e.uc.Destroy(ctx, owner, note.ID), domain.ErrForbidden)

	// el PDF posterior vuelve a incluir la firma
	_, err = e.uc.GetPDF(ctx, owner, note.ID)
	require.NoError(t, err)
	assert.Equal(t, signed.Signature, e.gen.last().Note.Signature)
}

func TestSign_VolverAFirmarSustituyeLaFirma(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, 0)
	owner := principal(ownerID, entity.RoleUser)
	note := e.create(t, owner)

	_, err := e.uc.Sign(ctx, owner, note.ID, pngSignature(t))
	require.NoError(t, err)
	first, err := e.uc.GetByID(ctx, owner, note.ID)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 80, 30))))
	second := buf.Bytes()
	_, err = e.uc.Sign(ctx, owner, note.ID, second)
	require.NoError(t, err)

	resigned, err := e.uc.GetByID(ctx, owner, note.ID)
	require.NoError(t, err)
	assert.True(t, resigned.Signed)
	assert.NotEqual(t, first.Signature, resigned.Signature)
	assert.Equal(t, second, e.gen.last().SignatureImage)
}

func TestDestroy_SinFirmar(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, 0)
	owner := principal(ownerID, entity.RoleUser)
	note := e.create(t, owner)

	assert.ErrorIs(t, e.uc.Destroy(ctx, principal(colleague, entity.RoleUser), note.ID), domain.ErrNotFound)
	require.NoError(t, e.uc.Destroy(ctx, owner, note.ID))
	_, err := e.uc.GetByID(ctx, owner, note.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPersist_Reintenta(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, 2)
	owner := principal(ownerID, entity.RoleUser)
	note := e.create(t, owner)

	file, err := e.uc.GetPDF(ctx, owner, note.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(3), e.notes.calls.Load())

	stored, err := e.uc.GetByID(ctx, owner, note.ID)
	require.NoError(t, err)
	assert.Equal(t, file.URL, stored.PDFURL)
}

func TestPersist_AgotaReintentos(t *testing.T) {
	e := newEnv(t, 100)
	owner := principal(ownerID, entity.RoleUser)
	note := e.create(t, owner)

	_, err := e.uc.GetPDF(context.Background(), owner, note.ID)
	require.Error(t, err)
	assert.Equal(t, int32(3), e.notes.calls.Load())
}
