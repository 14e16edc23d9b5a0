package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/albaranes-api/internal/application/access"
	"github.com/jhoicas/albaranes-api/internal/application/auth"
	"github.com/jhoicas/albaranes-api/internal/application/deliverynote"
	"github.com/jhoicas/albaranes-api/internal/application/dto"
	"github.com/jhoicas/albaranes-api/internal/application/usecase"
	"github.com/jhoicas/albaranes-api/internal/infrastructure/artifact"
	"github.com/jhoicas/albaranes-api/internal/infrastructure/mail"
	"github.com/jhoicas/albaranes-api/internal/infrastructure/memory"
	"github.com/jhoicas/albaranes-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/albaranes-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/albaranes-api/pkg/jwt"
)

type sinkSpy struct{ msgs chan string }

func (s *sinkSpy) Write(_ context.Context, msg string) error {
	s.msgs <- msg
	return nil
}

type testServer struct {
	app       *fiber.App
	artifacts *artifact.MemoryStore
	sink      *sinkSpy
}

// newTestServer API completa sobre almacenes en memoria.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	users := memory.NewUserRepository()
	clients := memory.NewClientRepository()
	projects := memory.NewProjectRepository()
	notes := memory.NewDeliveryNoteRepository()
	store := artifact.NewMemoryStore("memory://artifacts")
	resolver := access.NewResolver(users)

	authUC := auth.NewAuthUseCase(users, mail.NewLogMailer(nil), auth.JWTConfig{
		Secret: testJWTSecret, ExpMinutes: testExpMin, RecoveryExpMinutes: 15, Issuer: testIssuer,
	}, 3, nil)
	noteUC := deliverynote.NewUseCase(deliverynote.Deps{
		Notes: notes, Projects: projects, Clients: clients, Users: users,
		Resolver: resolver, Generator: pdf.NewMarotoPDFGenerator(nil, nil), Artifacts: store,
	})

	sink := &sinkSpy{msgs: make(chan string, 4)}
	app := apphttp.NewApp(apphttp.AppOptions{Name: "albaranes-test", ErrorSink: sink, UploadMaxBytes: 1 << 20})
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("fallo de base de datos") })
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:         authUC,
		UserUC:         usecase.NewUserUseCase(users, store),
		ClientUC:       usecase.NewClientUseCase(clients, users, resolver),
		ProjectUC:      usecase.NewProjectUseCase(projects, clients, users, resolver),
		DeliveryNoteUC: noteUC,
		JWTSecret:      testJWTSecret,
		UploadMaxBytes: 1 << 20,
	})
	return &testServer{app: app, artifacts: store, sink: sink}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (s *testServer) upload(t *testing.T, method, path, token string, content []byte) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", "firma.png")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (s *testServer) register(t *testing.T, email string) dto.AuthResponse {
	t.Helper()
	resp := s.do(t, http.MethodPost, "/api/users/register", "", dto.RegisterRequest{Email: email, Password: "secreto123"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[dto.AuthResponse](t, resp)
}

func signaturePNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 30, 10))))
	return buf.Bytes()
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodGet, "/health", "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUsers_RegistroLoginYPerfil(t *testing.T) {
	s := newTestServer(t)
	reg := s.register(t, "Ana@Example.com")
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "ana@example.com", reg.User.Email)

	resp := s.do(t, http.MethodPost, "/api/users/register", "", dto.RegisterRequest{Email: "ana@example.com", Password: "secreto123"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(t, http.MethodPost, "/api/users/login", "", dto.LoginRequest{Email: "ana@example.com", Password: "incorrecta"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(t, http.MethodPost, "/api/users/login", "", dto.LoginRequest{Email: "ana@example.com", Password: "secreto123"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	login := decode[dto.AuthResponse](t, resp)

	resp = s.do(t, http.MethodGet, "/api/users/me", login.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	me := decode[dto.UserResponse](t, resp)
	assert.Equal(t, reg.User.ID, me.ID)
}

func TestUsers_CodigoIncorrectoDevuelveIntentos(t *testing.T) {
	s := newTestServer(t)
	reg := s.register(t, "ana@example.com")

	resp := s.do(t, http.MethodPut, "/api/users/validation", reg.Token, dto.VerifyEmailRequest{Code: "000000"})
	// El código real es aleatorio: el 000000 puede acertar con probabilidad 1e-6.
	if resp.StatusCode == http.StatusOK {
		resp.Body.Close()
		t.Skip("código acertado por azar")
	}
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "INVALID_CODE", body.Code)
}

func TestValidacion_DevuelveDetalles(t *testing.T) {
	s := newTestServer(t)
	reg := s.register(t, "ana@example.com")

	resp := s.do(t, http.MethodPost, "/api/clients", reg.Token, map[string]any{"name": "", "email": "no-es-email"})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "VALIDATION", body.Code)

	fields := map[string]bool{}
	for _, d := range body.Details {
		fields[d.Field] = true
	}
	assert.True(t, fields["name"])
	assert.True(t, fields["email"])
	assert.True(t, fields["cif"])
}

func TestClients_CicloCompleto(t *testing.T) {
	s := newTestServer(t)
	ana := s.register(t, "ana@example.com")
	luis := s.register(t, "luis@example.com")

	resp := s.do(t, http.MethodPost, "/api/clients", ana.Token, dto.CreateClientRequest{
		Name: "Construcciones Sol", Email: "sol@example.com", CIF: "B12345678",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	client := decode[dto.ClientResponse](t, resp)

	resp = s.do(t, http.MethodGet, "/api/clients/no-es-uuid", ana.Token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(t, http.MethodGet, "/api/clients/"+client.ID, luis.Token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "otro usuario sin CIF común no lo ve")
	resp.Body.Close()

	resp = s.do(t, http.MethodDelete, "/api/clients/archive/"+client.ID, ana.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	list := decode[dto.ClientListResponse](t, s.do(t, http.MethodGet, "/api/clients", ana.Token, nil))
	assert.Empty(t, list.Items)
	archived := decode[dto.ClientListResponse](t, s.do(t, http.MethodGet, "/api/clients/archive", ana.Token, nil))
	require.Len(t, archived.Items, 1)

	resp = s.do(t, http.MethodPatch, "/api/clients/restore/"+client.ID, ana.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	restored := decode[dto.ClientResponse](t, resp)
	assert.Nil(t, restored.DeletedAt)

	resp = s.do(t, http.MethodDelete, "/api/clients/"+client.ID, ana.Token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	resp = s.do(t, http.MethodGet, "/api/clients/"+client.ID, ana.Token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestDeliveryNotes_PDFYFirma(t *testing.T) {
	s := newTestServer(t)
	ana := s.register(t, "ana@example.com")

	client := decode[dto.ClientResponse](t, s.do(t, http.MethodPost, "/api/clients", ana.Token, dto.CreateClientRequest{
		Name: "Construcciones Sol", Email: "sol@example.com", CIF: "B12345678",
	}))
	resp := s.do(t, http.MethodPost, "/api/projects", ana.Token, dto.CreateProjectRequest{
		Name: "Reforma", ProjectCode: "P-1", Email: "obra@example.com", ClientID: client.ID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	project := decode[dto.ProjectResponse](t, resp)

	resp = s.do(t, http.MethodPost, "/api/projects", ana.Token, dto.CreateProjectRequest{
		Name: "Otro", ProjectCode: "P-1", Email: "obra@example.com", ClientID: client.ID,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "project_code repetido")
	resp.Body.Close()

	resp = s.do(t, http.MethodPost, "/api/deliverynotes", ana.Token, map[string]any{
		"project_id":   project.ID,
		"description":  "Instalación",
		"work_entries": []map[string]any{{"person": "Ana", "hours": 7.5}},
		"date":         time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	note := decode[dto.DeliveryNoteResponse](t, resp)
	require.NotNil(t, note.Project)
	assert.Equal(t, "Reforma", note.Project.Name)

	resp = s.do(t, http.MethodGet, "/api/deliverynotes/pdf/"+note.ID, ana.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "albaran-"+note.ID+".pdf")
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))

	resp = s.upload(t, http.MethodPatch, "/api/deliverynotes/sign/"+note.ID, ana.Token, []byte("no es imagen"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = s.upload(t, http.MethodPatch, "/api/deliverynotes/sign/"+note.ID, ana.Token, signaturePNG(t))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "firmado")
	resp.Body.Close()
	assert.Contains(t, s.artifacts.Filenames(), "firma-"+note.ID+".png")

	signed := decode[dto.DeliveryNoteResponse](t, s.do(t, http.MethodGet, "/api/deliverynotes/"+note.ID, ana.Token, nil))
	assert.True(t, signed.Signed)
	assert.NotEmpty(t, signed.PDFURL)

	// volver a firmar sustituye la firma y regenera el PDF firmado
	resp = s.upload(t, http.MethodPatch, "/api/deliverynotes/sign/"+note.ID, ana.Token, signaturePNG(t))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	raw, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))

	desc := "cambio"
	resp = s.do(t, http.MethodPut, "/api/deliverynotes/"+note.ID, ana.Token, dto.UpdateDeliveryNoteRequest{Description: &desc})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(t, http.MethodDelete, "/api/deliverynotes/"+note.ID, ana.Token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestDeliveryNotes_FirmaSinFichero(t *testing.T) {
	s := newTestServer(t)
	ana := s.register(t, "ana@example.com")

	resp := s.do(t, http.MethodPatch, "/api/deliverynotes/sign/00000000-0000-4000-8000-000000000009", ana.Token, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestErrorHandler_500NotificaAlSink(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodGet, "/boom", "", nil)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "INTERNAL", body.Code)
	assert.NotContains(t, body.Message, "base de datos", "el detalle interno no se expone")

	select {
	case msg := <-s.sink.msgs:
		assert.Contains(t, msg, "/boom")
		assert.Contains(t, msg, "fallo de base de datos")
	case <-time.After(2 * time.Second):
		t.Fatal("el sink no recibió el error")
	}
}

func TestRutasProtegidasSinToken(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/api/clients", "/api/projects", "/api/deliverynotes", "/api/users/me"} {
		resp := s.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
		resp.Body.Close()
	}
}

func TestRutasProtegidasTokenInvalido(t *testing.T) {
	s := newTestServer(t)
	forged, err := pkgjwt.Generate("otro-secreto", testIssuer, pkgjwt.Identity{UserID: testUserID, Role: "user"}, testExpMin)
	require.NoError(t, err)

	for _, tok := range []string{"basura", forged} {
		resp := s.do(t, http.MethodGet, "/api/users/me", tok, nil)
		body := decode[dto.ErrorResponse](t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "INVALID_TOKEN", body.Code, "el 401 del middleware no lo pisa el handler")
	}
}
