package http

import (
	"os"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/jhoicas/albaranes-api/internal/application/auth"
	"github.com/jhoicas/albaranes-api/internal/application/deliverynote"
	"github.com/jhoicas/albaranes-api/internal/application/ports"
	"github.com/jhoicas/albaranes-api/internal/application/usecase"
	"github.com/jhoicas/albaranes-api/pkg/logger"
)

// multipartOverhead margen del cuerpo sobre el tamaño máximo del fichero.
const multipartOverhead = 64 << 10

// AppOptions configuración de la app Fiber.
type AppOptions struct {
	Name           string
	Logger         *logger.Logger
	ErrorSink      ports.ErrorSink
	UploadMaxBytes int64
	CORSOrigins    string
	// SwaggerFile ruta del swagger.json; si no existe no se sirve /docs.
	SwaggerFile string
}

// NewApp crea la app con el manejador de errores y los middlewares comunes.
func NewApp(opts AppOptions) *fiber.App {
	bodyLimit := fiber.DefaultBodyLimit
	if opts.UploadMaxBytes > 0 {
		bodyLimit = int(opts.UploadMaxBytes) + multipartOverhead
	}
	app := fiber.New(fiber.Config{
		AppName:               opts.Name,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		IdleTimeout:           60 * time.Second,
		BodyLimit:             bodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          ErrorHandler(opts.Logger, opts.ErrorSink),
	})

	app.Use(requestid.New())
	app.Use(RequestLogger(opts.Logger))
	app.Use(recover.New())
	origins := opts.CORSOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{AllowOrigins: origins}))

	// Swagger UI: http://localhost:<port>/docs
	if opts.SwaggerFile != "" {
		if _, err := os.Stat(opts.SwaggerFile); err == nil {
			app.Use(swagger.New(swagger.Config{
				BasePath: "/",
				FilePath: opts.SwaggerFile,
				Path:     "docs",
				Title:    "Albaranes API",
			}))
		}
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": opts.Name})
	})
	return app
}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC         *auth.AuthUseCase
	UserUC         *usecase.UserUseCase
	ClientUC       *usecase.ClientUseCase
	ProjectUC      *usecase.ProjectUseCase
	DeliveryNoteUC *deliverynote.UseCase
	JWTSecret      string
	UploadMaxBytes int64
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	requireAuth := AuthMiddleware(deps.JWTSecret)

	// Users: registro, login y recuperación son públicos.
	users := api.Group("/users")
	userHandler := NewUserHandler(deps.AuthUC, deps.UserUC, deps.UploadMaxBytes)
	users.Post("/register", userHandler.Register)
	users.Post("/login", userHandler.Login)
	users.Post("/recover/request", userHandler.RequestRecovery)
	users.Put("/recover/reset", RecoveryMiddleware(deps.JWTSecret), userHandler.ResetPassword)
	users.Put("/validation", requireAuth, userHandler.VerifyEmail)
	users.Get("/me", requireAuth, userHandler.Me)
	users.Put("/onboarding/personal", requireAuth, userHandler.UpdatePersonalData)
	users.Patch("/onboarding/company", requireAuth, userHandler.UpdateCompanyData)
	users.Patch("/logo", requireAuth, userHandler.UpdateLogo)
	users.Post("/invite", requireAuth, userHandler.Invite)
	users.Delete("/", requireAuth, userHandler.Delete)

	// Clients (protegido)
	clients := api.Group("/clients", requireAuth)
	clientHandler := NewClientHandler(deps.ClientUC)
	clients.Post("/", clientHandler.Create)
	clients.Get("/", clientHandler.List)
	clients.Get("/archive", clientHandler.ListArchived)
	clients.Get("/:id", clientHandler.GetByID)
	clients.Put("/:id", clientHandler.Update)
	clients.Delete("/archive/:id", clientHandler.Archive)
	clients.Patch("/restore/:id", clientHandler.Restore)
	clients.Delete("/:id", clientHandler.Destroy)

	// Projects (protegido)
	projects := api.Group("/projects", requireAuth)
	projectHandler := NewProjectHandler(deps.ProjectUC)
	projects.Post("/", projectHandler.Create)
	projects.Get("/", projectHandler.List)
	projects.Get("/archive", projectHandler.ListArchived)
	projects.Get("/:id", projectHandler.GetByID)
	projects.Put("/:id", projectHandler.Update)
	projects.Delete("/archive/:id", projectHandler.Archive)
	projects.Patch("/restore/:id", projectHandler.Restore)
	projects.Delete("/:id", projectHandler.Destroy)

	// Delivery notes (protegido)
	notes := api.Group("/deliverynotes", requireAuth)
	noteHandler := NewDeliveryNoteHandler(deps.DeliveryNoteUC, deps.UploadMaxBytes)
	notes.Post("/", noteHandler.Create)
	notes.Get("/", noteHandler.List)
	notes.Get("/pdf/:id", noteHandler.GetPDF)
	notes.Patch("/sign/:id", noteHandler.Sign)
	notes.Get("/:id", noteHandler.GetByID)
	notes.Put("/:id", noteHandler.Update)
	notes.Delete("/:id", noteHandler.Destroy)
}
