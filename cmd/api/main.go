package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jhoicas/albaranes-api/docs"
	"github.com/jhoicas/albaranes-api/internal/application/access"
	"github.com/jhoicas/albaranes-api/internal/application/auth"
	"github.com/jhoicas/albaranes-api/internal/application/deliverynote"
	"github.com/jhoicas/albaranes-api/internal/application/ports"
	"github.com/jhoicas/albaranes-api/internal/application/usecase"
	"github.com/jhoicas/albaranes-api/internal/domain/repository"
	"github.com/jhoicas/albaranes-api/internal/infrastructure/artifact"
	"github.com/jhoicas/albaranes-api/internal/infrastructure/mail"
	"github.com/jhoicas/albaranes-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/albaranes-api/internal/infrastructure/pdf"
	"github.com/jhoicas/albaranes-api/internal/infrastructure/postgres"
	"github.com/jhoicas/albaranes-api/internal/infrastructure/slack"
	httpRouter "github.com/jhoicas/albaranes-api/internal/interfaces/http"
	"github.com/jhoicas/albaranes-api/pkg/config"
	"github.com/jhoicas/albaranes-api/pkg/logger"
)

// repositories almacén de documentos seleccionado por STORE_DRIVER.
type repositories struct {
	users    repository.UserRepository
	clients  repository.ClientRepository
	projects repository.ProjectRepository
	notes    repository.DeliveryNoteRepository
	close    func()
}

// @title                      Albaranes API
// @version                    1.0
// @description                API de gestión de clientes, proyectos y albaranes firmados en PDF.
// @BasePath                   /
// @securityDefinitions.apikey Bearer
// @in                         header
// @name                       Authorization
// @description                Escribe "Bearer" seguido de un espacio y el token JWT.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Str("artifacts", cfg.Artifact.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	repos, err := openRepositories(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("almacén de documentos")
	}
	defer repos.close()

	artifacts, err := artifact.New(ctx, cfg.Artifact, log)
	if err != nil {
		log.Fatal().Err(err).Msg("almacén de artefactos")
	}

	// PDF: el generador descarga la firma si solo se conoce su URL.
	// El almacén en memoria sirve sus propias URLs.
	var fetcher ports.ImageFetcher = infrapdf.NewSignatureFetcher(cfg.Artifact.SignatureFetchTimeout)
	if local, ok := artifacts.(ports.ImageFetcher); ok {
		fetcher = local
	}
	pdfGenerator := infrapdf.NewMarotoPDFGenerator(fetcher, log)

	resolver := access.NewResolver(repos.users)
	authUC := auth.NewAuthUseCase(repos.users, mail.New(cfg.SMTP, log), auth.JWTConfig{
		Secret:             cfg.JWT.Secret,
		ExpMinutes:         cfg.JWT.Expiration,
		RecoveryExpMinutes: cfg.JWT.RecoveryExpiration,
		Issuer:             cfg.JWT.Issuer,
	}, cfg.Account.MaxAttempts, log)
	userUC := usecase.NewUserUseCase(repos.users, artifacts)
	clientUC := usecase.NewClientUseCase(repos.clients, repos.users, resolver)
	projectUC := usecase.NewProjectUseCase(repos.projects, repos.clients, repos.users, resolver)
	noteUC := deliverynote.NewUseCase(deliverynote.Deps{
		Notes:     repos.notes,
		Projects:  repos.projects,
		Clients:   repos.clients,
		Users:     repos.users,
		Resolver:  resolver,
		Generator: pdfGenerator,
		Artifacts: artifacts,
		Logger:    log,
	})

	app := httpRouter.NewApp(httpRouter.AppOptions{
		Name:           cfg.App.Name,
		Logger:         log,
		ErrorSink:      slack.New(cfg.Slack.Webhook),
		UploadMaxBytes: int64(cfg.HTTP.UploadMaxBytes),
		CORSOrigins:    cfg.HTTP.CORSOrigins,
		// Swagger UI en local: http://localhost:<port>/docs
		SwaggerFile: "./docs/swagger.json",
	})
	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:         authUC,
		UserUC:         userUC,
		ClientUC:       clientUC,
		ProjectUC:      projectUC,
		DeliveryNoteUC: noteUC,
		JWTSecret:      cfg.JWT.Secret,
		UploadMaxBytes: int64(cfg.HTTP.UploadMaxBytes),
	})

	go func() {
		log.Info().Str("addr", cfg.HTTP.Addr()).Msg("servidor HTTP escuchando")
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func openRepositories(ctx context.Context, cfg *config.Config, log *logger.Logger) (*repositories, error) {
	if cfg.Store.Driver == "memory" {
		log.Warn().Msg("STORE_DRIVER=memory: los datos se pierden al reiniciar")
		return &repositories{
			users:    memory.NewUserRepository(),
			clients:  memory.NewClientRepository(),
			projects: memory.NewProjectRepository(),
			notes:    memory.NewDeliveryNoteRepository(),
			close:    func() {},
		}, nil
	}

	if cfg.DB.MigrateOnStart {
		mg, err := postgres.NewMigrator(cfg.DB.MigrateURL(), log)
		if err != nil {
			return nil, err
		}
		err = mg.Up()
		if cerr := mg.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("cerrar migrador")
		}
		if err != nil {
			return nil, err
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &repositories{
		users:    postgres.NewUserRepository(pool),
		clients:  postgres.NewClientRepository(pool),
		projects: postgres.NewProjectRepository(pool),
		notes:    postgres.NewDeliveryNoteRepository(pool),
		close:    pool.Close,
	}, nil
}
