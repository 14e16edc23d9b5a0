package deliverynote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // registro de decodificadores para DecodeConfig
	_ "image/png"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/jhoicas/albaranes-api/internal/application/access"
	"github.com/jhoicas/albaranes-api/internal/application/dto"
	"github.com/jhoicas/albaranes-api/internal/application/ports"
	"github.com/jhoicas/albaranes-api/internal/domain"
	"github.com/jhoicas/albaranes-api/internal/domain/entity"
	"github.com/jhoicas/albaranes-api/internal/domain/policy"
)

// GetPDF regenera el PDF en cada lectura, lo sube al almacén y actualiza pdf_url.
// Puede leerlo el creador o un invitado suyo.
func (uc *UseCase) GetPDF(ctx context.Context, principal policy.Principal, id string) (*dto.PDFFile, error) {
	if err := access.ValidateID(id); err != nil {
		return nil, err
	}
	p, err := uc.resolver.Resolve(ctx, principal)
	if err != nil {
		return nil, err
	}

	// ── 1. Cargar albarán y autorizar ────────────────────────────────────────
	note, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("pdf: obtener albarán: %w", err)
	}
	if note == nil {
		return nil, domain.ErrNotFound
	}
	if err := policy.AuthorizePDFRead(p, note); err != nil {
		return nil, err
	}

	// ── 2. Renderizar ────────────────────────────────────────────────────────
	doc, err := uc.document(ctx, note, nil)
	if err != nil {
		return nil, err
	}
	content, err := uc.generator.GenerateDeliveryNotePDF(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("pdf: generación fallida: %w", err)
	}

	// ── 3. Subir y guardar la URL ────────────────────────────────────────────
	filename := fmt.Sprintf("albaran-%s.pdf", note.ID)
	url, err := uc.upload(ctx, content, filename)
	if err != nil {
		return nil, err
	}
	note.PDFURL = url
	note.UpdatedAt = time.Now().UTC()
	if err := uc.persist(ctx, note); err != nil {
		return nil, err
	}
	uc.log.Debug().Str("note_id", note.ID).Str("pdf_url", url).Msg("pdf regenerado")
	return &dto.PDFFile{Filename: filename, Content: content, URL: url}, nil
}

// Sign firma un albarán propio: sube la imagen, regenera el PDF con la firma,
// lo sube y guarda ambas URLs. Volver a firmar sustituye la firma anterior.
// Los pasos no son atómicos: si el guardado final falla pueden quedar
// artefactos huérfanos en el almacén.
func (uc *UseCase) Sign(ctx context.Context, principal policy.Principal, id string, img []byte) (*dto.PDFFile, error) {
	if len(img) == 0 {
		return nil, fmt.Errorf("%w: no se ha subido la firma", domain.ErrInvalidInput)
	}
	ext, err := imageExtension(img)
	if err != nil {
		return nil, err
	}
	note, err := uc.loadForMutation(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	// ── 1. Subir la firma ────────────────────────────────────────────────────
	sigURL, err := uc.upload(ctx, img, fmt.Sprintf("firma-%s.%s", note.ID, ext))
	if err != nil {
		return nil, err
	}
	note.Signature = sigURL
	uc.log.Debug().Str("note_id", note.ID).Str("signature", sigURL).Msg("firma subida")

	// ── 2. Regenerar el PDF con la imagen ya conocida ────────────────────────
	doc, err := uc.document(ctx, note, img)
	if err != nil {
		return nil, err
	}
	content, err := uc.generator.GenerateDeliveryNotePDF(ctx, doc)
	if err != nil {
		uc.log.Warn().Err(err).Str("note_id", note.ID).Msg("firma subida sin PDF firmado")
		return nil, fmt.Errorf("pdf: generación fallida: %w", err)
	}

	// ── 3. Subir el PDF firmado y guardar ────────────────────────────────────
	filename := fmt.Sprintf("albaran-%s-firmado.pdf", note.ID)
	pdfURL, err := uc.upload(ctx, content, filename)
	if err != nil {
		uc.log.Warn().Err(err).Str("note_id", note.ID).Msg("firma subida sin PDF firmado")
		return nil, err
	}
	note.PDFURL = pdfURL
	note.UpdatedAt = time.Now().UTC()
	if err := uc.persist(ctx, note); err != nil {
		uc.log.Warn().Err(err).Str("note_id", note.ID).Msg("artefactos de firma sin guardar")
		return nil, err
	}
	uc.log.Info().Str("note_id", note.ID).Msg("albarán firmado")
	return &dto.PDFFile{Filename: filename, Content: content, URL: pdfURL}, nil
}

func (uc *UseCase) document(ctx context.Context, note *entity.DeliveryNote, signature []byte) (ports.DeliveryNoteDocument, error) {
	refs := uc.refs()
	doc := ports.DeliveryNoteDocument{Note: note, SignatureImage: signature}
	var err error
	if doc.Project, err = refs.Project(ctx, note.ProjectID); err != nil {
		return doc, err
	}
	if doc.Project != nil {
		if doc.Client, err = refs.Client(ctx, doc.Project.ClientID); err != nil {
			return doc, err
		}
	}
	if doc.Creator, err = refs.User(ctx, note.CreatedBy); err != nil {
		return doc, err
	}
	return doc, nil
}

func (uc *UseCase) upload(ctx context.Context, data []byte, filename string) (string, error) {
	hash, err := uc.artifacts.Upload(ctx, data, filename)
	if err != nil {
		return "", fmt.Errorf("subir %s: %w", filename, err)
	}
	return uc.artifacts.URL(hash), nil
}

// persist guardado idempotente con reintentos (el albarán completo se reescribe).
func (uc *UseCase) persist(ctx context.Context, note *entity.DeliveryNote) error {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = 100 * time.Millisecond
	eb.MaxElapsedTime = 5 * time.Second
	b := backoff.WithContext(backoff.WithMaxRetries(eb, uc.persistTries-1), ctx)

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		err := uc.repo.Update(ctx, note)
		if err == nil {
			return nil
		}
		if errors.Is(err, domain.ErrNotFound) {
			return backoff.Permanent(err)
		}
		uc.log.Warn().Err(err).Int("attempt", attempt).Str("note_id", note.ID).Msg("reintentando guardado del albarán")
		return err
	}, b)
	if err != nil {
		return fmt.Errorf("guardar albarán: %w", err)
	}
	return nil
}

// imageExtension acepta solo PNG o JPEG.
func imageExtension(img []byte) (string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(img))
	if err != nil {
		return "", fmt.Errorf("%w: la firma debe ser una imagen PNG o JPEG", domain.ErrInvalidInput)
	}
	switch format {
	case "png":
		return "png", nil
	case "jpeg":
		return "jpg", nil
	default:
		return "", fmt.Errorf("%w: formato de imagen no soportado: %s", domain.ErrInvalidInput, format)
	}
}
