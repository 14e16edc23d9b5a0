// Package pdf implementa el documento PDF del albarán.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Albarán de Proyecto            │  Fecha            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  PROYECTO: Nombre + Código / Cliente / Dirección            │
//	│  Creado por                                                  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  DESCRIPCIÓN (opcional)                                     │
//	│  PERSONAS Y HORAS (opcional)                                │
//	│  MATERIALES (opcional)                                      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FIRMA: imagen 50 mm o marcador de error                    │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // decodificadores para DecodeConfig
	_ "image/png"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	mimage "github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/jhoicas/albaranes-api/internal/application/ports"
	"github.com/jhoicas/albaranes-api/internal/domain/entity"
	"github.com/jhoicas/albaranes-api/pkg/logger"
)

// SignaturePlaceholder texto que sustituye a una firma que no se pudo cargar.
const SignaturePlaceholder = "[Error al cargar la imagen de firma]"

// signatureWidthMM ancho fijo de la firma; 3 de 12 columnas en A4 con márgenes de 10 mm.
const signatureWidthMM = 47.5

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorError   = &props.Color{Red: 170, Green: 30, Blue: 30}
)

var _ ports.DeliveryNotePDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa ports.DeliveryNotePDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	fetcher ports.ImageFetcher
	printer *message.Printer
	log     *logger.Logger
}

// NewMarotoPDFGenerator construye el generador. fetcher descarga las firmas
// que no vienen en el documento; puede ser nil.
func NewMarotoPDFGenerator(fetcher ports.ImageFetcher, log *logger.Logger) *MarotoPDFGenerator {
	if log == nil {
		log = logger.Nop()
	}
	return &MarotoPDFGenerator{
		fetcher: fetcher,
		printer: message.NewPrinter(language.Spanish),
		log:     log.Named("pdf"),
	}
}

// signature imagen ya decodificada (solo cabecera) lista para maroto.
type signature struct {
	data   []byte
	ext    extension.Type
	height float64 // mm, manteniendo proporción con signatureWidthMM
}

// GenerateDeliveryNotePDF genera el PDF y devuelve sus bytes. El documento
// siempre se completa: una firma ilegible se sustituye por SignaturePlaceholder.
func (g *MarotoPDFGenerator) GenerateDeliveryNotePDF(ctx context.Context, doc ports.DeliveryNoteDocument) ([]byte, error) {
	if doc.Note == nil {
		return nil, fmt.Errorf("pdf: documento sin albarán")
	}

	var sig *signature
	if doc.Note.Signed() || len(doc.SignatureImage) > 0 {
		var err error
		sig, err = g.loadSignature(ctx, doc)
		if err != nil {
			g.log.Warn().Err(err).Str("note_id", doc.Note.ID).Msg("firma no disponible, se usa marcador")
		}
	}

	out, err := g.render(doc, sig)
	if err != nil && sig != nil {
		g.log.Warn().Err(err).Str("note_id", doc.Note.ID).Msg("fallo al renderizar con firma, reintento sin imagen")
		out, err = g.render(doc, nil)
	}
	return out, err
}

func (g *MarotoPDFGenerator) loadSignature(ctx context.Context, doc ports.DeliveryNoteDocument) (*signature, error) {
	data := doc.SignatureImage
	if len(data) == 0 {
		if g.fetcher == nil {
			return nil, fmt.Errorf("sin descargador de firmas")
		}
		var err error
		if data, err = g.fetcher.Fetch(ctx, doc.Note.Signature); err != nil {
			return nil, err
		}
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decodificar firma: %w", err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return nil, fmt.Errorf("firma vacía")
	}
	sig := &signature{
		data:   data,
		height: signatureWidthMM * float64(cfg.Height) / float64(cfg.Width),
	}
	switch format {
	case "png":
		sig.ext = extension.Png
	case "jpeg":
		sig.ext = extension.Jpg
	default:
		return nil, fmt.Errorf("formato de firma no soportado: %s", format)
	}
	return sig, nil
}

func (g *MarotoPDFGenerator) render(doc ports.DeliveryNoteDocument, sig *signature) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Albarán de Proyecto", true).
		WithAuthor(creatorName(doc.Creator), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(doc.Note))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(projectRows(doc)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	if d := strings.TrimSpace(doc.Note.Description); d != "" {
		m.AddRows(sectionTitle("Descripción"))
		m.AddRows(descriptionRow(d))
	}
	if len(doc.Note.WorkEntries) > 0 {
		m.AddRows(sectionTitle("Personas y Horas"))
		m.AddRows(tableHeaderRow("Persona", "Horas"))
		for _, w := range doc.Note.WorkEntries {
			m.AddRows(tableRow(w.Person, g.formatNumber(w.Hours)))
		}
	}
	if len(doc.Note.MaterialEntries) > 0 {
		m.AddRows(sectionTitle("Materiales"))
		m.AddRows(tableHeaderRow("Material", "Cantidad"))
		for _, mt := range doc.Note.MaterialEntries {
			m.AddRows(tableRow(mt.Name, g.formatNumber(mt.Quantity)))
		}
	}

	if doc.Note.Signed() || sig != nil {
		m.AddRows(line.NewRow(3))
		m.AddRows(sectionTitle("Firma"))
		m.AddRows(signatureRow(sig))
	}

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// descriptionRow crece con el texto; una fila fija lo desbordaría.
func descriptionRow(d string) core.Row {
	return text.NewAutoRow(d, props.Text{Size: 9, Top: 1, Bottom: 1})
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(note *entity.DeliveryNote) core.Row {
	return row.New(14).Add(
		col.New(8).Add(
			text.New("Albarán de Proyecto", props.Text{
				Style: fontstyle.Bold, Size: 14, Color: colorPrimary, Top: 2,
			}),
		),
		col.New(4).Add(
			text.New("Fecha: "+note.Date.Format("02/01/2006"), props.Text{
				Size: 9, Align: align.Right, Top: 4, Color: colorGray,
			}),
		),
	)
}

// projectRows: proyecto, cliente, dirección de obra y creador.
func projectRows(doc ports.DeliveryNoteDocument) []core.Row {
	name, code, address := "—", "—", "—"
	if doc.Project != nil {
		name = nonEmpty(doc.Project.Name, "—")
		code = nonEmpty(doc.Project.ProjectCode, "—")
		address = formatAddress(doc.Project.Address)
	}
	client := "Sin cliente"
	if doc.Client != nil && doc.Client.Name != "" {
		client = doc.Client.Name
	}

	field := func(label, value string) core.Row {
		return row.New(6).Add(
			col.New(3).Add(text.New(label, props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			})),
			col.New(9).Add(text.New(value, props.Text{Size: 9, Top: 1})),
		)
	}
	return []core.Row{
		field("Proyecto:", name),
		field("Código:", code),
		field("Cliente:", client),
		field("Dirección:", address),
		field("Creado por:", creatorName(doc.Creator)),
	}
}

func sectionTitle(title string) core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New(strings.ToUpper(title), props.Text{
			Style: fontstyle.Bold, Size: 9, Color: colorPrimary, Top: 3,
		}),
	))
}

func tableHeaderRow(left, right string) core.Row {
	return row.New(6).Add(
		col.New(9).Add(text.New(left, props.Text{
			Style: fontstyle.Bold, Size: 8, Top: 1, Left: 1, Color: colorGray,
		})),
		col.New(3).Add(text.New(right, props.Text{
			Style: fontstyle.Bold, Size: 8, Top: 1, Right: 1, Align: align.Right, Color: colorGray,
		})),
	)
}

func tableRow(left, right string) core.Row {
	return row.New(6).Add(
		col.New(9).Add(text.New(nonEmpty(left, "—"), props.Text{Size: 9, Top: 1, Left: 1})),
		col.New(3).Add(text.New(right, props.Text{Size: 9, Top: 1, Right: 1, Align: align.Right})),
	)
}

func signatureRow(sig *signature) core.Row {
	if sig == nil {
		return text.NewRow(8, SignaturePlaceholder, props.Text{
			Size: 9, Style: fontstyle.Italic, Color: colorError, Top: 2,
		})
	}
	return row.New(sig.height).Add(
		col.New(3).Add(mimage.NewFromBytes(sig.data, sig.ext, props.Rect{Percent: 100})),
		col.New(9),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// formatNumber formato español: coma decimal, hasta 2 decimales.
func (g *MarotoPDFGenerator) formatNumber(d decimal.Decimal) string {
	return g.printer.Sprint(number.Decimal(d.InexactFloat64(), number.MaxFractionDigits(2)))
}

func creatorName(u *entity.User) string {
	if u == nil {
		return "—"
	}
	return u.DisplayName()
}

func formatAddress(a entity.Address) string {
	parts := make([]string, 0, 4)
	street := strings.TrimSpace(a.Street)
	if street != "" && a.Number != nil {
		street = fmt.Sprintf("%s %d", street, *a.Number)
	}
	if street != "" {
		parts = append(parts, street)
	}
	city := strings.TrimSpace(a.City)
	if a.Postal != nil {
		city = strings.TrimSpace(fmt.Sprintf("%05d %s", *a.Postal, city))
	}
	if city != "" {
		parts = append(parts, city)
	}
	if p := strings.TrimSpace(a.Province); p != "" {
		parts = append(parts, p)
	}
	if len(parts) == 0 {
		return "—"
	}
	return strings.Join(parts, ", ")
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
