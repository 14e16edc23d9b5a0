package pdf

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/albaranes-api/internal/application/ports"
	"github.com/jhoicas/albaranes-api/internal/domain/entity"
)

type fakeFetcher struct {
	data  []byte
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(_ context.Context, _ string) ([]byte, error) {
	f.calls++
	return f.data, f.err
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.Black)
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func sampleDoc() ports.DeliveryNoteDocument {
	n := 12
	return ports.DeliveryNoteDocument{
		Note: &entity.DeliveryNote{
			ID:          "8c0c7a0e-0000-4000-8000-000000000001",
			Description: "Montaje de cuadro eléctrico",
			WorkEntries: []entity.WorkEntry{
				{Person: "Ana", Hours: decimal.RequireFromString("7.5")},
			},
			MaterialEntries: []entity.MaterialEntry{
				{Name: "Cable 2,5mm", Quantity: decimal.NewFromInt(30)},
			},
			Date: time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC),
		},
		Project: &entity.Project{
			Name:        "Reforma local",
			ProjectCode: "P-001",
			Address:     entity.Address{Street: "Gran Vía", Number: &n, City: "Madrid"},
		},
		Creator: &entity.User{Email: "ana@example.com"},
	}
}

func TestGenerateDeliveryNotePDF_SinFirma(t *testing.T) {
	f := &fakeFetcher{}
	g := NewMarotoPDFGenerator(f, nil)

	out, err := g.GenerateDeliveryNotePDF(context.Background(), sampleDoc())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.Zero(t, f.calls)
}

func pageCount(pdf []byte) int {
	return bytes.Count(pdf, []byte("<</Type /Page\n"))
}

func TestGenerateDeliveryNotePDF_DescripcionLargaOcupaSuAltura(t *testing.T) {
	g := NewMarotoPDFGenerator(&fakeFetcher{}, nil)

	short, err := g.GenerateDeliveryNotePDF(context.Background(), sampleDoc())
	require.NoError(t, err)

	doc := sampleDoc()
	doc.Note.Description = strings.Repeat("Sustitución del cableado y revisión completa del cuadro general. ", 90)
	long, err := g.GenerateDeliveryNotePDF(context.Background(), doc)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(long, []byte("%PDF")))
	assert.Equal(t, 1, pageCount(short))
	assert.Greater(t, pageCount(long), pageCount(short), "la descripción empuja el resto del albarán")
}

func TestGenerateDeliveryNotePDF_FirmaConocida(t *testing.T) {
	f := &fakeFetcher{}
	g := NewMarotoPDFGenerator(f, nil)
	doc := sampleDoc()
	doc.Note.Signature = "https://ipfs.io/ipfs/Qm1"
	doc.SignatureImage = pngBytes(t, 40, 20)

	out, err := g.GenerateDeliveryNotePDF(context.Background(), doc)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.Zero(t, f.calls, "la firma ya conocida no se descarga")
}

func TestGenerateDeliveryNotePDF_DescargaFirma(t *testing.T) {
	f := &fakeFetcher{data: pngBytes(t, 40, 20)}
	g := NewMarotoPDFGenerator(f, nil)
	doc := sampleDoc()
	doc.Note.Signature = "https://ipfs.io/ipfs/Qm1"

	out, err := g.GenerateDeliveryNotePDF(context.Background(), doc)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	assert.Equal(t, 1, f.calls)
}

func TestGenerateDeliveryNotePDF_FirmaIlegibleCompleta(t *testing.T) {
	for name, f := range map[string]*fakeFetcher{
		"descarga fallida": {err: errors.New("timeout")},
		"no es imagen":     {data: []byte("not an image")},
	} {
		t.Run(name, func(t *testing.T) {
			g := NewMarotoPDFGenerator(f, nil)
			doc := sampleDoc()
			doc.Note.Signature = "https://ipfs.io/ipfs/Qm1"

			out, err := g.GenerateDeliveryNotePDF(context.Background(), doc)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
		})
	}
}

func TestGenerateDeliveryNotePDF_SinReferencias(t *testing.T) {
	g := NewMarotoPDFGenerator(nil, nil)
	doc := ports.DeliveryNoteDocument{Note: &entity.DeliveryNote{ID: "x", Date: time.Now()}}

	out, err := g.GenerateDeliveryNotePDF(context.Background(), doc)
	require.NoError(t, err)
	assert.NotEmpty(t, out)

	_, err = g.GenerateDeliveryNotePDF(context.Background(), ports.DeliveryNoteDocument{})
	assert.Error(t, err)
}

func TestFormatNumber(t *testing.T) {
	g := NewMarotoPDFGenerator(nil, nil)
	assert.Equal(t, "7,5", g.formatNumber(decimal.RequireFromString("7.5")))
	assert.Equal(t, "3", g.formatNumber(decimal.NewFromInt(3)))
	assert.Equal(t, "0,33", g.formatNumber(decimal.RequireFromString("0.333")))
}

func TestFormatAddress(t *testing.T) {
	n, cp := 5, 28013
	assert.Equal(t, "Gran Vía 5, 28013 Madrid, Madrid",
		formatAddress(entity.Address{Street: "Gran Vía", Number: &n, Postal: &cp, City: "Madrid", Province: "Madrid"}))
	assert.Equal(t, "—", formatAddress(entity.Address{}))
}
