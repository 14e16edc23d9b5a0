package ports

import "context"

// ArtifactStore define el puerto de salida para almacenar binarios (PDF, firmas, logos).
// Upload devuelve un identificador de contenido (CID o clave); la URL pública se
// deriva de forma determinista con URL.
type ArtifactStore interface {
	Upload(ctx context.Context, data []byte, filename string) (contentHash string, err error)
	URL(contentHash string) string
}
