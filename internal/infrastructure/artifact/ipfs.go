package artifact

import (
	"bytes"
	"context"
	"fmt"
	"time"

	files "github.com/ipfs/boxo/files"
	shell "github.com/ipfs/go-ipfs-api"

	"github.com/jhoicas/albaranes-api/internal/application/ports"
	"github.com/jhoicas/albaranes-api/pkg/logger"
)

var _ ports.ArtifactStore = (*IPFSStore)(nil)

// IPFSStore sube y fija (pin) los binarios en un nodo IPFS; el hash es el CID.
type IPFSStore struct {
	shell   *shell.Shell
	apiURL  string
	gateway string
	log     *logger.Logger
}

// NewIPFSStore conecta con la API del nodo (host:port) y usa gateway para las URLs públicas.
func NewIPFSStore(apiURL, gateway string, log *logger.Logger) *IPFSStore {
	if log == nil {
		log = logger.Nop()
	}
	sh := shell.NewShell(apiURL)
	sh.SetTimeout(30 * time.Second)
	return &IPFSStore{shell: sh, apiURL: apiURL, gateway: gateway, log: log.Named("ipfs")}
}

// Upload añade el contenido con pin y devuelve el CID. La petición se ata a
// ctx: cancelarla aborta la subida en curso.
func (s *IPFSStore) Upload(ctx context.Context, data []byte, filename string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	start := time.Now()
	entry := files.FileEntry("", files.NewReaderFile(bytes.NewReader(data)))
	body := files.NewMultiFileReader(files.NewSliceDirectory([]files.DirEntry{entry}), true, false)

	var out struct{ Hash string }
	if err := s.shell.Request("add").Option("pin", true).Body(body).Exec(ctx, &out); err != nil {
		s.log.Error().Err(err).Str("api", s.apiURL).Str("filename", filename).Msg("fallo al subir a IPFS")
		return "", fmt.Errorf("ipfs add %s: %w", filename, err)
	}
	s.log.Debug().
		Str("cid", out.Hash).
		Str("filename", filename).
		Int("size", len(data)).
		Dur("duration", time.Since(start)).
		Msg("contenido fijado en IPFS")
	return out.Hash, nil
}

// URL https://<gateway>/ipfs/<cid>.
func (s *IPFSStore) URL(cid string) string {
	return gatewayURL(s.gateway, cid)
}
