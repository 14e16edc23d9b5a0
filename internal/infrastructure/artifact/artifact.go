// Package artifact implementa el almacén de binarios (PDF, firmas, logos).
// El driver se elige con ARTIFACT_DRIVER: ipfs, s3 o memory.
package artifact

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/albaranes-api/internal/application/ports"
	"github.com/jhoicas/albaranes-api/pkg/config"
	"github.com/jhoicas/albaranes-api/pkg/logger"
)

// New construye el almacén configurado.
func New(ctx context.Context, cfg config.ArtifactConfig, log *logger.Logger) (ports.ArtifactStore, error) {
	switch cfg.Driver {
	case "ipfs":
		return NewIPFSStore(cfg.IPFSAPIURL, cfg.IPFSGatewayURL, log), nil
	case "s3":
		return NewS3Store(ctx, S3Options{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			PublicBaseURL: cfg.S3PublicBaseURL,
		}, log)
	case "memory":
		return NewMemoryStore("memory://artifacts"), nil
	default:
		return nil, fmt.Errorf("artifact: driver no soportado %q", cfg.Driver)
	}
}

// gatewayURL https://<gateway>/ipfs/<cid>; acepta el gateway con o sin esquema.
func gatewayURL(gateway, cid string) string {
	g := strings.TrimRight(gateway, "/")
	if !strings.HasPrefix(g, "http://") && !strings.HasPrefix(g, "https://") {
		g = "https://" + g
	}
	return g + "/ipfs/" + cid
}
