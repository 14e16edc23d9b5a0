package artifact

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"github.com/jhoicas/albaranes-api/internal/application/ports"
)

var (
	_ ports.ArtifactStore = (*MemoryStore)(nil)
	_ ports.ImageFetcher  = (*MemoryStore)(nil)
)

// MemoryStore almacén direccionado por contenido en memoria (tests y local).
type MemoryStore struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string][]byte
	names   map[string]string
}

// NewMemoryStore construye el almacén; baseURL prefija las URLs devueltas.
func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		objects: map[string][]byte{},
		names:   map[string]string{},
	}
}

// Upload guarda una copia y devuelve el SHA-256 en hex.
func (s *MemoryStore) Upload(_ context.Context, data []byte, filename string) (string, error) {
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[hash] = append([]byte(nil), data...)
	s.names[hash] = filename
	return hash, nil
}

// URL baseURL/<hash>.
func (s *MemoryStore) URL(hash string) string {
	return s.baseURL + "/" + hash
}

// Get devuelve el contenido y el nombre de fichero subidos.
func (s *MemoryStore) Get(hash string) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[hash]
	return data, s.names[hash], ok
}

// Fetch resuelve las URLs emitidas por el propio almacén, de modo que el PDF
// pueda incrustar una firma guardada con el driver memory.
func (s *MemoryStore) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hash, ok := strings.CutPrefix(url, s.baseURL+"/")
	if !ok {
		return nil, fmt.Errorf("artifact: url ajena al almacén en memoria: %s", url)
	}
	data, _, found := s.Get(hash)
	if !found {
		return nil, fmt.Errorf("artifact: %s no existe", hash)
	}
	return append([]byte(nil), data...), nil
}

// Filenames nombres de todos los ficheros subidos.
func (s *MemoryStore) Filenames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.names))
	for _, n := range s.names {
		out = append(out, n)
	}
	return out
}
