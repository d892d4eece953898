// Package tenant maps resolved identities to isolated per-tenant stores.
// One identity owns one SQLite file; nothing is shared between tenants.
package tenant

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"sync"

	"abonos/internal/amqp"
	"abonos/internal/ledger"
	"abonos/internal/services"
	"abonos/internal/storage"

	"github.com/hashicorp/go-multierror"
)

// dbFileTemplate names a tenant's database file inside the data directory.
const dbFileTemplate = "abonos_%s.db"

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// Sanitize turns a free-text identity into a filesystem-safe token. An empty
// identity maps to "anonymous" so a missing name never produces a shared or
// invalid path.
func Sanitize(identity string) string {
	if identity == "" {
		return "anonymous"
	}
	return unsafeChars.ReplaceAllString(identity, "_")
}

// DBPath returns the database path for an identity under dataDir.
func DBPath(dataDir, identity string) string {
	return filepath.Join(dataDir, fmt.Sprintf(dbFileTemplate, Sanitize(identity)))
}

// Registry opens tenant stores on demand and caches the open services. The
// event stream is shared across all tenants.
type Registry struct {
	mu       sync.Mutex
	dataDir  string
	events   *amqp.Client
	services map[string]*services.Ledger
}

func NewRegistry(dataDir string, events *amqp.Client) *Registry {
	return &Registry{
		dataDir:  dataDir,
		events:   events,
		services: make(map[string]*services.Ledger),
	}
}

// Service implements ledger.Provider: it returns the ledger bound to the
// identity's store, opening and migrating the store on first use.
func (r *Registry) Service(identity string) (ledger.Service, error) {
	key := Sanitize(identity)

	r.mu.Lock()
	defer r.mu.Unlock()

	if svc, ok := r.services[key]; ok {
		return svc, nil
	}

	path := filepath.Join(r.dataDir, fmt.Sprintf(dbFileTemplate, key))
	repo, err := storage.NewRepository(path)
	if err != nil {
		return nil, fmt.Errorf("open tenant store for %q: %w", key, err)
	}

	svc := services.NewLedger(repo, r.events, identity)
	r.services[key] = svc

	slog.Info("Opened tenant store", "tenant", key, "path", path)
	return svc, nil
}

// Close closes every open tenant store, collecting all failures.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs *multierror.Error
	for key, svc := range r.services {
		if err := svc.Close(); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("close tenant %q: %w", key, err))
		}
		delete(r.services, key)
	}
	return errs.ErrorOrNil()
}
