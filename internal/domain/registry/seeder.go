package registry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/switcher/internal/shared/types"
)

// Installer receives loaded packages
type Installer interface {
	Install(pkg types.Package) error
}

// Seeder handles loading app manifests from disk
type Seeder struct {
	installer Installer
	appsDir   string
	pattern   string
	logger    *zap.Logger
}

// NewSeeder creates a new app seeder
func NewSeeder(installer Installer, appsDir string, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{
		installer: installer,
		appsDir:   appsDir,
		pattern:   ManifestPattern,
		logger:    logger,
	}
}

// SeedApps installs every manifest under the apps directory.
// A missing directory is not an error; loaded is then zero.
func (s *Seeder) SeedApps(ctx context.Context) (loaded int, err error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.logger.Info("Seeding apps", zap.String("dir", s.appsDir))

	// Check if apps directory exists
	if _, err := os.Stat(s.appsDir); errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("Apps directory not found", zap.String("dir", s.appsDir))
		return 0, nil
	}

	paths, err := s.findManifests(ctx)
	if err != nil {
		return 0, err
	}

	var failed int
	for _, path := range paths {
		n, err := s.loadManifest(path)
		if err != nil {
			s.logger.Warn("Failed to load manifest", zap.String("path", path), zap.Error(err))
			failed++
			continue
		}
		s.logger.Debug("Loaded manifest", zap.String("path", path), zap.Int("apps", n))
		loaded += n
	}

	s.logger.Info("Seeding complete", zap.Int("loaded", loaded), zap.Int("failed", failed))
	return loaded, nil
}

// SeedDefaultApps installs the built-in catalog
func (s *Seeder) SeedDefaultApps() error {
	for _, pkg := range DefaultApps() {
		if err := s.installer.Install(pkg); err != nil {
			return fmt.Errorf("failed to install default app %s: %w", pkg.ID, err)
		}
	}
	s.logger.Info("Seeded default apps", zap.Int("count", len(DefaultApps())))
	return nil
}

// findManifests returns matching manifest paths in lexical order
func (s *Seeder) findManifests(ctx context.Context) ([]string, error) {
	var (
		mu      sync.Mutex
		matches []string
	)
	conf := fastwalk.Config{Follow: false}

	err := fastwalk.Walk(&conf, s.appsDir, func(p string, d os.DirEntry, err error) error {
		// Check for context cancellation
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil || d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(s.appsDir, p)
		if err != nil {
			return nil
		}
		if ok, _ := doublestar.Match(s.pattern, filepath.ToSlash(rel)); ok {
			mu.Lock()
			matches = append(matches, p)
			mu.Unlock()
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk apps directory: %w", err)
	}

	// fastwalk visits files concurrently
	sort.Strings(matches)
	return matches, nil
}

// loadManifest parses one file and installs its packages
func (s *Seeder) loadManifest(path string) (int, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return 0, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	pkgs, err := ParseManifest(format, data)
	if err != nil {
		return 0, err
	}

	for i := range pkgs {
		pkgs[i].IconRef = resolveIcon(filepath.Dir(path), pkgs[i].Icon)
		if err := s.installer.Install(pkgs[i]); err != nil {
			return i, err
		}
	}
	return len(pkgs), nil
}

// resolveIcon turns an icon field into an icon reference.
// Values naming a file next to the manifest get a path and detected MIME type.
func resolveIcon(dir, icon string) types.Icon {
	ref := types.Icon{Key: icon}
	if icon == "" || !strings.ContainsAny(icon, "./") {
		return ref
	}

	path := filepath.Join(dir, filepath.Clean("/"+icon))
	if _, err := os.Stat(path); err != nil {
		return ref
	}

	ref.Key = strings.TrimSuffix(filepath.Base(icon), filepath.Ext(icon))
	ref.Path = path
	if mtype, err := mimetype.DetectFile(path); err == nil {
		ref.MIME = mtype.String()
	}
	return ref
}
