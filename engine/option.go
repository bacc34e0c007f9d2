package engine

import (
	"github.com/viant/afs"
	"go.uber.org/zap"
)

type Option func(*Service)

// WithFS sets the storage service sources are read from and written to.
func WithFS(fs afs.Service) Option {
	return func(s *Service) {
		s.fs = fs
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithRegistry(registry *Registry) Option {
	return func(s *Service) {
		s.registry = registry
	}
}

// WithDryRun reports fixes without writing files.
func WithDryRun(dryRun bool) Option {
	return func(s *Service) {
		s.dryRun = dryRun
	}
}

// WithRoot sets the base URL relative finding paths resolve against.
func WithRoot(root string) Option {
	return func(s *Service) {
		s.root = root
	}
}

// WithProjectMarkers overrides the build files that mark a project root.
func WithProjectMarkers(markers ...string) Option {
	return func(s *Service) {
		s.detector.markers = markers
	}
}
