// Package engine drives remediation over source files: it reads each file
// once, runs every rule reported against it and writes the result back only
// when something changed.
package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/url"
	"github.com/viant/remedy/finding"
	"github.com/viant/remedy/remediation"
	"github.com/viant/remedy/syntax"
	"go.uber.org/zap"
)

// Service remediates findings file by file.
type Service struct {
	fs       afs.Service
	logger   *zap.Logger
	registry *Registry
	detector *Detector
	dryRun   bool
	root     string
}

// New creates a service; by default it uses the local file system and the
// builtin rules.
func New(options ...Option) *Service {
	s := &Service{
		fs:       afs.New(),
		logger:   zap.NewNop(),
		registry: NewRegistry(),
	}
	s.detector = NewDetector(s.fs)
	for _, option := range options {
		option(s)
	}
	s.detector.fs = s.fs
	return s
}

// Registry returns the rule registry.
func (s *Service) Registry() *Registry { return s.registry }

// URL resolves a finding path against the configured root.
func (s *Service) URL(path string) string {
	if s.root == "" || strings.Contains(path, "://") || strings.HasPrefix(path, "/") {
		return path
	}
	return url.Join(s.root, path)
}

// Remediate fixes the findings reported against one file, grouped by rule,
// and writes the file when at least one fix changed it. Trees are taken from
// cache when the file was parsed earlier in the run; a nil cache parses
// afresh. It fails only when the file cannot be read, parsed or written.
func (s *Service) Remediate(ctx context.Context, cache *syntax.Cache, path string, findings []*finding.Finding) ([]*finding.Report, error) {
	if cache == nil {
		cache = syntax.NewCache()
	}
	URL := s.URL(path)
	logger := s.logger.With(zap.String("path", path))
	tree, err := s.parse(ctx, cache, URL)
	if err != nil {
		return nil, err
	}

	var reports []*finding.Report
	changed := false
	for _, file := range finding.ByFile(findings) {
		report := &finding.Report{Path: path, Rule: file.Rule}
		factory, ok := s.registry.Lookup(file.Rule)
		if !ok {
			for _, f := range file.Findings {
				report.Unfixed = append(report.Unfixed, finding.NewUnfixed(f, ReasonUnsupportedRule))
			}
			reports = append(reports, report)
			continue
		}
		remediator := remediation.New(logger, factory(logger)...)
		outcome := remediator.Remediate(ctx, tree, path, file.Rule, file.Findings)
		report.Changes, report.Unfixed = outcome.Changes, outcome.Unfixed
		changed = changed || len(report.Changes) > 0
		reports = append(reports, report)
	}
	if !changed {
		return reports, nil
	}

	if project := s.detector.Detect(ctx, URL); project != nil {
		for _, report := range reports {
			report.Manifest = project.Manifest
		}
	}
	text := tree.Print()
	if s.dryRun || !tree.Modified() || !cache.Changed(URL, []byte(text)) {
		return reports, nil
	}
	if err = s.fs.Upload(ctx, URL, 0644, strings.NewReader(text)); err != nil {
		return reports, fmt.Errorf("failed to write %s: %w", URL, err)
	}
	for _, report := range reports {
		report.Written = len(report.Changes) > 0
	}
	logger.Info("file remediated", zap.Int("changes", countChanges(reports)))
	return reports, nil
}

// Run remediates every file of findings in path order. A file that fails is
// reported with its error and every finding unfixed; the run continues.
func (s *Service) Run(ctx context.Context, findings []*finding.Finding) (*finding.Summary, error) {
	var paths []string
	byPath := map[string][]*finding.Finding{}
	for _, file := range finding.ByFile(findings) {
		if _, ok := byPath[file.Path]; !ok {
			paths = append(paths, file.Path)
		}
		byPath[file.Path] = append(byPath[file.Path], file.Findings...)
	}

	var reports []*finding.Report
	cache := syntax.NewCache()
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fileReports, err := s.Remediate(ctx, cache, path, byPath[path])
		if err != nil {
			s.logger.Warn("file skipped", zap.String("path", path), zap.Error(err))
			reports = append(reports, failed(path, byPath[path], err)...)
			continue
		}
		reports = append(reports, fileReports...)
	}
	summary := finding.Summarize(reports)
	s.logger.Info("run completed",
		zap.Int("files", summary.Files),
		zap.Int("fixed", summary.Fixed),
		zap.Int("unfixed", summary.Unfixed),
		zap.Int("failed", summary.Failed))
	return summary, nil
}

// parse returns the cached tree of URL, reading and parsing it on first use.
func (s *Service) parse(ctx context.Context, cache *syntax.Cache, URL string) (*syntax.Tree, error) {
	if tree, ok := cache.Lookup(URL); ok {
		return tree, nil
	}
	source, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", URL, err)
	}
	return cache.Parse(ctx, URL, source)
}

func failed(path string, findings []*finding.Finding, err error) []*finding.Report {
	var reports []*finding.Report
	for _, file := range finding.ByFile(findings) {
		report := &finding.Report{Path: path, Rule: file.Rule, Error: err.Error()}
		for _, f := range file.Findings {
			report.Unfixed = append(report.Unfixed, finding.NewUnfixed(f, err.Error()))
		}
		reports = append(reports, report)
	}
	return reports
}

func countChanges(reports []*finding.Report) int {
	count := 0
	for _, report := range reports {
		count += len(report.Changes)
	}
	return count
}
