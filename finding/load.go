package finding

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/viant/afs"
	"gopkg.in/yaml.v3"
)

// Document is the findings file layout. JSON documents parse as well.
type Document struct {
	Findings []*Finding `yaml:"findings"`
}

// File groups the findings of one rule reported against one source file.
type File struct {
	Path     string
	Rule     string
	Findings []*Finding
}

// Load reads a findings document from URL.
func Load(ctx context.Context, fs afs.Service, URL string) ([]*Finding, error) {
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read findings %s: %w", URL, err)
	}
	return Decode(data)
}

// Decode parses a findings document, assigns ids to findings without one and
// drops repeated ids (first occurrence wins).
func Decode(data []byte) ([]*Finding, error) {
	var document Document
	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("invalid findings document: %w", err)
	}
	seen := map[string]bool{}
	var result []*Finding
	for i, f := range document.Findings {
		if f == nil {
			continue
		}
		if f.Path == "" || f.Rule == "" {
			return nil, fmt.Errorf("finding #%d: path and rule are required", i)
		}
		if f.ID == "" {
			f.ID = uuid.New().String()
		}
		if seen[f.ID] {
			continue
		}
		seen[f.ID] = true
		result = append(result, f)
	}
	return result, nil
}

// ByFile groups findings per path and rule, sorted by path then rule. Input
// order is kept within a group.
func ByFile(findings []*Finding) []*File {
	index := map[[2]string]*File{}
	var files []*File
	for _, f := range findings {
		key := [2]string{f.Path, f.Rule}
		file, ok := index[key]
		if !ok {
			file = &File{Path: f.Path, Rule: f.Rule}
			index[key] = file
			files = append(files, file)
		}
		file.Findings = append(file.Findings, f)
	}
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].Path != files[j].Path {
			return files[i].Path < files[j].Path
		}
		return files[i].Rule < files[j].Rule
	})
	return files
}
