package engine

import (
	"context"
	"path"
	"regexp"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
)

// Project is the Java build a source file belongs to.
type Project struct {
	Root     string // URL of the directory holding the manifest
	Type     string // maven or gradle
	Name     string
	Manifest string // URL of pom.xml or build.gradle(.kts)
	// RelativePath is the source path from the project root.
	RelativePath string
}

// maxDepth bounds the upward search for a project root.
const maxDepth = 64

var (
	mavenParent    = regexp.MustCompile(`(?s)<parent>.*?</parent>`)
	mavenArtifact  = regexp.MustCompile(`<artifactId>([^<]+)</artifactId>`)
	gradleProjName = regexp.MustCompile(`(?:rootProject|project)\.name\s*=\s*['"]([^'"]+)['"]`)
)

// Detector identifies the project root of a source file.
type Detector struct {
	fs afs.Service
	// markers are build files marking a project root, by priority
	markers []string
}

// NewDetector creates a detector for Maven and Gradle builds.
func NewDetector(fs afs.Service) *Detector {
	return &Detector{
		fs: fs,
		markers: []string{
			"pom.xml",          // Maven
			"build.gradle",     // Gradle
			"build.gradle.kts", // Gradle Kotlin DSL
		},
	}
}

// Detect searches up from the directory of URL for a project marker. It
// returns nil when the source is not inside a recognised build.
func (d *Detector) Detect(ctx context.Context, URL string) *Project {
	dir, _ := url.Split(URL, file.Scheme)
	for i := 0; i < maxDepth && dir != ""; i++ {
		for _, marker := range d.markers {
			manifest := url.Join(dir, marker)
			if ok, err := d.fs.Exists(ctx, manifest); err != nil || !ok {
				continue
			}
			project := &Project{
				Root:         dir,
				Type:         projectType(marker),
				Manifest:     manifest,
				RelativePath: strings.TrimPrefix(strings.TrimPrefix(URL, dir), "/"),
			}
			project.Name = d.projectName(ctx, project)
			return project
		}
		parent, _ := url.Split(dir, file.Scheme)
		if parent == dir {
			break
		}
		dir = parent
	}
	return nil
}

func projectType(marker string) string {
	if marker == "pom.xml" {
		return "maven"
	}
	return "gradle"
}

// projectName extracts the artifact or project name, falling back to the
// root directory name.
func (d *Detector) projectName(ctx context.Context, project *Project) string {
	fallback := path.Base(strings.TrimSuffix(project.Root, "/"))
	switch project.Type {
	case "maven":
		data, err := d.fs.DownloadWithURL(ctx, project.Manifest)
		if err != nil {
			return fallback
		}
		pom := mavenParent.ReplaceAll(data, nil)
		if matches := mavenArtifact.FindSubmatch(pom); len(matches) == 2 {
			return strings.TrimSpace(string(matches[1]))
		}
	case "gradle":
		for _, name := range []string{"settings.gradle", "settings.gradle.kts", path.Base(project.Manifest)} {
			data, err := d.fs.DownloadWithURL(ctx, url.Join(project.Root, name))
			if err != nil {
				continue
			}
			if matches := gradleProjName.FindSubmatch(data); len(matches) == 2 {
				return string(matches[1])
			}
		}
	}
	return fallback
}
