package finding

import (
	"sort"
	"strings"

	"golang.org/x/mod/semver"
)

// Dependency is a build artifact a fix requires, e.g. a Maven coordinate.
type Dependency struct {
	Group    string `json:"group" yaml:"group"`
	Artifact string `json:"artifact" yaml:"artifact"`
	Version  string `json:"version" yaml:"version"`
}

// Key returns group:artifact.
func (d Dependency) Key() string { return d.Group + ":" + d.Artifact }

func (d Dependency) String() string {
	if d.Version == "" {
		return d.Key()
	}
	return d.Key() + ":" + d.Version
}

// MergeDependencies deduplicates by Key keeping the highest version; the
// result is sorted by Key.
func MergeDependencies(dependencies []Dependency) []Dependency {
	if len(dependencies) == 0 {
		return nil
	}
	byKey := map[string]Dependency{}
	for _, dependency := range dependencies {
		prev, ok := byKey[dependency.Key()]
		if !ok || CompareVersions(dependency.Version, prev.Version) > 0 {
			byKey[dependency.Key()] = dependency
		}
	}
	result := make([]Dependency, 0, len(byKey))
	for _, dependency := range byKey {
		result = append(result, dependency)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key() < result[j].Key() })
	return result
}

// CompareVersions orders artifact versions semantically when both parse as
// semantic versions (a missing "v" prefix is tolerated), lexically otherwise.
func CompareVersions(a, b string) int {
	va, vb := canonical(a), canonical(b)
	if semver.IsValid(va) && semver.IsValid(vb) {
		return semver.Compare(va, vb)
	}
	return strings.Compare(a, b)
}

func canonical(version string) string {
	if version == "" || strings.HasPrefix(version, "v") {
		return version
	}
	return "v" + version
}
