// Package finding defines what flows into and out of a remediation pass:
// analyzer findings, per-finding outcomes and the dependencies a fix needs.
package finding

// Finding is a location reported by an external static analyzer.
// EndLine and Column are zero when the analyzer did not report them.
type Finding struct {
	ID        string `yaml:"id" json:"id"`
	Rule      string `yaml:"rule" json:"rule"`
	Path      string `yaml:"path" json:"path"`
	StartLine int    `yaml:"startLine" json:"startLine"`
	EndLine   int    `yaml:"endLine,omitempty" json:"endLine,omitempty"`
	Column    int    `yaml:"column,omitempty" json:"column,omitempty"`
}

// LastLine returns the end of the reported line window.
func (f *Finding) LastLine() int {
	if f.EndLine >= f.StartLine {
		return f.EndLine
	}
	return f.StartLine
}

// HasColumn reports whether the analyzer pinned a column.
func (f *Finding) HasColumn() bool { return f.Column > 0 }

// UnfixedFinding is a finding no remediation could address, with the reason.
type UnfixedFinding struct {
	ID     string `json:"id"`
	Rule   string `json:"rule"`
	Path   string `json:"path"`
	Line   int    `json:"line,omitempty"`
	Reason string `json:"reason"`
}

// NewUnfixed creates an unfixed record for f.
func NewUnfixed(f *Finding, reason string) UnfixedFinding {
	return UnfixedFinding{ID: f.ID, Rule: f.Rule, Path: f.Path, Line: f.StartLine, Reason: reason}
}

// Change records a successful edit at a line, the findings it fixed and the
// dependencies it requires.
type Change struct {
	Line         int          `json:"line"`
	Findings     []string     `json:"findings"`
	Dependencies []Dependency `json:"dependencies,omitempty"`
}

// Report is the outcome of one rule over one file.
type Report struct {
	Path    string           `json:"path"`
	Rule    string           `json:"rule"`
	Changes []Change         `json:"changes"`
	Unfixed []UnfixedFinding `json:"unfixed"`
	Written bool             `json:"written"`

	// Manifest is the build file the dependencies of a fix belong in, when
	// the source sits in a detected project.
	Manifest string `json:"manifest,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Fixed returns the number of findings turned into changes.
func (r *Report) Fixed() int {
	count := 0
	for _, change := range r.Changes {
		count += len(change.Findings)
	}
	return count
}

// Summary aggregates reports across a run.
type Summary struct {
	Files        int          `json:"files"`
	Fixed        int          `json:"fixed"`
	Unfixed      int          `json:"unfixed"`
	Failed       int          `json:"failed"`
	Dependencies []Dependency `json:"dependencies,omitempty"`
	Reports      []*Report    `json:"reports"`
}

// Summarize builds run totals and the merged dependency list.
func Summarize(reports []*Report) *Summary {
	summary := &Summary{Reports: reports}
	files := map[string]bool{}
	var dependencies []Dependency
	for _, report := range reports {
		files[report.Path] = true
		if report.Error != "" {
			summary.Failed++
		}
		summary.Fixed += report.Fixed()
		summary.Unfixed += len(report.Unfixed)
		for _, change := range report.Changes {
			dependencies = append(dependencies, change.Dependencies...)
		}
	}
	summary.Files = len(files)
	summary.Dependencies = MergeDependencies(dependencies)
	return summary
}
