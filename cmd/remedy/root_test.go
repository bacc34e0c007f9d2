package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/remedy/finding"
)

const source = `class Dao {
    void find(java.sql.Connection conn, String id) throws Exception {
        java.sql.Statement stmt = conn.createStatement();
        stmt.execute("DELETE FROM t WHERE id = '" + id + "'");
    }
}
`

const findings = `findings:
  - id: f1
    rule: CWE-89
    path: Dao.java
    startLine: 4
  - id: f2
    rule: weak-hash
    path: Dao.java
    startLine: 3
`

const config = `rules:
  CWE-89: sql-injection
`

func execute(t *testing.T, args ...string) (string, string, error) {
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestRootCmd_Version(t *testing.T) {
	out, _, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, Version+"\n", out)
}

func TestFixCmd(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	base := "mem://localhost/cmd/fix"
	for URL, content := range map[string]string{
		base + "/src/Dao.java":  source,
		base + "/findings.yaml": findings,
		base + "/remedy.yaml":   config,
	} {
		require.NoError(t, fs.Upload(ctx, URL, 0644, strings.NewReader(content)))
	}

	out, _, err := execute(t, "fix",
		"--config", base+"/remedy.yaml",
		"--findings", base+"/findings.yaml",
		"--root", base+"/src",
		"--dry-run",
		"--log-level", "error")
	require.NoError(t, err)

	summary := &finding.Summary{}
	require.NoError(t, json.Unmarshal([]byte(out), summary))
	assert.Equal(t, 1, summary.Files)
	assert.Equal(t, 1, summary.Fixed)
	assert.Equal(t, 1, summary.Unfixed)
	require.Len(t, summary.Reports, 2)
	assert.False(t, summary.Reports[0].Written)

	content, err := fs.DownloadWithURL(ctx, base+"/src/Dao.java")
	require.NoError(t, err)
	assert.Equal(t, source, string(content))

	_, _, err = execute(t, "fix",
		"--config", base+"/remedy.yaml",
		"--findings", base+"/findings.yaml",
		"--root", base+"/src",
		"--output", base+"/summary.json",
		"--log-format", "json")
	require.NoError(t, err)
	report, err := fs.DownloadWithURL(ctx, base+"/summary.json")
	require.NoError(t, err)
	assert.Contains(t, string(report), `"fixed": 1`)
	content, err = fs.DownloadWithURL(ctx, base+"/src/Dao.java")
	require.NoError(t, err)
	assert.Contains(t, string(content), "stmt.setString(1, id);")
}

func TestFixCmd_Errors(t *testing.T) {
	var testCases = []struct {
		description string
		args        []string
		expect      string
	}{
		{description: "findings required", args: []string{"fix"}, expect: "findings"},
		{description: "missing findings", args: []string{"fix", "--findings", "mem://localhost/cmd/none.yaml"}, expect: "failed to read findings"},
		{description: "bad log format", args: []string{"fix", "--findings", "x", "--log-format", "xml"}, expect: "unsupported log format"},
		{description: "missing config", args: []string{"rules", "--config", "mem://localhost/cmd/none.yaml"}, expect: "failed to read config"},
	}

	for _, testCase := range testCases {
		_, _, err := execute(t, testCase.args...)
		require.Error(t, err, testCase.description)
		assert.Contains(t, err.Error(), testCase.expect, testCase.description)
	}
}

func TestRulesCmd(t *testing.T) {
	out, _, err := execute(t, "rules")
	require.NoError(t, err)
	assert.Equal(t, "sql-injection\n", out)
}
