package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/remedy/finding"
	"github.com/viant/remedy/sqlfix"
	"github.com/viant/remedy/syntax"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

const dao = `package demo;

import java.sql.*;

class Dao {
    ResultSet find(Connection conn, String id) throws Exception {
        Statement stmt = conn.createStatement();
        return stmt.executeQuery("SELECT * FROM t WHERE id = '" + id + "'");
    }
}
`

const pom = `<project>
  <parent>
    <artifactId>parent-pom</artifactId>
  </parent>
  <artifactId>orders</artifactId>
</project>
`

func upload(t *testing.T, fs afs.Service, assets map[string]string) {
	for URL, content := range assets {
		require.NoError(t, fs.Upload(context.Background(), URL, 0644, strings.NewReader(content)))
	}
}

func TestService_Run(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	root := "mem://localhost/run"
	upload(t, fs, map[string]string{
		root + "/pom.xml":                        pom,
		root + "/src/main/java/demo/Dao.java":    dao,
		root + "/src/main/java/demo/Broken.java": "class Broken { void m( }\n",
	})
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	service := New(WithFS(fs), WithRoot(root), WithLogger(zaptest.NewLogger(t)))
	findings := []*finding.Finding{
		{ID: "1", Rule: sqlfix.Rule, Path: "src/main/java/demo/Dao.java", StartLine: 8},
		{ID: "2", Rule: "weak-hash", Path: "src/main/java/demo/Dao.java", StartLine: 7},
		{ID: "3", Rule: sqlfix.Rule, Path: "src/main/java/demo/Broken.java", StartLine: 1},
	}
	summary, err := service.Run(ctx, findings)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Files)
	assert.Equal(t, 1, summary.Fixed)
	assert.Equal(t, 2, summary.Unfixed)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Reports, 3)

	broken := summary.Reports[0]
	assert.Equal(t, "src/main/java/demo/Broken.java", broken.Path)
	assert.Contains(t, broken.Error, "syntax error")
	require.Len(t, broken.Unfixed, 1)
	assert.Equal(t, "3", broken.Unfixed[0].ID)

	fixed := summary.Reports[1]
	assert.Equal(t, sqlfix.Rule, fixed.Rule)
	assert.True(t, fixed.Written)
	assert.Equal(t, root+"/pom.xml", fixed.Manifest)
	require.Len(t, fixed.Changes, 1)
	assert.Equal(t, finding.Change{Line: 8, Findings: []string{"1"}}, fixed.Changes[0])

	unsupported := summary.Reports[2]
	assert.Equal(t, "weak-hash", unsupported.Rule)
	assert.False(t, unsupported.Written)
	require.Len(t, unsupported.Unfixed, 1)
	assert.Equal(t, ReasonUnsupportedRule, unsupported.Unfixed[0].Reason)

	written, err := fs.DownloadWithURL(ctx, root+"/src/main/java/demo/Dao.java")
	require.NoError(t, err)
	assert.Contains(t, string(written), `PreparedStatement stmt = conn.prepareStatement("SELECT * FROM t WHERE id = ?");`)
	assert.Contains(t, string(written), "stmt.setString(1, id);")
}

func TestService_Remediate(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	root := "mem://localhost/remediate"
	upload(t, fs, map[string]string{root + "/Dao.java": dao})

	var testCases = []struct {
		description string
		options     []Option
		line        int
		written     bool
		changed     bool
	}{
		{description: "dry run", options: []Option{WithDryRun(true)}, line: 8},
		{description: "nothing to fix", line: 7},
		{description: "written", line: 8, written: true, changed: true},
	}

	for _, testCase := range testCases {
		options := append([]Option{WithFS(fs), WithRoot(root)}, testCase.options...)
		service := New(options...)
		reports, err := service.Remediate(ctx, nil, "Dao.java", []*finding.Finding{
			{ID: "1", Rule: sqlfix.Rule, Path: "Dao.java", StartLine: testCase.line},
		})
		require.NoError(t, err, testCase.description)
		require.Len(t, reports, 1, testCase.description)
		assert.Equal(t, testCase.written, reports[0].Written, testCase.description)
		assert.Empty(t, reports[0].Manifest, testCase.description)

		content, err := fs.DownloadWithURL(ctx, root+"/Dao.java")
		require.NoError(t, err, testCase.description)
		assert.Equal(t, testCase.changed, string(content) != dao, testCase.description)
	}
}

func TestService_RemediateCached(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	root := "mem://localhost/cached"
	upload(t, fs, map[string]string{root + "/Dao.java": dao})
	service := New(WithFS(fs), WithRoot(root), WithDryRun(true))
	cache := syntax.NewCache()

	reports, err := service.Remediate(ctx, cache, "Dao.java", []*finding.Finding{
		{ID: "1", Rule: sqlfix.Rule, Path: "Dao.java", StartLine: 8},
	})
	require.NoError(t, err)
	require.Len(t, reports, 1)
	require.Len(t, reports[0].Changes, 1)
	tree, ok := cache.Lookup(root + "/Dao.java")
	require.True(t, ok)

	// a cached file is not read again
	upload(t, fs, map[string]string{root + "/Dao.java": "class Broken { void m( }\n"})
	reports, err = service.Remediate(ctx, cache, "Dao.java", []*finding.Finding{
		{ID: "2", Rule: sqlfix.Rule, Path: "Dao.java", StartLine: 8},
	})
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Empty(t, reports[0].Changes)
	require.Len(t, reports[0].Unfixed, 1)
	assert.Equal(t, "2", reports[0].Unfixed[0].ID)

	assert.Equal(t, 1, cache.Len())
	cached, _ := cache.Lookup(root + "/Dao.java")
	assert.Same(t, tree, cached)
	assert.Contains(t, tree.Print(), "stmt.setString(1, id);")
}

func TestService_RemediateMissingFile(t *testing.T) {
	service := New(WithFS(afs.New()), WithRoot("mem://localhost/missing"))
	_, err := service.Remediate(context.Background(), nil, "Nope.java", []*finding.Finding{
		{ID: "1", Rule: sqlfix.Rule, Path: "Nope.java", StartLine: 1},
	})
	assert.Error(t, err)
}

func TestService_URL(t *testing.T) {
	service := New(WithRoot("mem://localhost/base"))
	assert.Equal(t, "mem://localhost/base/src/A.java", service.URL("src/A.java"))
	assert.Equal(t, "/abs/A.java", service.URL("/abs/A.java"))
	assert.Equal(t, "file://localhost/A.java", service.URL("file://localhost/A.java"))
	assert.Equal(t, "A.java", New().URL("A.java"))
}

func TestDetector_Detect(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	upload(t, fs, map[string]string{
		"mem://localhost/detect/maven/pom.xml":                    pom,
		"mem://localhost/detect/maven/src/main/java/A.java":       "class A {}",
		"mem://localhost/detect/gradle/build.gradle":              "plugins { id 'java' }",
		"mem://localhost/detect/gradle/settings.gradle":           "rootProject.name = 'billing'",
		"mem://localhost/detect/gradle/app/src/B.java":            "class B {}",
		"mem://localhost/detect/plain/src/C.java":                 "class C {}",
		"mem://localhost/detect/kotlin/build.gradle.kts":          "plugins { java }",
		"mem://localhost/detect/kotlin/src/main/java/demo/D.java": "class D {}",
	})
	detector := NewDetector(fs)

	maven := detector.Detect(ctx, "mem://localhost/detect/maven/src/main/java/A.java")
	require.NotNil(t, maven)
	assert.Equal(t, "maven", maven.Type)
	assert.Equal(t, "orders", maven.Name)
	assert.Equal(t, "mem://localhost/detect/maven/pom.xml", maven.Manifest)
	assert.Equal(t, "src/main/java/A.java", maven.RelativePath)

	gradle := detector.Detect(ctx, "mem://localhost/detect/gradle/app/src/B.java")
	require.NotNil(t, gradle)
	assert.Equal(t, "gradle", gradle.Type)
	assert.Equal(t, "billing", gradle.Name)

	kotlin := detector.Detect(ctx, "mem://localhost/detect/kotlin/src/main/java/demo/D.java")
	require.NotNil(t, kotlin)
	assert.Equal(t, "kotlin", kotlin.Name)
	assert.Equal(t, "mem://localhost/detect/kotlin/build.gradle.kts", kotlin.Manifest)

	assert.Nil(t, detector.Detect(ctx, "mem://localhost/detect/plain/src/C.java"))
}
