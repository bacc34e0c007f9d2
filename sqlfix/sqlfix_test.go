package sqlfix_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/remedy/finding"
	"github.com/viant/remedy/remediation"
	"github.com/viant/remedy/sqlfix"
	"github.com/viant/remedy/syntax"
	"go.uber.org/zap/zaptest"
)

func TestDataDriven(t *testing.T) {
	datadriven.Walk(t, "testdata", func(t *testing.T, path string) {
		datadriven.RunTest(t, path, func(t *testing.T, d *datadriven.TestData) string {
			switch d.Cmd {
			case "fix":
				return handleFix(t, d)
			default:
				t.Fatalf("unknown command: %s", d.Cmd)
				return ""
			}
		})
	})
}

// handleFix remediates one finding at line (and column, when given) and
// prints the report followed by the rewritten source, if it changed.
func handleFix(t *testing.T, d *datadriven.TestData) string {
	f := &finding.Finding{ID: "f1", Rule: sqlfix.Rule, Path: "Dao.java"}
	d.ScanArgs(t, "line", &f.StartLine)
	if d.HasArg("column") {
		d.ScanArgs(t, "column", &f.Column)
	}
	tree, err := syntax.Parse(context.Background(), f.Path, []byte(d.Input))
	require.NoError(t, err)

	logger := zaptest.NewLogger(t)
	remediator := remediation.New(logger, sqlfix.Pairs(logger)...)
	outcome := remediator.Remediate(context.Background(), tree, f.Path, f.Rule, []*finding.Finding{f})

	var out strings.Builder
	for _, change := range outcome.Changes {
		fmt.Fprintf(&out, "fixed: %d\n", change.Line)
	}
	for _, unfixed := range outcome.Unfixed {
		fmt.Fprintf(&out, "unfixed: %d %s\n", unfixed.Line, unfixed.Reason)
	}
	if tree.Modified() {
		out.WriteString(tree.Print())
	}
	return out.String()
}

func TestStrategy_Fix(t *testing.T) {
	const src = `class Dao {
    void find(Connection conn, String id) throws Exception {
        Statement stmt = conn.createStatement();
        stmt.executeQuery("SELECT * FROM t WHERE id = '" + id + "'");
        stmt.close();
    }
}
`
	ctx := context.Background()
	tree, err := syntax.Parse(ctx, "Dao.java", []byte(src))
	require.NoError(t, err)

	var calls []syntax.NodeID
	tree.Walk(tree.Root(), func(id syntax.NodeID) bool {
		if sqlfix.Matcher(tree, id) {
			calls = append(calls, id)
		}
		return true
	})
	require.Len(t, calls, 1)

	strategy := sqlfix.NewStrategy(zaptest.NewLogger(t))
	result := strategy.Fix(ctx, tree, calls[0])
	assert.True(t, result.Applied)
	assert.Empty(t, result.Reason)
	assert.Empty(t, result.Dependencies)

	printed := tree.Print()
	assert.Contains(t, printed, `PreparedStatement stmt = conn.prepareStatement("SELECT * FROM t WHERE id = ?");`)
	assert.Contains(t, printed, "stmt.setString(1, id);\n        stmt.executeQuery();\n        stmt.close();")
	assert.True(t, strings.HasPrefix(printed, "import java.sql.PreparedStatement;\n\nclass Dao {"))
}

func TestIsExecuteCall(t *testing.T) {
	const src = `class Dao {
    void run(Statement stmt, String q) throws Exception {
        stmt.execute(q);
        stmt.executeQuery(q);
        stmt.executeUpdate(q);
        stmt.executeLargeUpdate(q);
        stmt.execute(q, 1);
        stmt.addBatch(q);
        execute(q);
        stmt.executeBatch();
    }
}
`
	tree, err := syntax.Parse(context.Background(), "Dao.java", []byte(src))
	require.NoError(t, err)
	var lines []int
	for _, call := range tree.FindAll(tree.Root(), syntax.KindMethodCall) {
		if sqlfix.IsExecuteCall(tree, call) {
			lines = append(lines, tree.Line(call))
		}
	}
	assert.Equal(t, []int{3, 4, 5, 6}, lines)
}
