package sqlfix

import "github.com/viant/remedy/syntax"

const (
	createStatement  = "createStatement"
	prepareStatement = "prepareStatement"
	setString        = "setString"
	preparedType     = "PreparedStatement"
	preparedImport   = "java.sql.PreparedStatement"
)

// executeMethods take the SQL text as their only argument on a Statement.
var executeMethods = map[string]bool{
	"executeQuery":       true,
	"execute":            true,
	"executeUpdate":      true,
	"executeLargeUpdate": true,
}

// sqlTextMethods fail at runtime when called with SQL text on a PreparedStatement.
var sqlTextMethods = map[string]bool{
	"executeQuery":       true,
	"execute":            true,
	"executeUpdate":      true,
	"executeLargeUpdate": true,
	"addBatch":           true,
}

var retypeable = map[string]bool{
	"Statement":          true,
	"java.sql.Statement": true,
	"var":                true,
}

// IsExecuteCall matches receiver.executeXxx(sql) invocations.
func IsExecuteCall(t *syntax.Tree, id syntax.NodeID) bool {
	if t.Kind(id) != syntax.KindMethodCall || !executeMethods[t.Name(id)] {
		return false
	}
	if t.Child(id, "object") == syntax.NoNode {
		return false
	}
	return len(t.Arguments(t.Child(id, "arguments"))) == 1
}

func isCreateStatement(t *syntax.Tree, id syntax.NodeID) bool {
	return t.Kind(id) == syntax.KindMethodCall && t.Name(id) == createStatement &&
		t.Child(id, "object") != syntax.NoNode
}

// isSimpleReceiver reports whether re-evaluating expr has no side effects:
// a name, this, or a field access chain over them.
func isSimpleReceiver(t *syntax.Tree, expr syntax.NodeID) bool {
	expr = t.Unwrap(expr)
	switch t.Kind(expr) {
	case syntax.KindIdentifier:
		return true
	case syntax.KindFieldAccess:
		return isSimpleReceiver(t, t.Child(expr, "object"))
	}
	return t.Type(expr) == "this"
}
