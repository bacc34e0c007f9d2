package binding_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/remedy/binding"
	"github.com/viant/remedy/syntax"
)

const demo = `package demo;

class Demo {
    int f;

    void m(int p, Object o, java.util.List<String> list) throws Exception {
        int x = 1, y = x;
        for (int i = 0; i < y; i++) {
            use(i);
        }
        for (String s : list) {
            use(s);
        }
        try (Connection c = open(); Statement st = c.createStatement()) {
            st.close();
        } catch (Exception e) {
            log(e);
        }
        Runnable r = () -> use(p);
        if (o instanceof String str && str.isEmpty()) {
            use(str);
        }
        use(f);
        use(missing);
    }
}
`

const usage = `class Usage {
    void run(Connection conn) throws Exception {
        String q = "";
        q = "a";
        Statement stmt = conn.createStatement();
        stmt.setFetchSize(1);
        stmt.executeQuery(q);
        int n = 0;
        n++;
        final String k;
        String a = "x";
        String b = a;
        use(b, k);
        String twice = "";
        twice = "1";
        twice = "2";
        use(twice);
        int v = 1;
        class Inner {
            int v = 2;
            int get() { return v; }
        }
        use(v);
        String blank = "";
        use(blank);
        Statement held = conn.createStatement();
        Runnable r = () -> use(held);
        Statement shared = conn.createStatement();
        Object o = new Object() {
            public String toString() { return shared.toString(); }
        };
    }
}
`

func parse(t *testing.T, source string) *syntax.Tree {
	t.Helper()
	tree, err := syntax.Parse(context.Background(), "Test.java", []byte(source))
	require.NoError(t, err)
	return tree
}

// identifier returns the nth identifier named name; negative n counts from the end.
func identifier(t *testing.T, tree *syntax.Tree, name string, n int) syntax.NodeID {
	t.Helper()
	var matches []syntax.NodeID
	for _, id := range tree.FindAll(tree.Root(), syntax.KindIdentifier) {
		if tree.Token(id) == name {
			matches = append(matches, id)
		}
	}
	if n < 0 {
		n += len(matches)
	}
	require.True(t, n >= 0 && n < len(matches), "identifier %s #%d", name, n)
	return matches[n]
}

func TestResolve(t *testing.T) {
	tree := parse(t, demo)
	tests := []struct {
		name       string
		occurrence int
		want       binding.Kind
	}{
		{name: "x", occurrence: -1, want: binding.BlockLocal},
		{name: "i", occurrence: -1, want: binding.ForInit},
		{name: "i", occurrence: 1, want: binding.ForInit},
		{name: "s", occurrence: -1, want: binding.ForEach},
		{name: "c", occurrence: -1, want: binding.Resource},
		{name: "st", occurrence: -1, want: binding.Resource},
		{name: "e", occurrence: -1, want: binding.Parameter},
		{name: "p", occurrence: -1, want: binding.Parameter},
		{name: "str", occurrence: 1, want: binding.Pattern},
		{name: "str", occurrence: -1, want: binding.Pattern},
		{name: "f", occurrence: -1, want: binding.Field},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			decl := binding.Resolve(tree, tc.name, identifier(t, tree, tc.name, tc.occurrence))
			require.NotNil(t, decl)
			assert.Equal(t, tc.want, decl.Kind, decl.Kind.String())
			assert.Equal(t, tc.name, decl.Name)
			assert.Equal(t, tc.want.IsLocal(), binding.ResolveLocal(tree, tc.name, identifier(t, tree, tc.name, tc.occurrence)) != nil)
		})
	}

	assert.Nil(t, binding.Resolve(tree, "missing", identifier(t, tree, "missing", 0)))
}

func TestDeclaration_Scope(t *testing.T) {
	tree := parse(t, demo)
	texts := func(ids []syntax.NodeID) []string {
		var result []string
		for _, id := range ids {
			result = append(result, tree.Text(id))
		}
		return result
	}

	t.Run("block local", func(t *testing.T) {
		decl := binding.Resolve(tree, "x", identifier(t, tree, "x", -1))
		require.NotNil(t, decl)
		scope := decl.Scope(tree)
		assert.Equal(t, []string{"x"}, texts(scope.Expressions))
		require.Len(t, scope.Statements, 7)
		assert.Equal(t, syntax.KindFor, tree.Kind(scope.Statements[0]))
		declared := tree.Range(decl.Site).StartByte
		for _, root := range scope.Roots() {
			assert.Greater(t, tree.Range(root).StartByte, declared)
		}
	})

	t.Run("for init", func(t *testing.T) {
		decl := binding.Resolve(tree, "i", identifier(t, tree, "i", -1))
		require.NotNil(t, decl)
		scope := decl.Scope(tree)
		assert.Equal(t, []string{"i < y", "i++"}, texts(scope.Expressions))
		require.Len(t, scope.Statements, 1)
		assert.Equal(t, syntax.KindBlock, tree.Kind(scope.Statements[0]))
	})

	t.Run("resource", func(t *testing.T) {
		decl := binding.Resolve(tree, "c", identifier(t, tree, "c", -1))
		require.NotNil(t, decl)
		scope := decl.Scope(tree)
		assert.Equal(t, []string{"Statement st = c.createStatement()"}, texts(scope.Expressions))
		require.Len(t, scope.Statements, 1)
		assert.True(t, scope.Contains(tree, identifier(t, tree, "st", -1)))
	})

	t.Run("pattern", func(t *testing.T) {
		decl := binding.Resolve(tree, "str", identifier(t, tree, "str", -1))
		require.NotNil(t, decl)
		scope := decl.Scope(tree)
		assert.Equal(t, []string{"str.isEmpty()"}, texts(scope.Expressions))
		require.Len(t, scope.Statements, 1)
		assert.Equal(t, syntax.KindBlock, tree.Kind(scope.Statements[0]))
	})

	t.Run("parameter", func(t *testing.T) {
		decl := binding.Resolve(tree, "p", identifier(t, tree, "p", -1))
		require.NotNil(t, decl)
		scope := decl.Scope(tree)
		assert.Empty(t, scope.Expressions)
		require.Len(t, scope.Statements, 1)
		assert.False(t, scope.Empty())
	})
}

func TestLocalBinding(t *testing.T) {
	tree := parse(t, usage)
	local := func(name string) *binding.LocalBinding {
		b := binding.ResolveLocal(tree, name, identifier(t, tree, name, -1))
		require.NotNil(t, b, name)
		return b
	}

	stmt := local("stmt")
	assert.Len(t, stmt.References(), 2)
	assert.Empty(t, stmt.Assignments())
	assert.True(t, stmt.IsEffectivelyFinal())
	assert.False(t, stmt.IsFinal())
	assert.Equal(t, "Statement", tree.Text(stmt.DeclaredType()))
	assert.Equal(t, "conn.createStatement()", tree.Text(stmt.Initializer()))

	q := local("q")
	assert.Len(t, q.References(), 2)
	assert.Len(t, q.Assignments(), 1)
	assert.False(t, q.IsEffectivelyFinal())

	n := local("n")
	assert.Len(t, n.Updates(), 1)
	assert.False(t, n.IsEffectivelyFinal())

	k := local("k")
	assert.True(t, k.IsFinal())
	assert.True(t, k.IsEffectivelyFinal())

	conn := local("conn")
	assert.Equal(t, binding.Parameter, conn.Declaration().Kind)
	assert.True(t, conn.IsEffectivelyFinal())
	assert.Equal(t, syntax.NoNode, conn.Initializer())

	v := local("v")
	refs := v.References()
	require.Len(t, refs, 1)
	assert.Equal(t, identifier(t, tree, "v", -1), refs[0])

	assert.False(t, stmt.Captured())
	assert.True(t, local("held").Captured())
	assert.True(t, local("shared").Captured())
	assert.False(t, v.Captured())

	inner := binding.Resolve(tree, "Inner", identifier(t, tree, "v", -1))
	require.NotNil(t, inner)
	assert.Equal(t, binding.LocalType, inner.Kind)
}

func TestSingleValue(t *testing.T) {
	tree := parse(t, usage)
	tests := []struct {
		description string
		name        string
		want        string
		nonEmpty    string
	}{
		{description: "empty initializer with one assignment", name: "q", want: `"a"`},
		{description: "chain of initializers", name: "b", want: `"x"`},
		{description: "two assignments", name: "twice", want: "twice"},
		{description: "parameter", name: "conn", want: "conn"},
		{description: "uninitialized final", name: "k", want: "k"},
		{description: "empty initializer only", name: "blank", want: `""`, nonEmpty: "blank"},
	}
	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			expr := identifier(t, tree, tc.name, -1)
			assert.Equal(t, tc.want, tree.Text(binding.SingleValue(tree, expr)))
			nonEmpty := tc.want
			if tc.nonEmpty != "" {
				nonEmpty = tc.nonEmpty
			}
			assert.Equal(t, nonEmpty, tree.Text(binding.SingleNonEmptyValue(tree, expr)))
		})
	}
}
