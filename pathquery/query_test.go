package pathquery

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/binfile/errors"
	"github.com/c360/binfile/message"
	"github.com/c360/binfile/xmldoc"
)

const entryDoc = `<Entry id="e-1"><image>aGVsbG8=</image><name>pic.png</name><dir>/tmp/out</dir><dup>a</dup><dup>b</dup><!-- note --><empty/></Entry>`

const namespacedDoc = `<ns1:Entry xmlns:ns1="http://ns1.acme.inc" xmlns:ns2="http://ns2.acme.inc"><ns2:image>aGVsbG8=</ns2:image></ns1:Entry>`

func parse(t *testing.T, s string) *xmldoc.Document {
	t.Helper()
	doc, err := xmldoc.ParseString(s)
	require.NoError(t, err)
	return doc
}

func TestCompile(t *testing.T) {
	tests := []struct {
		name     string
		expr     string
		sentinel error
	}{
		{"simple", "//image", nil},
		{"text node", "//image/text()", nil},
		{"prefixed", "/ns1:Entry/ns2:image", nil},
		{"context ref", "$ctx:targetDirectory", nil},
		{"property function", "get-property('targetFileName')", nil},
		{"embedded ref", "concat($ctx:dir, '/', //name)", nil},
		{"empty", "  ", errors.ErrMissingConfig},
		{"malformed", "//image[", errors.ErrQueryFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Compile(tt.expr, nil)
			if tt.sentinel != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.sentinel)
				assert.Contains(t, err.Error(), "PathQuery.Compile")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expr, q.String())
		})
	}
}

func TestMustCompile_Panics(t *testing.T) {
	assert.Panics(t, func() { MustCompile("//a[", nil) })
}

func TestQuery_ContextProperty(t *testing.T) {
	name, ok := MustCompile("$ctx:targetDirectory", nil).ContextProperty()
	assert.True(t, ok)
	assert.Equal(t, "targetDirectory", name)

	name, ok = MustCompile(`get-property("fileName")`, nil).ContextProperty()
	assert.True(t, ok)
	assert.Equal(t, "fileName", name)

	_, ok = MustCompile("//image", nil).ContextProperty()
	assert.False(t, ok)
}

func TestQuery_Select(t *testing.T) {
	doc := parse(t, entryDoc)

	tests := []struct {
		name     string
		expr     string
		check    func(t *testing.T, r Result)
		sentinel error
	}{
		{
			name: "element",
			expr: "//image",
			check: func(t *testing.T, r Result) {
				n, ok := r.(NodeResult)
				require.True(t, ok)
				assert.False(t, n.Node.IsLeaf())
			},
		},
		{
			name: "text leaf",
			expr: "//image/text()",
			check: func(t *testing.T, r Result) {
				n, ok := r.(NodeResult)
				require.True(t, ok)
				assert.True(t, n.Node.IsLeaf())
				assert.Equal(t, "aGVsbG8=", n.Node.Text())
			},
		},
		{
			name: "attribute",
			expr: "/Entry/@id",
			check: func(t *testing.T, r Result) {
				a, ok := r.(AttributeResult)
				require.True(t, ok)
				assert.Equal(t, "id", a.Name)
				assert.Equal(t, "e-1", a.Value)
				require.NotNil(t, a.Owner)
				assert.Equal(t, "Entry", a.Owner.Name())
			},
		},
		{
			name: "string function",
			expr: "string(//name)",
			check: func(t *testing.T, r Result) {
				assert.Equal(t, StringResult{Value: "pic.png"}, r)
			},
		},
		{
			name: "no match",
			expr: "//notExistingElement",
			check: func(t *testing.T, r Result) {
				assert.Nil(t, r)
			},
		},
		{name: "ambiguous", expr: "//dup", sentinel: errors.ErrAmbiguousMatch},
		{name: "number", expr: "count(//dup)", sentinel: errors.ErrUnsupportedResult},
		{name: "boolean", expr: "1 = 1", sentinel: errors.ErrUnsupportedResult},
		{name: "comment", expr: "//comment()", sentinel: errors.ErrUnsupportedResult},
		{name: "document node", expr: "/", sentinel: errors.ErrUnsupportedResult},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := MustCompile(tt.expr, nil).Select(doc, message.Context{})
			if tt.sentinel != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.sentinel)
				assert.Contains(t, err.Error(), tt.expr)
				return
			}
			require.NoError(t, err)
			tt.check(t, r)
		})
	}
}

func TestQuery_AmbiguousIsQueryError(t *testing.T) {
	_, err := MustCompile("//dup", nil).Select(parse(t, entryDoc), message.Context{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrQueryFailed)
	assert.True(t, errors.IsInvalid(err))
}

func TestQuery_Namespaces(t *testing.T) {
	doc := parse(t, namespacedDoc)

	t.Run("bound by document", func(t *testing.T) {
		r, err := MustCompile("/ns1:Entry/ns2:image", nil).Select(doc, message.Context{})
		require.NoError(t, err)
		require.IsType(t, NodeResult{}, r)
	})

	t.Run("bound by configuration with other prefixes", func(t *testing.T) {
		q := MustCompile("/a:Entry/b:image", map[string]string{
			"a": "http://ns1.acme.inc",
			"b": "http://ns2.acme.inc",
		})
		r, err := q.Select(doc, message.Context{})
		require.NoError(t, err)
		require.IsType(t, NodeResult{}, r)
		assert.Equal(t, map[string]string{"a": "http://ns1.acme.inc", "b": "http://ns2.acme.inc"}, q.Namespaces())
	})

	t.Run("configuration wins over document", func(t *testing.T) {
		q := MustCompile("/ns1:Entry/ns2:image", map[string]string{"ns2": "http://elsewhere"})
		r, err := q.Select(doc, message.Context{})
		require.NoError(t, err)
		assert.Nil(t, r)
	})
}

func TestCompile_ReusesExpressions(t *testing.T) {
	assert.NotNil(t, MustCompile("//image", nil).exprs)
	assert.NotNil(t, MustCompile("/a:Entry/b:image", map[string]string{
		"a": "http://ns1.acme.inc",
		"b": "http://ns2.acme.inc",
	}).exprs)
	assert.Nil(t, MustCompile("concat($ctx:dir, //name)", nil).exprs)
	assert.Nil(t, MustCompile("$ctx:dir", nil).exprs)
}

func TestQuery_ConcurrentEvaluation(t *testing.T) {
	q := MustCompile("//name", nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			doc, err := xmldoc.ParseString(entryDoc)
			if !assert.NoError(t, err) {
				return
			}
			for j := 0; j < 50; j++ {
				v, found, err := q.Text(doc, message.Context{})
				assert.NoError(t, err)
				assert.True(t, found)
				assert.Equal(t, "pic.png", v)
			}
		}()
	}
	wg.Wait()
}

func TestQuery_ContextReferences(t *testing.T) {
	mctx := message.NewContext("msg-1", map[string]string{
		"targetDirectory": "/tmp/out",
		"kind":            "name",
		"quoted":          `it's "odd"`,
	})
	doc := parse(t, entryDoc)

	t.Run("bare reference needs no document", func(t *testing.T) {
		v, found, err := MustCompile("$ctx:targetDirectory", nil).Text(nil, mctx)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "/tmp/out", v)
	})

	t.Run("missing property is not found", func(t *testing.T) {
		_, found, err := MustCompile("get-property('absent')", nil).Text(nil, mctx)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("embedded reference", func(t *testing.T) {
		v, found, err := MustCompile("concat($ctx:targetDirectory, '/', //name)", nil).Text(doc, mctx)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "/tmp/out/pic.png", v)
	})

	t.Run("reference inside predicate", func(t *testing.T) {
		v, found, err := MustCompile("/Entry/*[local-name() = $ctx:kind]", nil).Text(doc, mctx)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "pic.png", v)
	})

	t.Run("value with both quote kinds", func(t *testing.T) {
		v, _, err := MustCompile("concat('', $ctx:quoted)", nil).Text(doc, mctx)
		require.NoError(t, err)
		assert.Equal(t, `it's "odd"`, v)
	})

	t.Run("references inside string literals stay literal", func(t *testing.T) {
		v, _, err := MustCompile(`concat('$ctx:kind', "get-property('kind')", '=', $ctx:kind)`, nil).Text(doc, mctx)
		require.NoError(t, err)
		assert.Equal(t, `$ctx:kindget-property('kind')=name`, v)
	})

	t.Run("literal with reference in predicate", func(t *testing.T) {
		_, found, err := MustCompile(`/Entry/*[@k='$ctx:kind']`, nil).Text(doc, mctx)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("document query without document", func(t *testing.T) {
		_, err := MustCompile("//name", nil).Evaluate(nil, mctx)
		assert.ErrorIs(t, err, errors.ErrQueryFailed)
	})
}

func TestLiteral(t *testing.T) {
	assert.Equal(t, "'plain'", literal("plain"))
	assert.Equal(t, `"it's"`, literal("it's"))
	assert.Equal(t, `concat('a', "'", 'b"c')`, literal(`a'b"c`))
}
