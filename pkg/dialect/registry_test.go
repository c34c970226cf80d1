package dialect

import (
	"testing"

	"github.com/BackEndTea/sql-parser/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	d := NewDialect("registry-test-1.0").
		Family(FamilyMariaDB).
		Version(100100).
		Keyword("SELECT", token.FlagReserved).
		Build()
	Register(d)
	Alias("registry-test", "registry-test-1.0")

	got, ok := Get("REGISTRY-TEST-1.0")
	require.True(t, ok)
	assert.Same(t, d, got)

	got, ok = Get("registry-test")
	require.True(t, ok)
	assert.Same(t, d, got)

	got, ok = Get("MariaDb100100")
	require.True(t, ok, "context class names resolve")
	assert.Same(t, d, got)

	assert.Contains(t, List(), "registry-test-1.0")
	assert.Equal(t, "registry-test-1.0", Aliases()["registry-test"])
}

func TestResolve(t *testing.T) {
	_, err := Resolve("no-such-dialect")
	require.ErrorIs(t, err, ErrUnknownDialect)

	prev := Default()
	t.Cleanup(func() { SetDefault(prev) })

	SetDefault(nil)
	_, err = Resolve("")
	require.ErrorIs(t, err, ErrDialectRequired)

	d := NewDialect("resolve-default").Keyword("SELECT", 0).Build()
	SetDefault(d)
	got, err := Resolve("  ")
	require.NoError(t, err)
	assert.Same(t, d, got)
}
