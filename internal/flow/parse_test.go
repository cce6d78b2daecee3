package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ananth-NQI/orderbot/internal/catalog"
)

func TestParseContact(t *testing.T) {
	t.Parallel()

	c, ok := ParseContact("Juan Pérez, 3001234567")
	assert.True(t, ok)
	assert.Equal(t, Contact{Name: "Juan Pérez", Phone: "3001234567"}, c)

	c, ok = ParseContact("  Ana Ruiz ,3109999999, calle 5 ")
	assert.True(t, ok)
	assert.Equal(t, Contact{Name: "Ana Ruiz", Phone: "3109999999"}, c)

	for _, bad := range []string{"Juan", "", "Juan,", ", 300"} {
		_, ok := ParseContact(bad)
		assert.False(t, ok, "input %q", bad)
	}
}

func TestParseProductIDs(t *testing.T) {
	t.Parallel()

	cat := catalog.Default()
	assert.Equal(t, []string{"1", "3"}, ParseProductIDs("1,3", cat))
	assert.Equal(t, []string{"3", "1"}, ParseProductIDs(" 3 , 9, 1 ", cat))
	assert.Equal(t, []string{"2", "2"}, ParseProductIDs("2,2", cat))
	assert.Empty(t, ParseProductIDs("7,x", cat))
	assert.Empty(t, ParseProductIDs("", cat))

	mixed, err := catalog.New("x", catalog.Product{ID: "A1", Name: "Arepa grande", UnitPrice: 7000})
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A1"}, ParseProductIDs(Normalize("a1, A1"), mixed))
}

func TestParsePositive(t *testing.T) {
	t.Parallel()

	n, ok := ParsePositive(" 12 ")
	assert.True(t, ok)
	assert.Equal(t, 12, n)

	for _, bad := range []string{"0", "-2", "dos", "1.5", ""} {
		_, ok := ParsePositive(bad)
		assert.False(t, ok, "input %q", bad)
	}
}

func TestParseOrdinal(t *testing.T) {
	t.Parallel()

	i, ok := ParseOrdinal("1", 6)
	assert.True(t, ok)
	assert.Equal(t, 0, i)

	i, ok = ParseOrdinal("6", 6)
	assert.True(t, ok)
	assert.Equal(t, 5, i)

	_, ok = ParseOrdinal("7", 6)
	assert.False(t, ok)
	_, ok = ParseOrdinal("0", 6)
	assert.False(t, ok)
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "si", Normalize("  Sí "))
	assert.Equal(t, "modificar", Normalize("MODIFICAR"))
	assert.True(t, IsResetKeyword("Hola"))
	assert.True(t, IsResetKeyword(" INICIO"))
	assert.False(t, IsResetKeyword("hola amigo"))
}

func TestFormatMoney(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "$1.234.567", FormatMoney(1234567))
	assert.Equal(t, "$16.000", FormatMoney(16000))
}
