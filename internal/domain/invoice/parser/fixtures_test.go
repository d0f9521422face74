package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/invoice-extractor/internal/domain/invoice/normalizer"
)

// fixture returns a normalized invoice text from the shared testdata folder.
func fixture(t testing.TB, name string) string {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("..", "testdata", name))
	require.NoError(t, err)
	return normalizer.Normalize(string(raw))
}
