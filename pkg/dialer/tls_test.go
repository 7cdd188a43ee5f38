//go:build !integration

package dialer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTLS(t *testing.T) {
	t.Run("MissingFile", func(t *testing.T) {
		_, err := TLS(filepath.Join(t.TempDir(), "absent.pem"))
		require.ErrorContains(t, err, "failed to read CARootPEMFile")
	})

	t.Run("NotPEM", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ca.pem")
		require.NoError(t, os.WriteFile(path, []byte("not a certificate"), 0o600))

		_, err := TLSConfig(path)
		require.ErrorContains(t, err, "failed to parse CARootPEM")
	})
}
