package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partsbot/internal/config"
)

func TestNewWithXLSXSource(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Config{
		Source:         "xlsx",
		XLSXPath:       filepath.Join(dir, "parts.xlsx"),
		SAPSheetName:   "SAP",
		DBPath:         filepath.Join(dir, "parts.db"),
		DataTTLSec:     60,
		UsersTTLSec:    60,
		MaxQty:         10,
		Timezone:       "UTC",
		ServiceName:    "test",
		ImageTimeoutMs: 1000,
	}
	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	h := a.Handler()
	assert.Equal(t, "test", h.Opts.ServiceName)
	assert.NotNil(t, h.Issues)
}

func TestNewRejectsUnknownSource(t *testing.T) {
	_, err := New(context.Background(), config.Config{Source: "ftp", DBPath: filepath.Join(t.TempDir(), "x.db")})
	assert.ErrorContains(t, err, "unsupported source")
}

func TestIMAPSourceNeedsCredentials(t *testing.T) {
	_, err := New(context.Background(), config.Config{Source: "imap", DBPath: filepath.Join(t.TempDir(), "x.db")})
	assert.ErrorContains(t, err, "IMAP_HOST")
}
