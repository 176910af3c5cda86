package provider

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.csv")
	content := "Txhash,UnixTimestamp,From,To,Value,GasUsed,GasPrice\n" +
		"0xaaa,1736942400,0xMe,0xrouter,5,21000,1000000000\n" +
		"0xbbb,1740040200,0xother,0xme,0,21000,1000000000\n" +
		"0xccc,1740040300,0xother,0xsomeone,0,21000,1000000000\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	export := NewCSVExport(path)
	txs, err := export.Transactions(context.Background(), "0xME")
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "0xaaa", txs[0].Hash)
	assert.Equal(t, "0xbbb", txs[1].Hash)

	_, err = export.TokenTransfers(context.Background(), "0xme")
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestCSVExportFallsBackForTransfers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.csv")
	require.NoError(t, os.WriteFile(path, []byte("Txhash,UnixTimestamp,From,To\n0xaaa,1736942400,0xme,0xrouter\n"), 0o644))

	network := &fakeProvider{name: "network"}
	f := NewFallback(NewCSVExport(path), network)

	txs, err := f.Transactions(context.Background(), "0xme")
	require.NoError(t, err)
	assert.Len(t, txs, 1)
	assert.Zero(t, network.hits)

	tokens, err := f.TokenTransfers(context.Background(), "0xme")
	require.NoError(t, err)
	assert.Empty(t, tokens)
	assert.Equal(t, 1, network.hits)
}

func TestCSVExportMissingFile(t *testing.T) {
	_, err := NewCSVExport(filepath.Join(t.TempDir(), "missing.csv")).Transactions(context.Background(), "0xme")
	assert.Error(t, err)
}
