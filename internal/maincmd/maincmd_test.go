package maincmd_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/mainer"
	"github.com/mna/nenuphar/internal/maincmd"
	"github.com/mna/nenuphar/lang/token"
	"github.com/stretchr/testify/require"
)

func writeSource(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0600))
	return path
}

func TestTokenizeFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "a.smr", "let x = 1\n")

	var out, errOut bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &errOut}
	err := maincmd.TokenizeFiles(context.Background(), stdio, token.PosNone, path)
	require.NoError(t, err)
	require.Contains(t, out.String(), "let")
	require.Contains(t, out.String(), "identifier x")
	require.Empty(t, errOut.String())
}

func TestParseFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "a.smr", "let x = 1\n")

	var out, errOut bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &errOut}
	err := maincmd.ParseFiles(context.Background(), stdio, token.PosNone, "", path)
	require.NoError(t, err)
	require.Contains(t, out.String(), "chunk")
	require.Empty(t, errOut.String())
}

func TestParseFilesReportsSyntaxError(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "bad.smr", "let = 1\n")

	var out, errOut bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &errOut}
	err := maincmd.ParseFiles(context.Background(), stdio, token.PosNone, "", path)
	require.Error(t, err)
	require.NotEmpty(t, errOut.String())
}

func TestCompileAndListFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "a.smr", "log(1 + 2)\n")

	var out, errOut bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &errOut}

	require.NoError(t, maincmd.CompileFiles(context.Background(), stdio, path))
	_, err := os.Stat(filepath.Join(dir, "a.sbf"))
	require.NoError(t, err)

	out.Reset()
	require.NoError(t, maincmd.ListFiles(context.Background(), stdio, path))
	require.Contains(t, out.String(), "constants:")
	require.Contains(t, out.String(), "function 0")
}

func TestRunFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "a.smr", "log(1 + 2)\n")

	var out, errOut bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &errOut}
	err := maincmd.RunFiles(context.Background(), stdio, path)
	require.NoError(t, err)
	require.Equal(t, "3\n", out.String())
	require.Empty(t, errOut.String())
}
