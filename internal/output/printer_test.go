package output

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	for _, in := range []string{"table", "json", "yaml"} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, Format(in), got)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestResolveColors(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	assert.False(t, ResolveColors(true))

	os.Unsetenv("NO_COLOR")
	t.Setenv("TERM", "dumb")
	assert.False(t, ResolveColors(true))

	t.Setenv("TERM", "xterm-256color")
	assert.True(t, ResolveColors(true))
	assert.False(t, ResolveColors(false))
}

func TestPrinterPlainMessages(t *testing.T) {
	var out, errOut bytes.Buffer
	p := NewPrinter(&out, &errOut, false, FormatTable)

	p.Success("logged in as %s", "Jean Dupont")
	p.Warning("no CV uploaded")
	p.Error("request failed")

	assert.Equal(t, "[OK] logged in as Jean Dupont\n", out.String())
	assert.Contains(t, errOut.String(), "[WARN] no CV uploaded")
	assert.Contains(t, errOut.String(), "[ERROR] request failed")
}

func TestPrinterStructuredSuppressesChatter(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out, &bytes.Buffer{}, false, FormatJSON)

	p.Info("loading")
	p.Header("Offres")
	wrote, err := p.Data(map[string]int{"count": 3})
	require.NoError(t, err)
	assert.True(t, wrote)
	assert.JSONEq(t, `{"count":3}`, out.String())
}

func TestPrinterYAML(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out, &bytes.Buffer{}, false, FormatYAML)

	wrote, err := p.Data(struct {
		Role string `yaml:"role"`
	}{Role: "ETUDIANT"})
	require.NoError(t, err)
	assert.True(t, wrote)
	assert.Equal(t, "role: ETUDIANT\n", out.String())
}

func TestPrinterTableFormatLeavesDataToCaller(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out, &bytes.Buffer{}, false, FormatTable)
	wrote, err := p.Data([]int{1})
	require.NoError(t, err)
	assert.False(t, wrote)
	assert.Empty(t, out.String())
}

func TestFormatErrorPlain(t *testing.T) {
	var errOut bytes.Buffer
	p := NewPrinter(&bytes.Buffer{}, &errOut, false, FormatTable)
	p.FormatError(&CLIError{Summary: "not logged in", Suggestion: "run portal login"})

	lines := strings.Split(strings.TrimSpace(errOut.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "[ERROR] not logged in", lines[0])
	assert.Equal(t, "  Suggestion: run portal login", lines[1])
}

func TestTableRender(t *testing.T) {
	var out bytes.Buffer
	table := NewTable(&out, []string{"ID", "TITRE"})
	table.AddRow("1", "Stage backend Go")
	require.NoError(t, table.Render())
	assert.Contains(t, out.String(), "Stage backend Go")
}

func TestTableKeepsHeadersVerbatim(t *testing.T) {
	var out bytes.Buffer
	table := NewTable(&out, []string{"ID", "ÉT.", "DERNIÈRE_VISITE"})
	table.AddRow("1", "yes", "2025-04-02")
	require.NoError(t, table.Render())
	assert.Contains(t, out.String(), "ÉT.")
	assert.Contains(t, out.String(), "DERNIÈRE_VISITE")
}

func TestTableTruncatesLongCells(t *testing.T) {
	var out bytes.Buffer
	long := strings.Repeat("candidature acceptée ", 10)
	table := NewTable(&out, []string{"ID", "MESSAGE"})
	table.AddRow("1", long)
	require.NoError(t, table.Render())
	assert.Contains(t, out.String(), "candidature acceptée")
	assert.NotContains(t, out.String(), strings.TrimSpace(long))
}
