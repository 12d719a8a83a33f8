// pkg/output/renderer_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: bytes.Buffer
// PURPOSE: Test format parsing and rendering of views, errors and messages

package output_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/modsync/pkg/errors"
	"github.com/arthur-debert/modsync/pkg/output"
)

type modsView struct {
	Loadout string   `json:"loadout" yaml:"loadout"`
	Mods    []string `json:"mods" yaml:"mods"`
}

func (v modsView) Write(p *output.Printer) error {
	p.Header(v.Loadout)
	rows := make([][]string, 0, len(v.Mods))
	for i, m := range v.Mods {
		rows = append(rows, []string{string(rune('1' + i)), p.Style("Mod", m)})
	}
	p.Table([]string{"#", "Mod"}, rows)
	return nil
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want output.Format
	}{
		{"", output.FormatAuto},
		{"auto", output.FormatAuto},
		{"term", output.FormatTerminal},
		{"TEXT", output.FormatText},
		{"plain", output.FormatText},
		{"json", output.FormatJSON},
		{"yml", output.FormatYAML},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := output.ParseFormat(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := output.ParseFormat("xml")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestRenderAutoOnBufferIsTerminal(t *testing.T) {
	r := output.NewRenderer(output.FormatAuto, &bytes.Buffer{})
	assert.Equal(t, output.FormatTerminal, r.Format())
}

func TestRenderText(t *testing.T) {
	var buf bytes.Buffer
	r := output.NewRenderer(output.FormatText, &buf)

	require.NoError(t, r.Render(modsView{Loadout: "Skyrim", Mods: []string{"Base", "Patch"}}))
	out := buf.String()
	assert.Contains(t, out, "Skyrim\n======")
	assert.Contains(t, out, "Base")
	assert.Contains(t, out, "Patch")
	assert.NotContains(t, out, "\x1b[")
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	r := output.NewRenderer(output.FormatJSON, &buf)

	require.NoError(t, r.Render(modsView{Loadout: "Skyrim", Mods: []string{"Base"}}))
	var got modsView
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "Skyrim", got.Loadout)
	assert.Equal(t, []string{"Base"}, got.Mods)
}

func TestRenderYAML(t *testing.T) {
	var buf bytes.Buffer
	r := output.NewRenderer(output.FormatYAML, &buf)

	require.NoError(t, r.Render(modsView{Loadout: "Skyrim", Mods: []string{"Base"}}))
	var got modsView
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, []string{"Base"}, got.Mods)
}

func TestRenderNonView(t *testing.T) {
	var buf bytes.Buffer
	r := output.NewRenderer(output.FormatText, &buf)
	require.NoError(t, r.Render(struct{ N int }{3}))
	assert.Equal(t, "{N:3}\n", buf.String())
}

func TestRenderError(t *testing.T) {
	err := errors.New(errors.ErrNeedsIngest, "ingest first").WithDetail("paths", 2)

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, output.NewRenderer(output.FormatText, &buf).RenderError(err))
		assert.Equal(t, "Error: [NEEDS_INGEST] ingest first\n", buf.String())
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, output.NewRenderer(output.FormatJSON, &buf).RenderError(err))
		var body map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &body))
		assert.Equal(t, "NEEDS_INGEST", body["code"])
		assert.Equal(t, float64(2), body["details"].(map[string]any)["paths"])
	})
}

func TestRenderMessage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, output.NewRenderer(output.FormatText, &buf).RenderMessage("Success", "Applied"))
	assert.Equal(t, "Applied\n", buf.String())

	buf.Reset()
	require.NoError(t, output.NewRenderer(output.FormatYAML, &buf).RenderMessage("Success", "Applied"))
	assert.Equal(t, "message: Applied\n", buf.String())
}

func TestBytes(t *testing.T) {
	assert.Equal(t, "0 B", output.Bytes(-4))
	assert.Equal(t, "1.0 KiB", output.Bytes(1024))
}
