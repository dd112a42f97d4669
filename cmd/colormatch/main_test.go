package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func findCommand(app *cli.App, name string) *cli.Command {
	for _, cmd := range app.Commands {
		if cmd.Name == name {
			return cmd
		}
	}
	return nil
}

func findFlag(cmd *cli.Command, name string) cli.Flag {
	for _, flag := range cmd.Flags {
		for _, n := range flag.Names() {
			if n == name {
				return flag
			}
		}
	}
	return nil
}

func TestImportCommandFlags(t *testing.T) {
	app := newApp()
	cmd := findCommand(app, "import")
	require.NotNil(t, cmd)

	t.Run("file is required", func(t *testing.T) {
		f, ok := findFlag(cmd, "file").(*cli.StringFlag)
		require.True(t, ok)
		assert.True(t, f.Required)
		assert.Contains(t, f.Aliases, "f")
	})

	t.Run("job flags are present", func(t *testing.T) {
		for _, name := range []string{"workers", "queue", "chunk-size", "progress"} {
			assert.NotNil(t, findFlag(cmd, name), name)
		}
	})

	t.Run("missing file fails", func(t *testing.T) {
		app := newApp()
		app.Writer = &bytes.Buffer{}
		app.ErrWriter = &bytes.Buffer{}
		err := app.Run([]string{"colormatch", "--config", filepath.Join(t.TempDir(), "none.toml"), "import"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "file")
	})
}

func TestSimilarCommandFlags(t *testing.T) {
	cmd := findCommand(newApp(), "similar")
	require.NotNil(t, cmd)

	limit, ok := findFlag(cmd, "limit").(*cli.IntFlag)
	require.True(t, ok)
	assert.Equal(t, 10, limit.Value)

	rounding, ok := findFlag(cmd, "rounding").(*cli.StringFlag)
	require.True(t, ok)
	assert.Equal(t, "legacy", rounding.Value)
}

func TestVisionFlagsOnExtractingCommands(t *testing.T) {
	app := newApp()
	for _, name := range []string{"backfill", "annotate"} {
		cmd := findCommand(app, name)
		require.NotNil(t, cmd, name)
		token, ok := findFlag(cmd, "vision-token").(*cli.StringFlag)
		require.True(t, ok, name)
		assert.Contains(t, token.EnvVars, "OPENAI_API_KEY")
		assert.NotNil(t, findFlag(cmd, "backend"), name)
	}
}

func TestParseLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		_, err := parseLevel(level)
		assert.NoError(t, err, level)
	}
	_, err := parseLevel("loud")
	assert.Error(t, err)
}

func writeSolidPNG(t *testing.T, dir, name string, c color.NRGBA) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

type cliRunner struct {
	t      *testing.T
	db     string
	config string
}

func (r cliRunner) run(args ...string) (string, error) {
	app := newApp()
	var out, errOut bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &errOut
	full := append([]string{"colormatch", "--config", r.config, "--db", r.db, "--log-level", "error"}, args...)
	err := app.RunContext(context.Background(), full)
	return out.String(), err
}

func TestEndToEnd(t *testing.T) {
	dir := t.TempDir()
	r := cliRunner{
		t:      t,
		db:     filepath.Join(dir, "db"),
		config: filepath.Join(dir, "missing.toml"),
	}

	red := writeSolidPNG(t, dir, "red.png", color.NRGBA{R: 255, A: 255})
	scarlet := writeSolidPNG(t, dir, "scarlet.png", color.NRGBA{R: 250, G: 10, B: 10, A: 255})
	black := writeSolidPNG(t, dir, "black.png", color.NRGBA{A: 255})

	csvPath := filepath.Join(dir, "catalog.csv")
	lines := []string{
		"id,title,gender_id,composition,sleeve,photo,url,dominant_color",
		fmt.Sprintf("REF,Red tee,MAN,cotton,short,%s,https://shop/ref", red),
		fmt.Sprintf("NEAR,Scarlet tee,WOM,cotton,long,%s,https://shop/near", scarlet),
		fmt.Sprintf("BLK,Black tee,BOY,wool,short,%s,https://shop/blk", black),
		fmt.Sprintf("GONE,Lost tee,GIR,wool,short,%s,https://shop/gone", filepath.Join(dir, "missing.png")),
	}
	require.NoError(t, os.WriteFile(csvPath, []byte(strings.Join(lines, "\n")+"\n"), 0o600))

	out, err := r.run("import", "--file", csvPath, "--workers", "2", "--queue", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "import")
	assert.Contains(t, out, "COMPLETED")

	_, err = r.run("color", "REF")
	require.Error(t, err, "imported without a color")

	out, err = r.run("backfill", "--backend", "local", "--chunk-size", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "backfill")
	assert.Contains(t, out, "COMPLETED")

	out, err = r.run("color", "REF")
	require.NoError(t, err)
	assert.Equal(t, "255,0,0", strings.TrimSpace(out))

	out, err = r.run("similar", "--limit", "1", "REF")
	require.NoError(t, err)
	assert.Contains(t, out, "NEAR")
	assert.NotContains(t, out, "BLK")

	out, err = r.run("show", "BLK")
	require.NoError(t, err)
	assert.Contains(t, out, "Black tee")
	assert.Contains(t, out, "0,0,0")

	_, err = r.run("color", "GONE")
	require.Error(t, err, "backfill leaves unreachable photos uncolored")

	out, err = r.run("jobs")
	require.NoError(t, err)
	assert.Contains(t, out, "import")
	assert.Contains(t, out, "backfill")

	_, err = r.run("show", "NOPE")
	require.Error(t, err)
}

func TestInitConfigCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")

	r := cliRunner{t: t, db: filepath.Join(dir, "db"), config: filepath.Join(dir, "missing.toml")}
	out, err := r.run("init-config", "--path", path)
	require.NoError(t, err)
	assert.Equal(t, path, strings.TrimSpace(out))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[vision]")

	_, err = r.run("init-config", "--path", path)
	assert.Error(t, err)

	// The written sample must load cleanly.
	r.config = path
	_, err = r.run("jobs")
	assert.NoError(t, err)
}
