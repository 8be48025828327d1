package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/larder/internal/domain"
)

// cliIn runs one command line against a file store in dir, feeding in
// as stdin.
func cliIn(t *testing.T, dir, in string, args ...string) (string, error) {
	t.Helper()
	base := []string{
		"--config", filepath.Join(dir, "config.yaml"),
		"--store", "file",
		"--store-path", filepath.Join(dir, "pantry.json"),
		"--log-file", "stderr",
		"--quiet",
	}
	var out bytes.Buffer
	err := run(context.Background(), append(base, args...), strings.NewReader(in), &out, io.Discard)
	return out.String(), err
}

func cli(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := cliIn(t, dir, "", args...)
	require.NoError(t, err, "larder %s", strings.Join(args, " "))
	return out
}

func seedPantry(t *testing.T, dir string) {
	t.Helper()
	cli(t, dir, "category", "add", "Dairy")
	cli(t, dir, "category", "add", "Baking")
	cli(t, dir, "ingredient", "add", "Milk", "--category", "Dairy", "--price", "1.20", "--missing")
	cli(t, dir, "ingredient", "add", "Flour", "--category", "Baking", "--price", "0.90", "--missing")
	cli(t, dir, "ingredient", "add", "Eggs", "--price", "2.50", "--parts", "6")
	cli(t, dir, "recipe", "add", "Crepes", "Milk", "Eggs", "Flour", "--category", "Dessert")
}

func TestShoppingFlow(t *testing.T) {
	dir := t.TempDir()
	seedPantry(t, dir)

	assert.Contains(t, cli(t, dir, "recipe", "missing", "Crepes"), "Milk, Flour")
	assert.Contains(t, cli(t, dir, "recipe", "feasible"), "(none)")

	list := cli(t, dir, "shop", "start")
	assert.Contains(t, list, "[ ]")
	assert.Less(t, strings.Index(list, "Baking"), strings.Index(list, "Dairy"), "cold chain last")

	assert.Contains(t, cli(t, dir, "shop", "toggle", "Eggs"), "Eggs is already in stock")
	_, err := cliIn(t, dir, "", "shop", "toggle", "Kale")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	cli(t, dir, "shop", "toggle", "Milk", "Flour")
	assert.Contains(t, cli(t, dir, "shop", "list"), "subtotal 2.10")
	assert.Contains(t, cli(t, dir, "shop", "finish"), "2 items")

	assert.Contains(t, cli(t, dir, "recipe", "feasible"), "Crepes")
	assert.Contains(t, cli(t, dir, "shop", "history"), "2.10")
	assert.Contains(t, cli(t, dir, "shop", "list"), "nothing missing")

	_, err = cliIn(t, dir, "", "shop", "finish")
	assert.ErrorIs(t, err, domain.ErrTripNotActive)

	cli(t, dir, "shop", "history", "--clear")
	assert.Contains(t, cli(t, dir, "shop", "history"), "no trips yet")
}

func TestEditErrors(t *testing.T) {
	dir := t.TempDir()
	seedPantry(t, dir)

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"duplicate ingredient", []string{"ingredient", "add", "Milk"}, domain.ErrAlreadyExists},
		{"unknown category", []string{"ingredient", "add", "Kale", "--category", "Greens"}, domain.ErrUnknownCategory},
		{"bad price", []string{"ingredient", "add", "Kale", "--price", "cheap"}, domain.ErrInvalidInput},
		{"bad date", []string{"ingredient", "expiry", "Milk", "12/05/2026"}, domain.ErrInvalidInput},
		{"toggle unknown", []string{"ingredient", "toggle", "Kale"}, domain.ErrNotFound},
		{"consume unknown", []string{"ingredient", "consume", "Kale"}, domain.ErrNotFound},
		{"recipe unknown ingredient", []string{"recipe", "add", "Salad", "Kale"}, domain.ErrUnknownIngredient},
		{"rm unknown recipe", []string{"recipe", "rm", "Salad"}, domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := cliIn(t, dir, "", tt.args...)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestIngredientEdits(t *testing.T) {
	dir := t.TempDir()
	seedPantry(t, dir)

	assert.Contains(t, cli(t, dir, "ingredient", "toggle", "Milk"), "Milk is in stock")
	assert.Contains(t, cli(t, dir, "ingredient", "expiry", "Milk", "2026-05-12"), "expires 2026-05-12")
	assert.Contains(t, cli(t, dir, "ingredient", "expiry", "Milk", "none"), "no longer tracks expiry")
	assert.Contains(t, cli(t, dir, "ingredient", "consume", "Eggs", "2"), "4 of 6 parts left")
	assert.Contains(t, cli(t, dir, "ingredient", "consume", "Eggs", "4"), "Eggs is used up")
	assert.Contains(t, cli(t, dir, "category", "fresh", "Dairy"), "Dairy is fresh")
	assert.Contains(t, cli(t, dir, "category", "list"), "Dairy (fresh)")
}

func TestRemoveAsksFirst(t *testing.T) {
	dir := t.TempDir()
	seedPantry(t, dir)

	out, err := cliIn(t, dir, "n\n", "category", "rm", "Dairy")
	require.NoError(t, err)
	assert.Contains(t, out, "1 ingredient(s): Milk")
	assert.Contains(t, out, "aborted")
	assert.Contains(t, cli(t, dir, "recipe", "missing", "Crepes"), "Milk")

	out, err = cliIn(t, dir, "y\n", "category", "rm", "Dairy")
	require.NoError(t, err)
	assert.Contains(t, out, "removed category Dairy")
	assert.NotContains(t, cli(t, dir, "export"), `"Milk"`)

	out, err = cliIn(t, dir, "y\n", "ingredient", "rm", "Flour")
	require.NoError(t, err)
	assert.Contains(t, out, "shortens 1 recipe(s): Crepes")
	out = cli(t, dir, "ingredient", "rm", "Eggs", "--yes")
	assert.Contains(t, out, "removed Eggs")
	assert.Contains(t, cli(t, dir, "recipe", "list"), "no recipes")
}

func TestExportImport(t *testing.T) {
	src := t.TempDir()
	seedPantry(t, src)
	file := filepath.Join(src, "export.json")
	assert.Contains(t, cli(t, src, "export", file), "exported to")

	dst := t.TempDir()
	out := cli(t, dst, "import", file)
	assert.Contains(t, out, "valid")
	assert.Contains(t, cli(t, dst, "recipe", "list"), "Crepes")

	broken := filepath.Join(src, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`{"ingredients": []}`), 0o644))
	out, err := cliIn(t, dst, "", "import", broken)
	assert.ErrorIs(t, err, domain.ErrInvalidDocument)
	assert.Contains(t, out, "rejected")
	assert.Contains(t, cli(t, dst, "recipe", "list"), "Crepes", "rejected import keeps the pantry")

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	fresh := t.TempDir()
	out, err = cliIn(t, fresh, string(data), "import", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "valid")
}

func TestWatchOnce(t *testing.T) {
	dir := t.TempDir()
	assert.Contains(t, cli(t, dir, "watch", "--once"), "nothing is about to spoil")

	cli(t, dir, "ingredient", "add", "Yogurt", "--expiry", "2000-01-01")
	cli(t, dir, "recipe", "add", "Parfait", "Yogurt")
	out := cli(t, dir, "watch", "--once")
	assert.Contains(t, out, "[Expiry] Yogurt expired")
	assert.Contains(t, out, "Cook Parfait")
}

func TestStatus(t *testing.T) {
	dir := t.TempDir()
	seedPantry(t, dir)
	out := cli(t, dir, "status")
	assert.Contains(t, out, "Ingredients")
	assert.Contains(t, out, "Milk, Flour")
}
