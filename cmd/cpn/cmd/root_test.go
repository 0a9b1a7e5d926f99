package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/jt05610/cpn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testdata = "../../../petrifile/v1/yaml/testdata"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"-I", testdata, "-f", "vending.yaml", "--log-level", "error"}, args...))
	err := root.Execute()
	return out.String(), err
}

func decode(t *testing.T, s string) cpn.Document {
	t.Helper()
	var doc cpn.Document
	require.NoError(t, json.Unmarshal([]byte(s), &doc))
	return doc
}

func TestEnabled(t *testing.T) {
	out, err := execute(t, "enabled", "-m", "start")
	require.NoError(t, err)
	assert.Equal(t, "insert_coin\t□ Insert coin\n", out)

	out, err = execute(t, "enabled")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestFire(t *testing.T) {
	out, err := execute(t, "fire", "-m", "start", "insert_coin")
	require.NoError(t, err)
	doc := decode(t, out)
	assert.Len(t, doc["cash_box"], 1)
	assert.Len(t, doc["compartment"], 1)
	assert.Empty(t, doc["coin_slot"])
	require.Len(t, doc["counter"], 1)
	assert.EqualValues(t, 0, doc["counter"][0].Data["x"])

	_, err = execute(t, "fire", "-m", "start", "insert_coin", "insert_coin")
	assert.ErrorIs(t, err, cpn.ErrNotEnabled)
}

func TestRun(t *testing.T) {
	out, err := execute(t, "run", "-m", "start")
	require.NoError(t, err)
	doc := decode(t, out)
	assert.Len(t, doc["cash_box"], 1)

	out, err = execute(t, "run", "-m", "start", "--cold", "insert_coin")
	require.NoError(t, err)
	assert.Len(t, decode(t, out)["coin_slot"], 1)
}

func TestMarking(t *testing.T) {
	out, err := execute(t, "marking", "-m", "start")
	require.NoError(t, err)
	doc := decode(t, out)
	require.Len(t, doc["coin_slot"], 1)
	assert.Equal(t, "penny", doc["coin_slot"][0].ID)

	_, err = execute(t, "marking", "-m", "missing")
	assert.Error(t, err)
}

func TestMarkingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"coin_slot":[{"id":"a","color":"coin"}]}`), 0o644))
	out, err := execute(t, "marking", "--marking-file", path)
	require.NoError(t, err)
	doc := decode(t, out)
	require.Len(t, doc["coin_slot"], 1)
	assert.Equal(t, "🪙", doc["coin_slot"][0].Color)
}

func TestSubnet(t *testing.T) {
	out, err := execute(t, "subnet", "cash_box")
	require.NoError(t, err)
	assert.Contains(t, out, "Insert coin")
	assert.Contains(t, out, "Cash box")
	assert.NotContains(t, out, "Compartment")

	out, err = execute(t, "subnet", "Out of order")
	require.NoError(t, err)
	assert.Contains(t, out, "inhibitor")

	_, err = execute(t, "subnet", "nowhere")
	assert.Error(t, err)
}

func TestViz(t *testing.T) {
	out, err := execute(t, "viz", "-m", "start")
	require.NoError(t, err)
	assert.Contains(t, out, "Coin slot")
	assert.Contains(t, out, "palegreen")

	path := filepath.Join(t.TempDir(), "figures", "vending.svg")
	_, err = execute(t, "viz", "-o", path)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")
}

func TestSetup_SearchDirs(t *testing.T) {
	t.Setenv("CPN_SEARCH_DIRS", "env")
	flags := make([]string, 1, 4)
	flags[0] = "flag"
	o := &options{searchDirs: flags, logLevel: "error"}
	require.NoError(t, o.setup())
	assert.Equal(t, []string{"flag", "env"}, o.env.SearchDirs)
	assert.Equal(t, []string{"flag"}, o.searchDirs)
	assert.Empty(t, flags[:2][1])
	o.env.SearchDirs[0] = "changed"
	assert.Equal(t, "flag", o.searchDirs[0])
}
