package system

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoot() *cobra.Command {
	root := &cobra.Command{Use: "hospital"}
	root.PersistentFlags().String("config", "config.yaml", "config file path")
	root.AddCommand(NewSystemCommand())
	return root
}

func TestSystemCommandTree(t *testing.T) {
	root := newRoot()

	for _, path := range [][]string{
		{"system", "migrate"},
		{"system", "init"},
		{"system", "gendocs"},
		{"system", "department", "add"},
		{"system", "department", "list"},
	} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}

func TestDepartmentAddNeedsName(t *testing.T) {
	root := newRoot()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"system", "department", "add"})

	err := root.Execute()
	assert.Error(t, err)
}

func TestGenDocs(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	root := newRoot()
	root.SetOut(&out)
	root.SetArgs([]string{"system", "gendocs", "--outdir", dir})
	require.NoError(t, root.Execute())

	assert.Contains(t, out.String(), dir)
	_, err := os.Stat(filepath.Join(dir, "hospital_system_migrate.md"))
	assert.NoError(t, err)
}
