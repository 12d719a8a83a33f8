// pkg/commands/genconfig/genconfig_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: Memory FS
// PURPOSE: Test generating and saving the commented config file

package genconfig_test

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/modsync/pkg/commands/genconfig"
	"github.com/arthur-debert/modsync/pkg/errors"
)

func TestGenConfigWrite(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := "/config/modsync/config.toml"

	res, err := genconfig.GenConfig(genconfig.GenConfigOptions{FS: fs, Path: path, Write: true})
	require.NoError(t, err)
	assert.Equal(t, path, res.Path)
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Equal(t, res.Content, string(data))

	_, err = genconfig.GenConfig(genconfig.GenConfigOptions{FS: fs, Path: path, Write: true})
	assert.True(t, errors.IsErrorCode(err, errors.ErrAlreadyExists))

	_, err = genconfig.GenConfig(genconfig.GenConfigOptions{FS: fs, Path: path, Write: true, Force: true})
	assert.NoError(t, err)
}

func TestGenConfigContentIsCommented(t *testing.T) {
	res, err := genconfig.GenConfig(genconfig.GenConfigOptions{})
	require.NoError(t, err)
	assert.Contains(t, res.Content, "[apply]")
	assert.Contains(t, res.Content, "# clean_empty_dirs = true")
	assert.NotContains(t, res.Content, "\nclean_empty_dirs")
}
