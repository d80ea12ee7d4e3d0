package cmdutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheDevelo/minelaunch/internal/platform"
	"github.com/TheDevelo/minelaunch/internal/state"
)

func TestOptions_Layout(t *testing.T) {
	dir := t.TempDir()
	cfg := state.DefaultConfig()
	cfg.Install.Directory = dir

	layout, err := (&Options{Config: cfg}).Layout()
	require.NoError(t, err)
	assert.Equal(t, dir, layout.Root)
}

func TestOptions_DefaultsWithoutConfig(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	o := &Options{}

	layout, err := o.Layout()
	require.NoError(t, err)
	assert.Equal(t, state.AppDirName, filepath.Base(layout.Root))
	assert.Equal(t, state.DefaultConfig().Install.Concurrency, o.Fetcher().Concurrency())
}

func TestOptions_HostPlatformOverride(t *testing.T) {
	want := platform.Platform{OS: platform.Windows, Arch: platform.X86}
	got, err := (&Options{Platform: &want}).HostPlatform()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestOptions_Launcher(t *testing.T) {
	cfg := state.DefaultConfig()
	cfg.Install.Directory = t.TempDir()
	p := platform.Platform{OS: platform.Linux, Arch: platform.X64}
	o := &Options{Config: cfg, Platform: &p}

	l, layout, err := o.Launcher("")
	require.NoError(t, err)
	assert.NotNil(t, l)
	assert.Equal(t, cfg.Install.Directory, layout.Root)

	_, _, err = o.Launcher("a lot")
	assert.Error(t, err)
}
