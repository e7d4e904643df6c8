package prereq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enableit/yubikey-setup/internal/execx"
	"github.com/enableit/yubikey-setup/internal/platform"
)

func TestToolsFor_PerPlatformPinentry(t *testing.T) {
	t.Parallel()
	names := func(tools []Tool) []string {
		var out []string
		for _, tool := range tools {
			out = append(out, tool.Name)
		}
		return out
	}

	assert.Contains(t, names(ToolsFor(platform.Linux)), "pinentry-gnome3")
	assert.NotContains(t, names(ToolsFor(platform.Linux)), "pinentry-mac")
	assert.Contains(t, names(ToolsFor(platform.MacOS)), "pinentry-mac")
}

func TestCheck_AllPresent(t *testing.T) {
	t.Parallel()
	runner := execx.NewFake()

	results := Check(runner, ToolsFor(platform.Linux))

	assert.False(t, results.HasErrors())
	require.NoError(t, results.Error())
	for _, r := range results.Results {
		assert.True(t, r.Found, r.Tool.Name)
		assert.NotEmpty(t, r.Path, r.Tool.Name)
	}
}

func TestCheck_RequiredMissing(t *testing.T) {
	t.Parallel()
	runner := execx.NewFake()
	runner.MarkMissing("git")

	results := Check(runner, ToolsFor(platform.Linux))

	assert.True(t, results.HasErrors())
	err := results.Error()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "git")
}

func TestCheck_OptionalMissingIsNotAnError(t *testing.T) {
	t.Parallel()
	runner := execx.NewFake()
	runner.MarkMissing("pinentry-gnome3")

	results := Check(runner, ToolsFor(platform.Linux))

	assert.False(t, results.HasErrors())
	require.NoError(t, results.Error())
	require.Len(t, results.Missing, 1)
	assert.Equal(t, "pinentry-gnome3", results.Missing[0].Name)
}
