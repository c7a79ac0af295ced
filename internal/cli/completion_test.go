package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCompletion(t *testing.T, shell string) string {
	t.Helper()
	root := NewRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"completion", shell})
	require.NoError(t, root.Execute())
	return buf.String()
}

func TestCompletionBash(t *testing.T) {
	output := runCompletion(t, "bash")
	assert.Contains(t, output, "# bash completion for pch")
	assert.Contains(t, output, "complete -o default -F __start_pch pch")
}

func TestCompletionZsh(t *testing.T) {
	output := runCompletion(t, "zsh")
	assert.Contains(t, output, "#compdef pch")
	assert.Contains(t, output, "_pch()")
}

func TestCompletionFish(t *testing.T) {
	output := runCompletion(t, "fish")
	assert.Contains(t, output, "fish completion for pch")
	assert.Contains(t, output, "complete -c pch")
}

func TestCompletionPowershell(t *testing.T) {
	output := runCompletion(t, "powershell")
	assert.Contains(t, strings.ToLower(output), "powershell completion")
	assert.Contains(t, output, "Register-ArgumentCompleter")
}

func TestCompletionRejectsUnknownShell(t *testing.T) {
	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"completion", "tcsh"})
	assert.Error(t, root.Execute())
}

func TestCompletionListsSubcommands(t *testing.T) {
	root := NewRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"check", "analyze", "history", "status", "serve", "doctor", "config", "version", "completion"} {
		assert.Contains(t, names, want)
	}
}
