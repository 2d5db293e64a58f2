package cmd

import (
	"testing"
)

func TestRootCmdHasSubcommands(t *testing.T) {
	expected := map[string]bool{
		"check":       false,
		"version":     false,
		"self-update": false,
	}

	for _, sub := range rootCmd.Commands() {
		if _, ok := expected[sub.Name()]; ok {
			expected[sub.Name()] = true
		}
	}

	for name, found := range expected {
		if !found {
			t.Errorf("Expected subcommand %q to be registered", name)
		}
	}
}

func TestSetVersion(t *testing.T) {
	original := rootCmd.Version
	defer func() { rootCmd.Version = original }()

	SetVersion("1.2.3")
	if rootCmd.Version != "1.2.3" {
		t.Errorf("Expected version 1.2.3, got %s", rootCmd.Version)
	}
}

func TestRootCmdSilencesUsage(t *testing.T) {
	if !rootCmd.SilenceUsage {
		t.Error("Expected SilenceUsage to be set so handled errors do not print usage")
	}
}
