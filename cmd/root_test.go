package cmd

import "testing"

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "telegram-chat-organizer" {
		t.Errorf("Use = %q", rootCmd.Use)
	}
	if rootCmd.RunE == nil {
		t.Error("root command should run the wizard directly")
	}
	for _, flag := range []string{"verbose", "workdir"} {
		if rootCmd.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("missing persistent flag %q", flag)
		}
	}
}
