package cmd

import (
	"strings"
	"testing"
)

func TestCompleteInput(t *testing.T) {
	tests := []struct {
		name          string
		line          string
		cursor        int
		wantNoMatches bool
	}{
		{"empty input returns no completions", "", 0, true},
		{"non-slash input returns no completions", "hello", 5, true},
		{"slash only shows all commands", "/", 1, false},
		{"partial /re matches reset", "/re", 3, false},
		{"unknown command prefix returns no matches", "/xyz", 4, true},
		{"cursor beyond line length is handled", "/h", 100, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completions := completeInput(tt.line, tt.cursor)
			// The completion values are not directly accessible; the PREFIX
			// field being empty is the observable sign of "no completions".
			if tt.wantNoMatches {
				if completions.PREFIX != "" {
					t.Errorf("expected no completions, got PREFIX=%q", completions.PREFIX)
				}
			}
		})
	}
}

func TestSlashCommandsDefinition(t *testing.T) {
	expectedCommands := map[string]bool{
		"/help":   false,
		"/h":      false,
		"/?":      false,
		"/quit":   false,
		"/exit":   false,
		"/q":      false,
		"/cancel": false,
		"/reset":  false,
		"/status": false,
	}

	for _, cmd := range slashCommands {
		if _, ok := expectedCommands[cmd.name]; ok {
			expectedCommands[cmd.name] = true
		} else {
			t.Errorf("unexpected command in slashCommands: %s", cmd.name)
		}
		if cmd.description == "" {
			t.Errorf("command %s has empty description", cmd.name)
		}
	}

	for cmd, found := range expectedCommands {
		if !found {
			t.Errorf("expected command %s not found in slashCommands", cmd)
		}
	}
}

func TestCompleteInputPrefixMatching(t *testing.T) {
	testCases := []struct {
		prefix      string
		shouldMatch []string
		shouldNot   []string
	}{
		{"/r", []string{"/reset"}, []string{"/quit", "/status"}},
		{"/s", []string{"/status"}, []string{"/reset", "/help"}},
		{"/qu", []string{"/quit"}, []string{"/q", "/help"}},
	}

	for _, tc := range testCases {
		t.Run("prefix_"+tc.prefix, func(t *testing.T) {
			for _, cmd := range slashCommands {
				isMatch := strings.HasPrefix(cmd.name, tc.prefix)
				for _, want := range tc.shouldMatch {
					if cmd.name == want && !isMatch {
						t.Errorf("command %s should match prefix %s but doesn't", cmd.name, tc.prefix)
					}
				}
				for _, not := range tc.shouldNot {
					if cmd.name == not && isMatch {
						t.Errorf("command %s should NOT match prefix %s but does", cmd.name, tc.prefix)
					}
				}
			}
		})
	}
}
