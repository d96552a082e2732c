package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIntent(t *testing.T) {
	tests := []struct {
		name    string
		reason  string
		persona string
		wantErr bool
	}{
		{"valid toxic", "they clap when the plane lands", "toxic", false},
		{"valid hr", "my bf Tom never does the dishes", "hr", false},
		{"persona is case-insensitive", "whatever", "HR", false},
		{"empty reason", "", "toxic", true},
		{"whitespace reason", "   ", "toxic", true},
		{"reason too long", strings.Repeat("a", MaxReasonLength+1), "toxic", true},
		{"unknown persona", "valid reason", "lawyer", true},
		{"empty persona", "valid reason", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent, err := NewIntent(tt.reason, tt.persona)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, intent.Reason)
			assert.NotEmpty(t, intent.Persona)
		})
	}
}

func TestNewIntent_TrimsReason(t *testing.T) {
	intent, err := NewIntent("  they snore  ", "toxic")
	require.NoError(t, err)
	assert.Equal(t, "they snore", intent.Reason)
	assert.Equal(t, PersonaToxic, intent.Persona)
}
