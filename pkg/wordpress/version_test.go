package wordpress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersionFile(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		want     string
		wantErr  bool
	}{
		{
			name:     "standard version file",
			contents: "<?php\n$wp_version = '6.5.2';\n$wp_db_version = 57155;\n",
			want:     "6.5.2",
		},
		{
			name:     "two part version",
			contents: "$wp_version = '6.5';",
			want:     "6.5",
		},
		{
			name:     "no assignment",
			contents: "<?php // nothing here",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseVersionFile([]byte(tt.contents))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"6.5.2", "6.5.2", 0},
		{"6.5", "6.5.0", 0},
		{"6.5.1", "6.5.2", -1},
		{"6.6", "6.5.9", 1},
		{"5.9.3", "6.0", -1},
	}

	for _, tt := range tests {
		got, err := compareVersions(tt.a, tt.b)
		require.NoError(t, err, "%s vs %s", tt.a, tt.b)
		assert.Equal(t, tt.want, got, "%s vs %s", tt.a, tt.b)
	}
}

func TestCompareVersionsInvalid(t *testing.T) {
	_, err := compareVersions("6.x", "6.5")
	require.Error(t, err)
}
