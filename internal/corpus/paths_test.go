package corpus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestDecodePath_TableDriven tests the encoded-to-real path transform.
func TestDecodePath_TableDriven(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
		want    string
	}{
		{
			name:    "typical encoded path",
			encoded: "-Users-richard-projects-foo",
			want:    "/Users/richard/projects/foo",
		},
		{
			name:    "single segment",
			encoded: "-tmp",
			want:    "/tmp",
		},
		{
			name:    "passthrough without marker",
			encoded: "plain-directory-name",
			want:    "plain-directory-name",
		},
		{
			name:    "empty string",
			encoded: "",
			want:    "",
		},
		{
			name:    "marker only",
			encoded: "-",
			want:    "/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodePath(tt.encoded))
		})
	}
}

// TestDecodePath_PassthroughIdempotent verifies decoding is idempotent on
// inputs without the encoding marker.
func TestDecodePath_PassthroughIdempotent(t *testing.T) {
	in := "already/a/path"
	assert.Equal(t, in, DecodePath(in))
	assert.Equal(t, DecodePath(in), DecodePath(DecodePath(in)))
}
