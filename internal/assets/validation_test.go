package assets

import (
	"errors"
	"testing"
)

func TestValidateAssetName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"simple name", "preview", nil},
		{"name with hyphen", "my-style", nil},
		{"name with underscore", "my_style", nil},
		{"empty name", "", ErrInvalidAssetName},
		{"forward slash", "path/to/style", ErrInvalidAssetName},
		{"backslash", `path\to\style`, ErrInvalidAssetName},
		{"traversal", "..", ErrInvalidAssetName},
		{"extension", "preview.css", ErrInvalidAssetName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateAssetName(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateAssetName(%q) = %v, want %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
