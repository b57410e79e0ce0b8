package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestLoadFile(t *testing.T) {
	tests := map[string]struct {
		data     string
		expErr   bool
		expName  string
		expValue int
	}{
		"valid asset": {
			data:     `{"version":1,"id":"settings","spec":{"name":"World","value":7}}`,
			expName:  "World",
			expValue: 7,
		},
		"missing version": {
			data:   `{"id":"settings","spec":{"name":"World","value":7}}`,
			expErr: true,
		},
		"missing id": {
			data:   `{"version":1,"spec":{"name":"World","value":7}}`,
			expErr: true,
		},
		"missing spec": {
			data:   `{"version":1,"id":"settings"}`,
			expErr: true,
		},
		"invalid json": {
			data:   `{not json`,
			expErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "asset.json")
			err := os.WriteFile(path, []byte(tt.data), 0644)
			if err != nil {
				t.Fatalf("failed to write test file: %v", err)
			}

			spec, err := LoadFile[*mockStoreSpec](path)

			if tt.expErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "name", spec.Name, tt.expName)
			testutil.AssertEqual(t, "value", spec.Value, tt.expValue)
		})
	}
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := LoadFile[*mockStoreSpec](filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Error("expected error for missing file")
	}
}
