package main

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/newtron-network/lanemap/internal/testutil"
	"github.com/newtron-network/lanemap/pkg/mapping"
)

// run executes the root command with args against an isolated home directory.
func run(t *testing.T, args ...string) error {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("LANEMAP_MAPPING_DIR", "")
	mappingFile = ""
	mappingDir = ""
	platformNames = nil
	jsonOutput = false
	publishExecute = false
	publishPrune = false
	publishLanes = 0
	publishSelect = nil
	corePinSelect = nil
	lanesFilter = ""
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestCommands(t *testing.T) {
	dir := testutil.WritePlatformDir(t, map[string]string{
		"fixture.json": testutil.PlatformJSON,
		"broken.json":  `{"chips": [{"name": "core0", "type": 1}, {"name": "core0", "type": 1}]}`,
	})
	good := filepath.Join(dir, "fixture.json")
	broken := filepath.Join(dir, "broken.json")

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"validate", []string{"-f", good, "validate"}, nil},
		{"validate broken", []string{"-f", broken, "validate"}, errAny},
		{"validate all", []string{"-D", dir, "validate"}, errAny},
		{"platform list", []string{"-D", dir, "platform", "list", "--json"}, nil},
		{"platform show", []string{"-f", good, "platform", "show"}, nil},
		{"chip list", []string{"-f", good, "chip", "list"}, nil},
		{"chip show", []string{"-f", good, "chip", "show", "core1"}, nil},
		{"chip show unknown", []string{"-f", good, "chip", "show", "core9"}, mapping.ErrUnknownChip},
		{"port list", []string{"-f", good, "port", "list"}, nil},
		{"port show by name", []string{"-f", good, "port", "show", "eth1/1/1"}, nil},
		{"port show unknown", []string{"-f", good, "port", "show", "eth9/9/9"}, mapping.ErrUnknownPort},
		{"port group", []string{"-f", good, "port", "group", "5"}, nil},
		{"port core-pins", []string{"-f", good, "port", "core-pins"}, nil},
		{"profile list", []string{"-f", good, "profile", "list"}, nil},
		{"profile show", []string{"-f", good, "profile", "show", "16"}, nil},
		{"profile show unknown", []string{"-f", good, "profile", "show", "99"}, mapping.ErrUnknownProfile},
		{"resolve", []string{"-f", good, "resolve", "1", "22", "--cable-length", "1.0"}, nil},
		{"resolve unsupported", []string{"-f", good, "resolve", "1", "14"}, mapping.ErrUnsupportedProfile},
		{"lanes", []string{"-f", good, "lanes", "eth1/2"}, nil},
		{"lanes filtered", []string{"-f", good, "lanes", "core1", "--lane", "0-1"}, nil},
		{"publish dry run", []string{"-f", good, "publish"}, nil},
		{"publish lanes per core", []string{"-f", good, "publish", "--lanes-per-core", "4", "--select", "1=22,5=16"}, nil},
		{"publish lanes beyond core", []string{"-f", good, "publish", "--lanes-per-core", "2"}, errAny},
		{"core-pins without chip overrides", []string{"-f", good, "port", "core-pins"}, mapping.ErrNoCorePins},
		{"publish execute needs redis", []string{"-f", good, "publish", "-x"}, errAny},
		{"no mapping selected", []string{"chip", "list"}, errAny},
		{"audit list", []string{"audit", "list"}, nil},
		{"version", []string{"version"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(t, tt.args...)
			switch {
			case tt.wantErr == nil && err != nil:
				t.Errorf("%v: unexpected error: %v", tt.args, err)
			case tt.wantErr == errAny && err == nil:
				t.Errorf("%v: expected error", tt.args)
			case tt.wantErr != nil && tt.wantErr != errAny && !errors.Is(err, tt.wantErr):
				t.Errorf("%v: error = %v, want %v", tt.args, err, tt.wantErr)
			}
		})
	}
}

var errAny = errors.New("any error")
