package flagx

import (
	"reflect"
	"testing"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "separate value form",
			args:         []string{"-d", "postgres://localhost/kv", "-x", "1"},
			allowedFlags: []string{"-d", "-a"},
			want:         []string{"-d", "postgres://localhost/kv"},
		},
		{
			name:         "equals form",
			args:         []string{"-a=:9000", "-x", "1"},
			allowedFlags: []string{"-a"},
			want:         []string{"-a=:9000"},
		},
		{
			name:         "multiple allowed flags keep order",
			args:         []string{"-a", ":9000", "-s", "secret", "--other", "x"},
			allowedFlags: []string{"-a", "-s"},
			want:         []string{"-a", ":9000", "-s", "secret"},
		},
		{
			name:         "unknown flags and positionals dropped",
			args:         []string{"-x", "1", "--y=2", "positional"},
			allowedFlags: []string{"-a"},
			want:         []string{},
		},
		{
			name:         "trailing flag without value kept",
			args:         []string{"-a"},
			allowedFlags: []string{"-a"},
			want:         []string{"-a"},
		},
		{
			name:         "next dash token is not a value",
			args:         []string{"-a", "-d=dsn"},
			allowedFlags: []string{"-a", "-d"},
			want:         []string{"-a", "-d=dsn"},
		},
		{
			name:         "repeated flag preserved",
			args:         []string{"-a", ":9000", "-a", ":9001"},
			allowedFlags: []string{"-a"},
			want:         []string{"-a", ":9000", "-a", ":9001"},
		},
		{
			name:         "empty args",
			args:         []string{},
			allowedFlags: []string{"-a"},
			want:         []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterArgs(tt.args, tt.allowedFlags)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("FilterArgs() = %#v, want %#v", got, tt.want)
			}
		})
	}
}
