package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/callgrid/internal/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name           string
		args           []string
		expectExit     bool
		expectErr      string
		expectedConfig *app.Config
		checkOutput    func(t *testing.T, output string)
	}{
		{
			name: "all flags",
			args: []string{
				"-project", "/test/project.hcl",
				"--frames=120",
				"--fps=30",
				"--log-level=debug",
				"--log-format=text",
				"--healthcheck-port=8080",
				"--remote-url=http://localhost:3000",
				"--remote-namespace=/control",
				"--otlp-endpoint=localhost:4317",
			},
			expectedConfig: &app.Config{
				ProjectPaths:    []string{"/test/project.hcl"},
				Frames:          120,
				FPS:             30,
				LogLevel:        "debug",
				LogFormat:       "text",
				HealthcheckPort: 8080,
				RemoteURL:       "http://localhost:3000",
				RemoteNamespace: "/control",
				OTLPEndpoint:    "localhost:4317",
			},
		},
		{
			name: "shorthand flag and defaults",
			args: []string{"-p", "/short/path"},
			expectedConfig: &app.Config{
				ProjectPaths:    []string{"/short/path"},
				FPS:             60,
				LogLevel:        "info",
				LogFormat:       "json",
				RemoteNamespace: "/",
			},
		},
		{
			name: "flag and positional paths combine",
			args: []string{"-p", "/a.hcl", "/b.lisp", "/dir"},
			expectedConfig: &app.Config{
				ProjectPaths:    []string{"/a.hcl", "/b.lisp", "/dir"},
				FPS:             60,
				LogLevel:        "info",
				LogFormat:       "json",
				RemoteNamespace: "/",
			},
		},
		{
			name:       "help flag triggers clean exit",
			args:       []string{"-h"},
			expectExit: true,
			checkOutput: func(t *testing.T, output string) {
				assert.Contains(t, output, "Usage:")
				assert.Contains(t, output, "-remote-url")
			},
		},
		{
			name:       "no path prints usage",
			args:       []string{"--log-level=debug"},
			expectExit: true,
			checkOutput: func(t *testing.T, output string) {
				assert.Contains(t, output, "PROJECT_PATH")
			},
		},
		{name: "invalid log format", args: []string{"--log-format=xml", "/p"}, expectErr: "invalid log-format"},
		{name: "invalid log level", args: []string{"--log-level=trace", "/p"}, expectErr: "invalid log-level"},
		{name: "unknown flag", args: []string{"--workers=4", "/p"}, expectErr: "flag provided but not defined"},
		{name: "unbounded and unpaced", args: []string{"--fps=0", "/p"}, expectErr: "needs an fps limit"},
		{name: "negative frames", args: []string{"--frames=-2", "/p"}, expectErr: "frames must not be negative"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var out bytes.Buffer

			cfg, exit, err := Parse(tc.args, &out)

			if tc.expectErr != "" {
				require.Error(t, err)
				var exitErr *ExitError
				require.True(t, errors.As(err, &exitErr))
				assert.Equal(t, 2, exitErr.Code)
				assert.Contains(t, exitErr.Message, tc.expectErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectExit, exit)
			if tc.checkOutput != nil {
				tc.checkOutput(t, out.String())
			}
			if tc.expectedConfig != nil {
				if diff := cmp.Diff(tc.expectedConfig, cfg); diff != "" {
					t.Errorf("config mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}
