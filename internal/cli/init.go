package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

const defaultConfigFile = "swagger-explorer.yaml"

// InitConfig captures the options for the init command.
type InitConfig struct {
	OutputPath string
	Force      bool
	Spec       string
	Out        io.Writer
}

var initRunner = runInit

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a sample swagger-explorer configuration file",
		Long:  "Scaffold a commented swagger-explorer configuration file that documents available options.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := cmd.Flags().GetString("out")
			if err != nil {
				return err
			}
			force, err := cmd.Flags().GetBool("force")
			if err != nil {
				return err
			}
			specPath, err := cmd.Flags().GetString("spec")
			if err != nil {
				return err
			}
			cfg := &InitConfig{
				OutputPath: out,
				Force:      force,
				Spec:       strings.TrimSpace(specPath),
				Out:        cmd.OutOrStdout(),
			}
			return initRunner(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("out", defaultConfigFile, "Where to write the sample config file")
	cmd.Flags().Bool("force", false, "Overwrite the target file if it already exists")

	return cmd
}

func runInit(ctx context.Context, cfg *InitConfig) error {
	_ = ctx

	out := strings.TrimSpace(cfg.OutputPath)
	if out == "" {
		out = defaultConfigFile
	}
	absPath, err := filepath.Abs(out)
	if err != nil {
		return fmt.Errorf("init: resolve output path: %w", err)
	}

	if st, err := os.Stat(absPath); err == nil && !cfg.Force {
		if st.Mode().IsRegular() {
			return newUsageError(fmt.Sprintf("init: %q already exists (use --force to overwrite)", absPath))
		}
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return newUsageError(fmt.Sprintf("init: cannot create parent directory: %v", err))
	}

	content := sampleConfig(cfg.Spec)

	// Atomic write via temp + rename
	tmp := absPath + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return newUsageError(fmt.Sprintf("init: cannot write temp file: %v\nHint: choose a different --out or check directory permissions.", err))
	}
	if err := os.Rename(tmp, absPath); err != nil {
		_ = os.Remove(tmp)
		return newUsageError(fmt.Sprintf("init: cannot place file at %s: %v", absPath, err))
	}
	w := cfg.Out
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprintf(w, "Wrote sample config to %s\n", absPath)
	return nil
}

// sampleConfig fills in the spec line when a document was given on the
// command line; everything else stays commented out.
func sampleConfig(specPath string) string {
	content := strings.TrimSpace(sampleConfigYAML) + "\n"
	if specPath != "" {
		content = strings.Replace(content, "# spec: ./petstore.json", "spec: "+specPath, 1)
	}
	return content
}

// sampleConfigYAML is a commented example config documenting available options.
const sampleConfigYAML = `# swagger-explorer configuration (YAML)
# All fields are optional. Command-line flags override config values.

# Path or URL of the Swagger 2.0 document (http/https or local file).
# spec: ./petstore.json

# Timeout for requests sent by call and explore, as a Go duration or seconds.
# timeout: 30s

# Output format for listings and responses (text|json).
# output: text

# Disable colored output.
# noColor: false

# Enable verbose logging.
# verbose: false
`
