package cli

import (
	"fmt"
	"os"

	"github.com/apex/log"
	clihandler "github.com/apex/log/handlers/cli"
	"github.com/mattn/go-colorable"
	"github.com/spf13/cobra"
)

// Execute runs the swagger-explorer CLI.
func Execute() error {
	log.SetHandler(clihandler.New(os.Stderr))
	root := NewRootCmd()
	root.SetOut(colorable.NewColorableStdout())
	return root.Execute()
}

// NewRootCmd constructs the root command so tests can exercise the CLI easily.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swagger-explorer",
		Short: "Explore and call APIs described by Swagger 2.0 documents",
		Long: "swagger-explorer loads a Swagger 2.0 document, groups its endpoints by tag and by " +
			"inferred resource, and sends live requests built from parameter forms.",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	// Convert Cobra flag errors (like unknown flags) into friendly usage errors
	// that also show the command's help text.
	cmd.SetFlagErrorFunc(flagUsageError)

	pf := cmd.PersistentFlags()
	pf.StringP("config", "c", "", "Config file path (YAML or JSON)")
	pf.BoolP("verbose", "v", false, "Enable verbose logging output")
	pf.StringP("spec", "s", "", "Path or http(s) URL of the Swagger 2.0 document")
	pf.Bool("no-color", false, "Disable colored output")
	pf.StringP("output", "o", "", "Output format (text|json); defaults to text")
	pf.Duration("timeout", 0, "Timeout for API requests (0 means none)")

	for _, sub := range []*cobra.Command{
		newInfoCmd(),
		newEndpointsCmd(),
		newTagsCmd(),
		newEntitiesCmd(),
		newExampleCmd(),
		newFormCmd(),
		newCallCmd(),
		newExploreCmd(),
		newValidateCmd(),
		newInitCmd(),
	} {
		sub.SetFlagErrorFunc(flagUsageError)
		cmd.AddCommand(sub)
	}

	return cmd
}

func flagUsageError(c *cobra.Command, err error) error {
	return newUsageError(fmt.Sprintf("%v\n\n%s", err, c.UsageString()))
}
