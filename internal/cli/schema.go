package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mark3labs/swagger-explorer/internal/example"
	"github.com/mark3labs/swagger-explorer/internal/form"
	"github.com/mark3labs/swagger-explorer/internal/present"
	"github.com/mark3labs/swagger-explorer/internal/spec"
)

const definitionsPrefix = "#/definitions/"

func newExampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "example <definition>",
		Short: "Print a synthesized example for a schema definition",
		Long: "Accepts a definition name (Pet) or a local reference (#/definitions/Pet) and " +
			"prints a representative JSON value built from the schema.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			return a.example(args[0])
		},
	}
}

func (a *app) example(name string) error {
	ref := strings.TrimSpace(name)
	if !strings.HasPrefix(ref, "#/") {
		ref = definitionsPrefix + ref
	}
	if def := strings.TrimPrefix(ref, definitionsPrefix); def != ref {
		if _, ok := a.repo.Definition(def); !ok {
			return newUsageError(fmt.Sprintf("unknown definition %q", def))
		}
	}
	v := a.synthesizer().ResolveExample(ref)
	return a.writeJSON(v)
}

func (a *app) synthesizer() *example.Synthesizer {
	return example.NewSynthesizer(a.repo.Document().Definitions, example.WithLogger(a.logger))
}

// endpoint resolves an operationId or "METHOD /path" key.
func (a *app) endpoint(key string) (spec.Endpoint, error) {
	ep, ok := a.repo.Lookup(strings.TrimSpace(key))
	if !ok {
		return spec.Endpoint{}, newUsageError(fmt.Sprintf("unknown endpoint %q (use an operationId or \"METHOD /path\")", key))
	}
	return ep, nil
}

type formField struct {
	Name        string `json:"name"`
	In          string `json:"in"`
	Type        string `json:"type,omitempty"`
	Required    bool   `json:"required"`
	Description string `json:"description,omitempty"`
	Value       any    `json:"value"`
}

func newFormCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "form <endpoint>",
		Short: "Show the parameter form of an endpoint with its initial values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			withExample, _ := cmd.Flags().GetBool("example")
			return a.form(args[0], withExample)
		},
	}
	cmd.Flags().Bool("example", false, "Fill body parameters with a synthesized example instead of {}")
	return cmd
}

func (a *app) form(key string, withExample bool) error {
	ep, err := a.endpoint(key)
	if err != nil {
		return err
	}
	values := a.seed(ep, withExample)

	fields := make([]formField, 0, len(ep.Parameters))
	for _, p := range ep.Parameters {
		fields = append(fields, formField{
			Name:        p.Name,
			In:          string(p.In),
			Type:        p.Type,
			Required:    p.Required,
			Description: p.Description,
			Value:       values[p.Name],
		})
	}
	if a.jsonOutput() {
		return a.writeJSON(fields)
	}

	fmt.Fprintf(a.out, "%s %s\n", present.Method(ep.Method), ep.Path)
	if len(fields) == 0 {
		fmt.Fprintln(a.out, "no parameters")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tIN\tTYPE\tREQUIRED\tVALUE")
	for i, f := range fields {
		req := ""
		if f.Required {
			req = "*"
		}
		typ := f.Type
		if typ == "" && ep.Parameters[i].Schema != nil {
			typ = "schema"
		}
		value := form.Format(ep.Parameters[i], f.Value)
		value = strings.ReplaceAll(value, "\n", " ")
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", f.Name, f.In, typ, req, value)
	}
	return tw.Flush()
}

// seed returns the initial form values; withExample replaces each body
// parameter's {} by a synthesized example of its schema.
func (a *app) seed(ep spec.Endpoint, withExample bool) form.Values {
	values := form.Seed(ep, a.synthesizer())
	if !withExample {
		return values
	}
	syn := a.synthesizer()
	for _, p := range ep.ParametersIn(spec.InBody) {
		if p.Schema == nil {
			continue
		}
		if v := syn.Example(p.Schema); v != nil {
			values[p.Name] = v
		}
	}
	return values
}
