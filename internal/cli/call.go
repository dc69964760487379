package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/spf13/cobra"

	"github.com/mark3labs/swagger-explorer/internal/form"
	"github.com/mark3labs/swagger-explorer/internal/present"
	"github.com/mark3labs/swagger-explorer/internal/request"
	"github.com/mark3labs/swagger-explorer/internal/spec"
)

type callOptions struct {
	Params   []string
	Body     string
	BodySet  bool
	DryRun   bool
	Defaults bool
	Example  bool
	Table    bool
}

var callRunner = runCall

func newCallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "call <endpoint>",
		Short: "Send a request to an endpoint",
		Long: "Builds a request from --param values and sends it to the document's base URL. " +
			"The endpoint is an operationId or \"METHOD /path\".",
		Example: strings.TrimSpace(`  swagger-explorer -s petstore.json call getPetById --param petId=42
  swagger-explorer -s petstore.json call "POST /pets" --body '{"name": "Rex"}'
  swagger-explorer -s petstore.json call listPets --param tags=a --param tags=b --dry-run`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			opts := callOptions{BodySet: flags.Changed("body")}
			opts.Params, _ = flags.GetStringArray("param")
			opts.Body, _ = flags.GetString("body")
			opts.DryRun, _ = flags.GetBool("dry-run")
			opts.Defaults, _ = flags.GetBool("defaults")
			opts.Example, _ = flags.GetBool("example")
			opts.Table, _ = flags.GetBool("table")
			return callRunner(cmd.Context(), a, args[0], opts)
		},
	}
	cmd.Flags().StringArray("param", nil, "Parameter value as name=value; repeat for arrays")
	cmd.Flags().String("body", "", "Request body as JSON (comments and trailing commas allowed)")
	cmd.Flags().Bool("dry-run", false, "Print the request as a curl command instead of sending it")
	cmd.Flags().Bool("defaults", false, "Start from the form's initial values instead of an empty form")
	cmd.Flags().Bool("example", false, "Start body parameters from a synthesized example (implies --defaults)")
	cmd.Flags().Bool("table", false, "Render list responses as a table")
	return cmd
}

func runCall(ctx context.Context, a *app, key string, opts callOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ep, err := a.endpoint(key)
	if err != nil {
		return err
	}
	values, err := a.callValues(ep, opts)
	if err != nil {
		return err
	}

	baseURL := a.repo.BaseURL()
	if opts.DryRun {
		req, err := request.Build(baseURL, ep, values)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, req.Curl())
		return nil
	}

	session := request.NewSession(baseURL, a.executor())
	res, _ := session.Submit(ctx, ep, values)
	if res.TransportFailed() {
		a.logger.WithFields(log.Fields{"endpoint": ep.ID, "error": res.Error}).Debug("request failed")
		return fmt.Errorf("%s %s: %s", strings.ToUpper(string(ep.Method)), ep.Path, res.Error)
	}
	return a.showResult(res, opts.Table)
}

// callValues applies the command line edits on top of the starting form.
func (a *app) callValues(ep spec.Endpoint, opts callOptions) (form.Values, error) {
	values := form.Values{}
	if opts.Defaults || opts.Example {
		values = a.seed(ep, opts.Example)
	}

	pairs, err := parseParams(opts.Params)
	if err != nil {
		return nil, err
	}
	// Repeated names collect into one text block so array parameters see one
	// element per line.
	order := []string{}
	texts := map[string][]string{}
	for _, kv := range pairs {
		if _, seen := texts[kv[0]]; !seen {
			order = append(order, kv[0])
		}
		texts[kv[0]] = append(texts[kv[0]], kv[1])
	}
	for _, name := range order {
		if err := values.SetText(ep, name, strings.Join(texts[name], "\n")); err != nil {
			return nil, newUsageError(err.Error())
		}
	}

	if opts.BodySet {
		body := ep.ParametersIn(spec.InBody)
		if len(body) == 0 {
			return nil, newUsageError(fmt.Sprintf("%s does not take a request body", ep.ID))
		}
		if err := values.SetText(ep, body[0].Name, opts.Body); err != nil {
			return nil, newUsageError(err.Error())
		}
	}
	return values, nil
}

func (a *app) showResult(res request.Result, table bool) error {
	if a.jsonOutput() {
		return a.writeJSON(res)
	}
	fmt.Fprintf(a.out, "%s  %s\n", present.Status(res.Status), res.Duration.Round(time.Millisecond))
	if table {
		if items := present.ListItems(res.Data); len(items) > 0 {
			return present.WriteTable(a.out, items, present.Columns(items, present.MaxColumns))
		}
	}
	switch data := res.Data.(type) {
	case nil:
		return nil
	case string:
		fmt.Fprintln(a.out, data)
		return nil
	default:
		return a.writeJSON(data)
	}
}
