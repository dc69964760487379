package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/mark3labs/swagger-explorer/internal/catalog"
	"github.com/mark3labs/swagger-explorer/internal/form"
	"github.com/mark3labs/swagger-explorer/internal/present"
	"github.com/mark3labs/swagger-explorer/internal/request"
	"github.com/mark3labs/swagger-explorer/internal/spec"
)

// prompter is the interactive input used by explore.
type prompter interface {
	Select(message string, options []string) (int, error)
	Input(message, def string) (string, error)
	Multiline(message, def string) (string, error)
	Confirm(message string, def bool) (bool, error)
}

type surveyPrompter struct{}

func (surveyPrompter) Select(message string, options []string) (int, error) {
	var idx int
	err := survey.AskOne(&survey.Select{Message: message, Options: options, PageSize: 15}, &idx)
	return idx, err
}

func (surveyPrompter) Input(message, def string) (string, error) {
	var out string
	err := survey.AskOne(&survey.Input{Message: message, Default: def}, &out)
	return out, err
}

func (surveyPrompter) Multiline(message, def string) (string, error) {
	var out string
	err := survey.AskOne(&survey.Multiline{Message: message, Default: def}, &out)
	return out, err
}

func (surveyPrompter) Confirm(message string, def bool) (bool, error) {
	var out bool
	err := survey.AskOne(&survey.Confirm{Message: message, Default: def}, &out)
	return out, err
}

var (
	newPrompter   = func() prompter { return surveyPrompter{} }
	isInteractive = func() bool {
		fd := os.Stdin.Fd()
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
)

const (
	choiceBack = "« Back"
	choiceQuit = "Quit"
	choiceSend = "Send request"
	choiceCurl = "Show as curl"
)

func newExploreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explore",
		Short: "Browse tags and endpoints interactively and send requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isInteractive() {
				return newUsageError("explore needs an interactive terminal; use endpoints and call instead")
			}
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			err = a.explore(ctx, newPrompter())
			if errors.Is(err, terminal.InterruptErr) {
				return nil
			}
			return err
		},
	}
}

type explorer struct {
	*app
	ask     prompter
	session *request.Session
}

func (a *app) explore(ctx context.Context, ask prompter) error {
	x := &explorer{app: a, ask: ask, session: request.NewSession(a.repo.BaseURL(), a.executor())}
	groups := catalog.GroupByTag(a.repo.Endpoints())
	names := groups.Names()
	if len(names) == 0 {
		fmt.Fprintln(a.out, "no endpoints")
		return nil
	}

	for {
		options := make([]string, 0, len(names)+1)
		for _, name := range names {
			options = append(options, fmt.Sprintf("%s (%d)", name, len(groups.Get(name))))
		}
		options = append(options, choiceQuit)
		idx, err := ask.Select("Tag", options)
		if err != nil {
			return err
		}
		if idx >= len(names) {
			return nil
		}
		if err := x.browseTag(ctx, groups.Get(names[idx])); err != nil {
			return err
		}
	}
}

func (x *explorer) browseTag(ctx context.Context, eps []spec.Endpoint) error {
	for {
		options := make([]string, 0, len(eps)+1)
		for _, ep := range eps {
			label := fmt.Sprintf("%-7s %s", strings.ToUpper(string(ep.Method)), ep.Path)
			if ep.Summary != "" {
				label += "  " + ep.Summary
			}
			options = append(options, label)
		}
		options = append(options, choiceBack)
		idx, err := x.ask.Select("Endpoint", options)
		if err != nil {
			return err
		}
		if idx >= len(eps) {
			return nil
		}
		if err := x.editAndSend(ctx, eps[idx]); err != nil {
			return err
		}
	}
}

// editAndSend keeps the form of ep open until the user goes back, so values
// survive between sends.
func (x *explorer) editAndSend(ctx context.Context, ep spec.Endpoint) error {
	values := x.seed(ep, false)
	for {
		options := make([]string, 0, len(ep.Parameters)+3)
		for _, p := range ep.Parameters {
			label := fmt.Sprintf("%s (%s)", p.Name, p.In)
			if p.Required {
				label += " *"
			}
			text := strings.ReplaceAll(form.Format(p, values[p.Name]), "\n", " ")
			options = append(options, fmt.Sprintf("%s = %s", label, text))
		}
		options = append(options, choiceSend, choiceCurl, choiceBack)

		idx, err := x.ask.Select(fmt.Sprintf("%s %s", strings.ToUpper(string(ep.Method)), ep.Path), options)
		if err != nil {
			return err
		}
		switch {
		case idx < len(ep.Parameters):
			if err := x.editParameter(ep, values, ep.Parameters[idx]); err != nil {
				return err
			}
		case options[idx] == choiceSend:
			res, current := x.session.Submit(ctx, ep, values)
			if !current {
				continue
			}
			if res.TransportFailed() {
				fmt.Fprintf(x.out, "request failed: %s\n", res.Error)
				continue
			}
			if err := x.showResult(res, x.wantTable(res)); err != nil {
				return err
			}
		case options[idx] == choiceCurl:
			req, err := request.Build(x.session.BaseURL, ep, values)
			if err != nil {
				fmt.Fprintf(x.out, "cannot build request: %v\n", err)
				continue
			}
			fmt.Fprintln(x.out, req.Curl())
		default:
			return nil
		}
	}
}

func (x *explorer) editParameter(ep spec.Endpoint, values form.Values, p spec.Parameter) error {
	current := form.Format(p, values[p.Name])
	message := p.Name
	if p.Description != "" {
		message = fmt.Sprintf("%s: %s", p.Name, p.Description)
	}

	var (
		text string
		err  error
	)
	if p.In == spec.InBody || p.Type == "array" {
		if p.In == spec.InBody && len(strings.TrimSpace(current)) <= 2 && p.Schema != nil {
			fill, err := x.ask.Confirm("Start from a generated example?", true)
			if err != nil {
				return err
			}
			if fill {
				current = form.Format(p, x.synthesizer().Example(p.Schema))
			}
		}
		text, err = x.ask.Multiline(message, current)
	} else {
		text, err = x.ask.Input(message, current)
	}
	if err != nil {
		return err
	}
	return values.SetText(ep, p.Name, text)
}

// wantTable reports whether a response looks like a list of records.
func (x *explorer) wantTable(res request.Result) bool {
	if x.jsonOutput() {
		return false
	}
	items := present.ListItems(res.Data)
	if len(items) < 2 {
		return false
	}
	_, ok := items[0].(map[string]any)
	return ok
}
