package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mark3labs/swagger-explorer/internal/spec"
)

var severityColors = map[spec.Severity]*color.Color{
	spec.SeverityError:   color.New(color.FgRed, color.Bold),
	spec.SeverityWarning: color.New(color.FgYellow),
	spec.SeverityInfo:    color.New(color.Faint),
}

type validateReport struct {
	Location string       `json:"location"`
	Loadable bool         `json:"loadable"`
	Issues   []spec.Issue `json:"issues"`
	Errors   int          `json:"errors"`
	Warnings int          `json:"warnings"`
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the document strictly and list problems",
		Long: "Converts the Swagger 2.0 document to OpenAPI 3 and validates the result. The " +
			"explorer tolerates most of what this reports; use it to lint a document.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			if err := a.cfg.requireSpec(cmd.Name()); err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return a.validate(ctx)
		},
	}
}

func (a *app) validate(ctx context.Context) error {
	raw, location, err := spec.Read(ctx, a.cfg.Spec, spec.WithLogger(a.logger))
	if err != nil {
		return describeSpecError(err)
	}

	report := validateReport{Location: location, Issues: []spec.Issue{}}
	if _, err := spec.Decode(raw); err != nil {
		report.Issues = append(report.Issues, issueFrom(err))
	} else {
		report.Loadable = true
	}

	issues, err := spec.Diagnose(ctx, raw)
	report.Issues = append(report.Issues, issues...)
	if err != nil && report.Loadable {
		report.Issues = append(report.Issues, issueFrom(err))
	}
	for _, is := range report.Issues {
		switch is.Severity {
		case spec.SeverityError:
			report.Errors++
		case spec.SeverityWarning:
			report.Warnings++
		}
	}

	if a.jsonOutput() {
		if err := a.writeJSON(report); err != nil {
			return err
		}
	} else {
		for _, is := range report.Issues {
			c := severityColors[is.Severity]
			line := fmt.Sprintf("%s: %s", c.Sprint(is.Severity), is.Message)
			if is.JSONPointer != "" {
				line += fmt.Sprintf(" (%s)", is.JSONPointer)
			}
			fmt.Fprintln(a.out, line)
		}
		fmt.Fprintf(a.out, "%s: %d error(s), %d warning(s)\n", location, report.Errors, report.Warnings)
	}

	if report.Errors > 0 {
		return fmt.Errorf("validate: %d error(s) in %s", report.Errors, location)
	}
	return nil
}

func issueFrom(err error) spec.Issue {
	is := spec.Issue{Severity: spec.SeverityError, Message: err.Error()}
	var se *spec.SpecError
	if errors.As(err, &se) {
		is.Code = se.Code
		is.JSONPointer = se.JSONPointer
	}
	return is
}
