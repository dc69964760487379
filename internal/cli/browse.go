package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mark3labs/swagger-explorer/internal/catalog"
	"github.com/mark3labs/swagger-explorer/internal/present"
	"github.com/mark3labs/swagger-explorer/internal/spec"
)

var bold = color.New(color.Bold)

type infoSummary struct {
	Title       string         `json:"title"`
	Version     string         `json:"version"`
	Description string         `json:"description,omitempty"`
	BaseURL     string         `json:"baseUrl"`
	Endpoints   int            `json:"endpoints"`
	Tags        int            `json:"tags"`
	Entities    int            `json:"entities"`
	Definitions int            `json:"definitions"`
	Methods     map[string]int `json:"methods"`
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Summarize the loaded document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			return a.info()
		},
	}
}

func (a *app) info() error {
	doc := a.repo.Document()
	eps := a.repo.Endpoints()
	s := infoSummary{
		Title:       doc.Info.Title,
		Version:     doc.Info.Version,
		Description: doc.Info.Description,
		BaseURL:     a.repo.BaseURL(),
		Endpoints:   len(eps),
		Tags:        catalog.GroupByTag(eps).Len(),
		Entities:    catalog.EntityCount(eps),
		Definitions: len(doc.Definitions),
		Methods:     map[string]int{},
	}
	for m, n := range catalog.MethodCounts(eps) {
		s.Methods[strings.ToUpper(string(m))] = n
	}
	if a.jsonOutput() {
		return a.writeJSON(s)
	}

	title := s.Title
	if title == "" {
		title = "Untitled API"
	}
	fmt.Fprintf(a.out, "%s %s\n", bold.Sprint(title), s.Version)
	if s.Description != "" {
		fmt.Fprintln(a.out, present.Wrap(s.Description, a.width(), 2))
	}
	fmt.Fprintln(a.out)
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Base URL\t%s\n", s.BaseURL)
	fmt.Fprintf(tw, "Endpoints\t%d\n", s.Endpoints)
	fmt.Fprintf(tw, "Tags\t%d\n", s.Tags)
	fmt.Fprintf(tw, "Entities\t%d\n", s.Entities)
	fmt.Fprintf(tw, "Definitions\t%d\n", s.Definitions)
	if err := tw.Flush(); err != nil {
		return err
	}
	methods := make([]string, 0, len(s.Methods))
	for m := range s.Methods {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	if len(methods) > 0 {
		fmt.Fprintln(a.out)
		for _, m := range methods {
			fmt.Fprintf(a.out, "  %s %d\n", present.Method(spec.HttpMethod(m)), s.Methods[m])
		}
	}
	return nil
}

// width is the terminal width when writing to one, else 80 columns.
func (a *app) width() uint {
	if f, ok := a.out.(*os.File); ok {
		return present.Width(f)
	}
	return 80
}

func newEndpointsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "endpoints",
		Aliases: []string{"ls"},
		Short:   "List endpoints, optionally filtered",
		Args:    cobra.NoArgs,
		Example: strings.TrimSpace(`  swagger-explorer -s petstore.json endpoints --tag pet
  swagger-explorer -s petstore.json endpoints --method post --search upload`),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			tag, _ := cmd.Flags().GetString("tag")
			method, _ := cmd.Flags().GetString("method")
			query, _ := cmd.Flags().GetString("search")
			return a.endpoints(tag, method, query)
		},
	}
	cmd.Flags().String("tag", "", "Only endpoints with this tag (\"Other\" selects untagged ones)")
	cmd.Flags().String("method", "", "Only endpoints with this HTTP method")
	cmd.Flags().String("search", "", "Case-insensitive text to look for in path, summary, description or tags")
	return cmd
}

func (a *app) endpoints(tag, method, query string) error {
	eps := a.repo.Endpoints()
	if tag = strings.TrimSpace(tag); tag != "" {
		eps = catalog.FilterByTag(eps, tag)
	}
	if method = strings.TrimSpace(method); method != "" {
		eps = catalog.FilterByMethod(eps, method)
	}
	eps = catalog.Search(eps, query)
	if a.jsonOutput() {
		if eps == nil {
			eps = []spec.Endpoint{}
		}
		return a.writeJSON(eps)
	}
	writeEndpointList(a.out, eps)
	return nil
}

func writeEndpointList(w io.Writer, eps []spec.Endpoint) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, ep := range eps {
		summary := ep.Summary
		if ep.Deprecated {
			summary = strings.TrimSpace("(deprecated) " + summary)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", present.Method(ep.Method), ep.Path, ep.OperationID, summary)
	}
	_ = tw.Flush()
}

type tagSummary struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Endpoints   int    `json:"endpoints"`
}

func newTagsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List tags, or tag categories with --categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			categories, _ := cmd.Flags().GetBool("categories")
			return a.tags(categories)
		},
	}
	cmd.Flags().Bool("categories", false, "Group tags into coarse categories")
	return cmd
}

func (a *app) tags(categories bool) error {
	groups := catalog.GroupByTag(a.repo.Endpoints())
	if categories {
		cats := catalog.Categorize(groups.Names())
		if a.jsonOutput() {
			return a.writeJSON(cats)
		}
		for _, c := range cats {
			fmt.Fprintln(a.out, bold.Sprint(c.Name))
			for _, t := range c.Tags {
				fmt.Fprintf(a.out, "  %s (%d)\n", t, len(groups.Get(t)))
			}
		}
		return nil
	}

	out := make([]tagSummary, 0, groups.Len())
	for _, name := range groups.Names() {
		ts := tagSummary{Name: name, Endpoints: len(groups.Get(name))}
		if info, ok := a.repo.TagInfo(name); ok {
			ts.Description = info.Description
		}
		out = append(out, ts)
	}
	if a.jsonOutput() {
		return a.writeJSON(out)
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, ts := range out {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", ts.Name, ts.Endpoints, ts.Description)
	}
	return tw.Flush()
}

type entitySummary struct {
	Name      string            `json:"name"`
	Path      string            `json:"path"`
	Endpoints int               `json:"endpoints"`
	Slots     map[string]string `json:"slots"`
}

func newEntitiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entities",
		Short: "Group endpoints into CRUD resources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			tag, _ := cmd.Flags().GetString("tag")
			return a.entities(tag)
		},
	}
	cmd.Flags().String("tag", "", "Only consider endpoints with this tag")
	return cmd
}

func (a *app) entities(tag string) error {
	eps := a.repo.Endpoints()
	if tag = strings.TrimSpace(tag); tag != "" {
		eps = catalog.FilterByTag(eps, tag)
	}
	groups := catalog.GroupEntities(eps)

	if a.jsonOutput() {
		out := make([]entitySummary, 0, len(groups))
		for i := range groups {
			g := &groups[i]
			es := entitySummary{Name: g.Name, Path: g.Path, Endpoints: len(g.Endpoints), Slots: map[string]string{}}
			for _, s := range g.Slots() {
				es.Slots[string(s.Role)] = s.Endpoint.ID
			}
			out = append(out, es)
		}
		return a.writeJSON(out)
	}

	for i := range groups {
		g := &groups[i]
		fmt.Fprintf(a.out, "%s  %s\n", bold.Sprint(present.Title(g.Name)), g.Path)
		tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		for _, s := range g.Slots() {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", s.Role, present.Method(s.Endpoint.Method), s.Endpoint.Path)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}
