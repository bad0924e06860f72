package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/RynoXLI/allformats/internal/catalog"
	"github.com/RynoXLI/allformats/internal/config"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

func validateOutput(output string) error {
	switch output {
	case outputTable, outputJSON:
		return nil
	default:
		return fmt.Errorf("unsupported output %q (use %s or %s)", output, outputTable, outputJSON)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newFormatsCmd(load func() (*config.Config, error)) *cobra.Command {
	var (
		category, platform, search, output string
		limit, offset                      int
	)

	cmd := &cobra.Command{
		Use:   "formats",
		Short: "List formats, optionally filtered and paginated",
		Example: `  allformats formats --category video
  allformats formats --platform insta --search story
  allformats formats --limit 5 --offset 10 --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			cfg, err := load()
			if err != nil {
				return err
			}
			cat, err := loadCatalog(cfg.Catalog.Path)
			if err != nil {
				return err
			}

			q := catalog.Query{
				Category: category,
				Platform: platform,
				Search:   search,
				Offset:   offset,
			}
			if limit > 0 {
				q.Limit = &limit
			}
			page := cat.Query(q)

			if output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), FormatListResponse{
					Formats:    page.Formats,
					Total:      page.Total,
					Categories: cat.Categories(),
					Pagination: Pagination{Offset: page.Offset, Limit: page.Limit, HasMore: page.HasMore},
				})
			}
			_, err = io.WriteString(cmd.OutOrStdout(), renderFormats(page)+"\n")
			return err
		},
	}

	cmd.Flags().StringVar(&category, "category", "", `category id ("all" for every category)`)
	cmd.Flags().StringVar(&platform, "platform", "", "case-insensitive platform substring")
	cmd.Flags().StringVar(&search, "search", "", "case-insensitive search over name, platform and description")
	cmd.Flags().IntVar(&limit, "limit", 0, "page size (0 returns every match)")
	cmd.Flags().IntVar(&offset, "offset", 0, "index of the first format")
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table or json")

	return cmd
}

func newFormatCmd(load func() (*config.Config, error)) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "format <id>",
		Short: "Show a single format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			cfg, err := load()
			if err != nil {
				return err
			}
			cat, err := loadCatalog(cfg.Catalog.Path)
			if err != nil {
				return err
			}

			f, err := cat.Lookup(args[0])
			if err != nil {
				return fmt.Errorf("%w: %s", err, args[0])
			}

			if output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]catalog.Format{"format": f})
			}
			_, err = io.WriteString(cmd.OutOrStdout(), renderFormat(f)+"\n")
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table or json")

	return cmd
}

func newPlatformsCmd(load func() (*config.Config, error)) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "platforms",
		Short: "List platforms with their format counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			cfg, err := load()
			if err != nil {
				return err
			}
			cat, err := loadCatalog(cfg.Catalog.Path)
			if err != nil {
				return err
			}

			platforms := cat.Platforms()
			if output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), map[string][]catalog.Platform{"platforms": platforms})
			}

			t := table.NewWriter()
			t.SetStyle(table.StyleRounded)
			t.AppendHeader(table.Row{"Platform", "Formats"})
			for _, p := range platforms {
				t.AppendRow(table.Row{p.Name, p.Count})
			}
			_, err = io.WriteString(cmd.OutOrStdout(), t.Render()+"\n")
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table or json")

	return cmd
}

func newCategoriesCmd(load func() (*config.Config, error)) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List categories with their format counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutput(output); err != nil {
				return err
			}
			cfg, err := load()
			if err != nil {
				return err
			}
			cat, err := loadCatalog(cfg.Catalog.Path)
			if err != nil {
				return err
			}

			categories := cat.Categories()
			if output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), map[string][]catalog.Category{"categories": categories})
			}

			t := table.NewWriter()
			t.SetStyle(table.StyleRounded)
			t.AppendHeader(table.Row{"ID", "Name", "Formats"})
			for _, c := range categories {
				t.AppendRow(table.Row{c.ID, c.Name, c.Count})
			}
			_, err = io.WriteString(cmd.OutOrStdout(), t.Render()+"\n")
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table or json")

	return cmd
}

// renderFormats renders one page of formats as a table with a summary footer
func renderFormats(page catalog.Page) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"ID", "Name", "Platform", "Size", "Ratio", "File Types"})

	for _, f := range page.Formats {
		t.AppendRow(table.Row{
			f.ID,
			f.Name,
			f.Platform,
			dimensions(f),
			f.AspectRatio,
			strings.Join(f.FileTypes, ", "),
		})
	}

	summary := fmt.Sprintf("%d of %d", len(page.Formats), page.Total)
	if page.HasMore {
		summary += ", more available"
	}
	t.AppendFooter(table.Row{"", "", "", "", "", summary})

	return t.Render()
}

// renderFormat renders every field of a format as a two column table
func renderFormat(f catalog.Format) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendRows([]table.Row{
		{"ID", f.ID},
		{"Name", f.Name},
		{"Platform", f.Platform},
		{"Category", f.Category},
		{"Size", dimensions(f)},
		{"Aspect Ratio", f.AspectRatio},
		{"File Types", strings.Join(f.FileTypes, ", ")},
	})
	if f.MaxFileSize != "" {
		t.AppendRow(table.Row{"Max File Size", f.MaxFileSize})
	}
	if sz := f.SafeZone; sz != nil {
		t.AppendRow(table.Row{"Safe Zone", fmt.Sprintf("top %d, bottom %d, left %d, right %d",
			sz.Top, sz.Bottom, sz.Left, sz.Right)})
	}
	if f.Notes != "" {
		t.AppendRow(table.Row{"Notes", f.Notes})
	}
	t.AppendRow(table.Row{"Description", f.Description})

	return t.Render()
}

func dimensions(f catalog.Format) string {
	return strconv.Itoa(f.Width) + "x" + strconv.Itoa(f.Height)
}
