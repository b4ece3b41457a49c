package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-dcgeneral/pkg/backend"
	"github.com/goliatone/go-dcgeneral/pkg/definition"
	"github.com/goliatone/go-dcgeneral/pkg/format"
	"github.com/goliatone/go-dcgeneral/pkg/input"
	"github.com/goliatone/go-dcgeneral/pkg/model"
)

type renderOptions struct {
	query       string
	output      string
	interactive bool
}

func newRenderCmd(root *rootOptions, p prompter) *cobra.Command {
	opts := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render [container]",
		Short: "Render one request against a container and print the HTML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := buildApp(ctx, root.cfg, root.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			if opts.output != "" {
				f, err := os.Create(opts.output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			var container string
			if len(args) > 0 {
				container = args[0]
			}
			return runRender(ctx, a.backend, p, container, opts, out)
		},
	}
	cmd.Flags().StringVarP(&opts.query, "query", "q", "", "request query, e.g. \"pid=1&act=edit&id=tl_news::3\"")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "pick the container and parent record interactively")
	return cmd
}

func runRender(ctx context.Context, b *backend.Backend, p prompter, container string, opts *renderOptions, out io.Writer) error {
	query, err := url.ParseQuery(opts.query)
	if err != nil {
		return fmt.Errorf("invalid query: %w", err)
	}

	if container == "" {
		if !opts.interactive {
			return fmt.Errorf("container required (or use --interactive)")
		}
		names := b.Containers()
		idx, err := p.Select("Container", names)
		if err != nil {
			return err
		}
		container = names[idx]
	}

	def, ok := b.Definition(container)
	if !ok {
		return fmt.Errorf("%w: %q", backend.ErrUnknownContainer, container)
	}
	if opts.interactive && def.Basic.Mode == definition.ModeParentedList && query.Get("pid") == "" {
		pid, err := pickParent(ctx, b, p, def)
		if err != nil {
			return err
		}
		query.Set("pid", pid)
	}

	res, err := b.Handle(ctx, container, input.FromValues("/"+container, query))
	if err != nil {
		return err
	}
	if res.Redirect != "" {
		_, err = fmt.Fprintf(out, "redirect: %s\n", res.Redirect)
		return err
	}
	_, err = io.WriteString(out, res.HTML)
	return err
}

// pickParent lists the records of the parent provider and returns the
// token of the chosen one.
func pickParent(ctx context.Context, b *backend.Backend, p prompter, def *definition.Definition) (string, error) {
	provider, ok := b.DataProvider(def.Basic.ParentDataProvider)
	if !ok {
		return "", fmt.Errorf("parent provider %q not registered", def.Basic.ParentDataProvider)
	}
	records, err := provider.FetchAll(ctx, provider.EmptyConfig())
	if err != nil {
		return "", err
	}

	var parentDef *definition.Definition
	for _, name := range b.Containers() {
		if candidate, _ := b.Definition(name); candidate.ProviderName() == provider.Name() {
			parentDef = candidate
			break
		}
	}

	labels := make([]string, 0, records.Len())
	ids := make([]model.ModelID, 0, records.Len())
	for i := 0; i < records.Len(); i++ {
		m := records.Get(i)
		labels = append(labels, parentLabel(parentDef, m))
		ids = append(ids, m.ModelID())
	}
	idx, err := p.Select("Parent record", labels)
	if err != nil {
		return "", err
	}
	return ids[idx].Serialize(), nil
}

func parentLabel(def *definition.Definition, m *model.Model) string {
	if def != nil {
		for _, name := range def.Listing.Label.Properties {
			if prop, ok := def.Properties.Get(name); ok {
				if v := format.Resolve(prop, format.DefaultSettings()).Format(m.Property(name)); v != "" {
					return fmt.Sprintf("%s (%s)", v, m.ID())
				}
			}
		}
	}
	return m.ID()
}
