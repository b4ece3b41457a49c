package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-dcgeneral/pkg/definition"
)

func newImportOpenAPICmd() *cobra.Command {
	var (
		output string
		name   string
	)
	cmd := &cobra.Command{
		Use:   "import-openapi <document> <schema>",
		Short: "Generate a flat container definition from an OpenAPI component schema",
		Args:  cobra.ExactArgs(2),
		// Does not need the application config.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			def, err := definition.FromOpenAPI(cmd.Context(), raw, args[1])
			if err != nil {
				return err
			}
			if name != "" {
				def.Name = name
			}
			out, err := yaml.Marshal(def)
			if err != nil {
				return fmt.Errorf("encode definition: %w", err)
			}
			if output == "" {
				_, err = cmd.OutOrStdout().Write(out)
				return err
			}
			return os.WriteFile(output, out, 0o644)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&name, "name", "", "container name (defaults to the schema name)")
	return cmd
}
