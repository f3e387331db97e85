package main

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"mercator-hq/warden/pkg/policy/model"
)

// schemaTargets maps --type values to the reflected types.
var schemaTargets = map[string]any{
	"rule":     &model.PolicyMessage{},
	"snapshot": &model.PolicySummary{},
}

func newSchemaCmd() *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of policy rules",
		Long: `Print a JSON schema (draft 2020-12) describing one policy rule, the
object found under <domain>.<category> in a policy document. With
--type snapshot the schema of the persisted policy snapshot is printed
instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, ok := schemaTargets[target]
			if !ok {
				return fmt.Errorf("unknown schema type %q: must be rule or snapshot", target)
			}
			data, err := generateSchema(v)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}

	cmd.Flags().StringVar(&target, "type", "rule", "schema to print: rule, snapshot")
	return cmd
}

func generateSchema(v any) ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true,
	}
	schema := reflector.Reflect(v)

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}
