package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/applyflow/internal/schemas"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a JSON file against one of the applyflow schemas",
	Long: "Validate a JSON document against a named schema: candidate_graph, " +
		"job_graph, monitoring_preference, or generated_document.",
	RunE: runValidate,
}

var (
	validateSchema string
	validateFile   string
)

var schemaNames = map[string]bool{
	"candidate_graph":       true,
	"job_graph":             true,
	"monitoring_preference": true,
	"generated_document":    true,
}

func init() {
	validateCmd.Flags().StringVarP(&validateSchema, "schema", "s", "", "Schema name (required)")
	validateCmd.Flags().StringVarP(&validateFile, "file", "f", "", "Path to JSON file to validate (required)")

	if err := validateCmd.MarkFlagRequired("schema"); err != nil {
		panic(fmt.Sprintf("failed to mark schema flag as required: %v", err))
	}
	if err := validateCmd.MarkFlagRequired("file"); err != nil {
		panic(fmt.Sprintf("failed to mark file flag as required: %v", err))
	}

	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, _ []string) error {
	if !schemaNames[validateSchema] {
		return fmt.Errorf("unknown schema %q; valid names: candidate_graph, job_graph, monitoring_preference, generated_document", validateSchema)
	}

	schemaPath := schemas.ResolveSchemaPath("schemas/" + validateSchema + ".schema.json")
	if err := schemas.ValidateFile(schemaPath, validateFile); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "%s is valid against %s\n", validateFile, validateSchema)
	return nil
}
