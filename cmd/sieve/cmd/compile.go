package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/solatis/sieve/internal/core/config"
	"github.com/solatis/sieve/internal/filter"
)

var compileCmd = &cobra.Command{
	Use:   "compile <expression>",
	Short: "Compile a filter expression",
	Long: `Compile a flat filter expression into a SQL fragment or a structured
query object. Expressions are whitespace-separated field:operator:value
tokens with optional AND / OR logic tokens, e.g.:

  sieve compile "status:eq:active AND amount:gt:100"`,
	Args: cobra.ExactArgs(1),
	RunE: runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().String("format", "sql", "output format (sql, structured)")
	compileCmd.Flags().String("qualifier", "", "table qualifier prefixed to field names")
	compileCmd.Flags().Bool("optimize", false, "reorder conditions so indexed fields come first")
	compileCmd.Flags().StringSlice("indexed", nil, "indexed field names used by --optimize")
}

func runCompile(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	opts, err := builderOptions(cfg)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("qualifier") {
		qualifier, _ := cmd.Flags().GetString("qualifier")
		opts = append(opts, filter.WithQualifier(qualifier))
	}

	b, err := filter.Parse(args[0], opts...)
	if err != nil {
		return fmt.Errorf("failed to parse expression: %w", err)
	}

	if !b.IsValid() {
		for _, verr := range b.Errors() {
			fmt.Fprintf(os.Stderr, "invalid: %s\n", verr.Error())
		}
		return fmt.Errorf("expression has %d validation error(s)", len(b.Errors()))
	}

	optimize, _ := cmd.Flags().GetBool("optimize")
	if optimize {
		indexed, _ := cmd.Flags().GetStringSlice("indexed")
		if len(indexed) == 0 {
			indexed = cfg.IndexedFields
		}
		b.Optimize(indexed...)
	}

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "sql":
		fmt.Println(b.ToSQL())
	case "structured":
		out, err := json.MarshalIndent(b.ToStructured(), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode structured output: %w", err)
		}
		fmt.Println(string(out))
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	return nil
}

// builderOptions maps file/env configuration onto builder options.
func builderOptions(cfg *config.Config) ([]filter.Option, error) {
	fieldTypes, err := cfg.ParsedFieldTypes()
	if err != nil {
		return nil, fmt.Errorf("invalid field types in config: %w", err)
	}

	opts := []filter.Option{filter.WithMaxDepth(cfg.MaxDepth)}
	if len(cfg.AllowedFields) > 0 {
		opts = append(opts, filter.WithAllowedFields(cfg.AllowedFields...))
	}
	if len(fieldTypes) > 0 {
		opts = append(opts, filter.WithFieldTypes(fieldTypes))
	}
	if cfg.TableQualifier != "" {
		opts = append(opts, filter.WithQualifier(cfg.TableQualifier))
	}
	return opts, nil
}
