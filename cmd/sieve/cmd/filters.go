package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/solatis/sieve/internal/core/config"
	"github.com/solatis/sieve/internal/core/db"
	"github.com/solatis/sieve/internal/core/store"
	"github.com/solatis/sieve/internal/filter"
	"github.com/solatis/sieve/internal/types"
)

var filtersCmd = &cobra.Command{
	Use:   "filters",
	Short: "Manage saved filter definitions",
}

var filtersSaveCmd = &cobra.Command{
	Use:   "save <expression>",
	Short: "Validate an expression and save it under a name",
	Args:  cobra.ExactArgs(1),
	RunE:  runFiltersSave,
}

var filtersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved filters",
	RunE:  runFiltersList,
}

var filtersShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show the compiled output of a saved filter",
	Args:  cobra.ExactArgs(1),
	RunE:  runFiltersShow,
}

var filtersDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved filter",
	Args:  cobra.ExactArgs(1),
	RunE:  runFiltersDelete,
}

func init() {
	rootCmd.AddCommand(filtersCmd)
	filtersCmd.AddCommand(filtersSaveCmd)
	filtersCmd.AddCommand(filtersListCmd)
	filtersCmd.AddCommand(filtersShowCmd)
	filtersCmd.AddCommand(filtersDeleteCmd)

	filtersSaveCmd.Flags().String("name", "", "unique name for the filter (required)")
	filtersSaveCmd.MarkFlagRequired("name")
	filtersShowCmd.Flags().String("format", "sql", "output format (sql, structured)")
}

// openStore opens the database and prepares the saved-filter store.
// The returned close function must be deferred by the caller.
func openStore() (*store.Store, func() error, error) {
	if dbURL == "" {
		return nil, nil, fmt.Errorf("--db-url required")
	}
	database, err := db.Open(dbURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	queries, err := db.LoadQueries(database)
	if err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("failed to load queries: %w", err)
	}
	return store.New(queries), database.Close, nil
}

func runFiltersSave(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	opts, err := builderOptions(cfg)
	if err != nil {
		return err
	}

	b, err := filter.Parse(args[0], opts...)
	if err != nil {
		return fmt.Errorf("failed to parse expression: %w", err)
	}
	if !b.IsValid() {
		return fmt.Errorf("expression has %d validation error(s)", len(b.Errors()))
	}

	filters, closeDB, err := openStore()
	if err != nil {
		return err
	}
	defer closeDB()

	name, _ := cmd.Flags().GetString("name")
	saved, err := filters.Save(name, b.Root())
	if err != nil {
		return err
	}
	fmt.Printf("Saved filter %q with ID %s\n", saved.Name, saved.FilterID)
	return nil
}

func runFiltersList(cmd *cobra.Command, args []string) error {
	filters, closeDB, err := openStore()
	if err != nil {
		return err
	}
	defer closeDB()

	saved, err := filters.List()
	if err != nil {
		return err
	}
	if len(saved) == 0 {
		fmt.Println("No saved filters")
		return nil
	}
	for _, f := range saved {
		tree, err := f.Tree()
		if err != nil {
			fmt.Printf("%s  %s  (unreadable definition)\n", f.FilterID, f.Name)
			continue
		}
		fmt.Printf("%s  %s  (%d condition(s))\n", f.FilterID, f.Name, tree.CountConditions())
	}
	return nil
}

func runFiltersShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	opts, err := builderOptions(cfg)
	if err != nil {
		return err
	}

	filters, closeDB, err := openStore()
	if err != nil {
		return err
	}
	defer closeDB()

	saved, err := filters.GetByName(args[0])
	if err != nil {
		if err == types.ErrFilterNotFound {
			return fmt.Errorf("no saved filter named %q", args[0])
		}
		return err
	}
	tree, err := saved.Tree()
	if err != nil {
		return fmt.Errorf("failed to decode filter %q: %w", saved.Name, err)
	}

	b := filter.FromNode(tree, opts...)
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

func runFiltersDelete(cmd *cobra.Command, args []string) error {
	filters, closeDB, err := openStore()
	if err != nil {
		return err
	}
	defer closeDB()

	saved, err := filters.GetByName(args[0])
	if err != nil {
		if err == types.ErrFilterNotFound {
			return fmt.Errorf("no saved filter named %q", args[0])
		}
		return err
	}
	if err := filters.Delete(saved.FilterID); err != nil {
		return err
	}
	fmt.Printf("Deleted filter %q\n", saved.Name)
	return nil
}
