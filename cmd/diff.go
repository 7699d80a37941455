package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pgdelta/pgdelta/internal/differ"
	"github.com/pgdelta/pgdelta/internal/report"
)

var (
	diffSource     sourceFlags
	diffTarget     sourceFlags
	diffFormat     string
	diffVerbosity  string
	diffUseColor   bool
	diffIgnoreName bool
)

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Show the structural differences between two schemas",
	RunE:  runDiff,
}

func init() {
	diffCmd.Flags().StringVar(&diffSource.Dir, "source-dir", "", "source schema directory of .sql files")
	diffCmd.Flags().StringVar(&diffSource.DSN, "source-dsn", "", "source database connection string")
	diffCmd.Flags().StringVar(&diffSource.Schema, "source-schema", "public", "source schema name")

	diffCmd.Flags().StringVar(&diffTarget.Dir, "target-dir", "", "target schema directory of .sql files")
	diffCmd.Flags().StringVar(&diffTarget.DSN, "target-dsn", "", "target database connection string")
	diffCmd.Flags().StringVar(&diffTarget.Schema, "target-schema", "public", "target schema name")

	diffCmd.Flags().StringVar(&diffFormat, "format", "text", "report format: text or markdown")
	diffCmd.Flags().StringVar(&diffVerbosity, "verbosity", "normal", "summary, normal, detailed, or verbose")
	diffCmd.Flags().BoolVar(&diffUseColor, "color", true, "colorize terminal output")
	diffCmd.Flags().BoolVar(&diffIgnoreName, "ignore-constraint-names", false, "match constraints by shape, ignoring their names")
}

func runDiff(cmd *cobra.Command, args []string) error {
	if err := diffSource.validate("source"); err != nil {
		return err
	}
	if err := diffTarget.validate("target"); err != nil {
		return err
	}

	ctx := cmd.Context()
	source, err := resolve(ctx, "source", diffSource)
	if err != nil {
		return err
	}
	target, err := resolve(ctx, "target", diffTarget)
	if err != nil {
		return err
	}

	sd := differ.Diff(source, target, diffOptions())

	out := report.Render(sd, report.Options{
		Format:    report.Format(diffFormat),
		Verbosity: report.Verbosity(diffVerbosity),
		UseColor:  diffUseColor,
		ShowIcons: true,
	})
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

func diffOptions() differ.Options {
	return differ.Options{
		NormalizeTypes:        true,
		CompareConstraints:    true,
		CompareTablespaces:    true,
		CompareStorageParams:  true,
		IgnoreConstraintNames: diffIgnoreName,
	}
}
