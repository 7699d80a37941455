package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pgdelta/pgdelta/internal/differ"
	"github.com/pgdelta/pgdelta/internal/sqlgen"
)

var (
	migrateSource     sourceFlags
	migrateTarget     sourceFlags
	migrateUseTxn     bool
	migrateIfExists   bool
	migrateNoComments bool
	migrateNoWarnings bool
	migrateIgnoreName bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Generate a forward-migration SQL script between two schemas",
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().StringVar(&migrateSource.Dir, "source-dir", "", "source schema directory of .sql files")
	migrateCmd.Flags().StringVar(&migrateSource.DSN, "source-dsn", "", "source database connection string")
	migrateCmd.Flags().StringVar(&migrateSource.Schema, "source-schema", "public", "source schema name")

	migrateCmd.Flags().StringVar(&migrateTarget.Dir, "target-dir", "", "target schema directory of .sql files")
	migrateCmd.Flags().StringVar(&migrateTarget.DSN, "target-dsn", "", "target database connection string")
	migrateCmd.Flags().StringVar(&migrateTarget.Schema, "target-schema", "public", "target schema name")

	migrateCmd.Flags().BoolVar(&migrateUseTxn, "transaction", true, "wrap the migration in BEGIN;/COMMIT;")
	migrateCmd.Flags().BoolVar(&migrateIfExists, "if-exists", true, "add IF EXISTS to DROP statements")
	migrateCmd.Flags().BoolVar(&migrateNoComments, "no-comments", false, "omit the summary header comment")
	migrateCmd.Flags().BoolVar(&migrateNoWarnings, "no-warnings", false, "omit inline warning comments on risky changes")
	migrateCmd.Flags().BoolVar(&migrateIgnoreName, "ignore-constraint-names", false, "match constraints by shape, ignoring their names")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	if err := migrateSource.validate("source"); err != nil {
		return err
	}
	if err := migrateTarget.validate("target"); err != nil {
		return err
	}

	ctx := cmd.Context()
	source, err := resolve(ctx, "source", migrateSource)
	if err != nil {
		return err
	}
	target, err := resolve(ctx, "target", migrateTarget)
	if err != nil {
		return err
	}

	sd := differ.Diff(source, target, differ.Options{
		NormalizeTypes:        true,
		CompareConstraints:    true,
		CompareTablespaces:    true,
		CompareStorageParams:  true,
		IgnoreConstraintNames: migrateIgnoreName,
	})

	mig := sqlgen.Generate(sd, sqlgen.Options{
		UseTransactions: migrateUseTxn,
		UseIfExists:     migrateIfExists,
		AddComments:     !migrateNoComments,
		AddWarnings:     !migrateNoWarnings,
		SchemaName:      migrateTarget.Schema,
	})

	fmt.Fprint(cmd.OutOrStdout(), mig.ForwardSQL)
	if mig.HasDestructiveChanges {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: this migration contains destructive changes")
	}
	return nil
}
