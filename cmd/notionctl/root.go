package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	docsysSvc "github.com/Priya-753/notion-clone/internal/domain/services/docsystem"
	"github.com/Priya-753/notion-clone/internal/export"
)

// NewRootCmd creates the notionctl command with all subcommands registered.
func NewRootCmd(open Opener) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "notionctl",
		Short:         "notionctl - administer a notion-clone document store",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")

	connect := func(cmd *cobra.Command) (Backend, error) {
		b, err := open(cmd.Context(), verbose)
		if err != nil {
			return nil, fmt.Errorf("connecting: %w", err)
		}
		return b, nil
	}

	root.AddCommand(newMigrateCmd(connect))
	root.AddCommand(newImportCmd(connect))
	root.AddCommand(newExportCmd(connect))
	root.AddCommand(newReindexCmd(connect))
	return root
}

type connector func(cmd *cobra.Command) (Backend, error)

func newMigrateCmd(connect connector) *cobra.Command {
	return &cobra.Command{
		Use:          "migrate",
		Short:        "Create the document tables and indexes",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := connect(cmd)
			if err != nil {
				return err
			}
			defer b.Close()

			if err := b.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("migrating: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func newImportCmd(connect connector) *cobra.Command {
	var (
		owner     string
		parent    string
		overwrite bool
		jsonMode  bool
	)

	cmd := &cobra.Command{
		Use:          "import <file>...",
		Short:        "Import markdown, text, html or zip files",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			files := make([]docsysSvc.UploadedFile, 0, len(args))
			for _, path := range args {
				f, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("opening %s: %w", path, err)
				}
				defer f.Close()
				files = append(files, docsysSvc.UploadedFile{Filename: filepath.Base(path), Content: f})
			}

			b, err := connect(cmd)
			if err != nil {
				return err
			}
			defer b.Close()

			var parentID *string
			if parent != "" {
				parentID = &parent
			}
			result, err := b.Import(cmd.Context(), owner, parentID, files, overwrite)
			if err != nil {
				return fmt.Errorf("importing: %w", err)
			}

			if jsonMode {
				if err := json.NewEncoder(cmd.OutOrStdout()).Encode(result); err != nil {
					return fmt.Errorf("encoding output: %w", err)
				}
			} else {
				printImport(cmd, result)
			}
			if result.Summary.Failed > 0 {
				return fmt.Errorf("%d of %d files failed", result.Summary.Failed, result.Summary.TotalFiles)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "user id that owns the imported documents")
	cmd.Flags().StringVar(&parent, "parent", "", "id of the document to import under (default: root)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "update documents whose title already exists under the parent")
	cmd.Flags().BoolVar(&jsonMode, "json", false, "print the import result as JSON")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func printImport(cmd *cobra.Command, r *docsysSvc.ImportResult) {
	out := cmd.OutOrStdout()
	for _, d := range r.Documents {
		fmt.Fprintf(out, "%-8s %s  %s\n", d.Action, d.ID, d.Path)
	}
	for _, e := range r.Errors {
		fmt.Fprintf(cmd.ErrOrStderr(), "error: %s: %s\n", e.File, e.Error)
	}
	s := r.Summary
	fmt.Fprintf(out, "%d created, %d updated, %d skipped, %d failed\n", s.Created, s.Updated, s.Skipped, s.Failed)
}

func newExportCmd(connect connector) *cobra.Command {
	var (
		owner  string
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:          "export <document-id>",
		Short:        "Export a document as markdown, html or pdf",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			b, err := connect(cmd)
			if err != nil {
				return err
			}
			defer b.Close()

			result, err := b.Export(cmd.Context(), owner, args[0], f)
			if err != nil {
				return fmt.Errorf("exporting: %w", err)
			}

			switch output {
			case "":
				_, err = cmd.OutOrStdout().Write(result.Data)
			case ".":
				err = os.WriteFile(result.Filename, result.Data, 0o644)
			default:
				err = os.WriteFile(output, result.Data, 0o644)
			}
			if err != nil {
				return fmt.Errorf("writing export: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "user id that owns the document")
	cmd.Flags().StringVarP(&format, "format", "f", "markdown", "markdown, html or pdf")
	cmd.Flags().StringVarP(&output, "output", "o", "", `output file ("." uses the document title; default: stdout)`)
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func newReindexCmd(connect connector) *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:          "reindex",
		Short:        "Push every document of an owner to the search index",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := connect(cmd)
			if err != nil {
				return err
			}
			defer b.Close()

			n, err := b.Reindex(cmd.Context(), owner)
			if err != nil {
				return fmt.Errorf("reindexing: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d documents\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "user id whose documents are reindexed")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}
