package main

import (
	"fmt"

	"github.com/marmos91/filebridge/pkg/repository"
	"github.com/spf13/cobra"
)

var (
	matchPattern string

	lsMaxItems  int
	lsSkipCount int

	treeDepth       int
	treeFoldersOnly bool

	queryMaxItems int
)

var lsCmd = &cobra.Command{
	Use:   "ls <repository> [path]",
	Short: "List the children of a folder",
	Long: `List the children of a folder. The path is relative to the repository
root and defaults to /.

Examples:
  filebridge ls docs -u alice -p secret
  filebridge ls docs /invoices/2024 -u alice -p secret --max-items 20
  filebridge tree docs -u alice -p secret -d -1 --match '**/*.pdf'`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, repo, cc, err := session(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer rt.Close()

		folder, err := repo.GetObjectByPath(cc, pathArg(args), repository.ObjectOptions{})
		if err != nil {
			return err
		}

		opts := repository.ChildrenOptions{SkipCount: lsSkipCount}
		if cmd.Flags().Changed("max-items") {
			opts.MaxItems = &lsMaxItems
		}
		list, err := repo.GetChildren(cc, folder.ID(), opts)
		if err != nil {
			return err
		}

		rows := make([]objectRow, 0, len(list.Objects))
		for _, oif := range list.Objects {
			rows = append(rows, rowOf(oif.Object, 0))
		}
		if err := printRows(cmd.OutOrStdout(), rows, false); err != nil {
			return err
		}
		if outputFormat == "table" && list.HasMoreItems {
			fmt.Fprintf(cmd.OutOrStdout(), "(%d of %d shown)\n", len(rows), list.NumItems)
		}
		return nil
	},
}

var treeCmd = &cobra.Command{
	Use:   "tree <repository> [path]",
	Short: "Print the descendants of a folder",
	Long: `Print the descendants of a folder down to --depth levels. A depth of -1
walks the whole tree. Symbolic links to directories are not followed.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, repo, cc, err := session(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer rt.Close()

		folder, err := repo.GetObjectByPath(cc, pathArg(args), repository.ObjectOptions{})
		if err != nil {
			return err
		}

		opts := repository.DescendantsOptions{Depth: &treeDepth}
		walk := repo.GetDescendants
		if treeFoldersOnly {
			walk = repo.GetFolderTree
		}
		tree, err := walk(cc, folder.ID(), opts)
		if err != nil {
			return err
		}

		return printRows(cmd.OutOrStdout(), flatten(tree, "", 0, nil), true)
	},
}

var queryCmd = &cobra.Command{
	Use:   "query <repository> <statement>",
	Short: "Run an in_folder query",
	Long: `Run a query of the form

  SELECT ... FROM <type> WHERE IN_FOLDER('<folder id>')

Document types match the documents of the folder, folder types its
subfolders.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, repo, cc, err := session(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer rt.Close()

		opts := repository.QueryOptions{}
		if cmd.Flags().Changed("max-items") {
			opts.MaxItems = &queryMaxItems
		}
		result, err := repo.Query(cc, args[1], opts)
		if err != nil {
			return err
		}

		rows := make([]objectRow, 0, len(result.Objects))
		for _, obj := range result.Objects {
			rows = append(rows, rowOf(obj, 0))
		}
		return printRows(cmd.OutOrStdout(), rows, false)
	},
}

func pathArg(args []string) string {
	if len(args) > 1 && args[1] != "" {
		return args[1]
	}
	return "/"
}

func init() {
	rootCmd.AddCommand(lsCmd, treeCmd, queryCmd)

	for _, cmd := range []*cobra.Command{lsCmd, treeCmd, queryCmd} {
		cmd.Flags().StringVarP(&matchPattern, "match", "m", "", "only print entries whose path matches this glob (** crosses folders)")
	}

	addUserFlags(lsCmd)
	lsCmd.Flags().IntVar(&lsMaxItems, "max-items", 0, "maximum number of children to list")
	lsCmd.Flags().IntVar(&lsSkipCount, "skip", 0, "number of children to skip")

	addUserFlags(treeCmd)
	treeCmd.Flags().IntVarP(&treeDepth, "depth", "d", 2, "levels to descend (-1 for unlimited)")
	treeCmd.Flags().BoolVar(&treeFoldersOnly, "folders-only", false, "only print folders")

	addUserFlags(queryCmd)
	queryCmd.Flags().IntVar(&queryMaxItems, "max-items", 0, "maximum number of results")
}
