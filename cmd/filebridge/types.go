package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/marmos91/filebridge/pkg/cmis"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var typesWithProperties bool

var typesCmd = &cobra.Command{
	Use:   "types <repository> [type-id]",
	Short: "Print the type hierarchy",
	Long: `Print the type hierarchy below a type, or below both base types when no
type is given. With --properties the property definitions of every type
are listed as well.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, repo, cc, err := session(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer rt.Close()

		typeID := ""
		if len(args) > 1 {
			typeID = args[1]
		}

		unbounded := -1
		tree, err := repo.GetTypeDescendants(cc, typeID, &unbounded, typesWithProperties)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		switch outputFormat {
		case "json":
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(tree)
		case "yaml":
			return yaml.NewEncoder(w).Encode(tree)
		}

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		printTypes(tw, tree, 0)
		return tw.Flush()
	},
}

func printTypes(tw *tabwriter.Writer, nodes []*cmis.TypeDefinitionContainer, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, n := range nodes {
		fmt.Fprintf(tw, "%s%s\t%s\t%s\n", indent, n.Type.ID, n.Type.BaseKind.TypeID(), n.Type.DisplayName)
		if typesWithProperties {
			ids := make([]string, 0, len(n.Type.PropertyDefinitions))
			for id, pd := range n.Type.PropertyDefinitions {
				if !pd.Inherited {
					ids = append(ids, id)
				}
			}
			sort.Strings(ids)
			for _, id := range ids {
				pd := n.Type.PropertyDefinitions[id]
				fmt.Fprintf(tw, "%s  - %s\t%s\t%s\n", indent, id, pd.Type, pd.Updatability)
			}
		}
		printTypes(tw, n.Children, depth+1)
	}
}

var infoCmd = &cobra.Command{
	Use:   "info <repository>",
	Short: "Print repository information and capabilities",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, repo, cc, err := session(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer rt.Close()

		info, err := repo.GetRepositoryInfo(cc)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		switch outputFormat {
		case "json":
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		case "yaml":
			return yaml.NewEncoder(w).Encode(info)
		}

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "ID\t%s\n", info.ID)
		fmt.Fprintf(tw, "Product\t%s %s (%s)\n", info.ProductName, info.ProductVersion, info.VendorName)
		fmt.Fprintf(tw, "Root folder\t%s\n", info.RootFolderID)
		fmt.Fprintf(tw, "Root directory\t%s\n", repo.Root())
		fmt.Fprintf(tw, "Query\t%s\n", info.Capabilities.Query)
		fmt.Fprintf(tw, "Content updates\t%s\n", info.Capabilities.ContentStreamUpdates)
		fmt.Fprintf(tw, "ACL\t%s (%s)\n", info.Capabilities.ACL, info.ACLCapabilities.SupportedPermissions)
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(typesCmd, infoCmd)

	addUserFlags(typesCmd)
	typesCmd.Flags().BoolVar(&typesWithProperties, "properties", false, "list property definitions")

	addUserFlags(infoCmd)
}
