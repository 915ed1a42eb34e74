package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFolderCommand(flags *appFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folder",
		Short: "Manage folders",
	}

	var (
		description string
		parentID    string
	)
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := buildClient(cmd.Context(), flags)
			if err != nil {
				return err
			}
			id, err := client.CreateFolder(cmd.Context(), args[0], description, parentID)
			if err != nil {
				return err
			}
			fmt.Println(id)
			return nil
		},
	}
	create.Flags().StringVar(&description, "description", "", "folder description")
	create.Flags().StringVar(&parentID, "parent", "", "parent folder id")

	list := &cobra.Command{
		Use:   "ls",
		Short: "List folders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := buildClient(cmd.Context(), flags)
			if err != nil {
				return err
			}
			folders, err := client.ListFolders(cmd.Context())
			if err != nil {
				return err
			}
			for _, f := range folders {
				fmt.Printf("%s  %-24s  %d assets\n", f.ID, truncate(f.Name, 24), f.AssetCount)
			}
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "rm <folder-id>",
		Short: "Delete an empty folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := buildClient(cmd.Context(), flags)
			if err != nil {
				return err
			}
			return client.DeleteFolder(cmd.Context(), args[0])
		},
	}

	var folderID string
	move := &cobra.Command{
		Use:   "mv <asset-id>",
		Short: "Move an asset into a folder (or out, with --to \"\")",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := buildClient(cmd.Context(), flags)
			if err != nil {
				return err
			}
			return client.MoveToFolder(cmd.Context(), args[0], folderID)
		},
	}
	move.Flags().StringVar(&folderID, "to", "", "destination folder id (empty moves to top level)")

	cmd.AddCommand(create, list, remove, move)
	return cmd
}
