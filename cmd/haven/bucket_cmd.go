package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	haven "github.com/havenstore/haven-go"
)

func newBucketCommand(flags *appFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bucket",
		Short: "Collaborative buckets",
	}

	var quota string
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a bucket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := buildClient(cmd.Context(), flags)
			if err != nil {
				return err
			}
			var quotaBytes int64
			if quota != "" {
				n, err := humanize.ParseBytes(quota)
				if err != nil {
					return fmt.Errorf("parse quota: %w", err)
				}
				quotaBytes = int64(n)
			}
			id, err := client.CreateBucket(cmd.Context(), args[0], quotaBytes)
			if err != nil {
				return err
			}
			fmt.Println(id)
			return nil
		},
	}
	create.Flags().StringVar(&quota, "quota", "", "size quota, e.g. 10GiB (empty = unlimited)")

	list := &cobra.Command{
		Use:   "ls",
		Short: "List buckets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := buildClient(cmd.Context(), flags)
			if err != nil {
				return err
			}
			buckets, err := client.ListBuckets(cmd.Context())
			if err != nil {
				return err
			}
			for _, b := range buckets {
				quota := "unlimited"
				if b.Quota > 0 {
					quota = humanize.IBytes(uint64(b.Quota))
				}
				fmt.Printf("%s  %-24s  %s of %s  %d collaborators\n",
					b.ID, truncate(b.Name, 24), humanize.IBytes(uint64(b.TotalSize)), quota, len(b.Collaborators))
			}
			return nil
		},
	}

	var (
		write bool
		admin bool
	)
	invite := &cobra.Command{
		Use:   "invite <bucket-id> <address>",
		Short: "Add a collaborator",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := buildClient(cmd.Context(), flags)
			if err != nil {
				return err
			}
			return client.AddCollaborator(cmd.Context(), args[0], args[1], haven.SharePermissions{
				Read: true, Write: write, Admin: admin,
			})
		},
	}
	invite.Flags().BoolVar(&write, "write", false, "grant write access")
	invite.Flags().BoolVar(&admin, "admin", false, "grant admin access")

	kick := &cobra.Command{
		Use:   "kick <bucket-id> <address>",
		Short: "Remove a collaborator",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := buildClient(cmd.Context(), flags)
			if err != nil {
				return err
			}
			return client.RemoveCollaborator(cmd.Context(), args[0], args[1])
		},
	}

	add := &cobra.Command{
		Use:   "add <bucket-id> <asset-id>",
		Short: "Add an asset to a bucket",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := buildClient(cmd.Context(), flags)
			if err != nil {
				return err
			}
			return client.AddAssetToBucket(cmd.Context(), args[0], args[1])
		},
	}

	remove := &cobra.Command{
		Use:   "remove <bucket-id> <asset-id>",
		Short: "Remove an asset from a bucket",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := buildClient(cmd.Context(), flags)
			if err != nil {
				return err
			}
			return client.RemoveAssetFromBucket(cmd.Context(), args[0], args[1])
		},
	}

	cmd.AddCommand(create, list, invite, kick, add, remove)
	return cmd
}
