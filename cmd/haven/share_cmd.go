package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	haven "github.com/havenstore/haven-go"
)

func newShareCommand(flags *appFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Grant and link-based sharing",
	}

	var (
		grantee  string
		write    bool
		admin    bool
		expires  time.Duration
		password string
	)
	shareOpts := func() *haven.ShareOptions {
		opts := &haven.ShareOptions{Password: password}
		if expires > 0 {
			opts.ExpiresAt = time.Now().Add(expires).UnixMilli()
		}
		return opts
	}
	perms := func() haven.SharePermissions {
		return haven.SharePermissions{Read: true, Write: write, Admin: admin}
	}

	grant := &cobra.Command{
		Use:   "grant <asset-id>",
		Short: "Share an asset with an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := buildClient(cmd.Context(), flags)
			if err != nil {
				return err
			}
			id, err := client.ShareAsset(cmd.Context(), args[0], grantee, perms(), shareOpts())
			if err != nil {
				return err
			}
			fmt.Println(id)
			return nil
		},
	}
	grant.Flags().StringVar(&grantee, "to", "", "grantee address")
	grant.Flags().BoolVar(&write, "write", false, "grant write access")
	grant.Flags().BoolVar(&admin, "admin", false, "grant admin access")
	grant.Flags().DurationVar(&expires, "expires", 0, "grant lifetime (0 = unlimited)")
	grant.Flags().StringVar(&password, "password", "", "password protecting the grant")

	link := &cobra.Command{
		Use:   "link <asset-id>",
		Short: "Create a shareable link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := buildClient(cmd.Context(), flags)
			if err != nil {
				return err
			}
			l, err := client.CreateShareableLink(cmd.Context(), args[0], perms(), shareOpts())
			if err != nil {
				return err
			}
			fmt.Printf("%s  token=%s\n", l.ID, l.Token)
			return nil
		},
	}
	link.Flags().BoolVar(&write, "write", false, "grant write access")
	link.Flags().DurationVar(&expires, "expires", 0, "link lifetime (0 = unlimited)")
	link.Flags().StringVar(&password, "password", "", "password protecting the link")

	revoke := &cobra.Command{
		Use:   "revoke <grant-id>",
		Short: "Revoke a grant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := buildClient(cmd.Context(), flags)
			if err != nil {
				return err
			}
			return client.RevokeShare(cmd.Context(), args[0])
		},
	}

	deactivate := &cobra.Command{
		Use:   "deactivate <link-id>",
		Short: "Deactivate a shareable link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := buildClient(cmd.Context(), flags)
			if err != nil {
				return err
			}
			return client.DeactivateShareableLink(cmd.Context(), args[0])
		},
	}

	var assetID string
	list := &cobra.Command{
		Use:   "ls",
		Short: "List grants and links",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := buildClient(cmd.Context(), flags)
			if err != nil {
				return err
			}
			grants, err := client.ListAccessGrants(cmd.Context(), assetID)
			if err != nil {
				return err
			}
			for _, g := range grants {
				fmt.Printf("grant %s  asset=%s  to=%s\n", g.ID, g.AssetID, g.Grantee)
			}
			links, err := client.ListShareableLinks(cmd.Context(), assetID)
			if err != nil {
				return err
			}
			for _, l := range links {
				state := "active"
				if !l.Active {
					state = "inactive"
				}
				accessed := "never accessed"
				if l.LastAccessedAt > 0 {
					accessed = "last accessed " + humanize.Time(time.UnixMilli(l.LastAccessedAt))
				}
				fmt.Printf("link  %s  asset=%s  %s  %d uses, %s\n", l.ID, l.AssetID, state, l.AccessCount, accessed)
			}
			return nil
		},
	}
	list.Flags().StringVar(&assetID, "asset", "", "only shares of this asset")

	cmd.AddCommand(grant, link, revoke, deactivate, list)
	return cmd
}
