package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	haven "github.com/havenstore/haven-go"
)

func newUploadCommand(flags *appFlags) *cobra.Command {
	var (
		folderID    string
		tags        []string
		description string
		category    string
		epochs      int
		encrypt     bool
		policyKind  string
		allowlist   []string
		password    string
	)
	cmd := &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload one or more files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := buildClient(cmd.Context(), flags)
			if err != nil {
				return err
			}

			opts := &haven.UploadOptions{
				FolderID:    folderID,
				Tags:        tags,
				Description: description,
				Category:    category,
				Epochs:      epochs,
			}
			if encrypt {
				if password == "" && haven.PolicyKind(policyKind) == haven.PolicyPassword {
					password, err = promptSecret("Policy password: ")
					if err != nil {
						return err
					}
				}
				opts.Policy = &haven.PolicyOptions{
					Kind:      haven.PolicyKind(policyKind),
					Allowlist: allowlist,
					Password:  password,
				}
			}

			for _, path := range args {
				res, err := client.Upload(cmd.Context(), haven.File{Path: path}, opts)
				if err != nil {
					return fmt.Errorf("upload %s: %w", path, err)
				}
				state := "plain"
				if res.Encrypted {
					state = "encrypted"
				}
				fmt.Printf("%s  %s  %s  %s\n", res.AssetID, humanize.IBytes(uint64(res.Size)), state, res.URL)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&folderID, "folder", "", "destination folder id")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "tag (repeatable)")
	cmd.Flags().StringVar(&description, "description", "", "asset description")
	cmd.Flags().StringVar(&category, "category", "", "asset category")
	cmd.Flags().IntVar(&epochs, "epochs", 0, "storage epochs to pay for")
	cmd.Flags().BoolVar(&encrypt, "encrypt", false, "encrypt under an access policy")
	cmd.Flags().StringVar(&policyKind, "policy", string(haven.PolicyAllowlist), "policy kind (public|allowlist|time-limited|password)")
	cmd.Flags().StringSliceVar(&allowlist, "allow", nil, "allowlisted address (repeatable)")
	cmd.Flags().StringVar(&password, "password", "", "policy password (prompted when omitted)")
	return cmd
}

func newGetCommand(flags *appFlags) *cobra.Command {
	var (
		output    string
		session   string
		noDecrypt bool
	)
	cmd := &cobra.Command{
		Use:   "get <asset-id>",
		Short: "Retrieve an asset's bytes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := buildClient(cmd.Context(), flags)
			if err != nil {
				return err
			}

			opts := &haven.RetrieveOptions{Session: session}
			if noDecrypt {
				f := false
				opts.Decrypt = &f
			} else if session == "" {
				asset, err := client.GetAsset(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if asset.Encrypted {
					opts.Session, err = client.NewSession(cmd.Context(), 10*time.Minute)
					if err != nil {
						return err
					}
				}
			}

			res, err := client.Retrieve(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err = os.Stdout.Write(res.Data)
				return err
			}
			if err := os.WriteFile(output, res.Data, 0o600); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "wrote %s (%s)\n", output, humanize.IBytes(uint64(len(res.Data))))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&session, "session", "", "session credential for decryption")
	cmd.Flags().BoolVar(&noDecrypt, "no-decrypt", false, "return ciphertext as stored")
	return cmd
}

func newRemoveCommand(flags *appFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <asset-id>...",
		Short: "Delete assets",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := buildClient(cmd.Context(), flags)
			if err != nil {
				return err
			}
			for _, id := range args {
				if err := client.Delete(cmd.Context(), id); err != nil {
					return fmt.Errorf("delete %s: %w", id, err)
				}
				fmt.Println(id)
			}
			return nil
		},
	}
}

func newListCommand(flags *appFlags) *cobra.Command {
	var (
		folderID string
		limit    int
	)
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List assets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := buildClient(cmd.Context(), flags)
			if err != nil {
				return err
			}

			cursor := ""
			for {
				page, err := client.ListAssets(cmd.Context(), &haven.ListOptions{
					Cursor:   cursor,
					Limit:    limit,
					FolderID: folderID,
				})
				if err != nil {
					return err
				}
				for _, a := range page.Assets {
					created := humanize.Time(time.UnixMilli(a.CreatedAt))
					lock := " "
					if a.Encrypted {
						lock = "*"
					}
					fmt.Printf("%s %s  %9s  %-24s  %s  %s\n",
						lock, a.ID, humanize.IBytes(uint64(a.Size)), truncate(a.Name, 24), a.ContentType, created)
				}
				if !page.HasNextPage || page.NextCursor == "" {
					return nil
				}
				cursor = page.NextCursor
			}
		},
	}
	cmd.Flags().StringVar(&folderID, "folder", "", "only assets in this folder")
	cmd.Flags().IntVar(&limit, "limit", 0, "page size")
	return cmd
}

func newInfoCommand(flags *appFlags) *cobra.Command {
	var sweep bool
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show storage usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := buildClient(cmd.Context(), flags)
			if err != nil {
				return err
			}
			info, err := client.GetStorageInfo(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("assets: %d\ntotal:  %s\n", info.AssetCount, humanize.IBytes(uint64(info.TotalSize)))

			if sweep {
				bad, err := client.FindInconsistentAssets(cmd.Context())
				if err != nil {
					return err
				}
				for _, a := range bad {
					fmt.Printf("inconsistent: %s (%s) has a policy but a plaintext blob\n", a.ID, a.Name)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&sweep, "sweep", false, "also report assets left behind by failed encrypted uploads")
	return cmd
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
