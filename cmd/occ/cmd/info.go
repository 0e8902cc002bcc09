package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func NewInfoCmd(c *Context) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show server version and account details",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := c.WithTimeout()
			defer cancel()
			u, err := c.OCC.Login(ctx)
			if err != nil {
				return fmt.Errorf("login failed, err:%w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "server:  %s\n", c.Config.Server)
			fmt.Fprintf(out, "version: %s\n", c.OCC.GetVersion())
			fmt.Fprintf(out, "user:    %s (%s)\n", u.ID, u.DisplayName)
			detail, err := c.OCC.GetUser(ctx, u.ID)
			if err != nil {
				// provisioning api is admin only on most servers
				return nil
			}
			fmt.Fprintf(out, "email:   %s\n", detail.Email)
			if detail.Quota.Total < 0 {
				fmt.Fprintf(out, "quota:   %s / unlimited\n", humanize.IBytes(uint64(detail.Quota.Used)))
				return nil
			}
			fmt.Fprintf(out, "quota:   %s / %s\n", humanize.IBytes(uint64(detail.Quota.Used)), humanize.IBytes(uint64(detail.Quota.Total)))
			return nil
		},
	}
}

func init() {
	register(NewInfoCmd)
}
