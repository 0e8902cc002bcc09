package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/occlient/dav"
	"go.uber.org/zap"
)

type downloadArgs struct {
	remote string
	output string
}

func NewDownloadCmd(c *Context) *cobra.Command {
	args := &downloadArgs{}
	subc := &cobra.Command{
		Use:   "download",
		Short: "Download a remote file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(args.remote) == 0 {
				return fmt.Errorf("no remote file found")
			}
			out := args.output
			if len(out) == 0 {
				out = dav.FileName(args.remote)
			}
			ctx, cancel := c.WithTimeout()
			defer cancel()
			start := time.Now()
			if err := c.OCC.DownloadFile(ctx, args.remote, out); err != nil {
				return fmt.Errorf("download file failed, err:%w", err)
			}
			logutil.GetLogger(ctx).Info("download file succ", zap.String("remote", args.remote), zap.String("local", out), zap.Duration("cost", time.Since(start)))
			return nil
		},
	}
	subc.PersistentFlags().StringVarP(&args.remote, "remote", "r", "", "remote file to download")
	subc.PersistentFlags().StringVarP(&args.output, "output", "o", "", "local file, defaults to the remote file name")
	return subc
}

func init() {
	register(NewDownloadCmd)
}
