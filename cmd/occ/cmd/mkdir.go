package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

func NewMkdirCmd(c *Context) *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir <remote path>",
		Short: "Create a remote directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, params []string) error {
			ctx, cancel := c.WithTimeout()
			defer cancel()
			if err := c.OCC.Mkdir(ctx, params[0]); err != nil {
				return fmt.Errorf("create dir failed, err:%w", err)
			}
			logutil.GetLogger(ctx).Info("create dir succ", zap.String("path", params[0]))
			return nil
		},
	}
}

func NewRmCmd(c *Context) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <remote path>",
		Short: "Delete a remote file or directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, params []string) error {
			ctx, cancel := c.WithTimeout()
			defer cancel()
			if err := c.OCC.Delete(ctx, params[0]); err != nil {
				return fmt.Errorf("delete failed, err:%w", err)
			}
			logutil.GetLogger(ctx).Info("delete succ", zap.String("path", params[0]))
			return nil
		},
	}
}

func init() {
	register(NewMkdirCmd)
	register(NewRmCmd)
}
