package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

type transferFunc func(ctx context.Context, src, dst string) error

func newTransferCmd(use string, short string, name string, fn func(c *Context) transferFunc, c *Context) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, params []string) error {
			ctx, cancel := c.WithTimeout()
			defer cancel()
			if err := fn(c)(ctx, params[0], params[1]); err != nil {
				return fmt.Errorf("%s failed, err:%w", name, err)
			}
			logutil.GetLogger(ctx).Info(name+" succ", zap.String("src", params[0]), zap.String("dst", params[1]))
			return nil
		},
	}
}

func NewMvCmd(c *Context) *cobra.Command {
	return newTransferCmd("mv <src> <dst>", "Move a remote file or directory", "move", func(c *Context) transferFunc {
		return c.OCC.Move
	}, c)
}

func NewCpCmd(c *Context) *cobra.Command {
	return newTransferCmd("cp <src> <dst>", "Copy a remote file or directory", "copy", func(c *Context) transferFunc {
		return c.OCC.Copy
	}, c)
}

func init() {
	register(NewMvCmd)
	register(NewCpCmd)
}
