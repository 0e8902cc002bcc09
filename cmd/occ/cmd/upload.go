package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

type uploadArgs struct {
	file   string
	target string
}

func NewUploadCmd(c *Context) *cobra.Command {
	args := &uploadArgs{}
	subc := &cobra.Command{
		Use:   "upload",
		Short: "Upload a local file or directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := c.WithTimeout()
			defer cancel()
			return onRunUpload(ctx, c, args)
		},
	}
	subc.PersistentFlags().StringVarP(&args.file, "file", "f", "", "local file or directory to upload")
	subc.PersistentFlags().StringVarP(&args.target, "target", "t", "/", "remote target, directories end with /")
	return subc
}

func onRunUpload(ctx context.Context, c *Context, args *uploadArgs) error {
	if len(args.file) == 0 {
		return fmt.Errorf("no upload file found")
	}
	isDir, err := c.OCC.IsLocalDir(args.file)
	if err != nil {
		return fmt.Errorf("stat local file failed, err:%w", err)
	}
	start := time.Now()
	if isDir {
		if err := c.OCC.UploadDirectory(ctx, args.file, args.target); err != nil {
			return fmt.Errorf("upload dir failed, err:%w", err)
		}
		logutil.GetLogger(ctx).Info("upload dir succ", zap.String("dir", args.file), zap.String("target", args.target), zap.Duration("cost", time.Since(start)))
		return nil
	}
	target := args.target
	if strings.HasSuffix(target, "/") {
		target += filepath.Base(args.file)
	}
	if err := c.OCC.UploadFile(ctx, target, args.file); err != nil {
		return fmt.Errorf("upload file failed, err:%w", err)
	}
	logutil.GetLogger(ctx).Info("upload file succ", zap.String("file", args.file), zap.String("target", target), zap.Duration("cost", time.Since(start)))
	return nil
}

func init() {
	register(NewUploadCmd)
}
