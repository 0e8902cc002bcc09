package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/xxxsen/occlient/dav"
)

type lsArgs struct {
	depth string
}

func NewLsCmd(c *Context) *cobra.Command {
	args := &lsArgs{}
	subc := &cobra.Command{
		Use:   "ls [remote path]",
		Short: "List a remote directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, params []string) error {
			p := "/"
			if len(params) > 0 {
				p = params[0]
			}
			return onRunLs(c, args, p, cmd.OutOrStdout())
		},
	}
	subc.Flags().StringVarP(&args.depth, "depth", "d", "1", "propfind depth, 0, 1 or infinity")
	return subc
}

func onRunLs(c *Context, args *lsArgs, p string, out io.Writer) error {
	ctx, cancel := c.WithTimeout()
	defer cancel()
	ents, err := c.OCC.List(ctx, p, args.depth)
	if err != nil {
		return fmt.Errorf("list dir failed, err:%w", err)
	}
	printEntries(out, ents)
	return nil
}

func printEntries(out io.Writer, ents []*dav.FileInfo) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, ent := range ents {
		mtime := "-"
		if t, ok := ent.LastModified(); ok {
			mtime = t.Local().Format("2006-01-02 15:04:05")
		}
		typ := "-"
		if ent.IsDir() {
			typ = "d"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", typ, humanize.IBytes(uint64(ent.Size())), mtime, ent.Name)
	}
	_ = w.Flush()
}

func init() {
	register(NewLsCmd)
}
