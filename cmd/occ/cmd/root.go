package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/occlient/cmd/occ/config"
	"github.com/xxxsen/occlient/httpkit"
	"github.com/xxxsen/occlient/occ"
)

const (
	defaultConfigFileEnv = "OCC_CONFIG"
	defaultConfigFile    = "/etc/occ/occ_config.json"
)

var cmds []CreateFunc

type Context struct {
	OCC    *occ.Client
	Config *config.Config
}

// WithTimeout returns a context bounded by the configured timeout.
func (c *Context) WithTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Duration(c.Config.Timeout)*time.Second)
}

type CreateFunc func(ctx *Context) *cobra.Command

func register(cr CreateFunc) {
	cmds = append(cmds, cr)
}

func loadConfig(cfgs []string) (*config.Config, error) {
	var lastErr error = fmt.Errorf("no config file specified")
	for _, cfg := range cfgs {
		if len(cfg) == 0 {
			continue
		}
		c, err := config.Parse(cfg)
		if err != nil {
			lastErr = err
			continue
		}
		return c, nil
	}
	return nil, fmt.Errorf("no valid config file found, last err:%w", lastErr)
}

func initContext(ctx *Context, cfgs []string) error {
	c, err := loadConfig(cfgs)
	if err != nil {
		return err
	}
	ctx.Config = c
	logger.Init("", c.LogLevel, 0, 0, 0, true)
	opts := []occ.Option{
		occ.WithInstance(c.Server),
		occ.WithThread(c.Thread),
		occ.WithRetryPolicy(httpkit.RetryPolicy{
			MaxRetries: c.MaxRetries,
			BaseDelay:  httpkit.DefaultRetryPolicy.BaseDelay,
			MaxDelay:   httpkit.DefaultRetryPolicy.MaxDelay,
			Jitter:     httpkit.DefaultRetryPolicy.Jitter,
		}),
	}
	if len(c.Token) != 0 {
		opts = append(opts, occ.WithBearerToken(c.Token))
	} else {
		opts = append(opts, occ.WithBasicAuth(c.Username, c.Password))
	}
	ctx.OCC = occ.New(opts...)
	return nil
}

func NewRoot() *cobra.Command {
	var configFile string
	ctx := &Context{}
	var rootCmd = &cobra.Command{
		Use:           "occ",
		Short:         "ownCloud CLI tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	for _, cr := range cmds {
		rootCmd.AddCommand(cr(ctx))
	}
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		envConfigFile, _ := os.LookupEnv(defaultConfigFileEnv)
		return initContext(ctx, []string{configFile, defaultConfigFile, envConfigFile})
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file")
	return rootCmd
}
