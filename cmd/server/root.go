package main

import (
	"net"
	"strconv"

	"github.com/SlpAus/guo-backend/internal/platform/config"
	"github.com/SlpAus/guo-backend/internal/platform/logger"
	"github.com/spf13/cobra"
)

// RootOptions 是所有命令共用的参数。
type RootOptions struct {
	ConfigPath string
	Debug      bool
}

// serveOptions 是启动服务时可以覆盖配置文件的参数。
type serveOptions struct {
	Host string
	Port int
}

// NewRootCommand 创建 guo-server 命令。不带子命令时启动服务。
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	serve := &serveOptions{}

	cmd := &cobra.Command{
		Use:           "guo-server [db-path]",
		Short:         "约锅账本服务",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts, args)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") || cmd.Flags().Changed("port") {
				host, port, err := net.SplitHostPort(cfg.Server.Address)
				if err != nil {
					return err
				}
				if cmd.Flags().Changed("host") {
					host = serve.Host
				}
				if cmd.Flags().Changed("port") {
					port = strconv.Itoa(serve.Port)
				}
				cfg.Server.Address = net.JoinHostPort(host, port)
			}

			log, err := logger.New(cfg.Log.Mode, cfg.Log.Debug)
			if err != nil {
				return err
			}
			defer log.Sync()
			return runServer(cfg, log)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "配置文件路径，默认在 ./config 和 . 中查找 config.yaml")
	cmd.PersistentFlags().BoolVarP(&opts.Debug, "debug", "d", false, "打开调试日志")
	cmd.Flags().StringVar(&serve.Host, "host", "127.0.0.1", "监听地址")
	cmd.Flags().IntVar(&serve.Port, "port", 8080, "监听端口")

	cmd.AddCommand(NewRestoreCommand(opts))
	return cmd
}

// loadConfig 读取配置，并用命令行参数覆盖。args[0] 若存在则为账本文件路径。
func loadConfig(cmd *cobra.Command, opts *RootOptions, args []string) (*config.Config, error) {
	cfg, err := config.LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if len(args) > 0 {
		cfg.Storage.Path = args[0]
	}
	if cmd.Flags().Changed("debug") {
		cfg.Log.Debug = opts.Debug
	}
	return cfg, nil
}
