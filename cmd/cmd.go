package cmd

import (
	"os"

	"github.com/dszqbsm/musiccrawler/cmd/crawl"
	"github.com/dszqbsm/musiccrawler/cmd/sign"
	"github.com/dszqbsm/musiccrawler/version"
	"github.com/spf13/cobra"
)

// crawl运行配置文件中的爬虫任务，sign打印签名后的接口参数，version打印版本信息

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print version.",
	Long:  "print version.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		version.Printer(cmd.OutOrStdout())
	},
}

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "musiccrawler",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(crawl.CrawlCmd, sign.NewSignCmd(), versionCmd)
	return rootCmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
