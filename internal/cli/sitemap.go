package cli

import (
	"github.com/spf13/cobra"

	"dealscope/internal/app"
)

var (
	sitemapOutput string
	sitemapPing   bool
)

var sitemapCmd = &cobra.Command{
	Use:   "sitemap",
	Short: "Generate the sitemap and optionally ping search engines",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().WriteSitemap(cmd.Context(), app.SitemapOptions{
			OutputPath: sitemapOutput,
			Ping:       sitemapPing,
		})
	},
}

func init() {
	sitemapCmd.Flags().StringVar(&sitemapOutput, "output", "", "Path to write sitemap.xml (defaults to stdout)")
	sitemapCmd.Flags().BoolVar(&sitemapPing, "ping", false, "Ping configured search engines after generating")
}
