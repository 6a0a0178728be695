package metrics

import "github.com/spf13/cobra"

var MetricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Engagement metrics commands",
	Long:  "Inspect the cached engagement metrics of a post",
}
