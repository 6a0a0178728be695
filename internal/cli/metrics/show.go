package metrics

import (
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"engagehub/internal/cli/api"
	"engagehub/internal/cli/styles"
	"engagehub/pkg/models"
)

var showCmd = &cobra.Command{
	Use:   "show <post_id>",
	Short: "Show engagement metrics of a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var m models.EngagementMetrics
		if err := api.Get(cmd.Context(), "/posts/"+url.PathEscape(args[0])+"/metrics", nil, &m); err != nil {
			return fmt.Errorf("failed to fetch metrics: %w", err)
		}
		renderMetrics(cmd.OutOrStdout(), &m)
		return nil
	},
}

func renderMetrics(w io.Writer, m *models.EngagementMetrics) {
	fmt.Fprintln(w, styles.TitleStyle.Render("Engagement for "+m.PostID))
	fmt.Fprintln(w, styles.Row("Views", strconv.Itoa(m.ViewCount)))
	fmt.Fprintln(w, styles.Row("Unique views", strconv.Itoa(m.UniqueViewCount)))
	fmt.Fprintln(w, styles.Row("Shares", strconv.Itoa(m.ShareCount)))
	fmt.Fprintln(w, styles.Row("Comments", strconv.Itoa(m.CommentCount)))
	fmt.Fprintln(w, styles.Row("Highlights", strconv.Itoa(m.HighlightCount)))
	if m.RatingCount > 0 {
		fmt.Fprintln(w, styles.Row("Rating", fmt.Sprintf("%.2f (%d)", m.AverageRating, m.RatingCount)))
	} else {
		fmt.Fprintln(w, styles.Row("Rating", "-"))
	}

	fmt.Fprintln(w, styles.TitleStyle.Render(fmt.Sprintf("Reactions (%d)", m.TotalReactions())))
	for _, kind := range models.ReactionTypes {
		fmt.Fprintln(w, styles.Row(string(kind), strconv.Itoa(m.ReactionCounts[kind])))
	}
}

func init() {
	MetricsCmd.AddCommand(showCmd)
}
