package comments

import (
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"engagehub/internal/cli/api"
	"engagehub/internal/cli/styles"
	"engagehub/pkg/models"
	"engagehub/pkg/utils"
)

var listCmd = &cobra.Command{
	Use:   "list <post_id>",
	Short: "List approved comments of a post",
	Long:  "List the approved top-level comments of a post, or the replies under --parent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sort, _ := cmd.Flags().GetString("sort")
		parent, _ := cmd.Flags().GetString("parent")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		params := url.Values{}
		params.Set("sort", sort)
		params.Set("limit", strconv.Itoa(limit))
		params.Set("offset", strconv.Itoa(offset))
		if parent != "" {
			params.Set("parent_id", parent)
		}

		var page models.PaginatedResponse[models.Comment]
		if err := api.Get(cmd.Context(), "/posts/"+url.PathEscape(args[0])+"/comments", params, &page); err != nil {
			return fmt.Errorf("list failed: %w", err)
		}

		renderComments(cmd.OutOrStdout(), args[0], page, time.Now())
		return nil
	},
}

func renderComments(w io.Writer, postID string, page models.PaginatedResponse[models.Comment], now time.Time) {
	fmt.Fprintln(w, styles.TitleStyle.Render("Comments on "+postID))
	if len(page.Data) == 0 {
		fmt.Fprintln(w, styles.MutedStyle.Render("No comments yet."))
		return
	}

	for _, c := range page.Data {
		var b strings.Builder
		header := styles.AuthorStyle.Render(authorName(c.Author)) + "  " +
			styles.MutedStyle.Render(utils.TimeAgo(c.CreatedAt, now))
		if c.IsEdited {
			header += styles.MutedStyle.Render(" (edited)")
		}
		b.WriteString(header + "\n")
		if c.HighlightText != nil {
			b.WriteString(styles.QuoteStyle.Render(*c.HighlightText) + "\n")
		}
		b.WriteString(c.Content + "\n")
		b.WriteString(styles.MutedStyle.Render(fmt.Sprintf("%d replies · %d reactions · %s", c.ReplyCount, len(c.Reactions), c.ID)))
		fmt.Fprintln(w, styles.CardStyle.Render(b.String()))
	}

	if page.Meta.HasMore {
		fmt.Fprintln(w, styles.MutedStyle.Render(fmt.Sprintf("More available: --offset %d", page.Meta.Offset+len(page.Data))))
	}
}

func authorName(a models.Actor) string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.ID
}

func init() {
	listCmd.Flags().String("sort", string(models.SortNewest), "Ordering: newest, oldest or popular")
	listCmd.Flags().String("parent", "", "List replies under this comment")
	listCmd.Flags().Int("limit", 20, "Number of comments")
	listCmd.Flags().Int("offset", 0, "Number of comments to skip")
	CommentsCmd.AddCommand(listCmd)
}
