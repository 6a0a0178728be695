package comments

import "github.com/spf13/cobra"

var CommentsCmd = &cobra.Command{
	Use:   "comments",
	Short: "Comment commands",
	Long:  "Browse the approved discussion of a post",
}
