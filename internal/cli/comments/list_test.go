package comments

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"engagehub/pkg/models"
)

func TestRenderComments(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	quote := "the key sentence"
	page := models.PaginatedResponse[models.Comment]{
		Data: []models.Comment{
			{
				ID:            "cmt-1",
				Content:       "Great point",
				Author:        models.Actor{ID: "u1", DisplayName: "Alice"},
				CreatedAt:     now.Add(-2 * time.Hour),
				HighlightText: &quote,
				ReplyCount:    3,
				IsEdited:      true,
			},
			{
				ID:        "cmt-2",
				Content:   "Agreed",
				Author:    models.Actor{ID: "u2"},
				CreatedAt: now.Add(-30 * time.Second),
			},
		},
		Meta: models.PaginationMeta{Limit: 2, HasMore: true},
	}

	var buf bytes.Buffer
	renderComments(&buf, "post-1", page, now)
	out := buf.String()

	assert.Contains(t, out, "Comments on post-1")
	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, "2 hours ago")
	assert.Contains(t, out, "(edited)")
	assert.Contains(t, out, "the key sentence")
	assert.Contains(t, out, "3 replies")
	assert.Contains(t, out, "u2")
	assert.Contains(t, out, "just now")
	assert.Contains(t, out, "--offset 2")
}

func TestRenderNoComments(t *testing.T) {
	var buf bytes.Buffer
	renderComments(&buf, "post-1", models.PaginatedResponse[models.Comment]{}, time.Now())
	assert.Contains(t, buf.String(), "No comments yet.")
}

func TestListCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/posts/post-1/comments", r.URL.Path)
		assert.Equal(t, "oldest", r.URL.Query().Get("sort"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"data":[{"id":"cmt-9","content":"hello there","author":{"id":"u9","display_name":"Bob"},"created_at":"2024-03-01T12:00:00Z"}],"meta":{"limit":20,"offset":0,"has_more":false}}}`))
	}))
	defer srv.Close()
	viper.Set("server.url", srv.URL)
	defer viper.Set("server.url", "")

	var buf bytes.Buffer
	CommentsCmd.SetOut(&buf)
	CommentsCmd.SetArgs([]string{"list", "post-1", "--sort", "oldest"})
	require.NoError(t, CommentsCmd.Execute())

	assert.Contains(t, buf.String(), "hello there")
	assert.Contains(t, buf.String(), "Bob")
}
