package types

type CreatePostRequest struct {
	Body string `json:"body"`
	Link string `json:"link,omitempty"`
}

type CreateCommentRequest struct {
	Body string `json:"body"`
}

type LikeResponse struct {
	PostID    int   `json:"post_id"`
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"like_count"`
}
