package models

// CommentView is a comment with its resolved author
type CommentView struct {
	Comment
	Author *AuthorSummary `json:"author"`
}

// PostView is a hydrated post: author resolved, repost original embedded and
// comments attached. Comments is never nil. For a repost shadow Comments is
// empty and the original's comments are found under Original.Comments.
type PostView struct {
	Post
	Author     *AuthorSummary `json:"author"`
	Original   *PostView      `json:"original"`
	Comments   []CommentView  `json:"comments"`
	DistanceKm *float64       `json:"distanceKm,omitempty"`
}

// RepostResult is the outcome of a repost request
type RepostResult struct {
	Repost          *PostView `json:"repost"`
	Original        *PostView `json:"original"`
	AlreadyReposted bool      `json:"alreadyReposted"`
}
