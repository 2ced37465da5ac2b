package feedback

// FeedbackCreateOutput for POST /feedback (201 Created)
type FeedbackCreateOutput struct {
	Body Feedback
}

// ListData is one page of feedback.
type ListData struct {
	Items      []Feedback `json:"items"                doc:"Feedback, newest first"`
	NextCursor string     `json:"nextCursor,omitempty" doc:"Cursor of the next page, empty on the last page"`
}

// FeedbackListOutput for GET /feedback
type FeedbackListOutput struct {
	Link string `header:"Link" doc:"RFC 8288 pagination links"`
	Body ListData
}
