package media

// Object describes one stored media object.
type Object struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
}

// ExtractResult is the outcome of rewriting a content body. Uploaded holds
// permanent URLs in completion order; Failed holds the temporary references
// whose upload did not succeed, in document order.
type ExtractResult struct {
	Body     string   `json:"body"`
	Uploaded []string `json:"uploaded"`
	Failed   []string `json:"failed"`
}
