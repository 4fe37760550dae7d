package flickr

// searchEnvelope is the outer object of a flickr.photos.search response.
type searchEnvelope struct {
	Photos SearchResult `json:"photos"`
}

// SearchResult is one page of photo descriptors for a (location, page)
// query. Total == 0 is a valid outcome, not an error.
type SearchResult struct {
	Page    int               `json:"page"`
	Pages   int               `json:"pages"`
	PerPage int               `json:"perpage"`
	Total   int               `json:"total"`
	Photos  []PhotoDescriptor `json:"photo"`
}

// PhotoDescriptor identifies one remote photo; the three fields are all
// that is needed to build its download URL.
type PhotoDescriptor struct {
	ID     string `json:"id"`
	Server string `json:"server"`
	Secret string `json:"secret"`
}
