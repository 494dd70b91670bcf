package controllers

// appendResp answers a record appended over HTTP.
type appendResp struct {
	Records   int    `json:"records"`
	TotalSize uint64 `json:"total_size"`
}

// recordsResp lists live records oldest first.
type recordsResp struct {
	Records []string `json:"records"`
}

// tailEvent is one watch event: the newest record after one or more appends.
type tailEvent struct {
	Records   int    `json:"records"`
	TotalSize uint64 `json:"total_size"`
	Last      string `json:"last"`
}
