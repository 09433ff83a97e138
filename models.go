package main

// Palette is the read view of one palette in a user record.
type Palette struct {
	ID     string   `json:"id"`
	Name   *string  `json:"name,omitempty"`
	Colors []string `json:"colors"`
}

// Result reports the outcome of one operation in a batch.
type Result struct {
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	PaletteID string `json:"paletteId,omitempty"`
}

// OpsRequest is the POST body.
type OpsRequest struct {
	Ops []RawOp `json:"ops"`
}

// OpsResponse is the POST response body.
type OpsResponse struct {
	Results []Result `json:"results"`
}
