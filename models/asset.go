package models

// Asset is one entry of the uploaded source document list.
type Asset struct {
	UUID    string `json:"uuid"`
	URL     string `json:"url"`
	Name    string `json:"name"`
	Date    string `json:"date"`
	Deleted bool   `json:"deleted,omitempty"`
}
