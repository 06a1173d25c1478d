package models

// Document is the reconstructed content of one source PDF.
type Document struct {
	DateID     string  `json:"date_id"` // YYYY-MM-DD, used to partition output files
	Date       string  `json:"date"`    // ISO-8601 instant at local midnight
	Future     bool    `json:"future"`
	Activities Records `json:"activities"`
	Invalid    Records `json:"invalid"`
}

// DataFile is the on-disk shape of data/<dateId>[-future].json.
type DataFile struct {
	Date       string  `json:"date"`
	Activities Records `json:"activities"`
	URL        string  `json:"url"`
	Name       string  `json:"name"`
}

// InvalidFile is the on-disk shape of invalid/<dateId>-invalid[-future].json.
type InvalidFile struct {
	Date    string  `json:"date"`
	Invalid Records `json:"invalid"`
}
