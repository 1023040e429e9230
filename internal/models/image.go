package models

// Image is a photo captured or uploaded by a citizen.
type Image struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"data"`
}
