package comdirect

// DocumentMetadata is the optional per-document state.
type DocumentMetadata struct {
	Archived          bool   `json:"archived"`
	DateRead          string `json:"dateRead"`
	AlreadyRead       bool   `json:"alreadyRead"`
	PredocumentExists bool   `json:"predocumentExists"`
}

// Document is one postbox document.
type Document struct {
	DocumentID    string            `json:"documentId"`
	Name          string            `json:"name"`
	DateCreation  string            `json:"dateCreation"`
	MimeType      string            `json:"mimeType"`
	Deletable     bool              `json:"deletable"`
	Advertisement bool              `json:"advertisement"`
	Metadata      *DocumentMetadata `json:"documentMetaData"`
}

// Documents is the postbox document list response.
type Documents struct {
	Paging Paging     `json:"paging"`
	Values []Document `json:"values"`
}
