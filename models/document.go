package models

// UploadResponse is returned by POST /upload_pdf/.
type UploadResponse struct {
	Message      string `json:"message"`
	RecordID     string `json:"record_id"`
	PDFName      string `json:"pdf_name"`
	DocumentType string `json:"document_type"`
	HasText      bool   `json:"has_text"`
	HasImages    bool   `json:"has_images"`
	HasCharts    bool   `json:"has_charts"`
}
