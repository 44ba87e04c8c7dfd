package gateway

// StatusResponse models the combined budget and queue payload of /api/uniflowstatus.
type StatusResponse struct {
	Budget float64     `json:"budget"`
	Queue  []QueueItem `json:"queue"`
}

// QueueItem is a single job in the user's print queue as the server reports it.
type QueueItem struct {
	JobID       string  `json:"job_id"`
	Name        string  `json:"name"`
	Pages       int     `json:"pages"`
	Copies      int     `json:"copies"`
	Price       float64 `json:"price"`
	PrinterName string  `json:"printer_name"`
	Date        string  `json:"date"`
	Color       bool    `json:"color"`
}

// UploadResponse is the body of a successful /api/upload.
type UploadResponse struct {
	FileID string `json:"file_id"`
}

// PrintRequest holds the fields posted to /api/print.
type PrintRequest struct {
	FileID      string
	Color       bool
	DoubleSided bool
	Staple      bool
	Collate     bool
	Copies      int
}

// CloudPrintStatus is the body of /api/cloudprintstatus.
type CloudPrintStatus struct {
	HaveCloudPrintPermission bool   `json:"haveCloudPrintPermission"`
	IsPrinterInstalled       *bool  `json:"isPrinterInstalled"`
	CloudPrintPermissionURL  string `json:"cloudPrintPermissionUrl"`
}

// ProgressFunc receives byte-progress of an upload body.
type ProgressFunc func(loaded, total int64)
