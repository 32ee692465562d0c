package report

// ContentTypeXLSX is the media type of every export
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Export is a generated file ready to stream to the client
type Export struct {
	Filename    string
	ContentType string
	Data        []byte
}
