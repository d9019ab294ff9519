package models

// NoticeLevel classifies a message shown next to the chart.
type NoticeLevel string

// Notice levels.
const (
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a warning or error collected during a run. Detail holds
// supporting text such as an unparseable response body.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
	Detail  string      `json:"detail,omitempty"`
}
