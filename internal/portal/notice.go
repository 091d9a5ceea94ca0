package portal

import (
	"github.com/goccy/go-json"

	"github.com/malo-app/malo-web/internal/apiclient"
)

// Level drives the styling of a notice.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Notice is the single way pages report outcomes: shown inline at the top
// of the page, either right away or after a redirect via the session.
type Notice struct {
	Level   Level  `json:"level"`
	Kind    string `json:"kind,omitempty"` // validation | rejected | network for errors
	Message string `json:"message"`
}

func Success(msg string) Notice { return Notice{Level: LevelSuccess, Message: msg} }

func Info(msg string) Notice { return Notice{Level: LevelInfo, Message: msg} }

// FromError classifies err with the API client taxonomy.
func FromError(err error) Notice {
	return Notice{Level: LevelError, Kind: apiclient.KindOf(err).String(), Message: apiclient.MessageOf(err)}
}

// Encode serializes a notice for the session flash.
func (n Notice) Encode() string {
	b, err := json.Marshal(n)
	if err != nil {
		return n.Message
	}
	return string(b)
}

// DecodeNotice reverses Encode; plain strings become info notices.
func DecodeNotice(s string) Notice {
	var n Notice
	if err := json.Unmarshal([]byte(s), &n); err != nil || n.Message == "" {
		return Info(s)
	}
	return n
}
