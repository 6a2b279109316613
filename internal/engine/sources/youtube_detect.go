package sources

import "strings"

// ResponseMode is the shape of a raw page response.
type ResponseMode int

const (
	ModeMarkup ResponseMode = iota // server-rendered markup only
	ModeJSON                       // script-tag embedded state object
)

func (m ResponseMode) String() string {
	if m == ModeJSON {
		return "json"
	}
	return "markup"
}

// payloadSignature opens the embedded state object (ytInitialData) on both search and watch pages.
const payloadSignature = `{"responseContext":`

// DetectResponseMode classifies a body by the presence of the embedded payload signature.
// Pure string matching, no parsing.
func DetectResponseMode(body string) ResponseMode {
	if strings.Contains(body, payloadSignature) {
		return ModeJSON
	}
	return ModeMarkup
}
