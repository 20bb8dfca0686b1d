package model

import (
	"encoding/base64"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Images cross component boundaries as data URIs:
// data:<mime>;base64,<payload>. The marker is a fixed contract shared with
// whatever captured or generated the image.
const dataURIMarker = ";base64,"

// EncodeDataURI renders raw bytes as a self-describing data URI
func EncodeDataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + dataURIMarker + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURI recovers the mime type and payload from a data URI
func DecodeDataURI(uri string) (string, []byte, error) {
	head, body, ok := strings.Cut(uri, dataURIMarker)
	if !ok {
		return "", nil, goerr.New("not a base64 data URI")
	}

	mimeType := strings.TrimPrefix(head, "data:")
	if mimeType == "" || mimeType == head {
		return "", nil, goerr.New("missing data URI scheme")
	}

	data, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return "", nil, goerr.Wrap(err, "failed to decode data URI payload")
	}

	return mimeType, data, nil
}
