package moderation

import (
	"fmt"
	"net/textproto"
	"strings"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func videoPartHeader(name, mimeType string) textproto.MIMEHeader {
	if name == "" {
		name = "video"
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="%s"; filename="%s"`, videoField, quoteEscaper.Replace(name)))
	header.Set("Content-Type", mimeType)
	return header
}
