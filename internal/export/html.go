package export

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"

	errs "github.com/sundaymedia/catholiccuts/internal/errors"
	"github.com/sundaymedia/catholiccuts/internal/types"
)

// ToHTML renders the Markdown review document as a standalone HTML page
// editors can open without tooling.
func ToHTML(clips []types.Clip, meta types.Metadata) (string, error) {
	var body bytes.Buffer
	if err := goldmark.Convert([]byte(ToMarkdown(clips)), &body); err != nil {
		return "", errs.NewExport("html", err)
	}

	var page bytes.Buffer
	fmt.Fprintf(&page, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 48rem; margin: 2rem auto; padding: 0 1rem; line-height: 1.5; }
blockquote { border-left: 3px solid #888; margin-left: 0; padding-left: 1rem; color: #444; }
hr { margin: 2rem 0; }
</style>
</head>
<body>
`, html.EscapeString(meta.Title))
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.String(), nil
}
