package composite

import (
	"fmt"
	"html"

	"github.com/gardar/hybridparse/pkg/document"
)

const htmlTemplate = `<div class="composite-element hybrid-enhanced">
  <div class="image-cell">
    <img src="%s" alt="Composite image"/>
  </div>
  <div class="text-cell">
    <h4>Extracted content (OCR enhanced)</h4>
    <pre>%s</pre>
  </div>
</div>`

func compositeHTML(img document.Element, text string) string {
	return fmt.Sprintf(htmlTemplate, img.DataURI(), html.EscapeString(text))
}

func compositeMarkdown(img document.Element, text string) string {
	return fmt.Sprintf("![Composite image](%s)\n\n**Extracted content:**\n```\n%s\n```", img.DataURI(), text)
}
