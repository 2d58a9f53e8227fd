package hocr

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/encoding/charmap"
)

var charsetPattern = regexp.MustCompile(`(?i)charset=["']?([a-z0-9_-]+)`)

// ParseHOCR converts raw hOCR data into the object model. Documents declaring
// a Latin-1 charset are transcoded to UTF-8 first.
func ParseHOCR(data []byte) (HOCR, error) {
	result := HOCR{Metadata: make(map[string]string)}

	decoded, err := toUTF8(data)
	if err != nil {
		return result, err
	}

	root, err := html.Parse(bytes.NewReader(decoded))
	if err != nil {
		return result, fmt.Errorf("failed to parse hOCR: %w", err)
	}

	extractDocumentMeta(&result, root)

	for _, n := range findClass(root, "ocr_page") {
		result.Pages = append(result.Pages, processPage(n))
	}
	if len(result.Pages) == 0 {
		return result, fmt.Errorf("no ocr_page elements found in hOCR data")
	}
	return result, nil
}

func toUTF8(data []byte) ([]byte, error) {
	m := charsetPattern.FindSubmatch(data)
	if m == nil {
		return data, nil
	}
	switch strings.ToLower(string(m[1])) {
	case "iso-8859-1", "latin1", "latin-1", "iso8859-1":
		out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", m[1], err)
		}
		return out, nil
	case "windows-1252", "cp1252":
		out, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", m[1], err)
		}
		return out, nil
	}
	return data, nil
}

// ParseTitle splits an hOCR title attribute into its properties.
// "bbox 100 200 300 400; x_wconf 95" -> {bbox: [100 200 300 400], x_wconf: [95]}
func ParseTitle(title string) map[string][]string {
	result := make(map[string][]string)
	for _, part := range strings.Split(title, ";") {
		items := strings.Fields(part)
		if len(items) > 0 {
			result[items[0]] = items[1:]
		}
	}
	return result
}

// ParseBoundingBoxFromTitle returns the bbox property of title, or nil.
func ParseBoundingBoxFromTitle(title string) *BoundingBox {
	bbox, ok := ParseTitle(title)["bbox"]
	if !ok || len(bbox) < 4 {
		return nil
	}
	var v [4]float64
	for i := range v {
		f, err := strconv.ParseFloat(bbox[i], 64)
		if err != nil {
			return nil
		}
		v[i] = f
	}
	b := NewBoundingBox(v[0], v[1], v[2], v[3])
	return &b
}

func extractDocumentMeta(result *HOCR, root *html.Node) {
	walk(root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		switch n.Data {
		case "html":
			if lang := attr(n, "lang"); lang != "" {
				result.Language = lang
			} else if lang := attr(n, "xml:lang"); lang != "" {
				result.Language = lang
			}
		case "title":
			result.Title = textContent(n)
		case "meta":
			name, content := attr(n, "name"), attr(n, "content")
			if name == "" || content == "" {
				return false
			}
			switch {
			case strings.HasPrefix(name, "ocr-"):
				result.Metadata[name] = content
			case name == "dc.language":
				result.Language = content
			}
		case "body":
			return false
		}
		return true
	})
}

func processPage(n *html.Node) Page {
	page := Page{ID: attr(n, "id")}
	title := attr(n, "title")
	if b := ParseBoundingBoxFromTitle(title); b != nil {
		page.BBox = *b
	}
	props := ParseTitle(title)
	if img := props["image"]; len(img) > 0 {
		page.ImageName = strings.Trim(strings.Join(img, " "), `"`)
	}
	if no := props["ppageno"]; len(no) > 0 {
		page.PageNumber, _ = strconv.Atoi(no[0])
	}

	for _, c := range findClass(n, "ocr_carea", "ocr_par") {
		if hasClass(c, "ocr_carea") {
			page.Areas = append(page.Areas, processArea(c))
		} else {
			page.Paragraphs = append(page.Paragraphs, processParagraph(c))
		}
	}
	return page
}

func processArea(n *html.Node) Area {
	area := Area{ID: attr(n, "id"), Category: attr(n, "data-category")}
	if b := ParseBoundingBoxFromTitle(attr(n, "title")); b != nil {
		area.BBox = *b
	}
	for _, p := range findClass(n, "ocr_par") {
		area.Paragraphs = append(area.Paragraphs, processParagraph(p))
	}
	return area
}

func processParagraph(n *html.Node) Paragraph {
	par := Paragraph{ID: attr(n, "id"), Lang: attr(n, "lang")}
	if b := ParseBoundingBoxFromTitle(attr(n, "title")); b != nil {
		par.BBox = *b
	}
	// Tesseract also emits ocr_caption, ocr_header and ocr_textfloat lines.
	for _, l := range findClass(n, "ocr_line", "ocr_caption", "ocr_header", "ocr_textfloat") {
		par.Lines = append(par.Lines, processLine(l))
	}
	return par
}

func processLine(n *html.Node) Line {
	line := Line{ID: attr(n, "id")}
	title := attr(n, "title")
	if b := ParseBoundingBoxFromTitle(title); b != nil {
		line.BBox = *b
	}
	if bl := ParseTitle(title)["baseline"]; len(bl) > 0 {
		line.Baseline = strings.Join(bl, " ")
	}
	for _, w := range findClass(n, "ocrx_word") {
		line.Words = append(line.Words, processWord(w))
	}
	return line
}

func processWord(n *html.Node) Word {
	word := Word{ID: attr(n, "id"), Text: textContent(n)}
	title := attr(n, "title")
	if b := ParseBoundingBoxFromTitle(title); b != nil {
		word.BBox = *b
	}
	if conf := ParseTitle(title)["x_wconf"]; len(conf) > 0 {
		word.Confidence, _ = strconv.ParseFloat(conf[0], 64)
	}
	return word
}

// findClass returns the outermost descendants of n carrying any of classes.
func findClass(n *html.Node, classes ...string) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, func(m *html.Node) bool {
			for _, class := range classes {
				if hasClass(m, class) {
					out = append(out, m)
					return false
				}
			}
			return true
		})
	}
	return out
}

// walk visits n and its descendants depth first; fn returns false to skip
// a node's children.
func walk(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func hasClass(n *html.Node, class string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(m *html.Node) bool {
		if m.Type == html.TextNode {
			sb.WriteString(m.Data)
		}
		return true
	})
	return strings.TrimSpace(sb.String())
}
