package searchable

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// LayerCheckResult describes the optional content groups found in a PDF.
type LayerCheckResult struct {
	Layers       []string
	HasOCRLayer  bool
	OCRLayerName string
	Warnings     []string
}

// Layer names are PDF literal strings, possibly escaped and UTF-16BE encoded.
var ocgPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?s)/Type\s*/OCG\s*/Name\s*\(((?:\\.|[^\\)])*)\)`),
	regexp.MustCompile(`(?s)/Name\s*\(((?:\\.|[^\\)])*)\)\s*/Type\s*/OCG`),
}

// DetectLayers returns the distinct layer names declared in pdf.
func DetectLayers(pdf []byte) ([]string, error) {
	if len(pdf) == 0 {
		return nil, fmt.Errorf("empty PDF data")
	}

	var layers []string
	seen := make(map[string]bool)
	for _, re := range ocgPatterns {
		for _, m := range re.FindAllSubmatch(pdf, -1) {
			name := decodePDFString(unescapePDFString(string(m[1])))
			if !seen[name] {
				seen[name] = true
				layers = append(layers, name)
			}
		}
	}
	return layers, nil
}

// CheckExistingLayers reports whether pdf already has a layer named
// layerName, either bare or with a " (Page N)" suffix. Other layers that look
// like OCR output produce warnings.
func CheckExistingLayers(pdf []byte, layerName string) (LayerCheckResult, error) {
	var result LayerCheckResult
	layers, err := DetectLayers(pdf)
	if err != nil {
		return result, fmt.Errorf("cannot analyze layers: %w", err)
	}
	result.Layers = layers

	pageLayer := regexp.MustCompile(`^` + regexp.QuoteMeta(layerName) + `\s*\(Page\s*\d+`)
	for _, layer := range layers {
		if layer == layerName || pageLayer.MatchString(layer) {
			result.HasOCRLayer = true
			result.OCRLayerName = layer
			break
		}
		if strings.Contains(strings.ToLower(layer), "ocr") {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Existing layer detected that might contain OCR: %s", layer))
		}
	}
	return result, nil
}

func unescapePDFString(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			sb.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		default:
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

// decodePDFString decodes UTF-16BE strings marked with a byte order mark.
func decodePDFString(s string) string {
	if !strings.HasPrefix(s, "\xfe\xff") {
		return s
	}
	dec := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
	out, err := dec.String(s)
	if err != nil {
		return s
	}
	return out
}
