package tesseract

const Name = "tesseract"

// Config selects the recognition languages, e.g. ["eng", "vie"].
type Config struct {
	Languages []string `yaml:"languages"`
}
