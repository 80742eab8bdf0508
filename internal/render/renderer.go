package render

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"

	wkhtmltopdf "github.com/SebastiaanKlippert/go-wkhtmltopdf"
)

// Renderer merges a letter's form payload into the institutional letter
// layout. Rendering is deterministic for the same inputs: the payload map is
// flattened into key-sorted rows before template execution.
type Renderer interface {
	// Render produces the HTML artifact. numberOverride merges the assigned
	// institutional number into the letterhead; signatureURL, when set,
	// embeds the stored signature image.
	Render(values map[string]interface{}, numberOverride *string, signatureURL string) ([]byte, error)
	// ToPDF converts a rendered HTML artifact to PDF.
	ToPDF(html []byte) ([]byte, error)
}

const letterTemplate = `<!DOCTYPE html>
<html lang="id">
<head>
<meta charset="utf-8">
<title>Surat Pengantar PKL</title>
<style>
body { font-family: "Times New Roman", serif; margin: 2.5cm; }
h1 { font-size: 14pt; text-align: center; text-transform: uppercase; }
.number { text-align: center; margin-bottom: 2em; }
table.values { width: 100%; border-collapse: collapse; }
table.values td { padding: 4px 8px; vertical-align: top; }
.signature { margin-top: 4em; text-align: right; }
.signature img { height: 80px; }
</style>
</head>
<body>
<h1>Surat Pengantar Praktik Kerja Lapangan</h1>
<div class="number">{{if .Number}}Nomor: {{.Number}}{{else}}Nomor: ________{{end}}</div>
<table class="values">
{{range .Fields}}<tr><td>{{.Key}}</td><td>: {{.Value}}</td></tr>
{{end}}</table>
<div class="signature">
{{if .SignatureURL}}<img src="{{.SignatureURL}}" alt="tanda tangan">{{end}}
<p>Wakil Dekan</p>
</div>
</body>
</html>
`

type fieldRow struct {
	Key   string
	Value string
}

type templateData struct {
	Number       string
	SignatureURL string
	Fields       []fieldRow
}

type letterRenderer struct {
	tmpl *template.Template
}

// NewLetterRenderer builds the default HTML renderer.
func NewLetterRenderer() (Renderer, error) {
	tmpl, err := template.New("letter").Parse(letterTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse letter template: %w", err)
	}
	return &letterRenderer{tmpl: tmpl}, nil
}

func (r *letterRenderer) Render(values map[string]interface{}, numberOverride *string, signatureURL string) ([]byte, error) {
	data := templateData{SignatureURL: signatureURL}
	if numberOverride != nil {
		data.Number = *numberOverride
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		data.Fields = append(data.Fields, fieldRow{Key: k, Value: fmt.Sprintf("%v", values[k])})
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render letter: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *letterRenderer) ToPDF(html []byte) ([]byte, error) {
	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to init pdf generator: %w", err)
	}

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(html))
	page.EnableLocalFileAccess.Set(true)
	pdfg.AddPage(page)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to convert letter to pdf: %w", err)
	}
	return pdfg.Bytes(), nil
}
