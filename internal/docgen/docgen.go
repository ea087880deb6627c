package docgen

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"text/template"
	"time"

	"github.com/barangay-konek/portal-api/internal/models"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// Generator fills certificate templates from submitted form fields. It is
// the document-generation collaborator: callers must only hand it field maps
// from a completed form slot.
type Generator struct {
	templates *template.Template
}

// New parses the embedded certificate templates.
func New() (*Generator, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse certificate templates: %w", err)
	}
	return &Generator{templates: tmpl}, nil
}

// Generate renders the certificate for formType from the stored field map.
func (g *Generator) Generate(formType models.FormType, fields []byte) ([]byte, error) {
	if !formType.Valid() {
		return nil, fmt.Errorf("unknown form type %q", formType)
	}

	var fieldMap map[string]interface{}
	if err := json.Unmarshal(fields, &fieldMap); err != nil {
		return nil, fmt.Errorf("malformed form fields: %w", err)
	}

	data := map[string]interface{}{
		"Fields":   fieldMap,
		"IssuedOn": time.Now().Format("January 2, 2006"),
	}

	var buf bytes.Buffer
	name := string(formType) + ".tmpl"
	if err := g.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("failed to render %s certificate: %w", formType, err)
	}

	return buf.Bytes(), nil
}

// Filename is the suggested download name for a generated certificate.
func Filename(formType models.FormType) string {
	return fmt.Sprintf("certificate-of-%s.txt", formType)
}
