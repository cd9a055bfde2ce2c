package mail

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
)

//go:embed templates/*
var templateFS embed.FS

// Renderer executes the embedded mail templates. A template named "x" consists of
// x_subject.txt, x.html and x.txt.
type Renderer struct{}

// NewRenderer returns a renderer backed by the embedded templates folder.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render returns the subject, HTML body and text body of the named template.
func (r *Renderer) Render(name string, data any) (subject, html, text string, err error) {
	subject, err = r.renderFile(name+"_subject.txt", data, false)
	if err != nil {
		return "", "", "", fmt.Errorf("render subject: %w", err)
	}
	html, err = r.renderFile(name+".html", data, true)
	if err != nil {
		return "", "", "", fmt.Errorf("render html: %w", err)
	}
	text, err = r.renderFile(name+".txt", data, false)
	if err != nil {
		return "", "", "", fmt.Errorf("render text: %w", err)
	}
	return strings.TrimSpace(subject), html, text, nil
}

func (r *Renderer) renderFile(name string, data any, html bool) (string, error) {
	raw, err := templateFS.ReadFile("templates/" + name)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if html {
		t, err := htmltemplate.New(name).Option("missingkey=error").Parse(string(raw))
		if err != nil {
			return "", err
		}
		if err := t.Execute(&buf, data); err != nil {
			return "", err
		}
		return buf.String(), nil
	}
	t, err := texttemplate.New(name).Option("missingkey=error").Parse(string(raw))
	if err != nil {
		return "", err
	}
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
