package gemini

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/realtorist/realtorist-api/internal/domain"
)

const defaultPrompt = `Write a warm, factual real-estate listing description of at most 120 words.
Do not invent features that are not listed below. Do not mention the price.

Address: {{.Street}}, {{.City}}{{if .Province}}, {{.Province}}{{end}}
Bedrooms: {{.Bedrooms}}
Bathrooms: {{.Bathrooms}}
`

type promptData struct {
	Street    string
	City      string
	Province  string
	Bedrooms  int
	Bathrooms int
}

var promptTemplate = template.Must(template.New("listing_description").Parse(defaultPrompt))

func buildPrompt(listing *domain.Listing) (string, error) {
	var buf bytes.Buffer
	err := promptTemplate.Execute(&buf, promptData{
		Street:    listing.Address.Street,
		City:      listing.Address.City,
		Province:  listing.Address.Province,
		Bedrooms:  listing.Bedrooms,
		Bathrooms: listing.Bathrooms,
	})
	if err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}
