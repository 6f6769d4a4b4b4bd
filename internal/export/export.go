package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"MAILMUSE_BACK-END/internal/models"
)

// Formats accepted by the export endpoint
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// Document is the JSON export shape. It carries exactly the email list the
// text export renders, so the two formats round-trip the same sequence.
type Document struct {
	Name   string         `json:"name"`
	Emails []models.Email `json:"emails"`
}

// ContentType returns the response content type for a format
func ContentType(format string) string {
	switch format {
	case FormatJSON:
		return "application/json"
	case FormatCSV:
		return "text/csv"
	default:
		return "text/plain; charset=utf-8"
	}
}

// ToJSON renders the campaign as a JSON document
func ToJSON(c models.Campaign) ([]byte, error) {
	doc := Document{Name: c.Name, Emails: c.Emails}
	if doc.Emails == nil {
		doc.Emails = []models.Email{}
	}
	return json.MarshalIndent(doc, "", "  ")
}

// FromJSON parses a JSON export back into its email list
func FromJSON(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, err
	}
	if doc.Emails == nil {
		doc.Emails = []models.Email{}
	}
	return doc, nil
}

// ToText renders the campaign as copy-paste-ready plain text, one block per
// email in list order.
func ToText(c models.Campaign) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Campaign: %s\n", c.Name)
	fmt.Fprintf(&b, "Emails: %d\n", len(c.Emails))

	for i, e := range c.Emails {
		b.WriteString("\n---\n")
		fmt.Fprintf(&b, "Email %d (Day %d) [%s]\n", i+1, e.Day, e.Status)
		fmt.Fprintf(&b, "Subject: %s\n", e.Subject)
		fmt.Fprintf(&b, "Preview: %s\n", e.Preview)
		b.WriteString("\n")
		b.WriteString(e.Body)
		b.WriteString("\n")
	}
	return b.String()
}

// ToCSV renders the campaign as CSV with a fixed header row
func ToCSV(c models.Campaign) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"position", "day", "subject", "preview", "body", "status"}); err != nil {
		return nil, err
	}
	for i, e := range c.Emails {
		record := []string{
			strconv.Itoa(i + 1),
			strconv.Itoa(e.Day),
			e.Subject,
			e.Preview,
			e.Body,
			e.Status,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// Render dispatches on format
func Render(c models.Campaign, format string) ([]byte, string, error) {
	switch format {
	case FormatJSON:
		data, err := ToJSON(c)
		return data, ContentType(format), err
	case FormatCSV:
		data, err := ToCSV(c)
		return data, ContentType(format), err
	case FormatText, "":
		return []byte(ToText(c)), ContentType(FormatText), nil
	default:
		return nil, "", fmt.Errorf("unsupported export format: %s", format)
	}
}
