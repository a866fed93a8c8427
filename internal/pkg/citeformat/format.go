package citeformat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vietscribe/vietscribe/app/models"
)

// ErrUnknownStyle is returned for citation styles outside the supported set.
var ErrUnknownStyle = errors.New("unknown citation style")

// Format renders a citation as a bibliography entry in the given style.
// Formatting is deterministic; no model call is involved.
func Format(c *models.Citation, style string) (string, error) {
	switch strings.ToLower(style) {
	case models.CitationStyleAPA:
		return formatAPA(c), nil
	case models.CitationStyleMLA:
		return formatMLA(c), nil
	case models.CitationStyleChicago:
		return formatChicago(c), nil
	case models.CitationStyleIEEE:
		return formatIEEE(c), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownStyle, style)
	}
}

func formatAPA(c *models.Citation) string {
	var b strings.Builder
	if c.Authors != "" {
		b.WriteString(c.Authors)
		b.WriteString(" ")
	}
	if c.Year > 0 {
		fmt.Fprintf(&b, "(%d). ", c.Year)
	}
	b.WriteString(c.Title)
	b.WriteString(".")
	if c.Publisher != "" {
		b.WriteString(" ")
		b.WriteString(c.Publisher)
		b.WriteString(".")
	}
	if c.URL != "" {
		b.WriteString(" ")
		b.WriteString(c.URL)
	}
	return strings.TrimSpace(b.String())
}

func formatMLA(c *models.Citation) string {
	var b strings.Builder
	if c.Authors != "" {
		b.WriteString(c.Authors)
		b.WriteString(". ")
	}
	fmt.Fprintf(&b, "%q", c.Title)
	if c.Publisher != "" {
		b.WriteString(" ")
		b.WriteString(c.Publisher)
		b.WriteString(",")
	}
	if c.Year > 0 {
		fmt.Fprintf(&b, " %d.", c.Year)
	}
	if c.URL != "" {
		b.WriteString(" ")
		b.WriteString(c.URL)
		b.WriteString(".")
	}
	return strings.TrimSpace(b.String())
}

func formatChicago(c *models.Citation) string {
	var b strings.Builder
	if c.Authors != "" {
		b.WriteString(c.Authors)
		b.WriteString(". ")
	}
	b.WriteString(c.Title)
	b.WriteString(".")
	if c.Publisher != "" {
		b.WriteString(" ")
		b.WriteString(c.Publisher)
		if c.Year > 0 {
			fmt.Fprintf(&b, ", %d", c.Year)
		}
		b.WriteString(".")
	} else if c.Year > 0 {
		fmt.Fprintf(&b, " %d.", c.Year)
	}
	if c.URL != "" {
		b.WriteString(" ")
		b.WriteString(c.URL)
		b.WriteString(".")
	}
	return strings.TrimSpace(b.String())
}

func formatIEEE(c *models.Citation) string {
	var b strings.Builder
	if c.Authors != "" {
		b.WriteString(c.Authors)
		b.WriteString(", ")
	}
	fmt.Fprintf(&b, "%q", c.Title)
	if c.Publisher != "" {
		b.WriteString(" ")
		b.WriteString(c.Publisher)
		b.WriteString(",")
	}
	if c.Year > 0 {
		fmt.Fprintf(&b, " %d.", c.Year)
	}
	if c.URL != "" {
		b.WriteString(" [Online]. Available: ")
		b.WriteString(c.URL)
	}
	return strings.TrimSpace(b.String())
}
