package citeformat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietscribe/vietscribe/app/models"
)

func TestFormatStyles(t *testing.T) {
	c := &models.Citation{
		SourceType: models.SourceTypeBook,
		Title:      "Phương pháp nghiên cứu khoa học",
		Authors:    "Nguyễn Văn An",
		Year:       2021,
		Publisher:  "NXB Đại học Quốc gia Hà Nội",
	}

	tests := []struct {
		style string
		want  string
	}{
		{models.CitationStyleAPA, "Nguyễn Văn An (2021). Phương pháp nghiên cứu khoa học. NXB Đại học Quốc gia Hà Nội."},
		{models.CitationStyleMLA, "Nguyễn Văn An. \"Phương pháp nghiên cứu khoa học\" NXB Đại học Quốc gia Hà Nội, 2021."},
		{models.CitationStyleChicago, "Nguyễn Văn An. Phương pháp nghiên cứu khoa học. NXB Đại học Quốc gia Hà Nội, 2021."},
		{models.CitationStyleIEEE, "Nguyễn Văn An, \"Phương pháp nghiên cứu khoa học\" NXB Đại học Quốc gia Hà Nội, 2021."},
	}
	for _, tt := range tests {
		got, err := Format(c, tt.style)
		require.NoError(t, err, tt.style)
		assert.Equal(t, tt.want, got, tt.style)
	}
}

func TestFormatWebsiteWithURL(t *testing.T) {
	c := &models.Citation{
		SourceType: models.SourceTypeWebsite,
		Title:      "Hướng dẫn trích dẫn APA",
		Authors:    "Trần Thị Bình",
		Year:       2023,
		URL:        "https://example.vn/apa",
	}
	got, err := Format(c, models.CitationStyleAPA)
	require.NoError(t, err)
	assert.Equal(t, "Trần Thị Bình (2023). Hướng dẫn trích dẫn APA. https://example.vn/apa", got)

	ieee, err := Format(c, models.CitationStyleIEEE)
	require.NoError(t, err)
	assert.Contains(t, ieee, "[Online]. Available: https://example.vn/apa")
}

func TestFormatMissingFields(t *testing.T) {
	c := &models.Citation{Title: "Untitled manuscript"}
	got, err := Format(c, models.CitationStyleAPA)
	require.NoError(t, err)
	assert.Equal(t, "Untitled manuscript.", got)
}

func TestFormatUnknownStyle(t *testing.T) {
	_, err := Format(&models.Citation{Title: "x"}, "harvard")
	assert.ErrorIs(t, err, ErrUnknownStyle)
}
