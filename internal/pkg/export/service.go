package export

import (
	"context"
	"fmt"
	"time"

	"github.com/vietscribe/vietscribe/app/models"
	"github.com/vietscribe/vietscribe/internal/pkg/metering"
	"github.com/vietscribe/vietscribe/internal/pkg/plans"
)

// Uploader is the object storage surface the exporter needs. s3store.Client
// satisfies it.
type Uploader interface {
	PutObject(ctx context.Context, objectKey, contentType string, body []byte) error
	PresignGet(ctx context.Context, objectKey string, expires time.Duration) (string, error)
}

// Result describes a finished export.
type Result struct {
	ObjectKey   string `json:"object_key"`
	DownloadURL string `json:"download_url"`
	Format      string `json:"format"`
	SizeBytes   int    `json:"size_bytes"`
}

// Service renders projects into downloadable documents. Every export is
// charged against the export quota; a failed render or upload is free.
type Service struct {
	store   Uploader
	invoke  *metering.Invoker
	now     func() time.Time
	linkTTL time.Duration
}

// NewService creates the export service.
func NewService(store Uploader, invoker *metering.Invoker) *Service {
	return &Service{
		store:   store,
		invoke:  invoker,
		now:     time.Now,
		linkTTL: 24 * time.Hour,
	}
}

// Export renders the project in the requested format, uploads the document
// and returns a presigned download link.
func (s *Service) Export(ctx context.Context, userID uint, project *models.Project, sections []models.ProjectSection, citations []models.Citation, format string) (*Result, error) {
	var body string
	switch format {
	case FormatMarkdown, "":
		format = FormatMarkdown
		body = RenderMarkdown(project, sections, citations)
	case FormatHTML:
		body = RenderHTML(project, sections, citations)
	case FormatText:
		body = RenderText(project, sections, citations)
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}

	var result Result
	err := s.invoke.Invoke(ctx, userID, plans.FeatureExport, func(ctx context.Context) error {
		now := s.now()
		filename := fmt.Sprintf("%s%s", project.UUID, fileExtension(format))
		key := fmt.Sprintf("exports/%04d/%02d/%s/%s", now.Year(), int(now.Month()), project.UUID, filename)

		if err := s.store.PutObject(ctx, key, contentType(format), []byte(body)); err != nil {
			return err
		}
		url, err := s.store.PresignGet(ctx, key, s.linkTTL)
		if err != nil {
			return err
		}
		result = Result{
			ObjectKey:   key,
			DownloadURL: url,
			Format:      format,
			SizeBytes:   len(body),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
