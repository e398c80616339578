package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/smartstudy/internal/common"
	sc "github.com/dmitrijs2005/smartstudy/internal/server/config"
	"github.com/dmitrijs2005/smartstudy/internal/server/models"
	"github.com/google/uuid"
)

const exportURLValidity = 15 * time.Minute

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// ExportResult points at an uploaded Markdown export.
type ExportResult struct {
	URL       string
	Key       string
	ExpiresAt time.Time
}

// ExportService renders sessions as Markdown and publishes them to
// S3-compatible storage.
type ExportService struct {
	study  *StudyService
	config *sc.Config
	now    func() time.Time
}

func NewExportService(study *StudyService, config *sc.Config) *ExportService {
	return &ExportService{study: study, config: config, now: time.Now}
}

// ExportKey builds the object key for an export made at t.
func ExportKey(userID int64, t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("exports/%d/%04d/%02d/%02d/%v.md", userID, t.Year(), int(t.Month()), t.Day(), uuid.New())
}

// Download returns the caller's session as a Markdown document.
func (s *ExportService) Download(ctx context.Context, sessionID, userID int64) (string, []byte, error) {
	session, err := s.study.Get(ctx, sessionID, userID)
	if err != nil {
		return "", nil, err
	}
	return MarkdownFilename(session), []byte(RenderMarkdown(session)), nil
}

// Export uploads the rendered session and returns a presigned GET URL.
func (s *ExportService) Export(ctx context.Context, sessionID, userID int64) (*ExportResult, error) {
	if !s.config.ExportEnabled() {
		return nil, common.ErrExportDisabled
	}

	session, err := s.study.Get(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	client, err := s.getClient(ctx)
	if err != nil {
		return nil, err
	}

	bucket := s.config.S3Bucket
	key := ExportKey(userID, s.now())
	body := []byte(RenderMarkdown(session))

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:             &bucket,
		Key:                &key,
		Body:               bytes.NewReader(body),
		ContentType:        aws.String("text/markdown; charset=utf-8"),
		ContentDisposition: aws.String(fmt.Sprintf("attachment; filename=%q", MarkdownFilename(session))),
	})
	if err != nil {
		return nil, fmt.Errorf("error uploading export: %w", err)
	}

	req, err := presignGetObject(newS3PresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(exportURLValidity))
	if err != nil {
		return nil, fmt.Errorf("error presigning export: %w", err)
	}

	return &ExportResult{URL: req.URL, Key: key, ExpiresAt: s.now().Add(exportURLValidity)}, nil
}

func (s *ExportService) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.config.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// MarkdownFilename derives the download name from the uploaded file name.
func MarkdownFilename(session *models.Session) string {
	base := strings.TrimSpace(session.Filename)
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	base = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '"', '\n', '\r':
			return '_'
		}
		return r
	}, base)
	if base == "" {
		base = fmt.Sprintf("session-%d", session.ID)
	}
	return base + "-study.md"
}

// RenderMarkdown lays out every artifact present on the session.
func RenderMarkdown(session *models.Session) string {
	var b strings.Builder

	title := strings.TrimSpace(session.Filename)
	if title == "" {
		title = fmt.Sprintf("Study session %d", session.ID)
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "_Created %s_\n", session.CreatedAt.UTC().Format("2006-01-02 15:04 MST"))

	if session.Summary != nil {
		b.WriteString("\n## Summary\n\n")
		b.WriteString(strings.TrimSpace(*session.Summary))
		b.WriteString("\n")
	}

	if len(session.Flashcards) > 0 {
		b.WriteString("\n## Flashcards\n\n")
		b.WriteString("| Term | Definition |\n|---|---|\n")
		for _, c := range session.Flashcards {
			fmt.Fprintf(&b, "| %s | %s |\n", tableCell(c.Term), tableCell(c.Definition))
		}
	}

	if len(session.Quiz) > 0 {
		b.WriteString("\n## Quiz\n")
		for _, q := range session.Quiz {
			fmt.Fprintf(&b, "\n### %d. %s\n\n", q.ID, q.Question)
			for i, o := range q.Options {
				fmt.Fprintf(&b, "- %c) %s\n", 'A'+rune(i%26), o)
			}
			if len(q.Options) > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "**Answer:** %s\n", q.CorrectAnswer)
			if q.Explanation != "" {
				fmt.Fprintf(&b, "\n%s\n", q.Explanation)
			}
		}
	}

	return b.String()
}

func tableCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
