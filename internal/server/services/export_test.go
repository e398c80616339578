package services

import (
	"context"
	"errors"
	"io"
	"regexp"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/smartstudy/internal/common"
	"github.com/dmitrijs2005/smartstudy/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubS3(t *testing.T, put func(*s3.PutObjectInput) error) {
	t.Helper()
	origLoad, origClient, origPresignClient := loadDefaultAWSConfig, newS3ClientFromConfig, newS3PresignClient
	origPut, origPresign := putObject, presignGetObject
	t.Cleanup(func() {
		loadDefaultAWSConfig, newS3ClientFromConfig, newS3PresignClient = origLoad, origClient, origPresignClient
		putObject, presignGetObject = origPut, origPresign
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return &s3.Client{}
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return &s3.PresignClient{}
	}
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		if err := put(in); err != nil {
			return nil, err
		}
		return &s3.PutObjectOutput{}, nil
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return &v4.PresignedHTTPRequest{URL: "https://s3.test/" + *in.Bucket + "/" + *in.Key + "?sig=1"}, nil
	}
}

func sampleSession() *models.Session {
	summary := "Water moves in a cycle."
	return &models.Session{
		ID:        4,
		Filename:  "notes/water.txt",
		CreatedAt: time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC),
		Summary:   &summary,
		Flashcards: []models.Flashcard{
			{Term: "Runoff", Definition: "Water | flowing\nover land"},
		},
		Quiz: []models.QuizQuestion{
			{ID: 1, Question: "Which step forms clouds?", QuestionType: models.QuestionMultipleChoice,
				Options: []string{"Condensation", "Evaporation"}, CorrectAnswer: models.SingleAnswer("Condensation"),
				Explanation: "Cooling vapor condenses."},
		},
	}
}

func TestRenderMarkdown(t *testing.T) {
	md := RenderMarkdown(sampleSession())

	assert.Contains(t, md, "# notes/water.txt\n")
	assert.Contains(t, md, "_Created 2025-03-01 09:30 UTC_")
	assert.Contains(t, md, "## Summary\n\nWater moves in a cycle.\n")
	assert.Contains(t, md, "| Runoff | Water \\| flowing over land |")
	assert.Contains(t, md, "### 1. Which step forms clouds?")
	assert.Contains(t, md, "- A) Condensation\n- B) Evaporation\n")
	assert.Contains(t, md, "**Answer:** Condensation")
}

func TestRenderMarkdown_SkipsMissingArtifacts(t *testing.T) {
	md := RenderMarkdown(&models.Session{ID: 9})

	assert.Contains(t, md, "# Study session 9")
	assert.NotContains(t, md, "## Summary")
	assert.NotContains(t, md, "## Flashcards")
	assert.NotContains(t, md, "## Quiz")
}

func TestMarkdownFilename(t *testing.T) {
	assert.Equal(t, "notes_water-study.md", MarkdownFilename(sampleSession()))
	assert.Equal(t, "session-9-study.md", MarkdownFilename(&models.Session{ID: 9}))
	assert.Equal(t, ".env-study.md", MarkdownFilename(&models.Session{Filename: ".env"}))
}

func TestExportKey(t *testing.T) {
	key := ExportKey(12, time.Date(2025, 1, 2, 23, 0, 0, 0, time.FixedZone("X", -3*3600)))
	assert.Regexp(t, regexp.MustCompile(`^exports/12/2025/01/03/[0-9a-f-]{36}\.md$`), key)
}

func TestExport_Disabled(t *testing.T) {
	env := newTestEnv(t)
	svc := NewExportService(env.study, env.cfg)

	_, err := svc.Export(context.Background(), 1, 1)
	require.ErrorIs(t, err, common.ErrExportDisabled)
}

func TestExport_UploadsAndPresigns(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.S3Bucket = "study-exports"
	ctx := context.Background()
	uid := env.register(t, "ann@example.com")

	res, err := env.study.Process(ctx, ProcessInput{Text: waterCycle, Filename: "water.txt",
		OutputFormats: []models.OutputFormat{models.FormatSummary}, UserID: &uid})
	require.NoError(t, err)

	var uploaded *s3.PutObjectInput
	var body []byte
	stubS3(t, func(in *s3.PutObjectInput) error {
		uploaded = in
		var err error
		body, err = io.ReadAll(in.Body)
		return err
	})

	svc := NewExportService(env.study, env.cfg)
	fixed := time.Date(2025, 6, 7, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	out, err := svc.Export(ctx, res.SessionID, uid)
	require.NoError(t, err)

	require.NotNil(t, uploaded)
	assert.Equal(t, "study-exports", *uploaded.Bucket)
	assert.Equal(t, out.Key, *uploaded.Key)
	assert.Equal(t, "text/markdown; charset=utf-8", *uploaded.ContentType)
	assert.Contains(t, string(body), env.gen.summary)
	assert.Regexp(t, `^exports/\d+/2025/06/07/`, out.Key)
	assert.Equal(t, "https://s3.test/study-exports/"+out.Key+"?sig=1", out.URL)
	assert.Equal(t, fixed.Add(exportURLValidity), out.ExpiresAt)
}

func TestExport_UploadError(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.S3Bucket = "study-exports"
	ctx := context.Background()
	uid := env.register(t, "ann@example.com")

	res, err := env.study.Process(ctx, ProcessInput{Text: waterCycle,
		OutputFormats: []models.OutputFormat{models.FormatSummary}, UserID: &uid})
	require.NoError(t, err)

	stubS3(t, func(*s3.PutObjectInput) error { return errors.New("access denied") })

	_, err = NewExportService(env.study, env.cfg).Export(ctx, res.SessionID, uid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestDownload_Ownership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ann := env.register(t, "ann@example.com")
	bob := env.register(t, "bob@example.com")

	res, err := env.study.Process(ctx, ProcessInput{Text: waterCycle, Filename: "water.txt",
		OutputFormats: []models.OutputFormat{models.FormatFlashcards}, UserID: &ann})
	require.NoError(t, err)

	svc := NewExportService(env.study, env.cfg)

	name, body, err := svc.Download(ctx, res.SessionID, ann)
	require.NoError(t, err)
	assert.Equal(t, "water-study.md", name)
	assert.Contains(t, string(body), "| Evaporation |")

	_, _, err = svc.Download(ctx, res.SessionID, bob)
	require.ErrorIs(t, err, common.ErrorForbidden)
}
