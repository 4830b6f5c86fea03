package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n%%EOF")

func TestLocalProvider_RoundTrip(t *testing.T) {
	p, err := NewLocalProvider(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	key := ResumeKey("user-1", ".pdf", time.Unix(0, 42))
	require.NoError(t, p.Put(ctx, key, "application/pdf", bytes.NewReader(pdfBytes), int64(len(pdfBytes))))

	rc, contentType, err := p.Open(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, pdfBytes, data)
	assert.Equal(t, "application/pdf", contentType)

	require.NoError(t, p.Delete(ctx, key))
	require.NoError(t, p.Delete(ctx, key), "deleting twice is fine")

	_, _, err = p.Open(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, p.URL(key))
}

func TestLocalProvider_RejectsTraversal(t *testing.T) {
	p, err := NewLocalProvider(t.TempDir())
	require.NoError(t, err)

	err = p.Put(context.Background(), "../escape.pdf", "application/pdf", strings.NewReader("x"), 1)
	assert.Error(t, err)
}

func TestLocalProvider_SizeMismatch(t *testing.T) {
	p, err := NewLocalProvider(t.TempDir())
	require.NoError(t, err)

	err = p.Put(context.Background(), "resumes/u/x.pdf", "application/pdf", strings.NewReader("abc"), 10)
	assert.ErrorContains(t, err, "size mismatch")
}

func TestInspectResume(t *testing.T) {
	const limit = 1024

	t.Run("PDF accepted", func(t *testing.T) {
		res, err := InspectResume("cv.PDF", int64(len(pdfBytes)), limit, bytes.NewReader(pdfBytes))
		require.NoError(t, err)
		assert.Equal(t, ".pdf", res.Ext)
		assert.Equal(t, "application/pdf", res.ContentType)

		replayed, err := io.ReadAll(res.Reader)
		require.NoError(t, err)
		assert.Equal(t, pdfBytes, replayed)
	})

	t.Run("DOCX zip container accepted", func(t *testing.T) {
		docx := append([]byte("PK\x03\x04"), make([]byte, 100)...)
		_, err := InspectResume("cv.docx", int64(len(docx)), limit, bytes.NewReader(docx))
		assert.NoError(t, err)
	})

	t.Run("Legacy DOC accepted", func(t *testing.T) {
		doc := append(append([]byte{}, oleHeader...), make([]byte, 100)...)
		res, err := InspectResume("cv.doc", int64(len(doc)), limit, bytes.NewReader(doc))
		require.NoError(t, err)
		assert.Equal(t, "application/msword", res.ContentType)
	})

	t.Run("Disguised executable rejected", func(t *testing.T) {
		html := []byte("<html><script>alert(1)</script></html>")
		_, err := InspectResume("cv.pdf", int64(len(html)), limit, bytes.NewReader(html))
		assert.ErrorIs(t, err, ErrUnsupportedFileType)
	})

	t.Run("Wrong extension rejected", func(t *testing.T) {
		_, err := InspectResume("cv.exe", int64(len(pdfBytes)), limit, bytes.NewReader(pdfBytes))
		assert.ErrorIs(t, err, ErrUnsupportedFileType)
	})

	t.Run("Too large", func(t *testing.T) {
		_, err := InspectResume("cv.pdf", limit+1, limit, bytes.NewReader(pdfBytes))
		assert.ErrorIs(t, err, ErrFileTooLarge)
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := InspectResume("cv.pdf", 0, limit, bytes.NewReader(nil))
		assert.ErrorIs(t, err, ErrEmptyFile)
	})
}

type mockS3 struct {
	mock.Mock
}

func (m *mockS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, in)
	return &s3.PutObjectOutput{}, args.Error(0)
}

func (m *mockS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, in)
	if out, ok := args.Get(0).(*s3.GetObjectOutput); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, in)
	return &s3.DeleteObjectOutput{}, args.Error(0)
}

var _ S3API = (*mockS3)(nil)

func TestS3Provider(t *testing.T) {
	client := new(mockS3)
	p := NewS3Provider(client, "resumes-bucket", "https://cdn.example.com/")
	ctx := context.Background()

	client.On("PutObject", ctx, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return *in.Bucket == "resumes-bucket" && *in.Key == "resumes/u/1.pdf" && *in.ContentType == "application/pdf"
	})).Return(nil)
	require.NoError(t, p.Put(ctx, "resumes/u/1.pdf", "application/pdf", bytes.NewReader(pdfBytes), int64(len(pdfBytes))))

	client.On("GetObject", ctx, mock.MatchedBy(func(in *s3.GetObjectInput) bool {
		return *in.Key == "missing.pdf"
	})).Return(nil, &s3types.NoSuchKey{})
	_, _, err := p.Open(ctx, "missing.pdf")
	assert.ErrorIs(t, err, ErrNotFound)

	client.On("DeleteObject", ctx, mock.Anything).Return(errors.New("access denied"))
	assert.ErrorContains(t, p.Delete(ctx, "resumes/u/1.pdf"), "access denied")

	assert.Equal(t, "https://cdn.example.com/resumes/u/1.pdf", p.URL("resumes/u/1.pdf"))
	client.AssertExpectations(t)
}
