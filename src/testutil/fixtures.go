package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewSQLiteDB opens a private in-memory SQLite database. A single connection
// keeps every query on the same in-memory database.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// PNGBytes returns a small valid PNG image.
func PNGBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// MultipartFile describes one file part of a multipart body.
type MultipartFile struct {
	Field    string
	Filename string
	Content  []byte
}

// MultipartBody encodes fields and files; it returns the body and its
// Content-Type header value.
func MultipartBody(t *testing.T, fields map[string]string, files ...MultipartFile) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+f.Field+`"; filename="`+f.Filename+`"`)
		h.Set("Content-Type", "application/octet-stream")
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.Content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}

// NewFileHeader builds a *multipart.FileHeader the way an HTTP server would
// hand it to a handler.
func NewFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body, contentType := MultipartBody(t, nil, MultipartFile{Field: "photo", Filename: filename, Content: content})

	_, params, err := mime.ParseMediaType(contentType)
	require.NoError(t, err)
	form, err := multipart.NewReader(body, params["boundary"]).ReadForm(int64(len(content)) + 1024)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	files := form.File["photo"]
	require.Len(t, files, 1)
	return files[0]
}

// ValidSubmissionFields is a complete, valid set of form fields for the
// Asha Rao example employee with one child.
func ValidSubmissionFields() map[string]string {
	return map[string]string{
		"name":                  "Asha Rao",
		"designation":           "Clerk",
		"gender":                "Female",
		"employeeCode":          "E100",
		"mobile":                "9999999999",
		"officialEmail":         "a@x.com",
		"retirementDate":        "2040-01-01",
		"bloodGroup":            "O+",
		"presentAddress":        "Addr1",
		"permanentAddress":      "Addr1",
		"spouseName":            "Ravi",
		"spouseWorking":         "No",
		"spouseMedicalFacility": "No",
		"numberOfChildren":      "1",
		"childrenDetails":       `[{"name":"Kid1","dob":"2015-01-01","gender":"Male"}]`,
	}
}
