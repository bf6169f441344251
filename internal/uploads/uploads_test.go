package uploads

import (
	"bytes"
	"encoding/base64"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 1x1 transparent PNG.
var pngPixel, _ = base64.StdEncoding.DecodeString("iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII=")

func multipartRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.WriteField("transaction_id", "TXN1"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(MaxSize))
	return req
}

func TestFromRequestStoresImage(t *testing.T) {
	root := t.TempDir()
	s := New(root)

	rel, err := s.FromRequest(multipartRequest(t, "payment_proof", "proof.png", pngPixel), "payment_proof", KindPaymentProof)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rel, "payment_proofs/"))
	assert.True(t, strings.HasSuffix(rel, ".png"))

	onDisk, err := s.Resolve(rel)
	require.NoError(t, err)
	data, err := os.ReadFile(onDisk)
	require.NoError(t, err)
	assert.Equal(t, pngPixel, data)

	require.NoError(t, s.Remove(rel))
	_, err = os.Stat(onDisk)
	assert.True(t, os.IsNotExist(err))
}

func TestFromRequestMissingFieldIsNotAnError(t *testing.T) {
	s := New(t.TempDir())
	rel, err := s.FromRequest(multipartRequest(t, "", "", nil), "payment_proof", KindPaymentProof)
	require.NoError(t, err)
	assert.Empty(t, rel)
}

func TestFromRequestRejectsNonImages(t *testing.T) {
	root := t.TempDir()
	s := New(root)
	_, err := s.FromRequest(multipartRequest(t, "avatar", "evil.png", []byte("#!/bin/sh\necho hi\n")), "avatar", KindAvatar)
	assert.ErrorIs(t, err, ErrUnsupportedType)

	entries, _ := os.ReadDir(filepath.Join(root, KindAvatar))
	assert.Empty(t, entries)
}

func TestResolveStaysUnderRoot(t *testing.T) {
	s := New("/srv/media")
	p, err := s.Resolve("../../etc/passwd")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/srv/media", "etc", "passwd"), p)

	_, err = s.Resolve("")
	assert.ErrorIs(t, err, ErrInvalidPath)
}
