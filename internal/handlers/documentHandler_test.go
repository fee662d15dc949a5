package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rchavali/ClearanceAPI/internal/config"
	"github.com/rchavali/ClearanceAPI/internal/data/blobStore"
	"github.com/rchavali/ClearanceAPI/internal/data/store"
	"github.com/rchavali/ClearanceAPI/internal/rag/vectorDB/memoryDB"
	"github.com/rchavali/ClearanceAPI/internal/session"
)

func setupTestHandlers(t *testing.T) {
	t.Helper()
	blobs, err := blobStore.NewDiskBlobStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	InitHandlers(HandlerConfig{
		Documents: store.InitInMemoryDocumentStore(),
		Blobs:     blobs,
		Sessions:  session.NewManager(store.InitInMemorySessionStore()),
		Index:     memoryDB.NewMemoryIndex(),
	})
}

func identityContext(userId string, role string) context.Context {
	ctx := context.WithValue(context.Background(), config.USER_ID_KEY, userId)
	ctx = context.WithValue(ctx, config.USER_ROLE_KEY, role)
	return context.WithValue(ctx, config.TRACE_ID_KEY, "test-trace")
}

func multipartUpload(t *testing.T, level string, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("level", level); err != nil {
		t.Fatal(err)
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/documents", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestUpload_OversizedDocumentRejected(t *testing.T) {
	setupTestHandlers(t)

	oversized := bytes.Repeat([]byte("a"), int(config.MaxUploadSizeBytes)+1)
	req := multipartUpload(t, "LOW", "big.txt", oversized)
	req = req.WithContext(identityContext("user-1", "EMPLOYEE"))

	rec := httptest.NewRecorder()
	UploadDocumentHandler(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("want 413 for an oversized document, got %d", rec.Code)
	}
}

func TestUpload_LevelAboveClearanceForbidden(t *testing.T) {
	setupTestHandlers(t)

	req := multipartUpload(t, "HIGH", "doc.txt", []byte("contents"))
	req = req.WithContext(identityContext("user-1", "EMPLOYEE"))

	rec := httptest.NewRecorder()
	UploadDocumentHandler(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("want 403 when classifying above own clearance, got %d", rec.Code)
	}
}
