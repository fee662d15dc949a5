package handlers

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/rchavali/ClearanceAPI/internal/access"
	"github.com/rchavali/ClearanceAPI/internal/adapter"
	"github.com/rchavali/ClearanceAPI/internal/adapter/utils"
	"github.com/rchavali/ClearanceAPI/internal/config"
	"github.com/rchavali/ClearanceAPI/internal/data/blobStore"
	"github.com/rchavali/ClearanceAPI/internal/domain/docModel"
)

// UploadDocumentHandler accepts a multipart upload: the file plus title and
// level form fields. The caller must hold clearance for the level they are
// classifying the document at.
func UploadDocumentHandler(w http.ResponseWriter, request *http.Request) {
	if !validateContext(request.Context()) {
		WriteErrorResponse(w, http.StatusRequestTimeout, "request cancelled")
		return
	}
	userId, role := identity(request.Context())

	// form field overhead gets a little slack on top of the document cap
	request.Body = http.MaxBytesReader(w, request.Body, config.MaxUploadSizeBytes+1<<20)
	if err := request.ParseMultipartForm(config.MaxUploadSizeBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteErrorResponse(w, http.StatusRequestEntityTooLarge, "document exceeds the upload size limit")
			return
		}
		logRH.Warn("Bad upload request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	level := docModel.Level(request.FormValue("level"))
	if !level.Valid() {
		WriteErrorResponse(w, http.StatusBadRequest, "invalid classification level")
		return
	}
	if !access.Allowed(role, level) {
		// cannot classify above your own clearance
		WriteErrorResponse(w, http.StatusForbidden, "level exceeds caller clearance")
		return
	}

	file, header, err := request.FormFile("file")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer func() {
		if err := file.Close(); err != nil {
			logRH.Error("Couldn't close the upload reader :", err)
		}
	}()

	title := request.FormValue("title")
	if title == "" {
		title = header.Filename
	}

	// an oversized document is a rejected upload, never a silently truncated one
	if header.Size > config.MaxUploadSizeBytes {
		WriteErrorResponse(w, http.StatusRequestEntityTooLarge, "document exceeds the upload size limit")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		logRH.Error("Error reading upload", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "could not read upload")
		return
	}

	blobKey := blobStore.GenerateKey(level, title, filepath.Ext(header.Filename))
	if err := handlerInstance.blobs.Put(request.Context(), blobKey, data); err != nil {
		logRH.Error("Error storing blob", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "could not store document")
		return
	}

	now := time.Now()
	doc := docModel.Document{
		Id:          utils.GetNewUUID(),
		Title:       title,
		Level:       level,
		Active:      true,
		Status:      docModel.DocStatusPending,
		OwnerId:     userId,
		BlobKey:     blobKey,
		CreatedTime: now,
		UpdatedTime: now,
	}
	if err := handlerInstance.documents.SaveDocument(request.Context(), doc); err != nil {
		logRH.Error("Error saving document", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "could not save document")
		return
	}

	jobId := enqueueIngestJob(doc.Id, traceId(request.Context()))
	writeJsonResponse(w, http.StatusAccepted, adapter.ToUploadResponse(doc.Id, jobId))
}

func getOwnedDocument(w http.ResponseWriter, request *http.Request) (docModel.Document, bool) {
	id := utils.GetChiURLParam(request, "id")
	if id == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "missing document id")
		return docModel.Document{}, false
	}

	userId, _ := identity(request.Context())
	doc, found := handlerInstance.documents.GetDocument(request.Context(), id)
	if !found || doc.OwnerId != userId {
		// foreign documents answer as not-found
		WriteErrorResponse(w, http.StatusNotFound, "document not found")
		return docModel.Document{}, false
	}
	return doc, true
}

func GetDocumentHandler(w http.ResponseWriter, request *http.Request) {
	doc, ok := getOwnedDocument(w, request)
	if !ok {
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToDocumentResponse(doc))
}

func ListDocumentsHandler(w http.ResponseWriter, request *http.Request) {
	userId, _ := identity(request.Context())
	docs, err := handlerInstance.documents.ListDocuments(request.Context(), userId)
	if err != nil {
		logRH.Error("Error listing documents", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "could not list documents")
		return
	}

	out := make([]interface{}, 0, len(docs))
	for _, d := range docs {
		out = append(out, adapter.ToDocumentResponse(d))
	}
	writeJsonResponse(w, http.StatusOK, out)
}

// RetryDocumentHandler re-queues a failed document. The whole document runs
// again from its blob, there is no partial retry.
func RetryDocumentHandler(w http.ResponseWriter, request *http.Request) {
	doc, ok := getOwnedDocument(w, request)
	if !ok {
		return
	}

	if doc.Status != docModel.DocStatusFailed {
		WriteErrorResponse(w, http.StatusConflict, "only failed documents can be retried")
		return
	}
	if doc.Attempts >= config.MaxIngestAttempts {
		WriteErrorResponse(w, http.StatusGone, "attempt cap reached")
		return
	}

	doc.Status = docModel.DocStatusPending
	doc.ErrorDetail = ""
	doc.UpdatedTime = time.Now()
	if err := handlerInstance.documents.SaveDocument(request.Context(), doc); err != nil {
		logRH.Error("Error saving document", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "could not save document")
		return
	}

	jobId := enqueueIngestJob(doc.Id, traceId(request.Context()))
	writeJsonResponse(w, http.StatusAccepted, adapter.ToUploadResponse(doc.Id, jobId))
}

// DeleteDocumentHandler deactivates a document: its chunks leave the index
// immediately and it stops matching queries. Metadata and blob stay for the
// record.
func DeleteDocumentHandler(w http.ResponseWriter, request *http.Request) {
	doc, ok := getOwnedDocument(w, request)
	if !ok {
		return
	}

	if err := handlerInstance.index.PurgeDocument(request.Context(), doc.Id); err != nil {
		logRH.Error("Error purging document from index", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "could not remove document from index")
		return
	}

	doc.Active = false
	doc.ChunkCount = 0
	doc.UpdatedTime = time.Now()
	if err := handlerInstance.documents.SaveDocument(request.Context(), doc); err != nil {
		logRH.Error("Error saving document", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "could not save document")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
