package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"webprint-client/internal/upload"
)

type uploadView struct {
	upload.Snapshot
	Accept string `json:"accept"`
}

func (h *Handler) uploadView() uploadView {
	return uploadView{Snapshot: h.pipeline.Snapshot(), Accept: h.pipeline.AcceptAttribute()}
}

// GetUpload handles GET /local/upload.
func (h *Handler) GetUpload(c *gin.Context) {
	c.JSON(http.StatusOK, h.uploadView())
}

// SelectFile handles POST /local/upload. The document is sent as multipart
// field "file" and uploaded in the background.
func (h *Handler) SelectFile(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		abortBadRequest(c, err)
		return
	}
	if err := h.pipeline.Validate(upload.File{Name: fh.Filename, Size: fh.Size}); err != nil {
		abortWithError(c, err)
		return
	}

	content, err := fh.Open()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody{Error: err.Error(), Kind: "internal"})
		return
	}
	f := upload.File{Name: fh.Filename, Size: fh.Size, Content: content}
	if err := h.pipeline.SelectFile(c.Request.Context(), f); err != nil {
		content.Close()
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, h.uploadView())
}

// SetOptions handles PUT /local/upload/options.
func (h *Handler) SetOptions(c *gin.Context) {
	var opts upload.Options
	if err := c.ShouldBindJSON(&opts); err != nil {
		abortBadRequest(c, err)
		return
	}
	if err := h.pipeline.SetOptions(opts); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.uploadView())
}

// Submit handles POST /local/upload/submit.
func (h *Handler) Submit(c *gin.Context) {
	if err := h.pipeline.Submit(c.Request.Context()); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.uploadView())
}

// Cancel handles POST /local/upload/cancel.
func (h *Handler) Cancel(c *gin.Context) {
	h.pipeline.Cancel()
	c.JSON(http.StatusOK, h.uploadView())
}
