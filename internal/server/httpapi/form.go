package httpapi

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/recipeshare/internal/common"
	"github.com/dmitrijs2005/recipeshare/internal/server/attachments"
	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

// multipartOverhead is added to the upload limit when bounding the whole
// request body, so form fields next to a maximum-size image still fit.
const multipartOverhead = 1 << 20

// readUpload returns the image sent in field, or nil when the field is absent
// or empty. The content type is taken from the part header and sniffed when
// the header is missing or generic; only images are accepted.
func readUpload(c *gin.Context, field string, maxBytes int64) (*attachments.Upload, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, formError(err, maxBytes)
	}
	if fh.Size == 0 {
		return nil, nil
	}
	if fh.Size > maxBytes {
		return nil, tooLarge(maxBytes)
	}

	data, err := readPart(fh, maxBytes)
	if err != nil {
		return nil, err
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = mimetype.Detect(data).String()
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, common.NewError(common.ErrorValidation, common.MsgNotAnImage)
	}

	return &attachments.Upload{Filename: fh.Filename, ContentType: contentType, Data: data}, nil
}

func readPart(fh *multipart.FileHeader, maxBytes int64) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, common.NewError(common.ErrorValidation, common.MsgMissingFields)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, common.NewError(common.ErrorValidation, common.MsgMissingFields)
	}
	if int64(len(data)) > maxBytes {
		return nil, tooLarge(maxBytes)
	}
	return data, nil
}

// parseForm parses a multipart (or urlencoded) body with the body size bound.
func parseForm(c *gin.Context, maxBytes int64) error {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+multipartOverhead)
	if err := c.Request.ParseMultipartForm(maxBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return formError(err, maxBytes)
	}
	return nil
}

func formError(err error, maxBytes int64) error {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		return tooLarge(maxBytes)
	}
	return common.NewError(common.ErrorValidation, common.MsgMissingFields)
}

func tooLarge(maxBytes int64) error {
	return common.NewError(common.ErrorValidation, common.MsgImageTooLarge, humanize.IBytes(uint64(maxBytes)))
}
