// Package attachments implements the write path shared by every resource that
// may carry an image: upload first, then persist inside one transaction, and
// remove the upload again if persisting fails.
package attachments

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/recipeshare/internal/common"
	"github.com/dmitrijs2005/recipeshare/internal/compensate"
	"github.com/dmitrijs2005/recipeshare/internal/dbx"
	"github.com/dmitrijs2005/recipeshare/internal/logging"
	"github.com/dmitrijs2005/recipeshare/internal/server/storage"
)

// Upload is a file received from the client.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// PersistFunc writes the parent record and its dependent sets using tx.
// attachmentURL is the URL to store on the parent, nil for no image.
type PersistFunc func(ctx context.Context, tx dbx.DBTX, attachmentURL *string) error

// Request describes one write. Inputs must be validated before Run is called;
// Run never uploads anything for a request it could reject.
type Request struct {
	// File is uploaded when set. Otherwise ExistingURL is stored as is.
	File        *Upload
	ExistingURL *string
	Persist     PersistFunc
	// AfterCommit runs only after the transaction committed. It cannot fail
	// the request.
	AfterCommit func(ctx context.Context, res Result)
}

// Result reports what was stored.
type Result struct {
	AttachmentURL *string
	// UploadedPath is empty when no file was uploaded.
	UploadedPath string
}

type Protocol struct {
	db       *sql.DB
	store    storage.ObjectStore
	logger   logging.Logger
	observer compensate.Observer
	now      func() time.Time
}

func New(db *sql.DB, store storage.ObjectStore, logger logging.Logger, observer compensate.Observer) *Protocol {
	return &Protocol{
		db:       db,
		store:    store,
		logger:   logger.With("module", "attachments"),
		observer: observer,
		now:      time.Now,
	}
}

// Run uploads req.File (if any) without overwriting, then calls req.Persist
// inside a transaction. When Persist or the commit fails the uploaded object
// is removed before Run returns, and the caller gets the persist error. A
// failed removal is only logged.
//
// Upload failures are returned as *common.Error of kind ErrorUploadFailed.
func (p *Protocol) Run(ctx context.Context, req Request) (Result, error) {
	var res Result

	err := compensate.Run(ctx, p.logger, p.observer, func(ctx context.Context, c *compensate.Compensator) error {
		url := req.ExistingURL

		if req.File != nil {
			path, err := storage.NewObjectPath(p.now(), req.File.Filename)
			if err != nil {
				return common.NewError(common.ErrorUploadFailed, common.MsgUploadFailed, err.Error())
			}
			if err := p.store.Upload(ctx, path, req.File.Data, req.File.ContentType); err != nil {
				p.logger.Warn(ctx, "upload failed", "path", path, "error", err)
				return common.NewError(common.ErrorUploadFailed, common.MsgUploadFailed, storage.ErrorMessage(err))
			}
			c.Add("remove uploaded object", func(ctx context.Context) error {
				return p.store.Remove(ctx, path)
			})

			u := p.store.PublicURL(path)
			url = &u
			res.UploadedPath = path
		}
		res.AttachmentURL = url

		return dbx.WithTx(ctx, p.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			return req.Persist(ctx, tx, url)
		})
	})
	if err != nil {
		return Result{}, err
	}

	if req.AfterCommit != nil {
		req.AfterCommit(ctx, res)
	}
	return res, nil
}

// RemoveBestEffort deletes the object behind url when this store owns it.
// Failures are logged. Used after a successful update replaced an image.
func (p *Protocol) RemoveBestEffort(ctx context.Context, url string) {
	path, ok := p.store.PathFromURL(url)
	if !ok {
		p.logger.Debug(ctx, "previous attachment not owned by store", "url", url)
		return
	}
	if err := p.store.Remove(context.WithoutCancel(ctx), path); err != nil {
		p.logger.Error(ctx, "failed to remove previous attachment", "path", path, "error", err)
	}
}
