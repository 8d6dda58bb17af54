package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/hrkeeper/internal/netx"
)

// UploadDocument attaches a file to an employee: the server issues a
// presigned URL, the bytes go straight to object storage, then the server
// is told the upload finished.
func (a *App) UploadDocument(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("upload-document", flag.ContinueOnError)
	fs.SetOutput(a.out)
	contentType := fs.String("type", "", "content type (default: from the file extension)")
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}
	if fs.NArg() != 2 {
		fmt.Fprintln(a.out, "usage: hrctl upload-document [-type MIME] EMPLOYEE_ID FILE")
		return ErrUsage
	}
	employeeID, path := fs.Arg(0), fs.Arg(1)

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}

	if err := a.authorize(); err != nil {
		return err
	}

	ticket, err := a.api.RequestUpload(ctx, employeeID, filepath.Base(path), *contentType)
	if err != nil {
		return a.remote(err)
	}

	if ticket.Document == nil || ticket.URL == "" {
		return errors.New("server returned an incomplete upload ticket")
	}

	// the URL is signed for the content type the server settled on
	ct := *contentType
	if ticket.Document.ContentType != "" {
		ct = ticket.Document.ContentType
	}
	if err := netx.UploadToPresignedURL(ctx, a.api.HTTPClient(), ticket.URL, ct, f, info.Size()); err != nil {
		return err
	}

	if err := a.api.ConfirmUpload(ctx, employeeID, ticket.Document.ID, info.Size()); err != nil {
		return a.remote(err)
	}

	fmt.Fprintf(a.out, "Uploaded %s (%d bytes) as document %s\n", filepath.Base(path), info.Size(), ticket.Document.ID)
	return nil
}
