package repository

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/marmos91/filebridge/pkg/cmis"
)

// bufferSize is the copy buffer used for every content write.
const bufferSize = 64 * 1024

// readBufferSize is the read-ahead buffer of returned content streams.
const readBufferSize = 4 * 1024

func closeContent(cs *cmis.ContentStream) {
	if cs != nil && cs.Stream != nil {
		_ = cs.Stream.Close()
	}
}

// createFile exclusively creates p and fills it from src, if given. A
// partially written file is removed again.
func (r *Repository) createFile(cc *cmis.CallContext, p string, src io.Reader) error {
	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o666)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return cmis.NewError(cmis.ErrNameConstraintViolation, "document already exists")
		}
		return r.storageError(p, err, "could not create file")
	}

	if src == nil {
		if err := f.Close(); err != nil {
			return r.storageError(p, err, "could not create file")
		}
		return nil
	}

	if err := r.copyContent(cc, f, src); err != nil {
		_ = f.Close()
		_ = os.Remove(p)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(p)
		return r.storageError(p, err, "could not write content")
	}
	return nil
}

// copyContent streams src into f through a fixed-size buffer and checks for
// cancellation between chunks.
func (r *Repository) copyContent(cc *cmis.CallContext, f *os.File, src io.Reader) error {
	ctx := cc.Ctx()
	w := bufio.NewWriterSize(f, bufferSize)
	buf := make([]byte, bufferSize)

	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, rerr := src.Read(buf)
		if n > 0 {
			if _, err := w.Write(buf[:n]); err != nil {
				return r.storageError(f.Name(), err, "could not write content")
			}
			written += int64(n)
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return r.storageError(f.Name(), rerr, "could not read content")
		}
	}

	if err := w.Flush(); err != nil {
		return r.storageError(f.Name(), err, "could not write content")
	}

	r.metrics.RecordBytesTransferred(r.id, "write", written)
	return nil
}

// ChangeContentStream replaces, appends to or (with a nil content) truncates
// the content of a document.
//
// overwrite nil means true. With overwrite false a document that already has
// content fails with ErrContentAlreadyExists. The content stream is consumed
// and closed.
func (r *Repository) ChangeContentStream(cc *cmis.CallContext, objectID *string, overwrite *bool, content *cmis.ContentStream, appendMode bool) (err error) {
	defer r.observe(cc, "changeContentStream")(&err)
	defer closeContent(content)

	if _, err := r.checkUser(cc, true); err != nil {
		return err
	}

	if objectID == nil || *objectID == "" {
		return cmis.NewError(cmis.ErrInvalidArgument, "id is not valid")
	}

	e, err := r.lookup(*objectID)
	if err != nil {
		return err
	}
	if !e.isFile() {
		return cmis.NewError(cmis.ErrStreamNotSupported, "not a file")
	}

	if overwrite != nil && !*overwrite && e.info.Size() > 0 {
		return cmis.NewError(cmis.ErrContentAlreadyExists, "content already exists")
	}

	flags := os.O_WRONLY | os.O_TRUNC
	if appendMode {
		flags = os.O_WRONLY | os.O_APPEND
	}

	f, err := os.OpenFile(e.path, flags, 0)
	if err != nil {
		return r.storageError(e.path, err, "could not write content")
	}

	if content != nil && content.Stream != nil {
		if err := r.copyContent(cc, f, content.Stream); err != nil {
			_ = f.Close()
			return err
		}
	}

	if err := f.Close(); err != nil {
		return r.storageError(e.path, err, "could not write content")
	}
	return nil
}

// SetContentStream replaces the content of a document.
func (r *Repository) SetContentStream(cc *cmis.CallContext, objectID *string, overwrite *bool, content *cmis.ContentStream) error {
	return r.ChangeContentStream(cc, objectID, overwrite, content, false)
}

// AppendContentStream appends to the content of a document.
func (r *Repository) AppendContentStream(cc *cmis.CallContext, objectID *string, content *cmis.ContentStream) error {
	return r.ChangeContentStream(cc, objectID, nil, content, true)
}

// DeleteContentStream truncates a document to zero length.
func (r *Repository) DeleteContentStream(cc *cmis.CallContext, objectID *string) error {
	return r.ChangeContentStream(cc, objectID, nil, nil, false)
}

// GetContentStream opens the content of a document.
//
// offset and length, when given, restrict the stream to that byte range and
// mark the result as partial. Folders fail with ErrStreamNotSupported and
// empty documents with ErrConstraint. The caller must close the stream.
func (r *Repository) GetContentStream(cc *cmis.CallContext, objectID string, offset, length *int64) (result *cmis.ContentStream, err error) {
	defer r.observe(cc, "getContentStream")(&err)

	if _, err := r.checkUser(cc, false); err != nil {
		return nil, err
	}

	e, err := r.lookup(objectID)
	if err != nil {
		return nil, err
	}
	if !e.isFile() {
		return nil, cmis.NewError(cmis.ErrStreamNotSupported, "not a file")
	}

	size := e.info.Size()
	if size == 0 {
		return nil, cmis.NewError(cmis.ErrConstraint, "document has no content")
	}

	if (offset != nil && *offset < 0) || (length != nil && *length < 0) {
		return nil, cmis.NewError(cmis.ErrInvalidArgument, "invalid content range")
	}

	f, err := os.Open(e.path)
	if err != nil {
		return nil, r.notFound(e.path, err)
	}

	var stream io.ReadCloser = &bufferedFile{Reader: bufio.NewReaderSize(f, readBufferSize), file: f}
	if offset != nil || length != nil {
		stream, err = newRangeReader(f, offset, length)
		if err != nil {
			_ = f.Close()
			return nil, r.storageError(e.path, err, "could not read content")
		}
	}

	stream = &countingReader{ReadCloser: stream, done: func(n int64) {
		r.metrics.RecordBytesTransferred(r.id, "read", n)
	}}

	return &cmis.ContentStream{
		FileName: e.name(),
		Length:   size,
		MimeType: detectMimeType(e.path),
		Stream:   stream,
		Partial:  (offset != nil && *offset > 0) || length != nil,
	}, nil
}

type bufferedFile struct {
	*bufio.Reader
	file *os.File
}

func (b *bufferedFile) Close() error {
	return b.file.Close()
}

// rangeReader exposes [offset, offset+length) of a file. A nil length reads
// to the end of the file.
type rangeReader struct {
	io.Reader
	file *os.File
}

func newRangeReader(f *os.File, offset, length *int64) (*rangeReader, error) {
	var off int64
	if offset != nil {
		off = *offset
	}
	if _, err := f.Seek(off, io.SeekStart); err != nil {
		return nil, err
	}

	var rd io.Reader = bufio.NewReaderSize(f, readBufferSize)
	if length != nil {
		rd = io.LimitReader(rd, *length)
	}
	return &rangeReader{Reader: rd, file: f}, nil
}

func (r *rangeReader) Close() error {
	return r.file.Close()
}

// countingReader reports the number of bytes read when closed.
type countingReader struct {
	io.ReadCloser
	n    int64
	done func(int64)
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.ReadCloser.Read(p)
	c.n += int64(n)
	return n, err
}

func (c *countingReader) Close() error {
	if c.done != nil {
		c.done(c.n)
		c.done = nil
	}
	return c.ReadCloser.Close()
}
