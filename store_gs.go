package qcreport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
	"google.golang.org/api/iterator"
)

// splitGoogleStoragePath detects the bucket and the path to the actual
// object. The object part may be empty when a whole bucket is listed.
func splitGoogleStoragePath(p string) (bucketName, objectName string) {
	pathParts := strings.SplitN(strings.TrimPrefix(p, gsScheme), "/", 2)
	if len(pathParts) == 1 {
		return pathParts[0], ""
	}

	return pathParts[0], pathParts[1]
}

func (s Store) object(p string) (*storage.ObjectHandle, error) {
	if s.Client == nil {
		return nil, fmt.Errorf("%s: no google storage client was configured", p)
	}

	bucketName, objectName := splitGoogleStoragePath(p)
	if bucketName == "" || objectName == "" {
		return nil, fmt.Errorf("Tried to split your google storage path into a bucket and an object, but got %q and %q", bucketName, objectName)
	}

	return s.Client.Bucket(bucketName).Object(objectName), nil
}

func (s Store) listGoogleStorage(dir string) ([]Entry, error) {
	if s.Client == nil {
		return nil, fmt.Errorf("%s: no google storage client was configured", dir)
	}

	bucketName, prefix := splitGoogleStoragePath(dir)
	if prefix = strings.TrimSuffix(prefix, "/"); prefix != "" {
		prefix += "/"
	}

	// With a delimiter, deeper objects are collapsed into synthetic
	// "directory" prefixes, which mirrors a local ReadDir.
	itr := s.Client.Bucket(bucketName).Objects(s.context(), &storage.Query{
		Prefix:    prefix,
		Delimiter: "/",
	})

	out := make([]Entry, 0)
	for {
		attrs, err := itr.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, pfx.Err(fmt.Errorf("%s: %w", dir, err))
		}

		if attrs.Prefix != "" {
			name := strings.TrimSuffix(attrs.Prefix, "/")
			out = append(out, Entry{
				Path: gsScheme + bucketName + "/" + name,
				Name: path.Base(name),
				Dir:  true,
			})
			continue
		}

		// Placeholder objects that stand in for the directory itself
		if attrs.Name == prefix {
			continue
		}

		out = append(out, Entry{
			Path: gsScheme + bucketName + "/" + attrs.Name,
			Name: path.Base(attrs.Name),
			Size: attrs.Size,
		})
	}

	return out, nil
}

func (s Store) statGoogleStorage(p string) (Entry, error) {
	handle, err := s.object(p)
	if err != nil {
		return Entry{}, err
	}

	attrs, err := handle.Attrs(s.context())
	if errors.Is(err, storage.ErrObjectNotExist) {
		return Entry{}, fmt.Errorf("%s: %w", p, os.ErrNotExist)
	} else if err != nil {
		return Entry{}, pfx.Err(fmt.Errorf("%s: %w", p, err))
	}

	return Entry{Path: p, Name: path.Base(attrs.Name), Size: attrs.Size}, nil
}

func (s Store) openGoogleStorage(p string) (io.ReadCloser, error) {
	handle, err := s.object(p)
	if err != nil {
		return nil, err
	}

	rdr, err := handle.NewReader(s.context())
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("%s: %w", p, os.ErrNotExist)
	} else if err != nil {
		return nil, pfx.Err(fmt.Errorf("%s: %w", p, err))
	}

	return rdr, nil
}

func (s Store) writeGoogleStorage(dest string, write func(w io.Writer) error) error {
	handle, err := s.object(dest)
	if err != nil {
		return err
	}

	// Cancelling the context before Close aborts the upload, so a failed
	// write never leaves a partial object behind.
	ctx, cancel := context.WithCancel(s.context())
	defer cancel()

	w := handle.NewWriter(ctx)
	w.ContentType = "text/tab-separated-values"

	if err := write(w); err != nil {
		cancel()
		w.Close()
		return err
	}

	if err := w.Close(); err != nil {
		return pfx.Err(fmt.Errorf("%s: %w", dest, err))
	}

	return nil
}

func (s Store) removeGoogleStorage(p string) error {
	handle, err := s.object(p)
	if err != nil {
		return err
	}

	if err := handle.Delete(s.context()); err != nil {
		return pfx.Err(fmt.Errorf("%s: %w", p, err))
	}

	return nil
}
