package qcreport

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
)

const gsScheme = "gs://"

// Store resolves artifact paths. Plain paths are read from the local
// filesystem; paths beginning with gs:// are read from Google Storage through
// Client. The zero value handles local paths only.
type Store struct {
	Client  *storage.Client
	Context context.Context
}

// Entry describes one file or directory found by List or Stat.
type Entry struct {
	Path string
	Name string
	Size int64
	Dir  bool
}

// IsGoogleStorage reports whether path names a Google Storage object.
func IsGoogleStorage(path string) bool {
	return strings.HasPrefix(path, gsScheme)
}

// JoinPath joins a directory and a file name using the separator that is
// appropriate for where dir lives.
func JoinPath(dir, name string) string {
	if IsGoogleStorage(dir) {
		return gsScheme + path.Join(strings.TrimPrefix(dir, gsScheme), name)
	}

	return filepath.Join(dir, name)
}

// BaseName returns the last element of a local or Google Storage path.
func BaseName(p string) string {
	if IsGoogleStorage(p) {
		return path.Base(strings.TrimSuffix(p, "/"))
	}

	return filepath.Base(p)
}

func (s Store) context() context.Context {
	if s.Context == nil {
		return context.Background()
	}

	return s.Context
}

// List returns the immediate children of dir, sorted by full path.
func (s Store) List(dir string) ([]Entry, error) {
	var out []Entry
	var err error

	if IsGoogleStorage(dir) {
		out, err = s.listGoogleStorage(dir)
	} else {
		out, err = listLocal(dir)
	}
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Path < out[j].Path
	})

	return out, nil
}

// Stat describes a single artifact. A missing artifact yields an error that
// satisfies errors.Is(err, os.ErrNotExist).
func (s Store) Stat(p string) (Entry, error) {
	if IsGoogleStorage(p) {
		return s.statGoogleStorage(p)
	}

	info, err := os.Stat(p)
	if err != nil {
		return Entry{}, err
	}

	return Entry{Path: p, Name: info.Name(), Size: info.Size(), Dir: info.IsDir()}, nil
}

// Open returns a reader over the decompressed content of the artifact at p.
// The caller must close it.
func (s Store) Open(p string) (io.ReadCloser, error) {
	var rc io.ReadCloser
	var err error

	if IsGoogleStorage(p) {
		rc, err = s.openGoogleStorage(p)
	} else {
		rc, err = os.Open(p)
	}
	if err != nil {
		return nil, err
	}

	dc, err := Decompress(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}

	return dc, nil
}

// ReadAll reads the whole decompressed artifact at p into memory.
func (s Store) ReadAll(p string) ([]byte, error) {
	rc, err := s.Open(p)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}

	return b, nil
}

// WriteAtomic makes the bytes produced by write visible at dest only if write
// and every flush succeed. Local files are staged next to dest and renamed
// into place; Google Storage objects are only committed on a clean close.
func (s Store) WriteAtomic(dest string, write func(w io.Writer) error) error {
	if IsGoogleStorage(dest) {
		return s.writeGoogleStorage(dest, write)
	}

	return writeLocal(dest, write)
}

// Remove deletes the artifact at p.
func (s Store) Remove(p string) error {
	if IsGoogleStorage(p) {
		return s.removeGoogleStorage(p)
	}

	return pfx.Err(os.Remove(p))
}

func listLocal(dir string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	out := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		p := filepath.Join(dir, de.Name())

		// Stat rather than de.Info() so that symlinked artifacts resolve.
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}

		out = append(out, Entry{Path: p, Name: de.Name(), Size: info.Size(), Dir: info.IsDir()})
	}

	return out, nil
}

func writeLocal(dest string, write func(w io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".tmp*")
	if err != nil {
		return pfx.Err(err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err = write(bw); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return pfx.Err(err)
	}
	if err = tmp.Chmod(0644); err != nil {
		return pfx.Err(err)
	}
	if err = tmp.Close(); err != nil {
		return pfx.Err(err)
	}

	if err = os.Rename(tmp.Name(), dest); err != nil {
		return pfx.Err(err)
	}

	return nil
}

// StoreFor returns a Store able to read and write every path given. A Google
// Storage client, using default credentials, is only created when one of the
// paths needs it.
func StoreFor(paths ...string) (Store, error) {
	for _, p := range paths {
		if !IsGoogleStorage(p) {
			continue
		}

		client, err := storage.NewClient(context.Background())
		if err != nil {
			return Store{}, pfx.Err(err)
		}

		return Store{Client: client}, nil
	}

	return Store{}, nil
}
