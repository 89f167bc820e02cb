package install

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/conn-castle/yaam/internal/messages"
)

type entry struct {
	name string
	dir  bool
	mode fs.FileMode
	open func() (io.ReadCloser, error)
}

// extractor unpacks archive payloads into a directory, rejecting entries that would escape it.
type extractor struct {
	sys      System
	maxBytes int64
}

// read lists the archive members with normalized slash-separated names.
func (x extractor) read(p Payload) ([]entry, error) {
	var (
		entries []entry
		err     error
	)
	switch p.Format {
	case FormatZip:
		entries, err = readZip(p.Data)
	case FormatTarGz:
		entries, err = readTarGz(p.Data)
	default:
		return nil, &InvalidArchiveError{Reason: messages.InstallArchiveOpen}
	}
	if err != nil {
		return nil, err
	}
	files := 0
	for i := range entries {
		name, err := cleanEntryName(entries[i].name)
		if err != nil {
			return nil, err
		}
		entries[i].name = name
		if !entries[i].dir {
			files++
		}
	}
	if files == 0 {
		return nil, &InvalidArchiveError{Reason: messages.InstallArchiveEmpty}
	}
	return entries, nil
}

// extract writes entries under dest and returns the content root: dest itself, or its only
// top-level directory when the archive wraps everything in a single folder.
func (x extractor) extract(entries []entry, dest string) (string, error) {
	var total int64
	for _, e := range entries {
		if e.name == "" {
			continue
		}
		target := filepath.Join(dest, filepath.FromSlash(e.name))
		if e.dir {
			if err := x.sys.MkdirAll(target, 0o755); err != nil {
				return "", fmt.Errorf(messages.InstallExtractFmt, e.name, err)
			}
			continue
		}
		if err := x.sys.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return "", fmt.Errorf(messages.InstallExtractFmt, e.name, err)
		}
		n, err := x.writeEntry(e, target, x.maxBytes-total)
		if err != nil {
			return "", err
		}
		total += n
	}
	if root, ok := singleRoot(entries); ok {
		return filepath.Join(dest, root), nil
	}
	return dest, nil
}

func (x extractor) writeEntry(e entry, target string, budget int64) (int64, error) {
	rc, err := e.open()
	if err != nil {
		return 0, &InvalidArchiveError{Reason: messages.InstallArchiveRead, Err: err}
	}
	defer func() { _ = rc.Close() }()
	mode := e.mode.Perm()
	if mode == 0 {
		mode = 0o644
	}
	out, err := x.sys.Create(target, mode)
	if err != nil {
		return 0, fmt.Errorf(messages.InstallExtractFmt, e.name, err)
	}
	n, copyErr := io.Copy(out, io.LimitReader(archiveReader{r: rc}, budget+1))
	closeErr := out.Close()
	if copyErr != nil {
		var invalid *InvalidArchiveError
		if errors.As(copyErr, &invalid) {
			return n, copyErr
		}
		return n, fmt.Errorf(messages.InstallExtractFmt, e.name, copyErr)
	}
	if n > budget {
		return n, &InvalidArchiveError{Reason: fmt.Sprintf(messages.InstallArchiveTooLargeFmt, x.maxBytes)}
	}
	if closeErr != nil {
		return n, fmt.Errorf(messages.InstallExtractFmt, e.name, closeErr)
	}
	return n, nil
}

// archiveReader tags decompression failures so they are not mistaken for disk errors.
type archiveReader struct {
	r io.Reader
}

func (a archiveReader) Read(p []byte) (int, error) {
	n, err := a.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		err = &InvalidArchiveError{Reason: messages.InstallArchiveRead, Err: err}
	}
	return n, err
}

func readZip(data []byte) ([]entry, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &InvalidArchiveError{Reason: messages.InstallArchiveOpen, Err: err}
	}
	entries := make([]entry, 0, len(zr.File))
	for _, f := range zr.File {
		entries = append(entries, entry{
			name: f.Name,
			dir:  f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/"),
			mode: f.Mode(),
			open: f.Open,
		})
	}
	return entries, nil
}

func readTarGz(data []byte) ([]entry, error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, &InvalidArchiveError{Reason: messages.InstallArchiveOpen, Err: err}
	}
	defer func() { _ = gz.Close() }()
	tr := tar.NewReader(gz)
	var entries []entry
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &InvalidArchiveError{Reason: messages.InstallArchiveRead, Err: err}
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			entries = append(entries, entry{name: hdr.Name, dir: true, mode: fs.FileMode(hdr.Mode)})
		case tar.TypeReg:
			body, err := io.ReadAll(tr)
			if err != nil {
				return nil, &InvalidArchiveError{Reason: messages.InstallArchiveRead, Err: err}
			}
			entries = append(entries, entry{
				name: hdr.Name,
				mode: fs.FileMode(hdr.Mode),
				open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(body)), nil },
			})
		default:
			// links and devices are not addon content
		}
	}
	return entries, nil
}

// cleanEntryName normalizes separators and rejects absolute or parent-escaping paths.
func cleanEntryName(raw string) (string, error) {
	name := strings.ReplaceAll(raw, "\\", "/")
	if strings.HasPrefix(name, "/") || strings.Contains(name, ":") {
		return "", &InvalidArchiveError{Reason: fmt.Sprintf(messages.InstallArchiveUnsafePathFmt, raw)}
	}
	name = path.Clean(name)
	if name == "." {
		return "", nil
	}
	if name == ".." || strings.HasPrefix(name, "../") {
		return "", &InvalidArchiveError{Reason: fmt.Sprintf(messages.InstallArchiveUnsafePathFmt, raw)}
	}
	return name, nil
}

// singleRoot reports the only top-level directory when every entry lives beneath it.
func singleRoot(entries []entry) (string, bool) {
	root := ""
	for _, e := range entries {
		if e.name == "" {
			continue
		}
		first, _, nested := strings.Cut(e.name, "/")
		if !nested && !e.dir {
			return "", false
		}
		if root == "" {
			root = first
		} else if root != first {
			return "", false
		}
	}
	return root, root != ""
}
