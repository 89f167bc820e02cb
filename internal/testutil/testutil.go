package testutil

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"unicode/utf16"
)

// WriteStub writes an executable shell stub that exits successfully.
// t is the active test; dir is the output directory; name is the executable file name.
func WriteStub(t *testing.T, dir string, name string) string {
	t.Helper()
	return WriteStubWithExit(t, dir, name, 0)
}

// WriteStubWithExit writes an executable shell stub that exits with the provided code.
// t is the active test; dir is the output directory; name is the executable file name.
func WriteStubWithExit(t *testing.T, dir string, name string, exitCode int) string {
	t.Helper()
	return writeScript(t, dir, name, fmt.Sprintf("#!/bin/sh\nexit %d\n", exitCode))
}

// WriteStubRecordingArgs writes an executable shell stub that appends its name and arguments
// as one line to recordPath, then exits successfully.
func WriteStubRecordingArgs(t *testing.T, dir string, name string, recordPath string) string {
	t.Helper()
	return writeScript(t, dir, name, fmt.Sprintf("#!/bin/sh\necho \"%s $*\" >> \"%s\"\n", name, recordPath))
}

func writeScript(t *testing.T, dir string, name string, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir stub dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// ReadFile returns the content of path or fails the test.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

// Entry is one archive member. Names use forward slashes; a trailing slash or Dir marks a directory.
type Entry struct {
	Name string
	Body string
	Dir  bool
}

// ZipBytes builds an in-memory zip archive.
func ZipBytes(t *testing.T, entries ...Entry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		name := e.Name
		if e.Dir && !strings.HasSuffix(name, "/") {
			name += "/"
		}
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if strings.HasSuffix(name, "/") {
			continue
		}
		if _, err := w.Write([]byte(e.Body)); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

// TarGzBytes builds an in-memory gzip-compressed tar archive.
func TarGzBytes(t *testing.T, entries ...Entry) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for _, e := range entries {
		hdr := &tar.Header{Name: e.Name, Mode: 0o644, Size: int64(len(e.Body)), Typeflag: tar.TypeReg}
		if e.Dir || strings.HasSuffix(e.Name, "/") {
			hdr = &tar.Header{Name: strings.TrimSuffix(e.Name, "/") + "/", Mode: 0o755, Typeflag: tar.TypeDir}
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("tar header %s: %v", e.Name, err)
		}
		if hdr.Typeflag == tar.TypeReg {
			if _, err := tw.Write([]byte(e.Body)); err != nil {
				t.Fatalf("tar write %s: %v", e.Name, err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("tar close: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}

// PEWithVersionInfo returns a PE32 image without sections whose resource directory carries an
// RT_VERSION entry with a StringFileInfo table holding fields.
func PEWithVersionInfo(fields map[string]string) []byte {
	vi := versionInfo(fields)
	const root = 0x140
	data := append(MinimalPE(), make([]byte, root-len(MinimalPE()))...)

	// type 16 -> name 1 -> lang 0x409 -> data entry, offsets relative to root
	res := make([]byte, 88)
	le := binary.LittleEndian
	le.PutUint16(res[14:], 1)
	le.PutUint32(res[16:], 16)
	le.PutUint32(res[20:], 0x80000000|24)
	le.PutUint16(res[38:], 1)
	le.PutUint32(res[40:], 1)
	le.PutUint32(res[44:], 0x80000000|48)
	le.PutUint16(res[62:], 1)
	le.PutUint32(res[64:], 0x409)
	le.PutUint32(res[68:], 72)
	le.PutUint32(res[72:], root+88)
	le.PutUint32(res[76:], uint32(len(vi)))

	le.PutUint32(data[peOptionalHeader+112:], root)
	le.PutUint32(data[peOptionalHeader+116:], uint32(len(res)+len(vi)))
	data = append(data, res...)
	data = append(data, vi...)
	// readers look ahead past the last string
	return append(data, make([]byte, 128)...)
}

const peOptionalHeader = 0x58

// MinimalPE returns the headers of a PE32 DLL with no sections and no data directories.
func MinimalPE() []byte {
	data := make([]byte, peOptionalHeader+224)
	le := binary.LittleEndian
	copy(data, "MZ")
	le.PutUint32(data[0x3c:], 0x40)
	copy(data[0x40:], "PE\x00\x00")
	le.PutUint16(data[0x44:], 0x14c)
	le.PutUint16(data[0x54:], 224)
	le.PutUint16(data[0x56:], 0x2102)

	oh := data[peOptionalHeader:]
	le.PutUint16(oh[0:], 0x10b)
	le.PutUint32(oh[28:], 0x10000000)
	le.PutUint32(oh[32:], 0x1000)
	le.PutUint32(oh[36:], 0x200)
	le.PutUint32(oh[56:], 0x1000)
	le.PutUint32(oh[60:], 0x200)
	le.PutUint32(oh[92:], 16)
	return data
}

func versionInfo(fields map[string]string) []byte {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var strs bytes.Buffer
	for i, k := range keys {
		if i > 0 {
			pad4(&strs)
		}
		strs.Write(VersionString(k, fields[k]))
	}

	table := versionBlock("040904b0", 0, strs.Bytes())
	sfi := versionBlock("StringFileInfo", 0, table)

	fixed := make([]byte, 52)
	binary.LittleEndian.PutUint32(fixed[0:], 0xFEEF04BD)
	binary.LittleEndian.PutUint32(fixed[4:], 0x10000)
	head := versionBlock("VS_VERSION_INFO", 52, fixed)
	out := append(head, sfi...)
	binary.LittleEndian.PutUint16(out[0:], uint16(len(out)))
	return out
}

// versionBlock lays out a version resource node: header, key, padding, then body.
func versionBlock(key string, valueLength uint16, body []byte) []byte {
	var b bytes.Buffer
	b.Write(make([]byte, 6))
	_ = binary.Write(&b, binary.LittleEndian, append(utf16.Encode([]rune(key)), 0))
	pad4(&b)
	b.Write(body)
	out := b.Bytes()
	binary.LittleEndian.PutUint16(out[0:], uint16(len(out)))
	binary.LittleEndian.PutUint16(out[2:], valueLength)
	binary.LittleEndian.PutUint16(out[4:], 1)
	return out
}

func pad4(b *bytes.Buffer) {
	for b.Len()%4 != 0 {
		b.WriteByte(0)
	}
}

// VersionString encodes one String entry of a StringTable: header, key, padding, value. The entry
// is not padded after its value.
func VersionString(key string, value string) []byte {
	var body bytes.Buffer
	body.Write(make([]byte, 6))
	_ = binary.Write(&body, binary.LittleEndian, append(utf16.Encode([]rune(key)), 0))
	pad4(&body)
	valueUnits := append(utf16.Encode([]rune(value)), 0)
	_ = binary.Write(&body, binary.LittleEndian, valueUnits)

	out := body.Bytes()
	binary.LittleEndian.PutUint16(out[0:], uint16(len(out)))
	binary.LittleEndian.PutUint16(out[2:], uint16(len(valueUnits)))
	binary.LittleEndian.PutUint16(out[4:], 1)
	return out
}
