// Package metadata persists per-addon state (staleness markers, content signature, naming maps)
// under the data directory and migrates files left in addon workspaces by older releases.
package metadata

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/conn-castle/yaam/internal/addon"
	"github.com/conn-castle/yaam/internal/console"
	"github.com/conn-castle/yaam/internal/fsutil"
	"github.com/conn-castle/yaam/internal/hashing"
	"github.com/conn-castle/yaam/internal/messages"
)

const legacyPrefix = "metadata_"

var (
	osReadFile = os.ReadFile
	osRemove   = os.Remove
)

// Store reads and writes addon metadata as one JSON document per addon name, with markers and
// signatures kept per variant inside it.
type Store struct {
	dir    string
	hasher hashing.Hasher
	log    *console.Logger
}

// NewStore returns a Store rooted at dir.
func NewStore(dir string, hasher hashing.Hasher, log *console.Logger) *Store {
	if hasher == nil {
		hasher = hashing.SHA256{}
	}
	return &Store{dir: dir, hasher: hasher, log: log}
}

// Dir returns the directory metadata documents live in.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the metadata document path for an addon name.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, addon.Slug(name)+".json")
}

// LegacyPath returns where older releases kept the document: inside the addon workspace.
func LegacyPath(r addon.Resolved) string {
	return filepath.Join(r.Placement.Workspace(), legacyPrefix+r.Base.Slug()+".json")
}

// Load returns the stored metadata for r. A missing document yields an empty Metadata and no error.
// Markers and the signature are tracked per variant, so placements of one addon on different variants
// never vouch for each other's files. A document written before that split carries them at the top
// level; they are adopted by the first variant that loads and moved under it on the next Save.
// When no signature was ever recorded and the placement points to an existing file, the on-disk
// content is hashed so the next comparison has something to work with.
func (s *Store) Load(r addon.Resolved) (addon.Metadata, error) {
	path := s.Path(r.Base.Name)
	doc, err := readDocument(path)
	if err != nil {
		return addon.Metadata{Addon: r.Base.Name}, err
	}
	md := doc.view(r.Placement.Variant)
	md.Addon = r.Base.Name
	if md.HashSignature == "" && !r.Placement.Headless() && fsutil.IsFile(r.Placement.Path) {
		sum, err := s.hasher.File(r.Placement.Path)
		if err != nil {
			return md, fmt.Errorf(messages.MetadataHashFmt, r.Placement.Path, r.Base.Name, err)
		}
		md.HashSignature = sum
	}
	return md, nil
}

// Save writes md for r atomically. The markers and signature land under r's variant; the states of
// other variants are kept as stored. Namings are replaced by md's.
func (s *Store) Save(r addon.Resolved, md addon.Metadata) error {
	path := s.Path(r.Base.Name)
	doc, err := readDocument(path)
	if err != nil {
		s.log.Warnf(messages.MetadataOverwriteFmt, path, err)
		doc = document{}
	}
	doc.Addon = r.Base.Name
	doc.legacyState = state{}
	if doc.States == nil {
		doc.States = make(map[addon.Variant]state)
	}
	doc.States[r.Placement.Variant] = state{ETag: md.ETag, LastModified: md.LastModified, HashSignature: md.HashSignature}
	doc.namings = md.Clone().Namings

	data, err := doc.encode()
	if err != nil {
		return fmt.Errorf(messages.MetadataEncodeFmt, r.Base.Name, err)
	}
	if err := fsutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf(messages.MetadataWriteFmt, path, err)
	}
	return nil
}

// MigrateLegacy moves workspace-resident documents into the store. A document already present in the
// store wins and the legacy copy is only removed. Failures are logged and do not stop the run.
func (s *Store) MigrateLegacy(list []addon.Resolved) int {
	seen := make(map[string]struct{})
	migrated := 0
	for _, r := range list {
		legacy := LegacyPath(r)
		if _, ok := seen[legacy]; ok {
			continue
		}
		seen[legacy] = struct{}{}
		if !fsutil.IsFile(legacy) {
			continue
		}
		target := s.Path(r.Base.Name)
		exists, err := fsutil.Exists(target)
		if err != nil {
			s.log.Warnf(messages.MetadataMigrateFailedFmt, legacy, err)
			continue
		}
		if !exists {
			doc, err := readDocument(legacy)
			if err != nil {
				s.log.Warnf(messages.MetadataMigrateFailedFmt, legacy, err)
				continue
			}
			if err := s.Save(r, doc.view(r.Placement.Variant)); err != nil {
				s.log.Warnf(messages.MetadataMigrateFailedFmt, legacy, err)
				continue
			}
			migrated++
		}
		if err := osRemove(legacy); err != nil {
			s.log.Warnf(messages.MetadataLegacyRemoveFmt, legacy, err)
		}
	}
	if migrated > 0 {
		s.log.Infof(messages.MetadataMigratedFmt, migrated, s.dir)
	}
	return migrated
}

// state is what the store remembers about the last content written for one variant.
type state struct {
	ETag          string `json:"etag,omitempty"`
	LastModified  string `json:"last_modified,omitempty"`
	HashSignature string `json:"hash_signature,omitempty"`
}

// document is the decoded store entry for one addon.
type document struct {
	Addon       string
	States      map[addon.Variant]state
	legacyState state
	namings     map[addon.Variant]map[string]string
}

// view projects the document onto variant v.
func (d document) view(v addon.Variant) addon.Metadata {
	st, ok := d.States[v]
	if !ok {
		st = d.legacyState
	}
	md := addon.Metadata{
		Addon:         d.Addon,
		ETag:          st.ETag,
		LastModified:  st.LastModified,
		HashSignature: st.HashSignature,
	}
	for variant, naming := range d.namings {
		md.SetNaming(variant, naming)
	}
	return md
}

func (d document) encode() ([]byte, error) {
	out := fileDocument{Addon: d.Addon, States: d.States}
	if len(d.namings) > 0 {
		raw, err := json.Marshal(d.namings)
		if err != nil {
			return nil, err
		}
		out.Namings = raw
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// fileDocument is the on-disk form. Namings are either an object keyed by variant, or the legacy
// list of {type, naming} pairs. The top-level markers only appear in documents from older releases.
type fileDocument struct {
	Addon         string                  `json:"addon"`
	ETag          string                  `json:"etag,omitempty"`
	LastModified  string                  `json:"last_modified,omitempty"`
	HashSignature string                  `json:"hash_signature,omitempty"`
	States        map[addon.Variant]state `json:"states,omitempty"`
	Namings       json.RawMessage         `json:"namings,omitempty"`
}

type legacyNaming struct {
	Type   string            `json:"type"`
	Naming map[string]string `json:"naming"`
}

func readDocument(path string) (document, error) {
	data, err := osReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return document{}, nil
		}
		return document{}, fmt.Errorf(messages.MetadataReadFmt, path, err)
	}
	var raw fileDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return document{}, fmt.Errorf(messages.MetadataDecodeFmt, path, err)
	}
	namings, err := decodeNamings(raw.Namings)
	if err != nil {
		return document{}, fmt.Errorf(messages.MetadataDecodeFmt, path, err)
	}
	return document{
		Addon:       raw.Addon,
		States:      raw.States,
		legacyState: state{ETag: raw.ETag, LastModified: raw.LastModified, HashSignature: raw.HashSignature},
		namings:     namings,
	}, nil
}

func decodeNamings(raw json.RawMessage) (map[addon.Variant]map[string]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	if raw[0] == '[' {
		var list []legacyNaming
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, err
		}
		out := make(map[addon.Variant]map[string]string, len(list))
		for _, entry := range list {
			v, ok := addon.ParseVariant(entry.Type)
			if !ok {
				continue
			}
			out[v] = entry.Naming
		}
		return out, nil
	}
	var byKey map[string]map[string]string
	if err := json.Unmarshal(raw, &byKey); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(map[addon.Variant]map[string]string, len(byKey))
	for _, k := range keys {
		v, ok := addon.ParseVariant(k)
		if !ok {
			continue
		}
		out[v] = byKey[k]
	}
	return out, nil
}
