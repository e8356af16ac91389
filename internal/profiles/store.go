package profiles

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	ioutils "github.com/handiism/quilt-installer/internal/io"
	"github.com/handiism/quilt-installer/internal/model"
)

// FileName is the launcher's profile store inside its game directory.
const FileName = "launcher_profiles.json"

// DefaultIcon is a launcher built-in icon name.
const DefaultIcon = "Furnace"

// ErrMalformedStore is returned when the store exists but is not a JSON
// object, or its "profiles" member is not an object.
var ErrMalformedStore = errors.New("malformed launcher profile store")

const timeLayout = "2006-01-02T15:04:05.000Z"

// Entry is the profile this installer writes.
type Entry struct {
	Name          string `json:"name"`
	Type          string `json:"type"`
	Created       string `json:"created,omitempty"`
	LastUsed      string `json:"lastUsed,omitempty"`
	Icon          string `json:"icon,omitempty"`
	LastVersionID string `json:"lastVersionId"`
	GameDir       string `json:"gameDir,omitempty"`
	JavaArgs      string `json:"javaArgs,omitempty"`
}

// NewEntry returns a custom profile launching versionID for the given
// game version, with the default icon.
func NewEntry(gameVersion, versionID string) Entry {
	return Entry{
		Name:          "quilt-loader-" + gameVersion,
		Type:          "custom",
		Icon:          DefaultIcon,
		LastVersionID: versionID,
	}
}

type member struct {
	key   string
	value json.RawMessage
}

// Store is a launcher profile store held as raw JSON members.
//
// Members are kept in file order and their values are never re-encoded,
// so entries this package does not touch are written back byte for byte.
type Store struct {
	top      []member
	profiles []member
}

// Load reads the store at path. A missing or empty file yields an empty
// store.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Store{}, nil
	}
	if err != nil {
		return nil, &model.FilesystemError{Op: "read", Path: path, Err: err}
	}
	return Parse(data)
}

// Parse decodes a store document.
func Parse(data []byte) (*Store, error) {
	s := &Store{}
	if len(bytes.TrimSpace(data)) == 0 {
		return s, nil
	}

	top, err := decodeObject(data)
	if err != nil {
		return nil, err
	}
	s.top = top

	for _, m := range top {
		if m.key != "profiles" {
			continue
		}
		if s.profiles, err = decodeObject(m.value); err != nil {
			return nil, fmt.Errorf("profiles: %w", err)
		}
	}
	return s, nil
}

// keys returns the profile keys in file order.
func (s *Store) keys() []string {
	keys := make([]string, 0, len(s.profiles))
	for _, m := range s.profiles {
		keys = append(keys, m.key)
	}
	return keys
}

// Raw returns the undecoded value of a profile.
func (s *Store) Raw(key string) (json.RawMessage, bool) {
	for _, m := range s.profiles {
		if m.key == key {
			return m.value, true
		}
	}
	return nil, false
}

// Entry decodes a profile.
func (s *Store) Entry(key string) (Entry, bool, error) {
	raw, ok := s.Raw(key)
	if !ok {
		return Entry{}, false, nil
	}
	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return Entry{}, true, fmt.Errorf("%w: profile %q: %v", ErrMalformedStore, key, err)
	}
	return e, true, nil
}

// Put inserts or replaces a profile, keeping its position when it exists.
func (s *Store) Put(key string, e Entry) error {
	value, err := json.MarshalIndent(e, "    ", "  ")
	if err != nil {
		return err
	}
	for i := range s.profiles {
		if s.profiles[i].key == key {
			s.profiles[i].value = value
			return nil
		}
	}
	s.profiles = append(s.profiles, member{key: key, value: value})
	return nil
}

// Bytes encodes the store.
func (s *Store) Bytes() []byte {
	var buf bytes.Buffer
	buf.WriteString("{\n")

	hasProfiles := false
	members := make([]member, 0, len(s.top)+1)
	for _, m := range s.top {
		if m.key == "profiles" {
			hasProfiles = true
		}
		members = append(members, m)
	}
	if !hasProfiles {
		members = append([]member{{key: "profiles"}}, members...)
	}

	for i, m := range members {
		writeKey(&buf, "  ", m.key)
		if m.key == "profiles" {
			s.writeProfiles(&buf)
		} else {
			buf.Write(m.value)
		}
		if i < len(members)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}

	buf.WriteString("}\n")
	return buf.Bytes()
}

func (s *Store) writeProfiles(buf *bytes.Buffer) {
	if len(s.profiles) == 0 {
		buf.WriteString("{}")
		return
	}
	buf.WriteString("{\n")
	for i, m := range s.profiles {
		writeKey(buf, "    ", m.key)
		buf.Write(m.value)
		if i < len(s.profiles)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("  }")
}

// Upsert writes e under key in the store at path, creating the store if
// needed. Every other member of the file keeps its bytes.
//
// The created timestamp of an existing entry is kept; lastUsed is set to now.
// Concurrent Upserts on the same path are not safe.
func Upsert(path, key string, e Entry, now time.Time) error {
	s, err := Load(path)
	if err != nil {
		return err
	}

	stamp := now.UTC().Format(timeLayout)
	if old, ok, err := s.Entry(key); err != nil {
		log.Warnf("replacing unreadable profile %q: %v", key, err)
	} else if ok && old.Created != "" && e.Created == "" {
		e.Created = old.Created
	}
	if e.Created == "" {
		e.Created = stamp
	}
	e.LastUsed = stamp

	if err := s.Put(key, e); err != nil {
		return err
	}

	if err := ioutils.WriteFileAtomic(path, s.Bytes(), 0o644); err != nil {
		return &model.FilesystemError{Op: "write", Path: path, Err: err}
	}
	log.WithFields(log.Fields{"path": path, "profile": key}).Debug("launcher profile written")
	return nil
}

func writeKey(buf *bytes.Buffer, indent, key string) {
	k, _ := json.Marshal(key)
	buf.WriteString(indent)
	buf.Write(k)
	buf.WriteString(" : ")
}

// decodeObject splits a JSON object into its members without decoding
// their values.
func decodeObject(data []byte) ([]member, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedStore, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("%w: expected an object", ErrMalformedStore)
	}

	var members []member
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedStore, err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: expected a member name", ErrMalformedStore)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("%w: member %q: %v", ErrMalformedStore, key, err)
		}
		members = append(members, member{key: key, value: value})
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedStore, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data", ErrMalformedStore)
	}
	return members, nil
}
