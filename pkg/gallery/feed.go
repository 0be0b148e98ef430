package gallery

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/masonry/pkg/errors"
)

// Feed is an ordered collection of item descriptors, the wire format a
// collaborator hands to the layout engine whenever gallery content changes.
type Feed struct {
	Items []Item `json:"items" bson:"items"`
}

// Normalize validates the feed and fills in anything a sloppy producer left
// out: missing IDs get fresh opaque ones, missing original indices get the
// feed position. Duplicate IDs are rejected.
func (f *Feed) Normalize() error {
	seen := make(map[string]struct{}, len(f.Items))
	for i := range f.Items {
		it := &f.Items[i]
		if it.ID == "" {
			it.ID = NewID()
		}
		if it.OriginalIndex == 0 && i > 0 {
			it.OriginalIndex = i
		}
		if err := it.Validate(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidFeed, err, "item %d", i)
		}
		if _, dup := seen[it.ID]; dup {
			return errors.New(errors.ErrCodeInvalidFeed, "duplicate item ID %q", it.ID)
		}
		seen[it.ID] = struct{}{}
	}
	return nil
}

// MarshalFeed serializes a Feed to pretty-printed JSON bytes.
func MarshalFeed(f Feed) ([]byte, error) {
	return json.MarshalIndent(f, "", "  ")
}

// ReadFeed deserializes a Feed from r and normalizes it.
func ReadFeed(r io.Reader) (Feed, error) {
	var f Feed
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return Feed{}, fmt.Errorf("unmarshal feed: %w", err)
	}
	if err := f.Normalize(); err != nil {
		return Feed{}, err
	}
	return f, nil
}

// ReadFeedFile reads a Feed from a JSON file.
func ReadFeedFile(path string) (Feed, error) {
	file, err := os.Open(path)
	if err != nil {
		return Feed{}, fmt.Errorf("read %s: %w", path, err)
	}
	defer file.Close()
	return ReadFeed(file)
}

// WriteFeedFile writes a Feed to a JSON file.
func WriteFeedFile(f Feed, path string) error {
	data, err := MarshalFeed(f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
