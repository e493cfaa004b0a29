package types

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Locator vocabulary. A collection locator is PathPets; an item locator
// appends a base-10 id segment.
const (
	Scheme    = "content"
	Authority = "com.example.pets"
	PathPets  = "pets"
)

// Content types returned by ContentType.
const (
	ContentTypeDir  = "application/vnd.pets.dir+json"
	ContentTypeItem = "application/vnd.pets.item+json"
)

// LocatorKind tags the shape of a Locator.
type LocatorKind int

const (
	// KindUnknown is the zero value; every gateway operation rejects it.
	KindUnknown LocatorKind = iota
	KindCollection
	KindItem
)

func (k LocatorKind) String() string {
	switch k {
	case KindCollection:
		return "collection"
	case KindItem:
		return "item"
	default:
		return "unknown"
	}
}

// Locator addresses either the whole pets collection or one pet by id.
// Construct with Collection, Item, or ParseLocator.
type Locator struct {
	kind LocatorKind
	id   int64
}

// Collection returns the locator for every pet.
func Collection() Locator {
	return Locator{kind: KindCollection}
}

// Item returns the locator for the pet with the given id.
func Item(id int64) Locator {
	return Locator{kind: KindItem, id: id}
}

// Kind returns the locator shape.
func (l Locator) Kind() LocatorKind { return l.kind }

// ID returns the item id; it is zero for non-item locators.
func (l Locator) ID() int64 { return l.id }

// IsCollection reports whether l addresses the whole collection.
func (l Locator) IsCollection() bool { return l.kind == KindCollection }

// IsItem reports whether l addresses a single pet.
func (l Locator) IsItem() bool { return l.kind == KindItem }

// WithID appends id to a collection locator, forming the item locator.
// Any other locator is returned unchanged.
func (l Locator) WithID(id int64) Locator {
	if l.kind != KindCollection {
		return l
	}
	return Item(id)
}

// String renders the locator path: /pets or /pets/{id}.
func (l Locator) String() string {
	switch l.kind {
	case KindCollection:
		return "/" + PathPets
	case KindItem:
		return "/" + PathPets + "/" + strconv.FormatInt(l.id, 10)
	default:
		return "<unsupported>"
	}
}

// URI renders the locator with the content scheme and authority.
func (l Locator) URI() string {
	if l.kind == KindUnknown {
		return l.String()
	}
	return Scheme + "://" + Authority + l.String()
}

// Overlaps reports whether a change at l is visible to an observer of other.
// A collection overlaps everything; two items overlap only with equal ids.
func (l Locator) Overlaps(other Locator) bool {
	if l.kind == KindUnknown || other.kind == KindUnknown {
		return false
	}
	if l.kind == KindCollection || other.kind == KindCollection {
		return true
	}
	return l.id == other.id
}

// MarshalText implements encoding.TextMarshaler.
func (l Locator) MarshalText() ([]byte, error) {
	if l.kind == KindUnknown {
		return nil, ErrUnsupportedLocator
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Locator) UnmarshalText(text []byte) error {
	parsed, err := ParseLocator(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ParseLocator parses "/pets", "/pets/{id}", or either form prefixed by
// "content://com.example.pets". The leading slash is optional and one
// trailing slash is tolerated; empty segments are not. Any other input
// returns an error wrapping ErrUnsupportedLocator.
func ParseLocator(s string) (Locator, error) {
	raw := strings.TrimSpace(s)
	path := raw
	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return Locator{}, fmt.Errorf("%w: %q", ErrUnsupportedLocator, s)
		}
		if u.Scheme != Scheme || u.Host != Authority {
			return Locator{}, fmt.Errorf("%w: %q", ErrUnsupportedLocator, s)
		}
		path = u.Path
	}

	path = strings.TrimPrefix(path, "/")
	path = strings.TrimSuffix(path, "/")
	segments := strings.Split(path, "/")
	switch {
	case len(segments) == 1 && segments[0] == PathPets:
		return Collection(), nil
	case len(segments) == 2 && segments[0] == PathPets:
		id, err := parseID(segments[1])
		if err != nil {
			return Locator{}, fmt.Errorf("%w: %q", ErrUnsupportedLocator, s)
		}
		return Item(id), nil
	default:
		return Locator{}, fmt.Errorf("%w: %q", ErrUnsupportedLocator, s)
	}
}

// parseID accepts a positive base-10 id without leading zeros, so every
// item has exactly one spelling.
func parseID(seg string) (int64, error) {
	if seg == "" || seg[0] == '0' {
		return 0, strconv.ErrSyntax
	}
	for _, r := range seg {
		if r < '0' || r > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.ParseInt(seg, 10, 64)
}

// ContentType returns the content type for the locator shape.
func ContentType(l Locator) (string, error) {
	switch l.kind {
	case KindCollection:
		return ContentTypeDir, nil
	case KindItem:
		return ContentTypeItem, nil
	default:
		return "", fmt.Errorf("content type for %s: %w", l, ErrUnsupportedLocator)
	}
}
