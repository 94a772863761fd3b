package directory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

// Errors returned by the directory.
var (
	ErrInvalidJSON  = errors.New("invalid directory json")
	ErrUnknownKind  = errors.New("no entity kind for prefix")
	ErrMissingName  = errors.New("entity has no name")
	ErrDuplicateKey = errors.New("duplicate entity id")
)

// Entity is a taggable record: a person, a topic, or any other kind the
// host maps to a prefix.
type Entity struct {
	ID   string
	Name string
	Kind string
}

// String returns the entity as kind/id.
func (e Entity) String() string {
	return e.Kind + "/" + e.ID
}

// idSpace namespaces generated ids, so the same kind and name always
// receive the same id across reloads.
var idSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("taggable:directory"))

// GenerateID returns the id assigned to an entity whose source omits one.
func GenerateID(kind, name string) string {
	return uuid.NewSHA1(idSpace, []byte(kind+"/"+name)).String()
}

// Parse reads entities from JSON. Two layouts are accepted:
//
//	{"person": [{"id": "ada", "name": "Ada Lovelace"}], "topic": ["golang"]}
//	[{"id": "ada", "name": "Ada Lovelace", "kind": "person"}]
//
// In the object form each key is a kind. A bare string entry is used as
// both id and name. Objects without an id get one from GenerateID.
func Parse(data []byte) ([]Entity, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}

	root := gjson.ParseBytes(data)
	var (
		out  []Entity
		errs []error
	)

	add := func(kind string, v gjson.Result) {
		e, err := parseEntity(kind, v)
		if err != nil {
			errs = append(errs, err)
			return
		}
		out = append(out, e)
	}

	switch {
	case root.IsArray():
		root.ForEach(func(_, v gjson.Result) bool {
			add(v.Get("kind").String(), v)
			return true
		})
	case root.IsObject():
		root.ForEach(func(k, v gjson.Result) bool {
			if !v.IsArray() {
				errs = append(errs, fmt.Errorf("%w: kind %q is not a list", ErrInvalidJSON, k.String()))
				return true
			}
			v.ForEach(func(_, item gjson.Result) bool {
				add(k.String(), item)
				return true
			})
			return true
		})
	default:
		return nil, fmt.Errorf("%w: top level must be an object or array", ErrInvalidJSON)
	}

	if err := checkDuplicates(out); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

func parseEntity(kind string, v gjson.Result) (Entity, error) {
	kind = strings.TrimSpace(kind)
	if kind == "" {
		return Entity{}, fmt.Errorf("%w: entity %s has no kind", ErrInvalidJSON, v.Raw)
	}

	if v.Type == gjson.String {
		name := strings.TrimSpace(v.String())
		if name == "" {
			return Entity{}, fmt.Errorf("%w (kind %s)", ErrMissingName, kind)
		}
		return Entity{ID: name, Name: name, Kind: kind}, nil
	}

	if !v.IsObject() {
		return Entity{}, fmt.Errorf("%w: entity %s is not an object", ErrInvalidJSON, v.Raw)
	}

	name := strings.TrimSpace(v.Get("name").String())
	if name == "" {
		return Entity{}, fmt.Errorf("%w (kind %s)", ErrMissingName, kind)
	}
	id := strings.TrimSpace(v.Get("id").String())
	if id == "" {
		id = GenerateID(kind, name)
	}
	return Entity{ID: id, Name: name, Kind: kind}, nil
}

func checkDuplicates(entities []Entity) error {
	seen := make(map[string]bool, len(entities))
	var errs []error
	for _, e := range entities {
		k := entityKey(e.Kind, e.ID)
		if seen[k] {
			errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateKey, e))
			continue
		}
		seen[k] = true
	}
	return errors.Join(errs...)
}

func entityKey(kind, id string) string {
	return kind + "\x00" + id
}
