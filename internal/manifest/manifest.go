// Package manifest reads claim manifests: a contract's storage layout and
// the claims made about it, with every condition written in the claimc
// expression syntax. Manifests are YAML or CUE (JSON is accepted as CUE).
package manifest

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/go-playground/validator/v10"
	pkgerrors "github.com/pkg/errors"
	"github.com/tliron/commonlog"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"claimc/internal/errors"
)

var log = commonlog.GetLogger("claimc.manifest")

// Format is the encoding of a manifest file.
type Format string

const (
	YAML Format = "yaml"
	CUE  Format = "cue"
)

// Manifest is the decoded form of a claim manifest.
type Manifest struct {
	Contract     string        `yaml:"contract" json:"contract" validate:"required"`
	Storage      []Slot        `yaml:"storage" json:"storage" validate:"dive"`
	Constructors []Constructor `yaml:"constructors" json:"constructors" validate:"dive"`
	Behaviours   []Behaviour   `yaml:"behaviours" json:"behaviours" validate:"dive"`
	Invariants   []Invariant   `yaml:"invariants" json:"invariants" validate:"dive"`
}

// Slot declares a storage slot. Type is an ABI type name or a
// mapping(key => type) chain.
type Slot struct {
	Name string `yaml:"name" json:"name" validate:"required"`
	Type string `yaml:"type" json:"type" validate:"required"`
}

// Arg is a call argument.
type Arg struct {
	Name string `yaml:"name" json:"name" validate:"required"`
	Type string `yaml:"type" json:"type" validate:"required"`
}

// Assignment writes Value to the storage reference Target.
type Assignment struct {
	Target string `yaml:"target" json:"target" validate:"required"`
	Value  string `yaml:"value" json:"value" validate:"required"`
}

// Constructor describes contract creation. Name defaults to the contract.
type Constructor struct {
	Name      string       `yaml:"name" json:"name"`
	Mode      string       `yaml:"mode" json:"mode" validate:"omitempty,oneof=Pass pass Fail fail OOG oog"`
	Interface []Arg        `yaml:"interface" json:"interface" validate:"dive"`
	Iff       []string     `yaml:"iff" json:"iff"`
	Initial   []Assignment `yaml:"initial" json:"initial" validate:"dive"`
	Ensures   []string     `yaml:"ensures" json:"ensures"`
}

// Behaviour describes one entry point of the contract.
type Behaviour struct {
	Name      string       `yaml:"name" json:"name" validate:"required"`
	Mode      string       `yaml:"mode" json:"mode" validate:"omitempty,oneof=Pass pass Fail fail OOG oog"`
	Interface []Arg        `yaml:"interface" json:"interface" validate:"dive"`
	Iff       []string     `yaml:"iff" json:"iff"`
	Updates   []Assignment `yaml:"updates" json:"updates" validate:"dive"`
	Constants []string     `yaml:"constants" json:"constants"`
	Ensures   []string     `yaml:"ensures" json:"ensures"`
	Returns   string       `yaml:"returns" json:"returns"`
}

// Invariant is a property of every reachable state.
type Invariant struct {
	Iff       []string `yaml:"iff" json:"iff"`
	Bounds    []string `yaml:"bounds" json:"bounds"`
	Predicate string   `yaml:"predicate" json:"predicate" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report fields by their manifest spelling
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, true
	case ".cue", ".json":
		return CUE, true
	}
	return "", false
}

// Load reads and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	format, ok := FormatOf(path)
	if !ok {
		return nil, errors.InvalidManifest(path, "unknown manifest format, expected .yaml, .yml, .cue or .json")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to read manifest")
	}

	m, err := Decode(data, format, path)
	if err != nil {
		return nil, err
	}
	log.Debugf("loaded %s manifest %s: %d behaviours", format, path, len(m.Behaviours))
	return m, nil
}

// Decode parses and validates a manifest. filename is only used in
// messages.
func Decode(data []byte, format Format, filename string) (*Manifest, error) {
	var m Manifest

	switch format {
	case YAML:
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&m); err != nil {
			return nil, errors.InvalidManifest("", "malformed YAML: "+err.Error())
		}
	case CUE:
		v := cuecontext.New().CompileBytes(data, cue.Filename(filename))
		if err := v.Err(); err != nil {
			return nil, errors.InvalidManifest("", "malformed CUE: "+err.Error())
		}
		if err := v.Decode(&m); err != nil {
			return nil, errors.InvalidManifest("", "CUE value does not fit a manifest: "+err.Error())
		}
	default:
		return nil, errors.InvalidManifest("", "unknown manifest format "+string(format))
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks required fields and modes. Every failing field is
// reported.
func (m *Manifest) Validate() error {
	err := validate.Struct(m)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !pkgerrors.As(err, &fieldErrs) {
		return pkgerrors.Wrap(err, "validating manifest")
	}

	var errs error
	for _, fe := range fieldErrs {
		field := strings.TrimPrefix(fe.Namespace(), "Manifest.")
		errs = multierr.Append(errs, errors.InvalidManifest(field, describe(fe)))
	}
	return errs
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return "fails " + fe.Tag()
	}
}

// Expressions lists the source of every expression in the manifest, in
// manifest order.
func (m *Manifest) Expressions() []string {
	var out []string
	assigned := func(as []Assignment) {
		for _, a := range as {
			out = append(out, a.Target, a.Value)
		}
	}

	for _, c := range m.Constructors {
		out = append(out, c.Iff...)
		assigned(c.Initial)
		out = append(out, c.Ensures...)
	}
	for _, b := range m.Behaviours {
		out = append(out, b.Iff...)
		assigned(b.Updates)
		out = append(out, b.Constants...)
		out = append(out, b.Ensures...)
		if b.Returns != "" {
			out = append(out, b.Returns)
		}
	}
	for _, inv := range m.Invariants {
		out = append(out, inv.Iff...)
		out = append(out, inv.Bounds...)
		out = append(out, inv.Predicate)
	}
	return out
}
