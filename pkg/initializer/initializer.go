// Package initializer defines the contract every pluggable unit of startup and
// shutdown logic satisfies.
//
// An Initializer is named, validated and carries three independent priorities. The
// phase hooks are optional capabilities: a unit takes part in a phase only if it
// implements the matching interface (Loader, Starter, Stopper) and its priority for
// that phase is positive.
package initializer

import (
	"context"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// DefaultExport names the single export of a source that does not name its exports.
const DefaultExport = "default"

// Priorities orders a unit within each phase. Lower runs first; zero or negative
// removes the unit from that phase.
type Priorities struct {
	Load  int `yaml:"load" json:"load"`
	Start int `yaml:"start" json:"start"`
	Stop  int `yaml:"stop" json:"stop"`
}

// Initializer is the unit of pluggable work.
type Initializer interface {
	Name() string
	Priorities() Priorities
	// Validate fails if the instance is malformed.
	Validate() error
}

// Loader is implemented by units that take part in the load phase.
type Loader interface {
	Initialize(ctx context.Context) error
}

// Starter is implemented by units that take part in the start phase.
type Starter interface {
	Start(ctx context.Context) error
}

// Stopper is implemented by units that take part in the stop phase.
type Stopper interface {
	Stop(ctx context.Context) error
}

// Factory constructs a fresh instance.
type Factory func() (Initializer, error)

// Export is one named constructor exposed by a source.
type Export struct {
	Name string
	New  Factory
}

// Hooks records which phase capabilities a unit implements.
type Hooks struct {
	Load  bool
	Start bool
	Stop  bool
}

// HooksOf inspects u once for its optional capabilities.
func HooksOf(u Initializer) Hooks {
	_, l := u.(Loader)
	_, s := u.(Starter)
	_, t := u.(Stopper)
	return Hooks{Load: l, Start: s, Stop: t}
}

var (
	validate    = validator.New()
	unitNameRex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:/-]*$`)
)

func init() {
	// unitname: non-empty, no whitespace, starts alphanumeric
	validate.RegisterValidation("unitname", func(fl validator.FieldLevel) bool {
		return unitNameRex.MatchString(fl.Field().String())
	})
}

// Base carries the name and priorities of a unit and implements the non-hook half
// of Initializer. Embed it and add the hook methods that apply.
type Base struct {
	UnitName string     `validate:"required,unitname"`
	Order    Priorities `validate:"-"`
}

func (b *Base) Name() string           { return b.UnitName }
func (b *Base) Priorities() Priorities { return b.Order }

// Validate checks the struct tags on Base.
func (b *Base) Validate() error {
	return Struct(b)
}

// Struct validates v with the package validator and flattens field errors into a
// single readable error. Units embedding Base can use it to validate their own tags.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("field %s failed %q validation (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
	}
	return err
}

// Personal.AI order the ending
