package config

import (
	"errors"
	"reflect"
)

type param interface {
	Validate() error
}

type Display struct {
	Description string
	Name        string
	Group       string
}

type U16Param struct {
	Type    string
	Value   uint16
	Range   [2]uint16
	Display Display
}

type U64Param struct {
	Type    string
	Value   uint64
	Range   [2]uint64
	Display Display
}

type BoolParam struct {
	Type    string
	Value   bool
	Display Display
}

type SelectParam struct {
	Type    string
	Value   string
	Range   []string
	Display Display
}

// A path on the local file system, Validate only checks that it is set
type PathParam struct {
	Type     string
	Value    string
	Optional bool
	Display  Display
}

func (p U16Param) Validate() error {
	if p.Value < p.Range[0] || p.Value > p.Range[1] {
		return errors.New("U16 value out of range")
	}
	return nil
}

func (p U64Param) Validate() error {
	if p.Value < p.Range[0] || p.Value > p.Range[1] {
		return errors.New("U64 value out of range")
	}
	return nil
}

func (p BoolParam) Validate() error {
	return nil
}

func (p SelectParam) Validate() error {
	for _, s := range p.Range {
		if s == p.Value {
			return nil
		}
	}
	return errors.New("Select value not in list")
}

func (p PathParam) Validate() error {
	if p.Value == "" && !p.Optional {
		return errors.New("Path must be set")
	}
	return nil
}

func MakeU16(value uint16, rng [2]uint16, display Display) U16Param {
	return U16Param{"u16", value, rng, display}
}
func MakeU64(value uint64, rng [2]uint64, display Display) U64Param {
	return U64Param{"u64", value, rng, display}
}
func MakeSelect(value string, rng []string, display Display) SelectParam {
	return SelectParam{"select", value, rng, display}
}
func MakeBool(value bool, display Display) BoolParam {
	return BoolParam{"bool", value, display}
}
func MakePath(value string, optional bool, display Display) PathParam {
	return PathParam{"path", value, optional, display}
}

// structValue dereferences c and checks that it is a struct
func structValue(c interface{}) (reflect.Value, error) {
	v := reflect.ValueOf(c)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return v, errors.New("Config is not a struct")
	}
	return v, nil
}

// Validate checks every field of a config struct, each must be a param
func Validate(c interface{}) error {
	v, err := structValue(c)
	if err != nil {
		return err
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		name := t.Field(i).Name
		if !v.Field(i).CanInterface() {
			return errors.New(name + " : Could not retrieve unexported field")
		}
		p, ok := v.Field(i).Interface().(param)
		if !ok {
			return errors.New(name + " : Invalid struct field type")
		}
		if err := p.Validate(); err != nil {
			return errors.New(name + " : " + err.Error())
		}
	}
	return nil
}

// ValidateConfigSet validates a struct whose fields are config structs
func ValidateConfigSet(c interface{}) error {
	v, err := structValue(c)
	if err != nil {
		return err
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if !v.Field(i).CanInterface() {
			return errors.New(t.Field(i).Name + " : Could not retrieve unexported field")
		}
		if err := Validate(v.Field(i).Interface()); err != nil {
			return err
		}
	}
	return nil
}

// CopyValue copies every param value from c2 to c1, leaving ranges and
// descriptions alone. Nothing is copied unless every field is compatible.
func CopyValue(c1 interface{}, c2 interface{}) error {
	p1 := reflect.ValueOf(c1)
	if p1.Kind() != reflect.Ptr {
		return errors.New("Initial config must be pointer")
	}
	v1, v2 := p1.Elem(), reflect.ValueOf(c2)
	if v2.Kind() == reflect.Ptr {
		v2 = v2.Elem()
	}
	if err := validateCopy(v1, v2); err != nil {
		return err
	}
	performCopy(v1, v2)
	return nil
}

// CopyValueSet copies the param values of the named config structs from
// c2 to c1. A nil list copies every field.
func CopyValueSet(c1 interface{}, c2 interface{}, fields []string) error {
	p1 := reflect.ValueOf(c1)
	if p1.Kind() != reflect.Ptr {
		return errors.New("Initial config must be pointer")
	}
	v1, v2 := p1.Elem(), reflect.ValueOf(c2)
	if v2.Kind() == reflect.Ptr {
		v2 = v2.Elem()
	}
	if v1.Type() != v2.Type() {
		return errors.New("Configs must be same type")
	}
	if v1.Kind() != reflect.Struct {
		return errors.New("Configs must be struct")
	}
	if fields == nil {
		for i := 0; i < v1.NumField(); i++ {
			fields = append(fields, v1.Type().Field(i).Name)
		}
	}
	for _, name := range fields {
		f1, f2 := v1.FieldByName(name), v2.FieldByName(name)
		if !f1.IsValid() {
			return errors.New(name + " : field not in struct")
		}
		if err := validateCopy(f1, f2); err != nil {
			return errors.New(name + " : " + err.Error())
		}
	}
	for _, name := range fields {
		performCopy(v1.FieldByName(name), v2.FieldByName(name))
	}
	return nil
}

func validateCopy(v1 reflect.Value, v2 reflect.Value) error {
	if v1.Type() != v2.Type() {
		return errors.New("Configs must be same type")
	}
	t := v1.Type()
	if t.Kind() != reflect.Struct {
		return errors.New("Configs must be struct")
	}
	for i := 0; i < t.NumField(); i++ {
		name := t.Field(i).Name
		if t.Field(i).Type.Kind() != reflect.Struct {
			return errors.New(name + " : must be struct")
		}
		if _, ok := t.Field(i).Type.FieldByName("Value"); !ok {
			return errors.New(name + " : struct must contain Value field")
		}
		if !v1.Field(i).FieldByName("Value").CanSet() {
			return errors.New(name + " : struct Value field must be settable")
		}
	}
	return nil
}

func performCopy(v1 reflect.Value, v2 reflect.Value) {
	for i := 0; i < v1.NumField(); i++ {
		v1.Field(i).FieldByName("Value").Set(v2.Field(i).FieldByName("Value"))
	}
}
