package internal

import (
	"encoding/json"
	"reflect"

	"github.com/cockroachdb/errors"
	"github.com/invopop/jsonschema"
)

// Tool is a callable tool definition: a name and description for the
// provider, a reflected parameter schema, and the function to run when the
// provider asks for it.
//
// It lives in the internal package so instances can only come out of the
// typed constructor, which records the argument type alongside the function.
type Tool struct {
	Name        string
	Description string
	Parameters  jsonschema.Schema

	// input records the erased argument type, for Call to decode into.
	input any
	// function wraps the erased function pointer.
	function FunctionBody
}

// NewTool backs the public-facing constructor of the same name.
func NewTool[A any](name, description string, fn FunctionBody) Tool {
	return Tool{
		Name:        name,
		Description: description,
		Parameters:  GenerateSchema[A](),
		input:       *new(A),
		function:    fn,
	}
}

// FunctionBody holds the erased tool function.
//
// Its only constructor is the public Function helper, whose signature pins
// the callback to the `func(a) (string, error)` shape.
type FunctionBody struct {
	Inner any
}

// Call decodes the provider's JSON-encoded arguments into the recorded
// argument type and invokes the tool function with them.
//
// The constructors guarantee most of the shape being checked here, but the
// argument type cannot be tied to the function signature at compile time, so
// Call re-verifies everything reflection-side before invoking.
func (t Tool) Call(paramsJson []byte) (string, error) {
	argType := reflect.TypeOf(t.input)
	params := reflect.New(argType).Interface()

	if err := json.Unmarshal(paramsJson, &params); err != nil {
		return "", err
	}

	fn := reflect.ValueOf(t.function.Inner)

	if fn.Type().NumIn() != 1 {
		return "", errors.Newf("tool '%s' should take one argument, not %d", t.Name, fn.Type().NumIn())
	}
	// A mismatched argument type would make fn.Call panic.
	if fn.Type().In(0) != argType {
		return "", errors.Newf("tool '%s' should take an argument of type %s, not %s", t.Name, argType.Name(), fn.Type().In(0).Name())
	}

	args := []reflect.Value{reflect.ValueOf(params).Elem()}
	rets := fn.Call(args)

	if len(rets) != 2 {
		panic("tool functions should return (string, error)")
	}

	if !rets[1].IsNil() {
		return "", rets[1].Interface().(error)
	}

	output, ok := rets[0].Interface().(string)

	if !ok {
		panic("tool functions should return (string, error)")
	}

	return output, nil
}
