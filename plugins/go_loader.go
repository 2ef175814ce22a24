package plugins

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
	"github.com/yourusername/refinery/internal/catalog"
	"github.com/yourusername/refinery/internal/solver"
)

const (
	goIDFuncName   = "CollaboratorID"
	goRoleFuncName = "CollaboratorRole"
)

// GoCollaborator is a collaborator implementation backed by an interpreted
// Go file. Interpreted collaborators operate on float64 states.
type GoCollaborator struct {
	ID   string
	Role catalog.Role
	Impl any
	Path string
}

// LoadGoCollaboratorDir evaluates every .go file in dir and collects the
// collaborators they declare. Each file must define CollaboratorID() and
// CollaboratorRole() plus the function(s) its role requires:
//
//	seeds:      NextSeed() float64
//	tension:    PerceiveTension(state float64) []float64
//	            EvaluateCoherence(old, new []float64) float64
//	transition: ComputeNext(current, input float64) float64
//	patterns:   ExtractPattern(state float64) string
//	operators:  DeriveOperator(pattern string) string
//
// Every function may also return an error as a trailing result.
func LoadGoCollaboratorDir(dir string) ([]GoCollaborator, error) {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(trimmed)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("plugin: read %s: %w", trimmed, err)
	}
	var collabs []GoCollaborator
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if filepath.Ext(entry.Name()) != ".go" {
			continue
		}
		collab, err := loadGoCollaboratorFile(filepath.Join(trimmed, entry.Name()))
		if err != nil {
			return nil, err
		}
		collabs = append(collabs, collab)
	}
	if len(collabs) == 0 {
		return nil, nil
	}
	sort.Slice(collabs, func(i, j int) bool { return collabs[i].Path < collabs[j].Path })
	return collabs, nil
}

func loadGoCollaboratorFile(path string) (GoCollaborator, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return GoCollaborator{}, fmt.Errorf("plugin: read %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(code))) == 0 {
		return GoCollaborator{}, fmt.Errorf("plugin: %s is empty", path)
	}
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return GoCollaborator{}, fmt.Errorf("plugin: interpreter symbols: %w", err)
	}
	if _, err := i.EvalPath(path); err != nil {
		return GoCollaborator{}, fmt.Errorf("plugin: interpret %s: %w", path, err)
	}
	id, err := stringFromFunc(i, goIDFuncName)
	if err != nil {
		return GoCollaborator{}, fmt.Errorf("plugin: %s: %w", path, err)
	}
	roleName, err := stringFromFunc(i, goRoleFuncName)
	if err != nil {
		return GoCollaborator{}, fmt.Errorf("plugin: %s: %w", path, err)
	}
	role := catalog.Role(strings.ToLower(strings.TrimSpace(roleName)))
	if !role.Valid() {
		return GoCollaborator{}, fmt.Errorf("plugin: %s: unknown role %q", path, roleName)
	}
	impl, err := bindGoRole(i, role)
	if err != nil {
		return GoCollaborator{}, fmt.Errorf("plugin: %s: %w", path, err)
	}
	if strings.TrimSpace(id) == "" {
		return GoCollaborator{}, fmt.Errorf("plugin: %s: %s() returned an empty id", path, goIDFuncName)
	}
	return GoCollaborator{ID: strings.TrimSpace(id), Role: role, Impl: impl, Path: filepath.Clean(path)}, nil
}

func bindGoRole(i *interp.Interpreter, role catalog.Role) (any, error) {
	switch role {
	case catalog.RoleSeeds:
		fn, err := lookupFunc(i, "NextSeed", 0)
		if err != nil {
			return nil, err
		}
		return goSeedGenerator{fn: fn}, nil
	case catalog.RoleTension:
		perceive, err := lookupFunc(i, "PerceiveTension", 1)
		if err != nil {
			return nil, err
		}
		evaluate, err := lookupFunc(i, "EvaluateCoherence", 2)
		if err != nil {
			return nil, err
		}
		return goTensionEvaluator{perceive: perceive, evaluate: evaluate}, nil
	case catalog.RoleTransition:
		fn, err := lookupFunc(i, "ComputeNext", 2)
		if err != nil {
			return nil, err
		}
		return goStateTransition{fn: fn}, nil
	case catalog.RolePatterns:
		fn, err := lookupFunc(i, "ExtractPattern", 1)
		if err != nil {
			return nil, err
		}
		return goPatternExtractor{fn: fn}, nil
	default:
		fn, err := lookupFunc(i, "DeriveOperator", 1)
		if err != nil {
			return nil, err
		}
		return goOperatorGenerator{fn: fn}, nil
	}
}

func lookupFunc(i *interp.Interpreter, name string, args int) (reflect.Value, error) {
	value, err := i.Eval(name)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("must define %s: %w", name, err)
	}
	if !value.IsValid() || value.Kind() != reflect.Func {
		return reflect.Value{}, fmt.Errorf("%s is not a function", name)
	}
	if value.Type().NumIn() != args {
		return reflect.Value{}, fmt.Errorf("%s must take %d argument(s), takes %d", name, args, value.Type().NumIn())
	}
	return value, nil
}

func stringFromFunc(i *interp.Interpreter, name string) (string, error) {
	fn, err := lookupFunc(i, name, 0)
	if err != nil {
		return "", err
	}
	result, err := callOne(fn)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return stringResult(name, result)
}

// callOne invokes fn and returns its first result, honoring an optional
// trailing error.
func callOne(fn reflect.Value, args ...reflect.Value) (reflect.Value, error) {
	results := fn.Call(args)
	switch len(results) {
	case 1:
		return results[0], nil
	case 2:
		errValue := results[1]
		if !errValue.IsNil() {
			if e, ok := errValue.Interface().(error); ok {
				return reflect.Value{}, e
			}
			return reflect.Value{}, fmt.Errorf("second result is not an error")
		}
		return results[0], nil
	default:
		return reflect.Value{}, fmt.Errorf("must return one value plus optional error, returned %d", len(results))
	}
}

func floatResult(name string, v reflect.Value) (float64, error) {
	if v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Float64, reflect.Float32:
		return v.Float(), nil
	case reflect.Int, reflect.Int64:
		return float64(v.Int()), nil
	default:
		return 0, fmt.Errorf("%s must return a float64, got %s", name, v.Kind())
	}
}

func floatsResult(name string, v reflect.Value) ([]float64, error) {
	if v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	values, ok := v.Interface().([]float64)
	if !ok {
		return nil, fmt.Errorf("%s must return []float64, got %T", name, v.Interface())
	}
	return values, nil
}

func stringResult(name string, v reflect.Value) (string, error) {
	if v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	if v.Kind() != reflect.String {
		return "", fmt.Errorf("%s must return a string, got %s", name, v.Kind())
	}
	return v.String(), nil
}

func numericArg(name string, v any) (reflect.Value, error) {
	switch n := v.(type) {
	case float64:
		return reflect.ValueOf(n), nil
	case float32:
		return reflect.ValueOf(float64(n)), nil
	case int:
		return reflect.ValueOf(float64(n)), nil
	case int64:
		return reflect.ValueOf(float64(n)), nil
	default:
		return reflect.Value{}, fmt.Errorf("interpreted %s requires a numeric value, got %T", name, v)
	}
}

type goSeedGenerator struct {
	fn reflect.Value
}

func (g goSeedGenerator) NextSeed() (float64, error) {
	result, err := callOne(g.fn)
	if err != nil {
		return 0, err
	}
	return floatResult("NextSeed", result)
}

type goTensionEvaluator struct {
	perceive reflect.Value
	evaluate reflect.Value
}

func (g goTensionEvaluator) PerceiveTension(state any) (solver.Measurement, error) {
	arg, err := numericArg("PerceiveTension", state)
	if err != nil {
		return nil, err
	}
	result, err := callOne(g.perceive, arg)
	if err != nil {
		return nil, err
	}
	values, err := floatsResult("PerceiveTension", result)
	if err != nil {
		return nil, err
	}
	return solver.Measurement(values), nil
}

func (g goTensionEvaluator) EvaluateCoherence(old, new solver.Measurement) (float64, error) {
	result, err := callOne(g.evaluate, reflect.ValueOf([]float64(old)), reflect.ValueOf([]float64(new)))
	if err != nil {
		return 0, err
	}
	return floatResult("EvaluateCoherence", result)
}

type goStateTransition struct {
	fn reflect.Value
}

func (g goStateTransition) ComputeNext(current, input any) (any, error) {
	currentArg, err := numericArg("ComputeNext", current)
	if err != nil {
		return nil, err
	}
	inputArg, err := numericArg("ComputeNext", input)
	if err != nil {
		return nil, err
	}
	result, err := callOne(g.fn, currentArg, inputArg)
	if err != nil {
		return nil, err
	}
	return floatResult("ComputeNext", result)
}

type goPatternExtractor struct {
	fn reflect.Value
}

func (g goPatternExtractor) ExtractPattern(state any) (any, error) {
	arg, err := numericArg("ExtractPattern", state)
	if err != nil {
		return nil, err
	}
	result, err := callOne(g.fn, arg)
	if err != nil {
		return nil, err
	}
	return stringResult("ExtractPattern", result)
}

type goOperatorGenerator struct {
	fn reflect.Value
}

func (g goOperatorGenerator) DeriveOperator(pattern any) (string, error) {
	text, ok := pattern.(string)
	if !ok {
		text = fmt.Sprint(pattern)
	}
	result, err := callOne(g.fn, reflect.ValueOf(text))
	if err != nil {
		return "", err
	}
	return stringResult("DeriveOperator", result)
}
