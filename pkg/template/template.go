// Package template renders {{ expression }} placeholders against run context
// data. Expressions are dotted paths rooted at node names, e.g.
// {{ HttpCall.body.title }}; path steps index into JSON-like maps and arrays.
package template

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{\{([^{}]*)\}\}`)

// Render substitutes every placeholder in input with the value found at its
// dotted path in data. A reference that cannot be resolved is an error, not
// an empty string; callers surface it as a node execution failure.
func Render(input string, data map[string]any) (string, error) {
	var renderErr error

	rendered := placeholderPattern.ReplaceAllStringFunc(input, func(match string) string {
		if renderErr != nil {
			return match
		}

		expression := strings.TrimSpace(placeholderPattern.FindStringSubmatch(match)[1])
		if expression == "" {
			renderErr = fmt.Errorf("empty template expression in %q", input)

			return match
		}

		value, err := Lookup(data, expression)
		if err != nil {
			renderErr = err

			return match
		}

		return format(value)
	})

	if renderErr != nil {
		return "", renderErr
	}

	return rendered, nil
}

// Lookup walks a dotted path through nested maps and arrays.
func Lookup(data map[string]any, path string) (any, error) {
	var current any = data

	for _, step := range strings.Split(path, ".") {
		switch value := current.(type) {
		case map[string]any:
			next, ok := value[step]
			if !ok {
				return nil, fmt.Errorf("undefined reference %q in template path %q", step, path)
			}

			current = next
		case map[string]string:
			next, ok := value[step]
			if !ok {
				return nil, fmt.Errorf("undefined reference %q in template path %q", step, path)
			}

			current = next
		case []any:
			index, err := strconv.Atoi(step)
			if err != nil || index < 0 || index >= len(value) {
				return nil, fmt.Errorf("invalid array index %q in template path %q", step, path)
			}

			current = value[index]
		default:
			return nil, fmt.Errorf("cannot descend into %T at %q in template path %q", current, step, path)
		}
	}

	return current, nil
}

func format(value any) string {
	switch typed := value.(type) {
	case string:
		return typed
	case nil:
		return ""
	default:
		encoded, err := json.Marshal(typed)
		if err != nil {
			return fmt.Sprintf("%v", typed)
		}

		return string(encoded)
	}
}
