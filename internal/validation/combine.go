package validation

// Combine builds the default final validator for a schema. Each field is
// validated on its own against the matching raw value (a string, or nil when
// absent). Issues are collected across all fields with the key prepended to
// their path; absent optional fields are left out of the resulting value.
//
// A pending field result is returned as is so the caller can reject it.
func Combine(schema Schema) Validator {
	keys := schema.Keys()
	return Func(func(input any) Result {
		raw, ok := asStringMap(input)
		if !ok {
			return Failure(Issue{Message: ErrNotMapping.Error()})
		}

		value := make(map[string]any, len(keys))
		var issues []Issue
		for _, key := range keys {
			field := schema[key]
			if field == nil {
				issues = append(issues, Issue{Message: ErrNoValidator.Error(), Path: []string{key}})
				continue
			}

			var in any
			if s, present := raw[key]; present {
				in = s
			}

			res := field.Validate(in)
			if res.IsPending() {
				return res
			}
			if res.Failed() {
				for _, issue := range res.Issues {
					issues = append(issues, issue.WithPrefix(key))
				}
				continue
			}
			if res.Value != nil {
				value[key] = res.Value
			}
		}

		if len(issues) > 0 {
			return Failure(issues...)
		}
		return Success(value)
	})
}

func asStringMap(input any) (map[string]string, bool) {
	switch m := input.(type) {
	case map[string]string:
		return m, true
	case map[string]any:
		out := make(map[string]string, len(m))
		for k, v := range m {
			if v == nil {
				continue
			}
			s, ok := v.(string)
			if !ok {
				return nil, false
			}
			out[k] = s
		}
		return out, true
	case nil:
		return map[string]string{}, true
	default:
		return nil, false
	}
}
