package rtcache

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatKey substitutes {name} placeholders in tmpl with params[name].
// "{{" and "}}" produce literal braces. Every placeholder must be present in
// params; params the template does not mention are ignored.
//
// Values format as: strings and []byte verbatim, integers in decimal,
// floats in shortest form, bools as true/false, fmt.Stringer via String,
// anything else via fmt.Sprint. The result depends only on tmpl and params.
func FormatKey(tmpl string, params Params) (string, error) {
	if strings.IndexAny(tmpl, "{}") < 0 {
		return tmpl, nil
	}
	var b strings.Builder
	b.Grow(len(tmpl) + 16)
	for i := 0; i < len(tmpl); i++ {
		ch := tmpl[i]
		switch ch {
		case '{':
			if i+1 < len(tmpl) && tmpl[i+1] == '{' {
				b.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(tmpl[i+1:], '}')
			if end < 0 {
				return "", &KeyTemplateError{Template: tmpl, Reason: "unterminated placeholder"}
			}
			name := tmpl[i+1 : i+1+end]
			if name == "" {
				return "", &KeyTemplateError{Template: tmpl, Reason: "empty placeholder"}
			}
			v, ok := params[name]
			if !ok {
				return "", &KeyTemplateError{Template: tmpl, Reason: fmt.Sprintf("missing parameter %q", name)}
			}
			b.WriteString(keyString(v))
			i += end + 1
		case '}':
			if i+1 < len(tmpl) && tmpl[i+1] == '}' {
				b.WriteByte('}')
				i++
				continue
			}
			return "", &KeyTemplateError{Template: tmpl, Reason: "unmatched '}'"}
		default:
			b.WriteByte(ch)
		}
	}
	return b.String(), nil
}

func keyString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	case int:
		return strconv.Itoa(x)
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	case uint16:
		return strconv.FormatUint(uint64(x), 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}
