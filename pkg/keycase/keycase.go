// Package keycase traduce nombres de campos entre camelCase y snake_case, tanto en
// valores decodificados (map/slice) como en documentos JSON crudos.
package keycase

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ToCamel "unit_cost" → "unitCost". Cada componente tras el primero se capitaliza y el
// resto de sus letras pasa a minúscula ("cod_SKU" → "codSku").
func ToCamel(s string) string {
	if !strings.Contains(s, "_") {
		return s
	}
	parts := strings.Split(s, "_")
	title := cases.Title(language.Und)
	var b strings.Builder
	b.WriteString(parts[0])
	for _, p := range parts[1:] {
		b.WriteString(title.String(p))
	}
	return b.String()
}

// ToSnake "unitCost" → "unit_cost", "codSKU" → "cod_sku", "HTTPStatus" → "http_status".
func ToSnake(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && runes[i-1] != '_' {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Transform renombra recursivamente las claves de mapas; los demás valores se devuelven intactos.
func Transform(v any, rename func(string) string) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[rename(k)] = Transform(val, rename)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Transform(val, rename)
		}
		return out
	default:
		return v
	}
}

type frame struct {
	object    bool
	expectKey bool
	count     int
}

// RewriteJSON renombra las claves de un documento JSON conservando el orden de los campos
// y la representación exacta de los números.
func RewriteJSON(data []byte, rename func(string) string) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var (
		buf   bytes.Buffer
		stack []frame
	)
	buf.Grow(len(data))
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		var top *frame
		if n := len(stack); n > 0 {
			top = &stack[n-1]
		}

		if top != nil && top.object && top.expectKey {
			if d, ok := tok.(json.Delim); ok && d == '}' {
				buf.WriteByte('}')
				stack = stack[:len(stack)-1]
				continue
			}
			key, _ := tok.(string)
			if top.count > 0 {
				buf.WriteByte(',')
			}
			top.count++
			top.expectKey = false
			writeString(&buf, rename(key))
			buf.WriteByte(':')
			continue
		}

		if d, ok := tok.(json.Delim); ok && d == ']' {
			buf.WriteByte(']')
			stack = stack[:len(stack)-1]
			continue
		}
		if top != nil {
			if top.object {
				top.expectKey = true
			} else {
				if top.count > 0 {
					buf.WriteByte(',')
				}
				top.count++
			}
		}

		switch v := tok.(type) {
		case json.Delim:
			buf.WriteByte(byte(v))
			stack = append(stack, frame{object: v == '{', expectKey: v == '{'})
		case string:
			writeString(&buf, v)
		case json.Number:
			buf.WriteString(v.String())
		case bool:
			buf.WriteString(strconv.FormatBool(v))
		case nil:
			buf.WriteString("null")
		}
	}
	if len(stack) > 0 {
		return nil, io.ErrUnexpectedEOF
	}
	return buf.Bytes(), nil
}

func writeString(buf *bytes.Buffer, s string) {
	b, _ := json.Marshal(s)
	buf.Write(b)
}
