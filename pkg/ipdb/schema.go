package ipdb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// TagName 是记录结构体上声明字段名的 struct tag
const TagName = "ipdb"

type slotKind int

const (
	slotScalar  slotKind = iota
	slotObject           // 嵌入的 JSON 对象
	slotObjects          // 嵌入的 JSON 对象数组
)

type slot struct {
	index []int
	kind  slotKind
}

// schema 是某个记录类型的 字段名 -> 槽位 表
type schema struct {
	slots map[string]slot
}

// pair 是一个 (字段名, 文本值)
type pair struct {
	name  string
	value string
}

var schemaCache sync.Map // reflect.Type -> *schema

func schemaOf(t reflect.Type) *schema {
	if s, ok := schemaCache.Load(t); ok {
		return s.(*schema)
	}
	s := &schema{slots: make(map[string]slot)}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := f.Tag.Get(TagName)
		if name == "" || name == "-" || !f.IsExported() {
			continue
		}
		kind, ok := kindOf(f.Type)
		if !ok {
			continue
		}
		s.slots[name] = slot{index: f.Index, kind: kind}
	}
	actual, _ := schemaCache.LoadOrStore(t, s)
	return actual.(*schema)
}

func kindOf(t reflect.Type) (slotKind, bool) {
	switch t.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return slotScalar, true
	case reflect.Struct:
		return slotObject, true
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Struct {
			return slotObjects, true
		}
	}
	return 0, false
}

// Decode 按字段名把 values 填入 dst（结构体指针）。
//
// fields 与 values 成对遍历，以较短者为准；未知字段名被忽略，缺失的字段保持零值。
// 类型为结构体或结构体切片的字段，其非空值按嵌入的 JSON 解析，并以同样的按名规则解码。
func Decode(values, fields []string, dst interface{}) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("ipdb: Decode needs a non-nil struct pointer, got %T", dst)
	}

	n := len(fields)
	if len(values) < n {
		n = len(values)
	}
	pairs := make([]pair, n)
	for i := 0; i < n; i++ {
		pairs[i] = pair{name: fields[i], value: values[i]}
	}
	if err := decodePairs(rv.Elem(), pairs); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseCorrupt, err)
	}
	return nil
}

func decodePairs(v reflect.Value, pairs []pair) error {
	s := schemaOf(v.Type())
	for _, p := range pairs {
		sl, ok := s.slots[p.name]
		if !ok {
			continue
		}
		if err := setSlot(v.FieldByIndex(sl.index), sl.kind, p.value); err != nil {
			return fmt.Errorf("field %q: %w", p.name, err)
		}
	}
	return nil
}

func setSlot(f reflect.Value, kind slotKind, value string) error {
	switch kind {
	case slotObject:
		if strings.TrimSpace(value) == "" {
			return nil
		}
		pairs, err := parseObject([]byte(value))
		if err != nil {
			return err
		}
		return decodePairs(f, pairs)
	case slotObjects:
		if strings.TrimSpace(value) == "" {
			return nil
		}
		var items []json.RawMessage
		if err := json.Unmarshal([]byte(value), &items); err != nil {
			return err
		}
		out := reflect.MakeSlice(f.Type(), len(items), len(items))
		for i, item := range items {
			pairs, err := parseObject(item)
			if err != nil {
				return err
			}
			if err := decodePairs(out.Index(i), pairs); err != nil {
				return err
			}
		}
		f.Set(out)
		return nil
	}
	return setScalar(f, value)
}

func setScalar(f reflect.Value, value string) error {
	if f.Kind() == reflect.String {
		f.SetString(value)
		return nil
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	switch f.Kind() {
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		f.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, f.Type().Bits())
		if err != nil {
			return err
		}
		f.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(value, 10, f.Type().Bits())
		if err != nil {
			return err
		}
		f.SetUint(n)
	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(value, f.Type().Bits())
		if err != nil {
			return err
		}
		f.SetFloat(n)
	}
	return nil
}

// parseObject 解析一个 JSON 对象，按出现顺序返回键值对。
// 字符串值去掉引号，null 变为空串，其他值保留原始 JSON 文本。
func parseObject(data []byte) ([]pair, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected JSON object, got %v", tok)
	}

	var pairs []pair
	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		text, err := rawText(raw)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, pair{name: key, value: text})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return pairs, nil
}

func rawText(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	switch {
	case len(raw) > 0 && raw[0] == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	case bytes.Equal(raw, []byte("null")):
		return "", nil
	}
	return string(raw), nil
}

// languageSlice 取出某个语言的字段块
func languageSlice(all []string, offset, fieldCount int) ([]string, error) {
	if offset < 0 || offset+fieldCount > len(all) {
		return nil, fmt.Errorf("%w: language offset %d with %d fields exceeds %d values",
			ErrDatabaseCorrupt, offset, fieldCount, len(all))
	}
	return all[offset : offset+fieldCount], nil
}
