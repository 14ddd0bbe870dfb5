package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Value 嵌套结构的和类型：Mapping、Sequence、Text、Other
type Value interface {
	// substitute 对子树中所有字符串叶子执行替换，skip 中的键整棵子树保持不变
	substitute(s *Substituter, skip map[string]bool) Value
	// Any 还原为 encoding/json 可处理的普通值
	Any() any
}

// Mapping 键值对节点
type Mapping map[string]Value

// Sequence 列表节点
type Sequence []Value

// Text 字符串叶子
type Text string

// Other 数字、布尔、null 等不参与替换的叶子
type Other struct{ V any }

func (m Mapping) substitute(s *Substituter, skip map[string]bool) Value {
	out := make(Mapping, len(m))
	for k, v := range m {
		if skip[k] {
			out[k] = v
			continue
		}
		out[k] = v.substitute(s, skip)
	}
	return out
}

func (m Mapping) Any() any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v.Any()
	}
	return out
}

func (q Sequence) substitute(s *Substituter, skip map[string]bool) Value {
	out := make(Sequence, len(q))
	for i, v := range q {
		out[i] = v.substitute(s, skip)
	}
	return out
}

func (q Sequence) Any() any {
	out := make([]any, len(q))
	for i, v := range q {
		out[i] = v.Any()
	}
	return out
}

func (t Text) substitute(s *Substituter, _ map[string]bool) Value {
	return Text(s.Apply(string(t)))
}

func (t Text) Any() any { return string(t) }

func (o Other) substitute(*Substituter, map[string]bool) Value { return o }

func (o Other) Any() any { return o.V }

// FromAny 把 json 解码得到的普通值转换为 Value
func FromAny(v any) Value {
	switch x := v.(type) {
	case map[string]any:
		m := make(Mapping, len(x))
		for k, item := range x {
			m[k] = FromAny(item)
		}
		return m
	case []any:
		q := make(Sequence, len(x))
		for i, item := range x {
			q[i] = FromAny(item)
		}
		return q
	case []string:
		q := make(Sequence, len(x))
		for i, item := range x {
			q[i] = Text(item)
		}
		return q
	case string:
		return Text(x)
	default:
		return Other{V: v}
	}
}

// Substitute 对整棵树执行占位词替换，返回新树
func Substitute(v Value, s *Substituter, skip map[string]bool) Value {
	if v == nil {
		return nil
	}
	return v.substitute(s, skip)
}

// substituteJSON 把任意可 json 编码的值转成 Value，替换后解码回 out
func substituteJSON(in any, out any, s *Substituter, skip map[string]bool) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	data, err = json.Marshal(Substitute(FromAny(raw), s, skip).Any())
	if err != nil {
		return fmt.Errorf("marshal substituted: %w", err)
	}
	return json.Unmarshal(data, out)
}
