package util

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptionID(t *testing.T) {
	tests := []struct {
		name   string
		value  interface{}
		want   int64
		wantOK bool
	}{
		{"json number", float64(42), 42, true},
		{"numeric string", "42", 42, true},
		{"padded string", " 42 ", 42, true},
		{"json.Number", json.Number("42"), 42, true},
		{"array takes first element", []interface{}{float64(7), float64(8)}, 7, true},
		{"empty array", []interface{}{}, 0, false},
		{"nil", nil, 0, false},
		{"non numeric string", "abc", 0, false},
		{"bool", true, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := OptionID(tt.value)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestOptionIDs(t *testing.T) {
	assert.Equal(t, []int64{1, 2}, OptionIDs([]interface{}{float64(1), "2"}))
	assert.Equal(t, []int64{5}, OptionIDs(float64(5)), "bare scalar is a one-element selection")
	assert.Equal(t, []int64{3}, OptionIDs([]interface{}{"x", float64(3)}), "unparseable entries dropped")
	assert.Empty(t, OptionIDs(nil))
}

func TestBoolValue(t *testing.T) {
	for _, v := range []interface{}{true, "true", "verdadero", "V", " Verdadero "} {
		got, ok := BoolValue(v)
		assert.True(t, ok, "%v", v)
		assert.True(t, got, "%v", v)
	}
	for _, v := range []interface{}{false, "false", "falso", "F"} {
		got, ok := BoolValue(v)
		assert.True(t, ok, "%v", v)
		assert.False(t, got, "%v", v)
	}
	_, ok := BoolValue(42)
	assert.False(t, ok)
	_, ok = BoolValue("quizás")
	assert.False(t, ok)
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "", Stringify(nil))
	assert.Equal(t, "hola", Stringify("hola"))
	assert.Equal(t, "4", Stringify(float64(4)))
	assert.Equal(t, "4.5", Stringify(4.5))
	assert.Equal(t, "true", Stringify(true))
	assert.Equal(t, "a, b", Stringify([]interface{}{"a", "b"}))
}
