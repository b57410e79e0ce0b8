package game

import (
	"encoding/json"
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestValue_UnmarshalJSON(t *testing.T) {
	tests := map[string]struct {
		data    string
		expErr  bool
		expKind ValueKind
		expStr  string
	}{
		"bool": {
			data:    `true`,
			expKind: ValueBool,
			expStr:  "true",
		},
		"number": {
			data:    `100`,
			expKind: ValueNumber,
			expStr:  "100",
		},
		"fractional number": {
			data:    `2.5`,
			expKind: ValueNumber,
			expStr:  "2.5",
		},
		"string": {
			data:    `"brass door"`,
			expKind: ValueString,
			expStr:  "brass door",
		},
		"list of strings": {
			data:    `["key","lamp"]`,
			expKind: ValueList,
			expStr:  "key, lamp",
		},
		"null": {
			data:    `null`,
			expKind: ValueNil,
			expStr:  "",
		},
		"object rejected": {
			data:   `{"a":1}`,
			expErr: true,
		},
		"mixed list rejected": {
			data:   `["key",1]`,
			expErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var v Value
			err := json.Unmarshal([]byte(tt.data), &v)

			if tt.expErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "kind", v.Kind(), tt.expKind)
			testutil.AssertEqual(t, "string", v.String(), tt.expStr)
		})
	}
}

func TestValue_Truthy(t *testing.T) {
	tests := map[string]struct {
		val Value
		exp bool
	}{
		"true bool":      {BoolValue(true), true},
		"false bool":     {BoolValue(false), false},
		"nonzero number": {NumberValue(5), true},
		"zero number":    {NumberValue(0), false},
		"string":         {StringValue("x"), true},
		"empty string":   {StringValue(""), false},
		"list":           {ListValue([]string{"a"}), true},
		"empty list":     {ListValue(nil), false},
		"zero value":     {Value{}, false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "truthy", tt.val.Truthy(), tt.exp)
		})
	}
}

func TestValue_Matches(t *testing.T) {
	tests := map[string]struct {
		val     Value
		literal string
		exp     bool
	}{
		"bool true":           {BoolValue(true), "true", true},
		"bool false literal":  {BoolValue(true), "false", false},
		"number":              {NumberValue(100), "100", true},
		"number mismatch":     {NumberValue(100), "99", false},
		"number bad literal":  {NumberValue(100), "lots", false},
		"string":              {StringValue("open"), "open", true},
		"string mismatch":     {StringValue("open"), "closed", false},
		"list contains":       {ListValue([]string{"key", "lamp"}), "lamp", true},
		"list missing":        {ListValue([]string{"key"}), "lamp", false},
		"zero never matches":  {Value{}, "", false},
		"case sensitive":      {StringValue("Open"), "open", false},
		"whole number render": {NumberValue(5), "5", true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "matches", tt.val.Matches(tt.literal), tt.exp)
		})
	}
}

func TestValue_Equal(t *testing.T) {
	tests := map[string]struct {
		a, b Value
		exp  bool
	}{
		"equal bools":      {BoolValue(true), BoolValue(true), true},
		"unequal bools":    {BoolValue(true), BoolValue(false), false},
		"equal numbers":    {NumberValue(3), NumberValue(3), true},
		"kind mismatch":    {NumberValue(1), StringValue("1"), false},
		"equal lists":      {ListValue([]string{"a", "b"}), ListValue([]string{"a", "b"}), true},
		"reordered lists":  {ListValue([]string{"a", "b"}), ListValue([]string{"b", "a"}), false},
		"both zero values": {Value{}, Value{}, true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "equal", tt.a.Equal(tt.b), tt.exp)
		})
	}
}
