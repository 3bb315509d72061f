package domain

import (
	"encoding/json"
	"math"
	"testing"
)

func TestNumberDecodesLeniently(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		raw   string
		set   bool
		nan   bool
		value float64
		text  string
	}{
		{name: "integer", raw: `{"n":42}`, set: true, value: 42, text: "42"},
		{name: "float", raw: `{"n":12.5}`, set: true, value: 12.5, text: "12.5"},
		{name: "numeric string", raw: `{"n":" 75 "}`, set: true, value: 75, text: " 75 "},
		{name: "empty string", raw: `{"n":""}`, set: true, value: 0, text: ""},
		{name: "junk string", raw: `{"n":"abc"}`, set: true, nan: true, text: "abc"},
		{name: "true", raw: `{"n":true}`, set: true, value: 1, text: "true"},
		{name: "false", raw: `{"n":false}`, set: true, value: 0, text: "false"},
		{name: "object", raw: `{"n":{"a":1}}`, set: true, nan: true, text: `{"a":1}`},
		{name: "null", raw: `{"n":null}`},
		{name: "missing", raw: `{}`},
	}

	for _, tc := range tests {
		var v struct {
			N Number `json:"n"`
		}
		if err := json.Unmarshal([]byte(tc.raw), &v); err != nil {
			t.Fatalf("%s: unmarshal: %v", tc.name, err)
		}
		if v.N.IsSet() != tc.set {
			t.Fatalf("%s: IsSet = %v, want %v", tc.name, v.N.IsSet(), tc.set)
		}
		if v.N.IsNaN() != tc.nan {
			t.Fatalf("%s: IsNaN = %v, want %v", tc.name, v.N.IsNaN(), tc.nan)
		}
		if tc.set && !tc.nan && v.N.Float() != tc.value {
			t.Fatalf("%s: Float = %v, want %v", tc.name, v.N.Float(), tc.value)
		}
		if v.N.String() != tc.text {
			t.Fatalf("%s: String = %q, want %q", tc.name, v.N.String(), tc.text)
		}
	}
}

func TestNumberNullAndMissingDiffer(t *testing.T) {
	t.Parallel()

	var v struct {
		A Number `json:"a"`
		B Number `json:"b"`
	}
	if err := json.Unmarshal([]byte(`{"a":null}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !v.A.Present || !v.A.Null {
		t.Fatalf("a: %+v", v.A)
	}
	if v.B.Present {
		t.Fatalf("b: %+v", v.B)
	}
	if !math.IsNaN(v.B.Float()) {
		t.Fatalf("unset Float = %v, want NaN", v.B.Float())
	}
}

func TestNumberKeyMatchesAcrossRepresentations(t *testing.T) {
	t.Parallel()

	a, okA := Num(12).Key()
	b, okB := NumText("12").Key()
	if !okA || !okB || a != b {
		t.Fatalf("keys differ: %v/%v %v/%v", a, okA, b, okB)
	}
	if _, ok := NumText("x").Key(); ok {
		t.Fatal("junk must not produce a key")
	}
	if _, ok := NullNumber().Key(); ok {
		t.Fatal("null must not produce a key")
	}
}

func TestNumberOr(t *testing.T) {
	t.Parallel()

	if got := (Number{}).Or(Num(3)); got.Float() != 3 {
		t.Fatalf("missing.Or = %v", got.Float())
	}
	if got := NullNumber().Or(Num(3)); got.Float() != 3 {
		t.Fatalf("null.Or = %v", got.Float())
	}
	if got := Num(0).Or(Num(3)); got.Float() != 0 {
		t.Fatalf("zero.Or = %v", got.Float())
	}
}

func TestNumberMarshalKeepsArrivalForm(t *testing.T) {
	t.Parallel()

	body, err := json.Marshal(struct {
		A Number `json:"a"`
		B Number `json:"b"`
		C Number `json:"c"`
		D Number `json:"d"`
	}{A: Num(5), B: NumText("07"), C: NullNumber()})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got := string(body); got != `{"a":5,"b":"07","c":null,"d":null}` {
		t.Fatalf("got %s", got)
	}
}

func TestTextDecodesLeniently(t *testing.T) {
	t.Parallel()

	var v struct {
		A Text `json:"a"`
		B Text `json:"b"`
		C Text `json:"c"`
		D Text `json:"d"`
	}
	if err := json.Unmarshal([]byte(`{"a":"won","b":42,"c":null,"d":true}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v.A != "won" || v.B != "42" || v.C != "" || v.D != "true" {
		t.Fatalf("unexpected: %+v", v)
	}
}

func TestFlagUsesTruthiness(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want bool
	}{
		{raw: `{"f":true}`, want: true},
		{raw: `{"f":false}`},
		{raw: `{"f":1}`, want: true},
		{raw: `{"f":-0.5}`, want: true},
		{raw: `{"f":0}`},
		{raw: `{"f":"yes"}`, want: true},
		{raw: `{"f":"false"}`, want: true},
		{raw: `{"f":""}`},
		{raw: `{"f":{}}`, want: true},
		{raw: `{"f":[]}`, want: true},
		{raw: `{"f":null}`},
		{raw: `{}`},
	}

	for _, tc := range tests {
		var v struct {
			F Flag `json:"f"`
		}
		if err := json.Unmarshal([]byte(tc.raw), &v); err != nil {
			t.Fatalf("%s: unmarshal: %v", tc.raw, err)
		}
		if v.F.Bool() != tc.want {
			t.Fatalf("%s: got %v, want %v", tc.raw, v.F.Bool(), tc.want)
		}
	}
}

func TestFollowUpDecodesSerializerFields(t *testing.T) {
	t.Parallel()

	raw := `{"id":4,"linked_type":"lead","linked_id":12,"linked_name":"Acme","date_time":"2025-11-12T09:00:00Z","purpose":"Send quote","assigned_to":7,"status":"pending","created_at":"2025-11-10T08:00:00Z","completed_at":null}`
	var f FollowUp
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if f.LinkedID.String() != "12" || f.LinkedName != "Acme" {
		t.Fatalf("unexpected link: %+v", f)
	}
	if f.DateTime != "2025-11-12T09:00:00Z" || f.Purpose != "Send quote" {
		t.Fatalf("unexpected schedule: %+v", f)
	}
	if f.AssignedTo.String() != "7" || f.Status != "pending" || f.CompletedAt != "" {
		t.Fatalf("unexpected state: %+v", f)
	}
}
