package config

import (
	"testing"
)

type testCase struct {
	data     interface{}
	error    bool
	errorMsg string
}

type s1 struct {
	Prm U16Param
}

type s2 struct {
	Prm U64Param
}

type s3 struct {
	Prm BoolParam
}

type s4 struct {
	Prm SelectParam
}

type s5 struct {
	Prm PathParam
}

type s6 struct {
	Prm1 SelectParam
	Prm2 PathParam
	Prm3 BoolParam
	Prm4 U16Param
}

type s7 struct {
	Prm1 SelectParam
	prm2 PathParam
}

type s8 struct {
	Prm1 SelectParam
	Prm2 s1
}

type s9 struct{}

type s10 struct {
	Prm1 SelectParam
	Prm2 int
}

var ptr *s1 = &s1{Prm: MakeU16(5, [2]uint16{0, 10}, Display{})}

var tests []testCase = []testCase{
	testCase{1, true, "Config is not a struct"},
	testCase{"abc", true, "Config is not a struct"},
	testCase{[]byte{1, 2, 3}, true, "Config is not a struct"},
	testCase{&ptr, true, "Config is not a struct"},

	// Ensure it works on pointers
	testCase{&s1{Prm: MakeU16(5, [2]uint16{0, 10}, Display{})}, false, ""},

	testCase{s1{Prm: MakeU16(5, [2]uint16{0, 10}, Display{})}, false, ""},
	testCase{s1{Prm: MakeU16(5, [2]uint16{7, 10}, Display{})}, true, "Prm : U16 value out of range"},

	testCase{s2{Prm: MakeU64(5, [2]uint64{0, 10}, Display{})}, false, ""},
	testCase{s2{Prm: MakeU64(5, [2]uint64{7, 10}, Display{})}, true, "Prm : U64 value out of range"},

	testCase{s3{Prm: MakeBool(true, Display{})}, false, ""},
	testCase{s3{Prm: MakeBool(false, Display{})}, false, ""},

	testCase{s4{Prm: MakeSelect("yes", []string{"yes", "no"}, Display{})}, false, ""},
	testCase{s4{Prm: MakeSelect("yes", []string{}, Display{})}, true, "Prm : Select value not in list"},
	testCase{s4{Prm: MakeSelect("not", []string{"yes", "no"}, Display{})}, true, "Prm : Select value not in list"},

	testCase{s5{Prm: MakePath("/tmp/payload.bin", false, Display{})}, false, ""},
	testCase{s5{Prm: MakePath("", false, Display{})}, true, "Prm : Path must be set"},

	testCase{s6{Prm1: MakeSelect("yes", []string{"yes", "no"}, Display{}),
		Prm2: MakePath("/tmp/payload.bin", false, Display{}),
		Prm3: MakeBool(false, Display{}),
		Prm4: MakeU16(5, [2]uint16{0, 10}, Display{})}, false, ""},
	testCase{s6{Prm1: MakeSelect("yes", []string{"yes", "no"}, Display{}),
		Prm2: MakePath("", false, Display{}),
		Prm3: MakeBool(false, Display{}),
		Prm4: MakeU16(5, [2]uint16{0, 10}, Display{})}, true, "Prm2 : Path must be set"},

	testCase{s7{Prm1: MakeSelect("yes", []string{"yes", "no"}, Display{}),
		prm2: MakePath("", true, Display{})}, true, "prm2 : Could not retrieve unexported field"},

	testCase{s8{Prm1: MakeSelect("yes", []string{"yes", "no"}, Display{})}, true, "Prm2 : Invalid struct field type"},

	testCase{s9{}, false, ""},

	testCase{s10{Prm1: MakeSelect("yes", []string{"yes", "no"}, Display{})}, true, "Prm2 : Invalid struct field type"},
}

func TestValidate(t *testing.T) {
	for i, v := range tests {
		if err := Validate(v.data); v.error && err == nil {
			t.Errorf("Case %d : Expected error %s", i, v.errorMsg)
		} else if v.error && err != nil && v.errorMsg != err.Error() {
			t.Errorf("Case %d : Expected error %s: Found %s", i, v.errorMsg, err.Error())
		} else if !v.error && err != nil {
			t.Errorf("Case %d : Expected no error: Found %s", i, err.Error())
		}
	}
}

type copyTestCase struct {
	c1       interface{}
	c2       interface{}
	error    bool
	errorMsg string
}

func TestCopyValueErrors(t *testing.T) {
	type ValStruct struct {
		Value int
	}

	type ValStructInter struct {
		Value interface{}
	}

	type NoValStruct struct {
		NotValue int
	}

	type st1 struct {
		p1 int
	}

	type st2 struct {
		p1 int
	}

	type st3 struct {
		p1 NoValStruct
	}

	type st4 struct {
		p1 ValStruct
	}

	type st5 struct {
		P1 ValStruct
	}

	type st6 struct {
		P1 ValStructInter
	}

	type st7 struct{}

	var (
		intVal int
		sVal1  st1
		sVal3  st3
		sVal4  st4
		sVal5  st5
		sVal6  st6 = st6{P1: ValStructInter{123}}
		sVal7  st7
	)

	var copyTests []copyTestCase = []copyTestCase{
		copyTestCase{1, 2, true, "Initial config must be pointer"},
		copyTestCase{&intVal, "abc", true, "Configs must be same type"},
		copyTestCase{&sVal1, st2{}, true, "Configs must be same type"},
		copyTestCase{&intVal, intVal, true, "Configs must be struct"},
		copyTestCase{&sVal1, st1{}, true, "p1 : must be struct"},
		copyTestCase{&sVal3, st3{}, true, "p1 : struct must contain Value field"},
		copyTestCase{&sVal4, st4{}, true, "p1 : struct Value field must be settable"},
		copyTestCase{&sVal5, st5{}, false, ""},
		// Ensure that types stored by interfaces can be swapped
		copyTestCase{&sVal6, st6{P1: ValStructInter{"abc"}}, false, ""},
		copyTestCase{&sVal7, st7{}, false, ""},
	}

	for i, v := range copyTests {
		if err := CopyValue(v.c1, v.c2); v.error && err == nil {
			t.Errorf("Case %d : Expected error %s", i, v.errorMsg)
		} else if v.error && err != nil && v.errorMsg != err.Error() {
			t.Errorf("Case %d : Expected error %s: Found %s", i, v.errorMsg, err.Error())
		} else if !v.error && err != nil {
			t.Errorf("Case %d : Expected no error: Found %s", i, err.Error())
		}
	}
}

func TestCopyValue(t *testing.T) {
	var (
		u16  = s1{Prm: MakeU16(5, [2]uint16{0, 10}, Display{})}
		u64  = s2{Prm: MakeU64(0, [2]uint64{0, 10}, Display{})}
		flag = s3{Prm: MakeBool(true, Display{})}
		sel  = s4{Prm: MakeSelect("yes", []string{"yes", "no"}, Display{})}
		path = s5{Prm: MakePath("/tmp/payload.bin", false, Display{})}
	)
	cases := []struct {
		dst  interface{}
		src  interface{}
		want func() bool
	}{
		{&u16, s1{Prm: MakeU16(6, [2]uint16{0, 10}, Display{})}, func() bool { return u16.Prm.Value == 6 }},
		// Pointers are accepted as the source too
		{&u16, &s1{Prm: MakeU16(7, [2]uint16{0, 10}, Display{})}, func() bool { return u16.Prm.Value == 7 }},
		{&u64, s2{Prm: MakeU64(10, [2]uint64{0, 10}, Display{})}, func() bool { return u64.Prm.Value == 10 }},
		{&flag, s3{Prm: MakeBool(false, Display{})}, func() bool { return !flag.Prm.Value }},
		{&sel, s4{Prm: MakeSelect("no", []string{"no"}, Display{})}, func() bool {
			return sel.Prm.Value == "no" && len(sel.Prm.Range) == 2
		}},
		{&path, s5{Prm: MakePath("/tmp/other.bin", true, Display{})}, func() bool {
			return path.Prm.Value == "/tmp/other.bin" && !path.Prm.Optional
		}},
	}
	for i, c := range cases {
		if err := CopyValue(c.dst, c.src); err != nil {
			t.Errorf("Case %d : Expected no error: Found %s", i, err.Error())
		} else if !c.want() {
			t.Errorf("Case %d : Value not copied, or more than the value copied", i)
		}
	}
}

func TestCopyValueMultiValue(t *testing.T) {
	var sVal1 s6 = s6{Prm1: MakeSelect("yes", []string{"yes", "no"}, Display{}),
		Prm2: MakePath("/tmp/payload.bin", false, Display{}),
		Prm3: MakeBool(true, Display{}),
		Prm4: MakeU16(5, [2]uint16{0, 10}, Display{})}
	var sVal2 s6 = s6{Prm1: MakeSelect("no", []string{"yes", "no"}, Display{}),
		Prm2: MakePath("/tmp/other.bin", true, Display{}),
		Prm3: MakeBool(false, Display{}),
		Prm4: MakeU16(6, [2]uint16{0, 10}, Display{})}

	if err := CopyValue(&sVal1, sVal2); err != nil {
		t.Fatalf("Expected no error: Found %s", err.Error())
	}
	if sVal1.Prm1.Value != "no" || sVal1.Prm2.Value != "/tmp/other.bin" || sVal1.Prm3.Value || sVal1.Prm4.Value != 6 {
		t.Errorf("Expected the values of %+v: Found %+v", sVal2, sVal1)
	}
	if sVal2.Prm4.Value != 6 || sVal2.Prm1.Value != "no" {
		t.Errorf("Source altered: %+v", sVal2)
	}
}

type set struct {
	Burst   s2
	Payload s5
}

func TestCopyValueSet(t *testing.T) {
	var (
		dst = set{Burst: s2{Prm: MakeU64(0, [2]uint64{0, 10}, Display{})}, Payload: s5{Prm: MakePath("a", false, Display{})}}
		src = set{Burst: s2{Prm: MakeU64(3, [2]uint64{0, 10}, Display{})}, Payload: s5{Prm: MakePath("b", false, Display{})}}
	)
	if err := CopyValueSet(&dst, src, []string{"Burst"}); err != nil {
		t.Fatalf("Expected no error: Found %s", err.Error())
	}
	if dst.Burst.Prm.Value != 3 || dst.Payload.Prm.Value != "a" {
		t.Errorf("Expected only Burst copied: Found %+v", dst)
	}
	if err := CopyValueSet(&dst, src, nil); err != nil {
		t.Fatalf("Expected no error: Found %s", err.Error())
	}
	if dst.Payload.Prm.Value != "b" {
		t.Errorf("Expected %s: Found %s", "b", dst.Payload.Prm.Value)
	}
	if err := CopyValueSet(&dst, src, []string{"Caesar"}); err == nil || err.Error() != "Caesar : field not in struct" {
		t.Errorf("Expected error Caesar : field not in struct: Found %v", err)
	}
	if err := CopyValueSet(dst, src, nil); err == nil {
		t.Errorf("Expected error for a non pointer config")
	}
}

func TestValidateConfigSet(t *testing.T) {
	valid := set{Burst: s2{Prm: MakeU64(3, [2]uint64{0, 10}, Display{})}, Payload: s5{Prm: MakePath("a", false, Display{})}}
	if err := ValidateConfigSet(&valid); err != nil {
		t.Errorf("Expected no error: Found %s", err.Error())
	}
	invalid := valid
	invalid.Payload.Prm.Value = ""
	if err := ValidateConfigSet(invalid); err == nil || err.Error() != "Prm : Path must be set" {
		t.Errorf("Expected error Prm : Path must be set: Found %v", err)
	}
	if err := ValidateConfigSet(3); err == nil {
		t.Errorf("Expected error for a non struct config")
	}
}

func TestNoUpdateUnlessAllValid(t *testing.T) {
	type ValStruct struct {
		Value int
	}
	type NoValStruct struct {
		NotValue int
	}
	type s struct {
		P1 ValStruct
		P2 NoValStruct
		P3 ValStruct
	}
	var s1 s = s{P1: ValStruct{1}, P2: NoValStruct{2}, P3: ValStruct{3}}
	var s2 s = s{P1: ValStruct{4}, P2: NoValStruct{5}, P3: ValStruct{6}}

	err := CopyValue(&s1, s2)
	if err == nil {
		t.Errorf("Expected error")
	} else if err.Error() != "P2 : struct must contain Value field" {
		t.Errorf("Expected error %s: Found %s", "P2 : struct must contain Value field", err.Error())
	} else if s1.P1.Value != 1 {
		t.Errorf("Expected %d: Found %d", s1.P1.Value, 1)
	} else if s1.P2.NotValue != 2 {
		t.Errorf("Expected %d: Found %d", s1.P2.NotValue, 2)
	} else if s1.P3.Value != 3 {
		t.Errorf("Expected %d: Found %d", s1.P3.Value, 3)
	}
}
