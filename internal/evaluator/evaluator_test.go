package evaluator

import (
	"math"
	"monkey/internal/object"
	"monkey/internal/parser"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func testEval(t *testing.T, input string) object.Object {
	t.Helper()
	program, errs := parser.Parse(input)
	if len(errs) != 0 {
		t.Fatalf("parser errors for %q: %v", input, errs)
	}
	return Eval(program, object.NewEnvironment())
}

func TestEvalIntegerExpression(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"5", 5},
		{"10", 10},
		{"-5", -5},
		{"-10", -10},
		{"5 + 5 + 5 + 5 - 10", 10},
		{"2 * 2 * 2 * 2 * 2", 32},
		{"-50 + 100 + -50", 0},
		{"5 * 2 + 10", 20},
		{"5 + 2 * 10", 25},
		{"20 + 2 * -10", 0},
		{"50 / 2 * 2 + 10", 60},
		{"2 * (5 + 10)", 30},
		{"3 * 3 * 3 + 10", 37},
		{"3 * (3 * 3) + 10", 37},
		{"(5 + 10 * 2 + 15 / 3) * 2 + -10", 50},
		{"-7 / 2", -3},
		{"7 / -2", -3},
	}

	for _, tt := range tests {
		evaluated := testEval(t, tt.input)
		testIntegerObject(t, evaluated, tt.expected)
	}
}

func TestIntegerOverflowWraps(t *testing.T) {
	max := strconv.FormatInt(math.MaxInt64, 10)

	tests := []struct {
		input    string
		expected int64
	}{
		{max + " + 1", math.MinInt64},
		{"-" + max + " - 2", math.MaxInt64},
		{"(-" + max + " - 1) / -1", math.MinInt64},
	}

	for _, tt := range tests {
		evaluated := testEval(t, tt.input)
		testIntegerObject(t, evaluated, tt.expected)
	}
}

func TestEvalBooleanExpression(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"true", true},
		{"false", false},
		{"1 < 2", true},
		{"1 > 2", false},
		{"1 < 1", false},
		{"1 > 1", false},
		{"1 == 1", true},
		{"1 != 1", false},
		{"1 == 2", false},
		{"1 != 2", true},
		{"true == true", true},
		{"false == false", true},
		{"true == false", false},
		{"true != false", true},
		{"false != true", true},
		{"(1 < 2) == true", true},
		{"(1 < 2) == false", false},
		{"(1 > 2) == true", false},
		{"(1 > 2) == false", true},
	}

	for _, tt := range tests {
		evaluated := testEval(t, tt.input)
		testBooleanObject(t, evaluated, tt.expected)
	}
}

func TestBangOperator(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"!true", false},
		{"!false", true},
		{"!5", false},
		{"!0", false},
		{"!!true", true},
		{"!!false", false},
		{"!!5", true},
		{"!\"\"", false},
		{"![]", false},
		{"!if (false) { 1 }", true},
	}

	for _, tt := range tests {
		evaluated := testEval(t, tt.input)
		testBooleanObject(t, evaluated, tt.expected)
	}
}

func TestIfElseExpressions(t *testing.T) {
	tests := []struct {
		input    string
		expected interface{}
	}{
		{"if (true) { 10 }", 10},
		{"if (false) { 10 }", nil},
		{"if (1) { 10 }", 10},
		{"if (0) { 10 }", 10},
		{"if (1 < 2) { 10 }", 10},
		{"if (1 > 2) { 10 }", nil},
		{"if (1 > 2) { 10 } else { 20 }", 20},
		{"if (1 < 2) { 10 } else { 20 }", 10},
		{"if (true) { }", nil},
	}

	for _, tt := range tests {
		evaluated := testEval(t, tt.input)
		integer, ok := tt.expected.(int)
		if ok {
			testIntegerObject(t, evaluated, int64(integer))
		} else {
			testNullObject(t, evaluated)
		}
	}
}

func TestReturnStatements(t *testing.T) {
	tests := []struct {
		input    string
		expected interface{}
	}{
		{"return 10;", 10},
		{"return 10; 9;", 10},
		{"return 2 * 5; 9;", 10},
		{"9; return 2 * 5; 9;", 10},
		{"return;", nil},
		{"if (10 > 1) { return; }", nil},
		{
			`
if (10 > 1) {
  if (10 > 1) {
    return 10;
  }

  return 1;
}
`,
			10,
		},
		{
			`
let f = fn(x) {
  return x;
  x + 10;
};
f(10);`,
			10,
		},
		{
			`
let f = fn(x) {
   let result = x + 10;
   return result;
   return 10;
};
f(10);`,
			20,
		},
	}

	for _, tt := range tests {
		evaluated := testEval(t, tt.input)
		integer, ok := tt.expected.(int)
		if ok {
			testIntegerObject(t, evaluated, int64(integer))
		} else {
			testNullObject(t, evaluated)
		}
	}
}

// A return nested in an expression ends the enclosing function or program
// instead of becoming an operand.
func TestReturnInsideExpressions(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"let a = if (true) { return 5 }; a + 1", 5},
		{"let f = fn(x) { x }; f(if (true) { return 2 })", 2},
		{"[if (true) { return 1 }][0] * 3", 1},
		{"-if (true) { return 4 }", 4},
		{"1 + if (true) { return 8 }", 8},
		{"if (true) { return 6 } + 1", 6},
		{"if (if (true) { return 7 }) { 1 }", 7},
		{"[1][if (true) { return 0 }]", 0},
		{"let g = fn() { let a = if (true) { return 5 }; a + 1 }; g() * 10", 50},
		{"let h = fn() { [1, if (true) { return 9 }] }; h()", 9},
		{"let k = fn() { if (true) { return 3 }(1) }; k() + 1", 4},
	}

	for _, tt := range tests {
		evaluated := testEval(t, tt.input)
		testIntegerObject(t, evaluated, tt.expected)
	}
}

func TestErrorHandling(t *testing.T) {
	tests := []struct {
		input           string
		expectedMessage string
	}{
		{"5 + true;", "type mismatch: Integer + Boolean"},
		{"5 + true; 5;", "type mismatch: Integer + Boolean"},
		{"-true", "unknown operator: -Boolean"},
		{"-\"a\"", "unknown operator: -String"},
		{"true + false;", "unknown operator: Boolean + Boolean"},
		{"true < false;", "unknown operator: Boolean < Boolean"},
		{"true + false + true + false;", "unknown operator: Boolean + Boolean"},
		{"5; true + false; 5", "unknown operator: Boolean + Boolean"},
		{"if (10 > 1) { true + false; }", "unknown operator: Boolean + Boolean"},
		{
			`
if (10 > 1) {
  if (10 > 1) {
    return true + false;
  }

  return 1;
}
`,
			"unknown operator: Boolean + Boolean",
		},
		{"foobar", "identifier not found: foobar"},
		{`"Hello" - "World"`, "unknown operator: String - String"},
		{`"a" == "a"`, "unknown operator: String == String"},
		{`"a" + 1`, "type mismatch: String + Integer"},
		{"1 / 0", "division by zero"},
		{"let d = fn(x) { 10 / x }; d(0)", "division by zero"},
		{"5(1)", "not a function: Integer"},
		{"let x = true; x()", "not a function: Boolean"},
		{"1[0]", "index operator not supported: Integer"},
		{"[1, 2][true]", "index operator not supported: Array"},
		{"[1, foo, 3]", "identifier not found: foo"},
		{"len(bar)", "identifier not found: bar"},
		{"missing(1)", "identifier not found: missing"},
		{"[1][nope]", "identifier not found: nope"},
		{"if (nope) { 1 }", "identifier not found: nope"},
		{"let x = nope; x", "identifier not found: nope"},
		{"fn(x) { x }(nope)", "identifier not found: nope"},
		{"let f = fn(a, b) { b }; f(1)", "identifier not found: b"},
	}

	for _, tt := range tests {
		evaluated := testEval(t, tt.input)

		errObj, ok := evaluated.(*object.Error)
		if !ok {
			t.Errorf("%q: no error object returned. got=%T(%+v)", tt.input, evaluated, evaluated)
			continue
		}

		if errObj.Message != tt.expectedMessage {
			t.Errorf("%q: wrong error message. expected=%q, got=%q",
				tt.input, tt.expectedMessage, errObj.Message)
		}
	}
}

func TestErrorStopsEvaluation(t *testing.T) {
	env := object.NewEnvironment()
	program, errs := parser.Parse("let a = 1; let b = a + true; let c = 3;")
	if len(errs) != 0 {
		t.Fatalf("parser errors: %v", errs)
	}

	evaluated := Eval(program, env)
	if _, ok := evaluated.(*object.Error); !ok {
		t.Fatalf("expected error, got %T", evaluated)
	}
	if _, ok := env.Get("b"); ok {
		t.Errorf("b should not be bound after a failed let")
	}
	if _, ok := env.Get("c"); ok {
		t.Errorf("c should not be bound after an earlier error")
	}
}

func TestLetStatements(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"let a = 5; a;", 5},
		{"let a = 5 * 5; a;", 25},
		{"let a = 5; let b = a; b;", 5},
		{"let a = 5; let b = a; let c = a + b + 5; c;", 15},
		{"let a = 5; let a = a + 1; a;", 6},
		{"let a = 7;", 7},
	}

	for _, tt := range tests {
		testIntegerObject(t, testEval(t, tt.input), tt.expected)
	}
}

func TestFunctionObject(t *testing.T) {
	input := "fn(x) { x + 2; };"

	evaluated := testEval(t, input)
	fn, ok := evaluated.(*object.Function)
	if !ok {
		t.Fatalf("object is not Function. got=%T (%+v)", evaluated, evaluated)
	}

	if len(fn.Parameters) != 1 {
		t.Fatalf("function has wrong parameters. Parameters=%+v",
			fn.Parameters)
	}

	if fn.Parameters[0].String() != "x" {
		t.Fatalf("parameter is not 'x'. got=%q", fn.Parameters[0])
	}

	expectedBody := "(x + 2)"

	if fn.Body.String() != expectedBody {
		t.Fatalf("body is not %q. got=%q", expectedBody, fn.Body.String())
	}

	if diff := cmp.Diff("fn(x) {\n(x + 2)\n}", fn.Inspect()); diff != "" {
		t.Errorf("Inspect() mismatch (-want +got):\n%s", diff)
	}
}

func TestFunctionApplication(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"let identity = fn(x) { x; }; identity(5);", 5},
		{"let identity = fn(x) { return x; }; identity(5);", 5},
		{"let double = fn(x) { x * 2; }; double(5);", 10},
		{"let add = fn(x, y) { x + y; }; add(5, 5);", 10},
		{"let add = fn(x, y) { x + y; }; add(5 + 5, add(5, 5));", 20},
		{"fn(x) { x; }(5)", 5},
		{"let add = fn(x, y) { x + y; }; add(1, 2, 3);", 3},
		{"let x = 10; let f = fn() { let x = 1; x }; f() + x;", 11},
	}

	for _, tt := range tests {
		testIntegerObject(t, testEval(t, tt.input), tt.expected)
	}
}

func TestClosures(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{
			`
let newAdder = fn(x) {
  fn(y) { x + y };
};

let addTwo = newAdder(2);
addTwo(3);`,
			5,
		},
		{
			`
let newAdder = fn(x) { fn(y) { x + y }; };
let addTwo = newAdder(2);
let addTen = newAdder(10);
addTwo(1) + addTen(1);`,
			14,
		},
		{
			`
let counter = fn(n) { if (n > 0) { counter(n - 1) } else { 0 } };
let x = 99;
counter(5) + x;`,
			99,
		},
	}

	for _, tt := range tests {
		testIntegerObject(t, testEval(t, tt.input), tt.expected)
	}
}

func TestRecursiveFunction(t *testing.T) {
	input := `
let fib = fn(n) {
  if (n < 2) { return n; }
  fib(n - 1) + fib(n - 2);
};
fib(15);`

	testIntegerObject(t, testEval(t, input), 610)
}

func TestStringLiteral(t *testing.T) {
	evaluated := testEval(t, `"Hello World!"`)
	str, ok := evaluated.(*object.String)
	if !ok {
		t.Fatalf("object is not String. got=%T (%+v)", evaluated, evaluated)
	}

	if str.Value != "Hello World!" {
		t.Errorf("String has wrong value. got=%q", str.Value)
	}
}

func TestStringConcatenation(t *testing.T) {
	evaluated := testEval(t, `"Hello" + " " + "World!"`)
	str, ok := evaluated.(*object.String)
	if !ok {
		t.Fatalf("object is not String. got=%T (%+v)", evaluated, evaluated)
	}

	if str.Value != "Hello World!" {
		t.Errorf("String has wrong value. got=%q", str.Value)
	}
}

func TestBuiltinFunctions(t *testing.T) {
	tests := []struct {
		input    string
		expected interface{}
	}{
		{`len("")`, 0},
		{`len("four")`, 4},
		{`len("hello world")`, 11},
		{`len("héllo")`, 5},
		{`len([1, 2, 3])`, 3},
		{`len([])`, 0},
		{`len(1)`, `argument to "len" not supported, got Integer`},
		{`len("one", "two")`, "wrong number of arguments. got=2, want=1"},
		{`len()`, "wrong number of arguments. got=0, want=1"},
		{`first([1, 2, 3])`, 1},
		{`first([])`, nil},
		{`first(1)`, `argument to "first" must be ARRAY, got Integer`},
		{`first([1], [2])`, "wrong number of arguments. got=2, want=1"},
		{`last([1, 2, 3])`, 3},
		{`last([])`, nil},
		{`last("abc")`, `argument to "last" must be ARRAY, got String`},
		{`rest([1, 2, 3])`, []int{2, 3}},
		{`rest([1])`, []int{}},
		{`rest([])`, nil},
		{`rest(true)`, `argument to "rest" must be ARRAY, got Boolean`},
		{`push([], 1)`, []int{1}},
		{`push([1, 2], 3)`, []int{1, 2, 3}},
		{`push(1, 1)`, `argument to "push" must be ARRAY, got Integer`},
		{`push([1])`, "wrong number of arguments. got=1, want=2"},
		{`let len = fn(x) { 42 }; len("abc")`, 42},
	}

	for _, tt := range tests {
		evaluated := testEval(t, tt.input)

		switch expected := tt.expected.(type) {
		case int:
			testIntegerObject(t, evaluated, int64(expected))
		case nil:
			testNullObject(t, evaluated)
		case string:
			errObj, ok := evaluated.(*object.Error)
			if !ok {
				t.Errorf("%q: object is not Error. got=%T (%+v)", tt.input, evaluated, evaluated)
				continue
			}
			if errObj.Message != expected {
				t.Errorf("%q: wrong error message. expected=%q, got=%q",
					tt.input, expected, errObj.Message)
			}
		case []int:
			array, ok := evaluated.(*object.Array)
			if !ok {
				t.Errorf("%q: obj not Array. got=%T (%+v)", tt.input, evaluated, evaluated)
				continue
			}

			if len(array.Elements) != len(expected) {
				t.Errorf("%q: wrong num of elements. want=%d, got=%d",
					tt.input, len(expected), len(array.Elements))
				continue
			}

			for i, expectedElem := range expected {
				testIntegerObject(t, array.Elements[i], int64(expectedElem))
			}
		}
	}
}

func TestBuiltinsDoNotMutate(t *testing.T) {
	input := `
let a = [1, 2, 3];
let b = push(a, 4);
let c = rest(a);
[a, b, c]`

	evaluated := testEval(t, input)
	if diff := cmp.Diff("[[1, 2, 3], [1, 2, 3, 4], [2, 3]]", evaluated.Inspect()); diff != "" {
		t.Errorf("arrays mismatch (-want +got):\n%s", diff)
	}

	env := object.NewEnvironment()
	original := &object.Array{Elements: []object.Object{&object.Integer{Value: 1}, &object.Integer{Value: 2}}}
	env.Set("a", original)

	program, _ := parser.Parse("push(a, 3); rest(a);")
	Eval(program, env)

	if len(original.Elements) != 2 {
		t.Fatalf("original array changed length: %s", original.Inspect())
	}
	testIntegerObject(t, original.Elements[0], 1)
	testIntegerObject(t, original.Elements[1], 2)
}

func TestBuiltinLookup(t *testing.T) {
	evaluated := testEval(t, "len")
	builtin, ok := evaluated.(*object.Builtin)
	if !ok {
		t.Fatalf("object is not Builtin. got=%T", evaluated)
	}
	if builtin.Inspect() != "builtin function" {
		t.Errorf("unexpected rendering %q", builtin.Inspect())
	}
	if len(BuiltinNames()) != 5 {
		t.Errorf("expected 5 builtins, got %v", BuiltinNames())
	}
}

func TestArrayLiterals(t *testing.T) {
	evaluated := testEval(t, "[1, 2 * 2, 3 + 3]")

	result, ok := evaluated.(*object.Array)
	if !ok {
		t.Fatalf("object is not Array. got=%T (%+v)", evaluated, evaluated)
	}

	if len(result.Elements) != 3 {
		t.Fatalf("array has wrong num of elements. got=%d",
			len(result.Elements))
	}

	testIntegerObject(t, result.Elements[0], 1)
	testIntegerObject(t, result.Elements[1], 4)
	testIntegerObject(t, result.Elements[2], 6)
}

func TestArrayIndexExpressions(t *testing.T) {
	tests := []struct {
		input    string
		expected interface{}
	}{
		{"[1, 2, 3][0]", 1},
		{"[1, 2, 3][1]", 2},
		{"[1, 2, 3][2]", 3},
		{"let i = 0; [1][i];", 1},
		{"[1, 2, 3][1 + 1];", 3},
		{"let myArray = [1, 2, 3]; myArray[2];", 3},
		{"let myArray = [1, 2, 3]; myArray[0] + myArray[1] + myArray[2];", 6},
		{"let myArray = [1, 2, 3]; let i = myArray[0]; myArray[i]", 2},
		{"[1, 2, 3][3]", nil},
		{"[1, 2, 3][-1]", nil},
		{"[][0]", nil},
	}

	for _, tt := range tests {
		evaluated := testEval(t, tt.input)
		integer, ok := tt.expected.(int)
		if ok {
			testIntegerObject(t, evaluated, int64(integer))
		} else {
			testNullObject(t, evaluated)
		}
	}
}

func TestInspectResults(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1 + 2", "3"},
		{"1 < 2", "true"},
		{"if (false) { 1 }", "null"},
		{`"a" + "b"`, "ab"},
		{`[1, "two", [true]]`, "[1, two, [true]]"},
		{"fn(a, b) { a + b }", "fn(a, b) {\n(a + b)\n}"},
		{"nope", "Error: identifier not found: nope"},
		{"", "null"},
	}

	for _, tt := range tests {
		if got := testEval(t, tt.input).Inspect(); got != tt.expected {
			t.Errorf("%q: expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}

func TestEvalIsIdempotentAcrossEnvironments(t *testing.T) {
	program, errs := parser.Parse(`
let a = [1, 2];
let f = fn(x) { push(x, len(x)) };
let b = f(a);
f(b)`)
	if len(errs) != 0 {
		t.Fatalf("parser errors: %v", errs)
	}

	first := Eval(program, object.NewEnvironment()).Inspect()
	second := Eval(program, object.NewEnvironment()).Inspect()

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("results differ (-first +second):\n%s", diff)
	}
	if first != "[1, 2, 2, 3]" {
		t.Errorf("unexpected result %q", first)
	}
}

func TestSessionEnvironmentPersists(t *testing.T) {
	env := object.NewEnvironment()
	for _, src := range []string{"let x = 2;", "let double = fn(n) { n * 2 };"} {
		program, _ := parser.Parse(src)
		Eval(program, env)
	}

	program, _ := parser.Parse("double(x)")
	testIntegerObject(t, Eval(program, env), 4)
}

func TestEvalNilNode(t *testing.T) {
	testNullObject(t, Eval(nil, object.NewEnvironment()))
}

func testIntegerObject(t *testing.T, obj object.Object, expected int64) bool {
	t.Helper()
	result, ok := obj.(*object.Integer)
	if !ok {
		t.Errorf("object is not Integer. got=%T (%+v)", obj, obj)
		return false
	}
	if result.Value != expected {
		t.Errorf("object has wrong value. got=%d, want=%d",
			result.Value, expected)
		return false
	}

	return true
}

func testBooleanObject(t *testing.T, obj object.Object, expected bool) bool {
	t.Helper()
	result, ok := obj.(*object.Boolean)
	if !ok {
		t.Errorf("object is not Boolean. got=%T (%+v)", obj, obj)
		return false
	}
	if result.Value != expected {
		t.Errorf("object has wrong value. got=%t, want=%t",
			result.Value, expected)
		return false
	}
	if (expected && result != object.TRUE) || (!expected && result != object.FALSE) {
		t.Errorf("boolean is not the shared singleton")
		return false
	}
	return true
}

func testNullObject(t *testing.T, obj object.Object) bool {
	t.Helper()
	if obj != object.NULL {
		t.Errorf("object is not NULL. got=%T (%+v)", obj, obj)
		return false
	}
	return true
}
