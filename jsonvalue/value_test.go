package jsonvalue_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kory-oss/dap-core/jsonvalue"
)

func TestDecodeClassifiesNumbers(t *testing.T) {
	v, err := jsonvalue.Decode([]byte(`{"a":1,"b":1.5,"c":"hi","d":true,"e":null,"f":[1,2]}`), jsonvalue.DecodeOptions{})
	require.NoError(t, err)

	obj, ok := v.Object()
	require.True(t, ok)

	a, _ := obj.Get("a")
	assert.Equal(t, jsonvalue.KindInteger, a.Kind())
	i, ok := a.Int()
	assert.True(t, ok)
	assert.Equal(t, int64(1), i)

	b, _ := obj.Get("b")
	assert.Equal(t, jsonvalue.KindFloat, b.Kind())

	c, _ := obj.Get("c")
	s, _ := c.String()
	assert.Equal(t, "hi", s)

	d, _ := obj.Get("d")
	bb, _ := d.Bool()
	assert.True(t, bb)

	e, _ := obj.Get("e")
	assert.True(t, e.IsNull())

	f, _ := obj.Get("f")
	arr, ok := f.Array()
	require.True(t, ok)
	assert.Len(t, arr, 2)
}

func TestDecodePreservesKeyOrder(t *testing.T) {
	v, err := jsonvalue.Decode([]byte(`{"z":1,"a":2,"m":3}`), jsonvalue.DecodeOptions{})
	require.NoError(t, err)
	obj, _ := v.Object()
	assert.Equal(t, []string{"z", "a", "m"}, obj.Keys())
}

func TestNumericStringPreservesArbitraryPrecision(t *testing.T) {
	const huge = "123456789012345678901234567890"
	v, err := jsonvalue.Decode([]byte(`{"addr":`+huge+`}`), jsonvalue.DecodeOptions{PreferNumericString: true})
	require.NoError(t, err)
	obj, _ := v.Object()
	addr, _ := obj.Get("addr")
	require.Equal(t, jsonvalue.KindNumericString, addr.Kind())
	s, _ := addr.String()
	assert.Equal(t, huge, s)

	out, err := v.Encode()
	require.NoError(t, err)
	assert.Contains(t, string(out), huge)
}

func TestRoundTripIntegerStringBool(t *testing.T) {
	const src = `{"seq":7,"type":"request","command":"next","ok":true}`
	v, err := jsonvalue.Decode([]byte(src), jsonvalue.DecodeOptions{})
	require.NoError(t, err)
	out, err := v.Encode()
	require.NoError(t, err)

	v2, err := jsonvalue.Decode(out, jsonvalue.DecodeOptions{})
	require.NoError(t, err)
	assert.Equal(t, v, v2)
}

func TestMergeAtCreatesMissingPath(t *testing.T) {
	root := jsonvalue.Null()
	overrides := jsonvalue.NewObject()
	overrides.Set("program", jsonvalue.String("/bin/echo"))
	overrides.Set("stopOnEntry", jsonvalue.Bool(true))

	merged, err := jsonvalue.MergeAt(root, []string{"arguments"}, overrides)
	require.NoError(t, err)

	obj, ok := merged.Object()
	require.True(t, ok)
	args, ok := obj.Get("arguments")
	require.True(t, ok)
	argObj, ok := args.Object()
	require.True(t, ok)
	program, ok := argObj.Get("program")
	require.True(t, ok)
	s, _ := program.String()
	assert.Equal(t, "/bin/echo", s)
}

func TestMergeAtOverwritesExistingKeys(t *testing.T) {
	base, err := jsonvalue.Decode([]byte(`{"arguments":{"program":"old","keepMe":1}}`), jsonvalue.DecodeOptions{})
	require.NoError(t, err)

	overrides := jsonvalue.NewObject()
	overrides.Set("program", jsonvalue.String("new"))

	merged, err := jsonvalue.MergeAt(base, []string{"arguments"}, overrides)
	require.NoError(t, err)

	args, _ := merged.Path("arguments")
	argObj, _ := args.Object()
	program, _ := argObj.Get("program")
	s, _ := program.String()
	assert.Equal(t, "new", s)

	keepMe, ok := argObj.Get("keepMe")
	require.True(t, ok)
	i, _ := keepMe.Int()
	assert.Equal(t, int64(1), i)
}

func TestFromAnyToAnyRoundTrip(t *testing.T) {
	in := map[string]any{
		"name": "prog",
		"args": []any{"a", "b"},
		"n":    int64(3),
	}
	v := jsonvalue.FromAny(in)
	out := v.ToAny()
	assert.Equal(t, in, out)
}
