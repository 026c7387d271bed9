package lifecycle

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindsAreDistinctFlags(t *testing.T) {
	all := Kinds()
	require.Len(t, all, 7)
	var seen EventKind
	for _, k := range all {
		assert.True(t, k.Valid(), k.String())
		assert.Zero(t, seen&k, "flag %s reused", k)
		seen |= k
	}
	assert.Equal(t, []EventKind{Awake, Awake1, Awake2, Awake3, Update, Load, LateUpdate}, all)
}

func TestParseKind(t *testing.T) {
	k, ok := ParseKind("LateUpdate")
	require.True(t, ok)
	assert.Equal(t, LateUpdate, k)

	_, ok = ParseKind("lateupdate")
	assert.False(t, ok, "names match exactly")
	_, ok = ParseKind("Update0")
	assert.False(t, ok)
}

func TestKindArity(t *testing.T) {
	assert.Equal(t, 0, Awake.Arity())
	assert.Equal(t, 1, Awake1.Arity())
	assert.Equal(t, 3, Awake3.Arity())
	assert.Equal(t, 0, LateUpdate.Arity())
}

func TestInvalidKind(t *testing.T) {
	assert.False(t, EventKind(0).Valid())
	assert.False(t, (Awake | Update).Valid())
	assert.False(t, EventKind(128).Valid())
	assert.Equal(t, "EventKind(3)", EventKind(3).String())
}

func TestKindJSON(t *testing.T) {
	out, err := json.Marshal(map[string]EventKind{"kind": Awake2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"Awake2"}`, string(out))

	var back struct{ Kind EventKind }
	require.NoError(t, json.Unmarshal([]byte(`{"Kind":"Load"}`), &back))
	assert.Equal(t, Load, back.Kind)

	assert.ErrorIs(t, back.Kind.UnmarshalText([]byte("Render")), ErrUnknownKind)
}
