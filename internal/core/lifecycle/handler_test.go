package lifecycle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/lifecycle/internal/core/meta"
)

func TestHandlerInvokeReturnsHandlerError(t *testing.T) {
	h, err := newHandler(Update, "sys", meta.Func("Update", func(t *ticker) error { return errBoom }))
	require.NoError(t, err)
	assert.Equal(t, "sys.Update", h.Name())
	assert.Equal(t, Update, h.Kind())
	assert.ErrorIs(t, h.Invoke(&ticker{}), errBoom)
}

func TestHandlerInvokeRecoversPanic(t *testing.T) {
	cause := errors.New("inner")
	h, err := newHandler(Update, "sys", meta.Func("Update", func(t *ticker) { panic(cause) }))
	require.NoError(t, err)

	err = h.Invoke(&ticker{})
	var pe *PanicError
	require.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, string(pe.Stack), "handler_test.go")
}

func TestHandlerInvokeInstanceMethod(t *testing.T) {
	calls := 0
	h, err := newHandler(Awake1, "ticker", meta.Receiver("Awake", func(t *ticker, n int) { calls += n }))
	require.NoError(t, err)
	require.NoError(t, h.Invoke(&ticker{}, 3))
	assert.Equal(t, 3, calls)
}

func TestHandlerInvokeArgumentChecks(t *testing.T) {
	h, err := newHandler(Awake1, "sys", meta.Func("Awake", func(t *ticker, n int) {}))
	require.NoError(t, err)

	assert.ErrorIs(t, h.Invoke(&ticker{}), ErrArgumentType)
	assert.ErrorIs(t, h.Invoke(&ticker{}, "three"), ErrArgumentType)
	assert.ErrorIs(t, h.Invoke(&ticker{}, nil), ErrArgumentType)
	assert.ErrorIs(t, h.Invoke(&rock{}, 1), ErrArgumentType, "entity of the wrong type")
}

func TestHandlerRejectsVariadic(t *testing.T) {
	_, err := newHandler(Awake1, "sys", meta.Func("Awake", func(t *ticker, rest ...int) {}))
	assert.ErrorIs(t, err, ErrInvalidHandler)
}

func TestTypeInfo(t *testing.T) {
	info := newTypeInfo(tickerType)
	assert.Nil(t, info.Get(Update))
	assert.Empty(t, info.Kinds())
	assert.Equal(t, "", info.String())

	late, err := newHandler(LateUpdate, "sys", meta.Func("LateUpdate", func(t *ticker) {}))
	require.NoError(t, err)
	upd, err := newHandler(Update, "sys", meta.Func("Update", func(t *ticker) {}))
	require.NoError(t, err)

	require.NoError(t, info.Add(LateUpdate, late))
	require.NoError(t, info.Add(Update, upd))
	assert.ErrorIs(t, info.Add(Update, upd), ErrDuplicateHandler)
	assert.ErrorIs(t, info.Add(EventKind(0), upd), ErrUnknownKind)

	assert.Same(t, upd, info.Get(Update))
	assert.Equal(t, []EventKind{Update, LateUpdate}, info.Kinds())
	assert.Equal(t, "Update sys.Update LateUpdate sys.LateUpdate", info.String())
	assert.Equal(t, tickerType, info.EntityType())
}

func TestFaultRing(t *testing.T) {
	r := newFaultRing(2)
	assert.Empty(t, r.list())
	r.push(Fault{ID: "1"})
	r.push(Fault{ID: "2"})
	r.push(Fault{ID: "3"})
	got := r.list()
	require.Len(t, got, 2)
	assert.Equal(t, "2", got[0].ID)
	assert.Equal(t, "3", got[1].ID)

	off := newFaultRing(0)
	off.push(Fault{ID: "x"})
	assert.Empty(t, off.list())
}
