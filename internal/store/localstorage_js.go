//go:build js && wasm

package store

import (
	"errors"
	"fmt"
	"syscall/js"
)

// LocalStorageSlot reads and writes window.localStorage.
type LocalStorageSlot struct {
	storage js.Value
}

// NewLocalStorageSlot binds the page's localStorage. It fails when storage is
// unavailable (e.g. disabled by privacy settings).
func NewLocalStorageSlot() (_ *LocalStorageSlot, err error) {
	defer recoverJS(&err)

	ls := js.Global().Get("localStorage")
	if ls.IsUndefined() || ls.IsNull() {
		return nil, errors.New("localStorage is not available")
	}
	return &LocalStorageSlot{storage: ls}, nil
}

// Get returns the item under key. getItem yields null for a missing key.
func (l *LocalStorageSlot) Get(key string) (value string, ok bool, err error) {
	defer recoverJS(&err)

	v := l.storage.Call("getItem", key)
	if v.IsNull() || v.IsUndefined() {
		return "", false, nil
	}
	return v.String(), true, nil
}

// Set writes the item under key. A full quota surfaces as an error.
func (l *LocalStorageSlot) Set(key, value string) (err error) {
	defer recoverJS(&err)

	l.storage.Call("setItem", key, value)
	return nil
}

// recoverJS turns a thrown JS exception into an error.
func recoverJS(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if jsErr, ok := r.(js.Error); ok {
		*err = fmt.Errorf("localStorage: %s", jsErr.Error())
		return
	}
	panic(r)
}
