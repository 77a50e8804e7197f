//go:build js && wasm

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"syscall/js"

	"github.com/kittclouds/roster/internal/logging"
	"github.com/kittclouds/roster/internal/session"
	"github.com/kittclouds/roster/internal/store"
)

// Version info
const Version = "1.0.0"

// Global state
var sess *session.Session
var adapter *store.Adapter
var statIndex *store.StatIndex // nil when sqlite-vec failed to load

var logger = logging.New(os.Stdout)

// initOptions is the optional JSON argument of init.
type initOptions struct {
	Storage        string `json:"storage"` // "local" (default) or "memory"
	Key            string `json:"key"`
	PortraitMaxDim int    `json:"portraitMaxDim"`
	Similar        *bool  `json:"similar"`
}

func main() {
	logger.Println("WASM Ready v" + Version)

	js.Global().Set("Roster", js.ValueOf(map[string]interface{}{
		"version": js.FuncOf(getVersion),
		"init":    js.FuncOf(initialize),
		"state":   js.FuncOf(state),
		// Detail overlay
		"select":      js.FuncOf(selectCharacter),
		"closeDetail": js.FuncOf(closeDetail),
		// Editor overlay
		"openCreate":  js.FuncOf(openCreate),
		"openEdit":    js.FuncOf(openEdit),
		"closeEditor": js.FuncOf(closeEditor),
		"setField":    js.FuncOf(setField),
		"setStat":     js.FuncOf(setStat),
		"addStat":     js.FuncOf(addStat),
		"removeStat":  js.FuncOf(removeStat),
		"attachImage": js.FuncOf(attachImage),
		"save":        js.FuncOf(save),
		// Drag reorder
		"beginDrag":  js.FuncOf(beginDrag),
		"dragOver":   js.FuncOf(dragOver),
		"dragStep":   js.FuncOf(dragStep),
		"drop":       js.FuncOf(drop),
		"cancelDrag": js.FuncOf(cancelDrag),
		// Header
		"beginTitleEdit": js.FuncOf(beginTitleEdit),
		"setTitle":       js.FuncOf(setTitle),
		"setSubtitle":    js.FuncOf(setSubtitle),
		"saveTitle":      js.FuncOf(saveTitle),
		// Search
		"filter": js.FuncOf(filter),
		// Backup
		"exportRoster": js.FuncOf(exportRoster),
		"importRoster": js.FuncOf(importRoster),
	}))

	// Keep alive
	select {}
}

func getVersion(this js.Value, args []js.Value) interface{} {
	return Version
}

// initialize loads the roster and opens the session.
// Args: [optionsJSON string] (optional)
func initialize(this js.Value, args []js.Value) interface{} {
	var opts initOptions
	if len(args) > 0 && args[0].Type() == js.TypeString && args[0].String() != "" {
		if err := json.Unmarshal([]byte(args[0].String()), &opts); err != nil {
			return errorResult("invalid options json: " + err.Error())
		}
	}

	var slot store.Slot
	if opts.Storage != "memory" {
		ls, err := store.NewLocalStorageSlot()
		if err != nil {
			logger.Printf("localStorage unavailable, roster will not survive reload: %v", err)
		} else {
			slot = ls
		}
	}
	if slot == nil {
		slot = store.NewMemorySlot()
	}
	adapter = store.NewAdapter(slot, opts.Key, logger)

	sessOpts := session.Options{Logger: logger, PortraitMaxDim: opts.PortraitMaxDim}
	if opts.Similar == nil || *opts.Similar {
		if statIndex == nil {
			idx, err := store.NewStatIndex()
			if err != nil {
				logger.Printf("similar characters disabled: %v", err)
			} else {
				statIndex = idx
			}
		}
		if statIndex != nil {
			sessOpts.Similar = statIndex
		}
	}

	sess = session.New(adapter, sessOpts)
	logger.Printf("Session ready: %d characters under %q", sess.Roster().Len(), adapter.Key())
	return stateResult(sess.State())
}

func state(this js.Value, args []js.Value) interface{} {
	if sess == nil {
		return errorResult("roster not initialized")
	}
	return stateResult(sess.State())
}

// selectCharacter opens the detail overlay.
// Args: [id string]
func selectCharacter(this js.Value, args []js.Value) interface{} {
	return withSession(args, 1, "select requires 1 arg: id", func() session.State {
		return sess.Select(args[0].String())
	})
}

func closeDetail(this js.Value, args []js.Value) interface{} {
	return withSession(args, 0, "", func() session.State { return sess.CloseDetail() })
}

func openCreate(this js.Value, args []js.Value) interface{} {
	return withSession(args, 0, "", func() session.State { return sess.OpenCreate() })
}

// openEdit opens the editor on a copy of a character.
// Args: [id string]
func openEdit(this js.Value, args []js.Value) interface{} {
	return withSession(args, 1, "openEdit requires 1 arg: id", func() session.State {
		return sess.OpenEdit(args[0].String())
	})
}

func closeEditor(this js.Value, args []js.Value) interface{} {
	return withSession(args, 0, "", func() session.State { return sess.CloseEditor() })
}

// setField sets a scalar draft field.
// Args: [name string, value string]
func setField(this js.Value, args []js.Value) interface{} {
	return withSession(args, 2, "setField requires 2 args: name, value", func() session.State {
		return sess.SetField(args[0].String(), args[1].String())
	})
}

// setStat sets a draft stat. The value may be a number or "unknown".
// Args: [stat string, value string|number]
func setStat(this js.Value, args []js.Value) interface{} {
	return withSession(args, 2, "setStat requires 2 args: stat, value", func() session.State {
		raw := args[1]
		if raw.Type() == js.TypeNumber {
			return sess.SetStat(args[0].String(), fmt.Sprint(raw.Float()))
		}
		return sess.SetStat(args[0].String(), raw.String())
	})
}

// addStat adds a stat to the draft.
// Args: [name string]
func addStat(this js.Value, args []js.Value) interface{} {
	return withSession(args, 1, "addStat requires 1 arg: name", func() session.State {
		return sess.AddStat(args[0].String())
	})
}

// removeStat removes a stat from the draft.
// Args: [name string]
func removeStat(this js.Value, args []js.Value) interface{} {
	return withSession(args, 1, "removeStat requires 1 arg: name", func() session.State {
		return sess.RemoveStat(args[0].String())
	})
}

// attachImage sets the draft image from a picked file.
// Args: [data Uint8Array]
func attachImage(this js.Value, args []js.Value) interface{} {
	return withSession(args, 1, "attachImage requires 1 arg: data (Uint8Array)", func() session.State {
		return sess.AttachImage(copyBytes(args[0]))
	})
}

func save(this js.Value, args []js.Value) interface{} {
	return withSession(args, 0, "", func() session.State { return sess.Save() })
}

// beginDrag starts a drag.
// Args: [id string, sensor "pointer"|"keyboard"]
func beginDrag(this js.Value, args []js.Value) interface{} {
	return withSession(args, 2, "beginDrag requires 2 args: id, sensor", func() session.State {
		return sess.BeginDrag(args[0].String(), args[1].String())
	})
}

// dragOver records the card under the pointer. null or "" clears it.
// Args: [id string|null]
func dragOver(this js.Value, args []js.Value) interface{} {
	return withSession(args, 0, "", func() session.State {
		return sess.DragOver(optString(args, 0))
	})
}

// dragStep moves a keyboard drag.
// Args: [delta number]
func dragStep(this js.Value, args []js.Value) interface{} {
	return withSession(args, 1, "dragStep requires 1 arg: delta", func() session.State {
		return sess.DragStep(args[0].Int())
	})
}

// drop ends the drag.
// Args: [overId string|null] (optional)
func drop(this js.Value, args []js.Value) interface{} {
	return withSession(args, 0, "", func() session.State {
		return sess.Drop(optString(args, 0))
	})
}

func cancelDrag(this js.Value, args []js.Value) interface{} {
	return withSession(args, 0, "", func() session.State { return sess.CancelDrag() })
}

func beginTitleEdit(this js.Value, args []js.Value) interface{} {
	return withSession(args, 0, "", func() session.State { return sess.BeginTitleEdit() })
}

// setTitle updates the title while editing.
// Args: [title string]
func setTitle(this js.Value, args []js.Value) interface{} {
	return withSession(args, 1, "setTitle requires 1 arg: title", func() session.State {
		return sess.SetTitle(args[0].String())
	})
}

// setSubtitle updates the subtitle while editing.
// Args: [subtitle string]
func setSubtitle(this js.Value, args []js.Value) interface{} {
	return withSession(args, 1, "setSubtitle requires 1 arg: subtitle", func() session.State {
		return sess.SetSubtitle(args[0].String())
	})
}

func saveTitle(this js.Value, args []js.Value) interface{} {
	return withSession(args, 0, "", func() session.State { return sess.SaveTitle() })
}

// filter sets the search query.
// Args: [query string]
func filter(this js.Value, args []js.Value) interface{} {
	return withSession(args, 0, "", func() session.State {
		return sess.Filter(optString(args, 0))
	})
}

// exportRoster returns the persisted roster as a JSON string.
func exportRoster(this js.Value, args []js.Value) interface{} {
	if sess == nil {
		return errorResult("roster not initialized")
	}
	data, err := sess.Export()
	if err != nil {
		return errorResult("export failed: " + err.Error())
	}
	logger.Printf("Exported %d bytes", len(data))
	return string(data)
}

// importRoster replaces the roster with a JSON export.
// Args: [json string | Uint8Array]
func importRoster(this js.Value, args []js.Value) interface{} {
	return withSession(args, 1, "importRoster requires 1 arg: json", func() session.State {
		if args[0].Type() == js.TypeString {
			return sess.Import([]byte(args[0].String()))
		}
		return sess.Import(copyBytes(args[0]))
	})
}

// =============================================================================
// Helpers
// =============================================================================

func withSession(args []js.Value, n int, usage string, fn func() session.State) interface{} {
	if len(args) < n {
		return errorResult(usage)
	}
	if sess == nil {
		return errorResult("roster not initialized")
	}
	return stateResult(fn())
}

func optString(args []js.Value, i int) string {
	if len(args) <= i || args[i].IsNull() || args[i].IsUndefined() {
		return ""
	}
	return args[i].String()
}

func copyBytes(v js.Value) []byte {
	data := make([]byte, v.Get("length").Int())
	js.CopyBytesToGo(data, v)
	return data
}

func stateResult(st session.State) interface{} {
	jsonBytes, err := json.Marshal(st)
	if err != nil {
		return errorResult("encode state: " + err.Error())
	}
	return string(jsonBytes)
}

// Helper: Create error result
func errorResult(msg string) interface{} {
	result := map[string]interface{}{
		"error": msg,
	}
	jsonBytes, _ := json.Marshal(result)
	return string(jsonBytes)
}
