package zillow

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dop251/goja"
	"github.com/rs/zerolog/log"
)

// stateFromScripts executes the page's inline scripts in a minimal JS VM and
// scans the globals they assigned for the search-state tree. Some Zillow page
// builds ship state as a plain `window.X = {...}` assignment instead of the
// __NEXT_DATA__ JSON tag.
func stateFromScripts(doc *goquery.Document, pageURL string) (map[string]any, bool) {
	vm := goja.New()

	// Just enough browser environment to let data-assignment scripts run.
	vm.Set("window", vm.GlobalObject())
	vm.Set("self", vm.GlobalObject())
	vm.Set("document", map[string]any{
		"location": map[string]any{"href": pageURL},
	})
	vm.Set("location", map[string]any{"href": pageURL})
	vm.Set("console", map[string]any{
		"log":   func(call goja.FunctionCall) goja.Value { return nil },
		"error": func(call goja.FunctionCall) goja.Value { return nil },
		"warn":  func(call goja.FunctionCall) goja.Value { return nil },
	})

	executed := 0
	doc.Find("script").Each(func(i int, sel *goquery.Selection) {
		if _, external := sel.Attr("src"); external {
			return
		}
		src := sel.Text()
		if src == "" {
			return
		}
		// Most scripts fail on missing DOM APIs; that is expected.
		if _, err := vm.RunString(src); err == nil {
			executed++
		}
	})

	for _, key := range vm.GlobalObject().Keys() {
		if isStandardGlobal(key) {
			continue
		}
		val := vm.Get(key)
		if val == nil {
			continue
		}
		candidate := asMap(val.Export())
		if candidate == nil {
			continue
		}
		if root, ok := stateCandidate(candidate); ok {
			log.Debug().
				Str("global", key).
				Int("scripts_executed", executed).
				Msg("Page state recovered from inline-script global")
			return root, true
		}
	}

	return nil, false
}

// stateCandidate accepts a global either shaped like the __NEXT_DATA__ root
// or like one of its inner containers, normalizing to the root shape the
// path walker expects.
func stateCandidate(m map[string]any) (map[string]any, bool) {
	if _, ok := findSearchResults(m); ok {
		return m, true
	}

	// searchPageState container: wrap it so the standard paths apply
	if sps := asMap(m["searchPageState"]); sps != nil {
		wrapped := map[string]any{
			"props": map[string]any{
				"pageProps": map[string]any{"searchPageState": sps},
			},
		}
		if _, ok := findSearchResults(wrapped); ok {
			return wrapped, true
		}
	}

	// Bare searchResults object
	if _, hasList := m["listResults"]; hasList {
		return map[string]any{
			"props": map[string]any{
				"pageProps": map[string]any{
					"searchPageState": map[string]any{
						"cat1": map[string]any{"searchResults": m},
					},
				},
			},
		}, true
	}

	return nil, false
}

func isStandardGlobal(key string) bool {
	standards := map[string]bool{
		"window": true, "self": true, "document": true, "location": true, "console": true,
		"Object": true, "Array": true, "String": true, "Number": true, "Boolean": true,
		"Date": true, "Math": true, "JSON": true, "RegExp": true, "Error": true,
		"Function": true, "parseInt": true, "parseFloat": true, "isNaN": true,
		"isFinite": true, "encodeURI": true, "decodeURI": true, "encodeURIComponent": true,
		"decodeURIComponent": true, "undefined": true, "NaN": true, "Infinity": true,
	}
	if standards[key] {
		return true
	}
	// goja exposes a handful of additional runtime globals (Symbol, Proxy,
	// typed arrays); treat anything capitalized with a known prefix as standard.
	for _, prefix := range []string{"Symbol", "Proxy", "Reflect", "Promise", "Map", "Set", "WeakMap", "WeakSet", "ArrayBuffer", "DataView", "Int", "Uint", "Float", "BigInt", "globalThis", "eval", "escape", "unescape", "Atomics", "SharedArrayBuffer", "AggregateError", "TypeError", "RangeError", "ReferenceError", "SyntaxError", "EvalError", "URIError"} {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}
