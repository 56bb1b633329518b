package resolver

import "strings"

var builtinModules = map[string]bool{
	"assert": true, "assert/strict": true, "async_hooks": true, "buffer": true,
	"child_process": true, "cluster": true, "console": true, "constants": true,
	"crypto": true, "dgram": true, "diagnostics_channel": true, "dns": true,
	"dns/promises": true, "domain": true, "events": true, "fs": true,
	"fs/promises": true, "http": true, "http2": true, "https": true,
	"inspector": true, "module": true, "net": true, "os": true, "path": true,
	"path/posix": true, "path/win32": true, "perf_hooks": true, "process": true,
	"punycode": true, "querystring": true, "readline": true, "readline/promises": true,
	"repl": true, "stream": true, "stream/consumers": true, "stream/promises": true,
	"stream/web": true, "string_decoder": true, "sys": true, "timers": true,
	"timers/promises": true, "tls": true, "trace_events": true, "tty": true,
	"url": true, "util": true, "util/types": true, "v8": true, "vm": true,
	"wasi": true, "worker_threads": true, "zlib": true,
}

// node:-only modules that have no bare form.
var prefixOnlyBuiltins = map[string]bool{
	"sea": true, "sqlite": true, "test": true, "test/reporters": true,
}

// builtinModule reports whether specifier names a Node core module and
// returns its bare name. "fs" and "node:fs" are the same module.
func builtinModule(specifier string) (string, bool) {
	if name, ok := strings.CutPrefix(specifier, "node:"); ok {
		if builtinModules[name] || prefixOnlyBuiltins[name] {
			return name, true
		}
		return "", false
	}
	if builtinModules[specifier] {
		return specifier, true
	}
	return "", false
}
