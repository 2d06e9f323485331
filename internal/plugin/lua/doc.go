// Package lua runs Lua plugins for llzdeck.
//
// A Lua plugin is either a single .lua file or a directory with an
// optional plugin.yaml manifest and a main script (main.lua by
// default). Each plugin gets its own sandboxed interpreter: only the
// base, table, string, and math libraries are open, the code-loading
// globals are removed, and require resolves just those libraries and
// the deck module.
//
// # Script contract
//
// Metadata lives in a global plugin table; lifecycle hooks are global
// functions. Only update and draw are required:
//
//	plugin = {
//	    name = "hello",
//	    description = "Greets the deck",
//	    category = "tools",
//	}
//
//	function init(ctx, options)
//	    -- ctx.width, ctx.height; options come from plugin.yaml
//	end
//
//	function update(input, dt)
//	    if input.back then deck.close() end
//	end
//
//	function draw()
//	    local w, h = deck.size()
//	    deck.clear()
//	    deck.text(2, 2, "hello", { fg = "#1DB954", bold = true })
//	end
//
//	function shutdown() end
//
// A manifest overrides script metadata:
//
//	name: timer
//	description: Dial-set countdown timer
//	category: tools
//	main: main.lua
//	options:
//	  start_minutes: 5
//
// # The deck module
//
// Scripts talk to the host through the global deck table (also
// reachable as require("deck")): size, clear, text, fill, rect for
// drawing, input for the current frame's controls, now for wall-clock
// seconds, notify, launch, rebuild_menu, log for host services, and
// close to ask the shell to return to the menu. Drawing calls only
// work inside draw; they are no-ops elsewhere.
//
// # Errors
//
// A Lua runtime error inside update, draw, or init panics out of the
// hook; the shell's frame loop recovers, marks the plugin failed, and
// returns to the menu. Shutdown errors are logged and swallowed.
package lua
