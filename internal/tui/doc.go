// Package tui is the bubbletea program that drives the front end.
//
// All game state is owned by the Update goroutine: server batches,
// timer ticks and reloads arrive as messages and run through the parse,
// route and draw pipeline one at a time.
//
// Component layout:
//
//	model.go    root model, messages, Init/Update
//	input.go    key presses and built-in actions
//	commands.go submitted input and meta-commands
//	view.go     canvas composition
//	opener.go   browser launcher for LaunchURL
package tui
