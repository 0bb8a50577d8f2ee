// Package editor assembles a document, its plugins and the format
// converters into a single facade.
//
// A Plugin contributes node classes, markdown and HTML vocabulary and a
// Register function that installs its commands. New installs the clipboard
// and block commands first, then registers every plugin in order.
//
// # Basic Usage
//
//	ed, err := editor.New(editor.WithPlugins(builtin.Plugins()...))
//	if err != nil {
//		return err
//	}
//	defer ed.Close()
//	if err := ed.FromMarkdown("# Title\n\nBody"); err != nil {
//		return err
//	}
//	html, err := ed.ToHTML()
package editor
