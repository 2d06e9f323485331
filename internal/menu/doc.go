// Package menu holds the plugin picker: a model of visible items with
// selection and folder navigation, and the theme renderers that draw
// it.
//
// The model is rebuilt from the plugin registry whenever the registry
// or the visibility file changes; rebuilding keeps the current
// selection when the selected item survives. When folder mode is on
// and the plugins span more than one category, the root level shows
// one folder per category instead of the flat list.
//
// Themes implement Renderer and live in a Themes registry keyed by
// name. All of them draw through api.Surface only, so they render onto
// the in-memory frame in tests exactly as they do on the device.
package menu
