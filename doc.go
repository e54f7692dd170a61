// Package shapely defines the static shape model shared by the parser and
// writer plan builders: shape descriptors with opaque field accessors,
// canonical type keys used for plan caching, the codec error taxonomy and
// plan build options.
//
// A Shape describes the target form of a JSON value without reference to any
// concrete Go type; accessors bound at plan build time carry all target
// knowledge. Plans built for a shape are cached by the mapper package under
// the shape canonical key and reused for the process lifetime.
package shapely
