// Package scene is the in-process mixed-reality runtime the gallery draws on.
//
// A Graph owns actors (transform, appearance, collider, text or a library
// resource) and an asset container (meshes, materials, textures). Every
// mutation is published as a Patch to subscribers; the session package turns
// those patches into websocket frames for connected clients.
package scene
