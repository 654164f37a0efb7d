// Package file provides a JSON file based checkpoint store.
//
// Each checkpoint is written as an indented JSON document under
// <root>/<thread>/<checkpoint>.json, which makes checkpoints easy to inspect
// and diff with ordinary shell tools. The store serializes access with a
// mutex; it is intended for single-process use.
package file
