// Package meta loads YAML documents, such as service configuration, from any
// location supported by github.com/viant/afs (local files, mem://, http(s)://,
// cloud storage). ${env.KEY} expressions are expanded before decoding.
package meta
