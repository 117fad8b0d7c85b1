// Package formats provides serializers for built elevation grids.
//
// HFG is the compact binary form used for caching and distribution;
// the JSON form is meant for tooling and debugging.
package formats
