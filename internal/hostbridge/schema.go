// Package hostbridge is the seam between engine internals and host glue
// (§6.1): schema builder functions, and the ToHost/FromHost value
// round-trip (§9, §12 "the only place host semantics leak into the
// core").
package hostbridge

import (
	"time"

	"tsengine/internal/schema"
)

// NewScalarSchema returns an interned scalar schema of the given type.
func NewScalarSchema(t schema.ScalarType) *schema.TSSchema { return schema.NewScalar(t) }

// NewBundleSchema returns an interned fixed-key record schema.
func NewBundleSchema(fieldNames []string, fields []*schema.TSSchema) *schema.TSSchema {
	return schema.NewBundle(fieldNames, fields)
}

// NewListSchema returns an interned fixed-size list schema.
func NewListSchema(elem *schema.TSSchema, n int) *schema.TSSchema { return schema.NewList(elem, n) }

// NewDynamicListSchema returns an interned variable-length list schema.
func NewDynamicListSchema(elem *schema.TSSchema) *schema.TSSchema {
	return schema.NewDynamicList(elem)
}

// NewSetSchema returns an interned set schema.
func NewSetSchema(elem *schema.TSSchema) *schema.TSSchema { return schema.NewSet(elem) }

// NewMapSchema returns an interned map schema.
func NewMapSchema(key, value *schema.TSSchema) *schema.TSSchema { return schema.NewMap(key, value) }

// NewWindowByCapacitySchema returns an interned count-bounded window schema.
func NewWindowByCapacitySchema(elem *schema.TSSchema, capacity int) *schema.TSSchema {
	return schema.NewWindowByCapacity(elem, capacity)
}

// NewWindowByDurationSchema returns an interned time-bounded window schema.
func NewWindowByDurationSchema(elem *schema.TSSchema, d time.Duration) *schema.TSSchema {
	return schema.NewWindowByDuration(elem, d)
}

// NewRefSchema returns an interned Ref schema wrapping inner.
func NewRefSchema(inner *schema.TSSchema) *schema.TSSchema { return schema.NewRef(inner) }
